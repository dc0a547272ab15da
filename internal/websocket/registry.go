package websocket

import (
	"context"
	"hash/fnv"
	"sync"

	"realtime-chat-be/internal/apperr"
	"realtime-chat-be/internal/pkg/logger"

	"github.com/google/uuid"
)

const shardCount = 32

// Connection is a single live websocket attachment for a user. A user has
// at most one: a newer connection supersedes the previous one.
type Connection struct {
	UserID uuid.UUID
	ChatID uuid.UUID

	// Buffered channel of outbound frames.
	Send chan []byte

	done     chan struct{}
	doneOnce sync.Once
}

// Done is closed when the connection is removed from the registry, either
// by an explicit disconnect or by a newer connection for the same user.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

func (c *Connection) markDone() {
	c.doneOnce.Do(func() {
		close(c.done)
	})
}

type shard struct {
	mu    sync.RWMutex
	conns map[uuid.UUID]*Connection
}

// Registry tracks which users currently hold a live connection. The map is
// sharded so connect/disconnect churn on one set of users does not serialize
// pushes to the rest.
type Registry struct {
	shards [shardCount]*shard
	logger logger.ILogger
}

func NewRegistry(log logger.ILogger) *Registry {
	r := &Registry{
		logger: log,
	}
	for i := range r.shards {
		r.shards[i] = &shard{
			conns: make(map[uuid.UUID]*Connection),
		}
	}
	return r
}

func (r *Registry) shardFor(userID uuid.UUID) *shard {
	h := fnv.New32a()
	h.Write(userID[:])
	return r.shards[h.Sum32()%shardCount]
}

// Connect registers a new connection for the user. If the user already has
// one, the old connection is superseded: its Done channel closes and its
// pumps are expected to shut down.
func (r *Registry) Connect(userID, chatID uuid.UUID) *Connection {
	conn := &Connection{
		UserID: userID,
		ChatID: chatID,
		Send:   make(chan []byte, 256),
		done:   make(chan struct{}),
	}

	s := r.shardFor(userID)
	s.mu.Lock()
	old := s.conns[userID]
	s.conns[userID] = conn
	s.mu.Unlock()

	if old != nil {
		old.markDone()
		r.logger.Info("Registry", "Connection superseded", map[string]interface{}{"user_id": userID})
	}
	r.logger.Info("Registry", "Client connected", map[string]interface{}{"user_id": userID, "chat_id": chatID})

	return conn
}

// Disconnect removes the given connection. It is identity checked: if the
// user has already reconnected, the newer connection is left untouched.
func (r *Registry) Disconnect(conn *Connection) {
	s := r.shardFor(conn.UserID)
	s.mu.Lock()
	if s.conns[conn.UserID] == conn {
		delete(s.conns, conn.UserID)
	}
	s.mu.Unlock()

	conn.markDone()
	r.logger.Info("Registry", "Client disconnected", map[string]interface{}{"user_id": conn.UserID})
}

// Lookup returns the user's current connection, or nil.
func (r *Registry) Lookup(userID uuid.UUID) *Connection {
	s := r.shardFor(userID)
	s.mu.RLock()
	conn := s.conns[userID]
	s.mu.RUnlock()
	return conn
}

func (r *Registry) IsOnline(userID uuid.UUID) bool {
	return r.Lookup(userID) != nil
}

// Count reports the number of live connections across all shards.
func (r *Registry) Count() int {
	total := 0
	for _, s := range r.shards {
		s.mu.RLock()
		total += len(s.conns)
		s.mu.RUnlock()
	}
	return total
}

// Push queues data on the user's live connection. It returns
// apperr.ErrRecipientOffline when the user has no connection,
// apperr.ErrChannelClosed when the connection went away while queueing, and
// the context error when the send buffer stays full past the deadline.
func (r *Registry) Push(ctx context.Context, userID uuid.UUID, data []byte) error {
	conn := r.Lookup(userID)
	if conn == nil {
		return apperr.ErrRecipientOffline
	}

	select {
	case conn.Send <- data:
		return nil
	case <-conn.Done():
		return apperr.ErrChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
