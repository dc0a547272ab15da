package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"realtime-chat-be/internal/apperr"
	"realtime-chat-be/internal/entity"
	"realtime-chat-be/internal/repository/contract"
	"realtime-chat-be/internal/repository/specification"
	"realtime-chat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// fakeStore is a shared in-memory backing for the fake repositories. The
// specification structs are matched by type switch instead of SQL.
type fakeStore struct {
	mu           sync.Mutex
	users        map[uuid.UUID]*entity.User
	chats        map[uuid.UUID]*entity.Chat
	memberships  map[uuid.UUID]*entity.Membership
	messages     map[uuid.UUID]*entity.Message
	readStatuses map[uuid.UUID]*entity.ReadStatus
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:        make(map[uuid.UUID]*entity.User),
		chats:        make(map[uuid.UUID]*entity.Chat),
		memberships:  make(map[uuid.UUID]*entity.Membership),
		messages:     make(map[uuid.UUID]*entity.Message),
		readStatuses: make(map[uuid.UUID]*entity.ReadStatus),
	}
}

type fakeUowFactory struct {
	store *fakeStore
}

func newFakeUowFactory() *fakeUowFactory {
	return &fakeUowFactory{store: newFakeStore()}
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUow{store: f.store}
}

type fakeUow struct {
	store *fakeStore
}

func (u *fakeUow) Begin(ctx context.Context) error { return nil }
func (u *fakeUow) Commit() error                   { return nil }
func (u *fakeUow) Rollback() error                 { return nil }

func (u *fakeUow) UserRepository() contract.UserRepository {
	return &fakeUserRepo{store: u.store}
}

func (u *fakeUow) ChatRepository() contract.ChatRepository {
	return &fakeChatRepo{store: u.store}
}

func (u *fakeUow) MembershipRepository() contract.MembershipRepository {
	return &fakeMembershipRepo{store: u.store}
}

func (u *fakeUow) MessageRepository() contract.MessageRepository {
	return &fakeMessageRepo{store: u.store}
}

func (u *fakeUow) ReadStatusRepository() contract.ReadStatusRepository {
	return &fakeReadStatusRepo{store: u.store}
}

func idIn(id uuid.UUID, ids []uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// --- users ---

type fakeUserRepo struct {
	store *fakeStore
}

func matchUser(u *entity.User, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if u.Id != s.ID {
				return false
			}
		case specification.ByIDs:
			if !idIn(u.Id, s.IDs) {
				return false
			}
		case specification.ByUsername:
			if u.Username != s.Username {
				return false
			}
		case specification.ByEmail:
			if u.Email == nil || *u.Email != s.Email {
				return false
			}
		case specification.ActiveOnly:
			if u.Disabled {
				return false
			}
		}
	}
	return true
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	clone := *user
	r.store.users[user.Id] = &clone
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	return r.Create(ctx, user)
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if matchUser(u, specs) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []*entity.User
	for _, u := range r.store.users {
		if matchUser(u, specs) {
			clone := *u
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, userId uuid.UUID, hash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if u, ok := r.store.users[userId]; ok {
		u.PasswordHash = hash
	}
	return nil
}

func (r *fakeUserRepo) SetDisabled(ctx context.Context, userId uuid.UUID, disabled bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if u, ok := r.store.users[userId]; ok {
		u.Disabled = disabled
	}
	return nil
}

func (r *fakeUserRepo) SearchByUsername(ctx context.Context, query string, limit, offset int) ([]*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []*entity.User
	for _, u := range r.store.users {
		if strings.Contains(strings.ToLower(u.Username), strings.ToLower(query)) {
			clone := *u
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

// --- chats ---

type fakeChatRepo struct {
	store *fakeStore
}

func matchChat(c *entity.Chat, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if c.Id != s.ID {
				return false
			}
		case specification.ByIDs:
			if !idIn(c.Id, s.IDs) {
				return false
			}
		}
	}
	return true
}

func (r *fakeChatRepo) Create(ctx context.Context, chat *entity.Chat) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	clone := *chat
	r.store.chats[chat.Id] = &clone
	return nil
}

func (r *fakeChatRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, c := range r.store.chats {
		if matchChat(c, specs) {
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeChatRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chat, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []*entity.Chat
	for _, c := range r.store.chats {
		if matchChat(c, specs) {
			clone := *c
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (r *fakeChatRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

// --- memberships ---

type fakeMembershipRepo struct {
	store *fakeStore
}

func matchMembership(m *entity.Membership, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if m.Id != s.ID {
				return false
			}
		case specification.ByChatID:
			if m.ChatId != s.ChatID {
				return false
			}
		case specification.ByUserID:
			if m.UserId != s.UserID {
				return false
			}
		}
	}
	return true
}

// Create enforces the (chat_id, user_id) unique index the way the real
// repository does, returning ErrAlreadyMember for the losing insert.
func (r *fakeMembershipRepo) Create(ctx context.Context, membership *entity.Membership) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.memberships {
		if existing.ChatId == membership.ChatId && existing.UserId == membership.UserId {
			return apperr.ErrAlreadyMember
		}
	}
	clone := *membership
	r.store.memberships[membership.Id] = &clone
	return nil
}

func (r *fakeMembershipRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.memberships, id)
	return nil
}

func (r *fakeMembershipRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Membership, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, m := range r.store.memberships {
		if matchMembership(m, specs) {
			clone := *m
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeMembershipRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Membership, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []*entity.Membership
	for _, m := range r.store.memberships {
		if matchMembership(m, specs) {
			clone := *m
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (r *fakeMembershipRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

// --- messages ---

type fakeMessageRepo struct {
	store *fakeStore
}

func matchMessage(m *entity.Message, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if m.Id != s.ID {
				return false
			}
		case specification.ByChatID:
			if m.ChatId != s.ChatID {
				return false
			}
		}
	}
	return true
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	clone := *message
	r.store.messages[message.Id] = &clone
	return nil
}

func (r *fakeMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, m := range r.store.messages {
		if matchMessage(m, specs) {
			clone := *m
			return &clone, nil
		}
	}
	return nil, nil
}

// FindAll returns matches ordered by CreatedAt ascending and honors the
// Pagination specification, mirroring how history queries run.
func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	r.store.mu.Lock()
	var result []*entity.Message
	for _, m := range r.store.messages {
		if matchMessage(m, specs) {
			clone := *m
			result = append(result, &clone)
		}
	}
	r.store.mu.Unlock()

	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })

	for _, spec := range specs {
		if p, ok := spec.(specification.Pagination); ok {
			if p.Offset >= len(result) {
				return nil, nil
			}
			result = result[p.Offset:]
			if p.Limit > 0 && p.Limit < len(result) {
				result = result[:p.Limit]
			}
		}
	}
	return result, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

// --- read statuses ---

type fakeReadStatusRepo struct {
	store *fakeStore
}

func matchReadStatus(s *entity.ReadStatus, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			if s.Id != sp.ID {
				return false
			}
		case specification.ByUserID:
			if s.UserId != sp.UserID {
				return false
			}
		case specification.ByMessageID:
			if s.MessageId != sp.MessageID {
				return false
			}
		}
	}
	return true
}

func (r *fakeReadStatusRepo) Create(ctx context.Context, status *entity.ReadStatus) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	clone := *status
	r.store.readStatuses[status.Id] = &clone
	return nil
}

func (r *fakeReadStatusRepo) Update(ctx context.Context, status *entity.ReadStatus) error {
	return r.Create(ctx, status)
}

func (r *fakeReadStatusRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ReadStatus, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.readStatuses {
		if matchReadStatus(s, specs) {
			clone := *s
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeReadStatusRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ReadStatus, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []*entity.ReadStatus
	for _, s := range r.store.readStatuses {
		if matchReadStatus(s, specs) {
			clone := *s
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (r *fakeReadStatusRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}
