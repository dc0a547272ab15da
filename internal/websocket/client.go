package websocket

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// ChatPort is the slice of the chat service a live connection drives.
type ChatPort interface {
	SendMessage(ctx context.Context, fromUserID, chatID uuid.UUID, content string) (*dto.MessageDTO, error)
	MarkRead(ctx context.Context, userID, messageID uuid.UUID) error
}

// Client is a middleman between the websocket connection and the registry.
type Client struct {
	Registry *Registry
	Conn     *websocket.Conn
	Link     *Connection
	Chat     ChatPort
	Logger   logger.ILogger
}

// readPump pumps inbound commands from the websocket into the chat service.
func (c *Client) readPump() {
	defer func() {
		c.Registry.Disconnect(c.Link)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Logger.Warn("Client", "Unexpected close", map[string]interface{}{"user_id": c.Link.UserID, "error": err.Error()})
			}
			break
		}

		var cmd dto.InboundCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			c.pushError("invalid payload")
			continue
		}

		ctx := context.Background()
		switch cmd.Type {
		case "message":
			if _, err := c.Chat.SendMessage(ctx, c.Link.UserID, c.Link.ChatID, cmd.Content); err != nil {
				c.Logger.Warn("Client", "Send message failed", map[string]interface{}{"user_id": c.Link.UserID, "error": err.Error()})
				c.pushError(err.Error())
			}
		case "mark_read":
			if err := c.Chat.MarkRead(ctx, c.Link.UserID, cmd.MessageId); err != nil {
				c.pushError(err.Error())
			}
		default:
			c.pushError("unknown command type")
		}
	}
}

// pushError queues an error frame on the client's own connection. Frames are
// dropped rather than blocking the read loop.
func (c *Client) pushError(msg string) {
	data, _ := json.Marshal(map[string]interface{}{
		"type":  "error",
		"error": msg,
	})
	select {
	case c.Link.Send <- data:
	default:
	}
}

var frameSeparator = []byte{'\n'}

// writeBatch writes the first frame and drains any queued frames into the
// same websocket message, newline-separated so the receiver can split the
// batch back into individual JSON documents.
func writeBatch(w io.Writer, first []byte, queue chan []byte) error {
	if _, err := w.Write(first); err != nil {
		return err
	}
	n := len(queue)
	for i := 0; i < n; i++ {
		if _, err := w.Write(frameSeparator); err != nil {
			return err
		}
		if _, err := w.Write(<-queue); err != nil {
			return err
		}
	}
	return nil
}

// writePump pumps frames from the registry to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message := <-c.Link.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if err := writeBatch(w, message, c.Link.Send); err != nil {
				return
			}
			if err := w.Close(); err != nil {
				return
			}
		case <-c.Link.Done():
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
