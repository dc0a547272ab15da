package websocket

import (
	"realtime-chat-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs attaches an upgraded websocket connection to the registry and runs
// the pumps until the peer goes away or the connection is superseded.
func ServeWs(registry *Registry, conn *websocket.Conn, userID, chatID uuid.UUID, chat ChatPort, log logger.ILogger) {
	link := registry.Connect(userID, chatID)
	client := &Client{
		Registry: registry,
		Conn:     conn,
		Link:     link,
		Chat:     chat,
		Logger:   log,
	}

	go client.writePump()
	client.readPump()
}
