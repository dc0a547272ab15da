package controller

import (
	"realtime-chat-be/internal/dto"
	"realtime-chat-be/internal/pkg/logger"
	"realtime-chat-be/internal/pkg/serverutils"
	"realtime-chat-be/internal/service"
	internalWS "realtime-chat-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, authMw fiber.Handler)
}

type chatController struct {
	chatService service.IChatService
	authService service.IAuthService
	registry    *internalWS.Registry
	logger      logger.ILogger
}

func NewChatController(
	chatService service.IChatService,
	authService service.IAuthService,
	registry *internalWS.Registry,
	log logger.ILogger,
) IChatController {
	return &chatController{
		chatService: chatService,
		authService: authService,
		registry:    registry,
		logger:      log,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router, authMw fiber.Handler) {
	h := r.Group("/chats")

	// The websocket route authenticates its own handshake token.
	h.Get("/:chatId/ws", c.ServeWs)

	h.Use(authMw)
	h.Post("/", c.CreateChat)
	h.Get("/", c.ListChats)
	h.Get("/:chatId", c.GetChat)
	h.Get("/:chatId/members", c.ListMembers)
	h.Post("/:chatId/members", c.AddMember)
	h.Delete("/:chatId/members/:userId", c.RemoveMember)
	h.Post("/:chatId/messages", c.SendMessage)
	h.Get("/:chatId/messages", c.History)

	m := r.Group("/messages", authMw)
	m.Post("/:messageId/read", c.MarkRead)
}

func currentUserID(ctx *fiber.Ctx) (uuid.UUID, error) {
	userID, ok := ctx.Locals("user_id").(uuid.UUID)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return userID, nil
}

func chatIDParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	chatID, err := uuid.Parse(ctx.Params("chatId"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid chat id")
	}
	return chatID, nil
}

func (c *chatController) CreateChat(ctx *fiber.Ctx) error {
	userID, err := currentUserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return err
	}

	res, err := c.chatService.CreateChat(ctx.UserContext(), userID, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"code":    201,
		"message": "Chat created",
		"data":    res,
	})
}

func (c *chatController) ListChats(ctx *fiber.Ctx) error {
	userID, err := currentUserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatService.ListChats(ctx.UserContext(), userID)
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "OK",
		"data":    res,
	})
}

func (c *chatController) GetChat(ctx *fiber.Ctx) error {
	userID, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	chatID, err := chatIDParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatService.GetChat(ctx.UserContext(), userID, chatID)
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "OK",
		"data":    res,
	})
}

func (c *chatController) ListMembers(ctx *fiber.Ctx) error {
	userID, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	chatID, err := chatIDParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatService.ListMembers(ctx.UserContext(), userID, chatID)
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "OK",
		"data":    res,
	})
}

func (c *chatController) AddMember(ctx *fiber.Ctx) error {
	userID, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	chatID, err := chatIDParam(ctx)
	if err != nil {
		return err
	}

	var req dto.AddMemberRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return err
	}

	if err := c.chatService.AddMember(ctx.UserContext(), userID, chatID, req.UserId); err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"code":    201,
		"message": "Member added",
		"data":    nil,
	})
}

func (c *chatController) RemoveMember(ctx *fiber.Ctx) error {
	userID, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	chatID, err := chatIDParam(ctx)
	if err != nil {
		return err
	}
	memberID, err := uuid.Parse(ctx.Params("userId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}

	if err := c.chatService.RemoveMember(ctx.UserContext(), userID, chatID, memberID); err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Member removed",
		"data":    nil,
	})
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	userID, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	chatID, err := chatIDParam(ctx)
	if err != nil {
		return err
	}

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return err
	}

	res, err := c.chatService.SendMessage(ctx.UserContext(), userID, chatID, req.Content)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"code":    201,
		"message": "Message sent",
		"data":    res,
	})
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	userID, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	chatID, err := chatIDParam(ctx)
	if err != nil {
		return err
	}

	limit := ctx.QueryInt("limit", 50)
	offset := ctx.QueryInt("offset", 0)

	res, err := c.chatService.History(ctx.UserContext(), userID, chatID, limit, offset)
	if err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "OK",
		"data":    res,
	})
}

func (c *chatController) MarkRead(ctx *fiber.Ctx) error {
	userID, err := currentUserID(ctx)
	if err != nil {
		return err
	}
	messageID, err := uuid.Parse(ctx.Params("messageId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid message id")
	}

	if err := c.chatService.MarkRead(ctx.UserContext(), userID, messageID); err != nil {
		return err
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Marked read",
		"data":    nil,
	})
}

// ServeWs authenticates the handshake and upgrades to a live connection.
// Browsers cannot set headers on websocket requests, so the token is read
// from the query string first, then the Authorization header.
func (c *chatController) ServeWs(ctx *fiber.Ctx) error {
	tokenStr := ctx.Query("token")
	if tokenStr == "" {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"code":    401,
			"message": "Missing token (query 'token' or Authorization header)",
		})
	}

	user, err := c.authService.VerifyToken(ctx.UserContext(), tokenStr, service.TokenTypeAccess)
	if err != nil {
		c.logger.Warn("ChatController", "Invalid token in WS handshake", map[string]interface{}{"error": err.Error()})
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"code":    401,
			"message": "Invalid token",
		})
	}

	chatID, err := chatIDParam(ctx)
	if err != nil {
		return err
	}

	// Membership is checked before the upgrade so outsiders are refused
	// with a plain 403 instead of a dangling socket.
	if _, err := c.chatService.GetChat(ctx.UserContext(), user.Id, chatID); err != nil {
		return err
	}

	userID := user.Id
	if websocket.IsWebSocketUpgrade(ctx) {
		return websocket.New(func(conn *websocket.Conn) {
			c.logger.Info("ChatController", "WebSocket session started", map[string]interface{}{"user_id": userID, "chat_id": chatID})
			internalWS.ServeWs(c.registry, conn, userID, chatID, c.chatService, c.logger)
			c.logger.Info("ChatController", "WebSocket session ended", map[string]interface{}{"user_id": userID, "chat_id": chatID})
		})(ctx)
	}
	return fiber.ErrUpgradeRequired
}
