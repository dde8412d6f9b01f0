package controller

import (
	"os"

	"admissions-be/internal/apperror"
	"admissions-be/internal/dto"
	"admissions-be/internal/pkg/serverutils"
	"admissions-be/internal/service"
	ws "admissions-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type IAgentController interface {
	RegisterRoutes(r fiber.Router)
	ServeWs(ctx *fiber.Ctx) error
	CreateSession(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	GetMessages(ctx *fiber.Ctx) error
}

type agentController struct {
	sessionService service.ISessionService
	hub            *ws.Hub
}

func NewAgentController(sessionService service.ISessionService, hub *ws.Hub) IAgentController {
	return &agentController{
		sessionService: sessionService,
		hub:            hub,
	}
}

func (c *agentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/agent/v1")
	// The ws handshake authenticates itself: browsers cannot set an
	// Authorization header on websocket upgrades.
	h.Get("ws", c.ServeWs)
	h.Use(serverutils.JwtMiddleware)
	h.Post("sessions/:agentType", c.CreateSession)
	h.Get("sessions/:agentType", c.ListSessions)
	h.Get("session/:id", c.GetSession)
	h.Get("session/:id/messages", c.GetMessages)
}

func (c *agentController) CreateSession(ctx *fiber.Ctx) error {
	userId, institutionId, err := callerIdentity(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.NewValidation("body", "malformed request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.CreateSession(ctx.Context(), userId, institutionId, ctx.Params("agentType"), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Session queued", res))
}

func (c *agentController) ListSessions(ctx *fiber.Ctx) error {
	userId, institutionId, err := callerIdentity(ctx)
	if err != nil {
		return err
	}

	res, err := c.sessionService.GetAllSessions(ctx.Context(), userId, institutionId, ctx.Params("agentType"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list sessions", res))
}

func (c *agentController) GetSession(ctx *fiber.Ctx) error {
	userId, institutionId, err := callerIdentity(ctx)
	if err != nil {
		return err
	}

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.NewValidation("id", "invalid session id")
	}

	res, err := c.sessionService.GetSession(ctx.Context(), userId, institutionId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *agentController) GetMessages(ctx *fiber.Ctx) error {
	userId, institutionId, err := callerIdentity(ctx)
	if err != nil {
		return err
	}

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return apperror.NewValidation("id", "invalid session id")
	}

	res, err := c.sessionService.GetMessages(ctx.Context(), userId, institutionId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show messages", res))
}

// ServeWs upgrades the connection after validating the JWT from the token
// query param (browser clients) or the Authorization header.
func (c *agentController) ServeWs(ctx *fiber.Ctx) error {
	tokenStr := ctx.Query("token")
	if tokenStr == "" {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}
	userIdStr, _ := claims["user_id"].(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing user_id"})
	}

	if websocket.IsWebSocketUpgrade(ctx) {
		return websocket.New(func(conn *websocket.Conn) {
			ws.ServeWs(c.hub, conn, userId)
		})(ctx)
	}
	return fiber.ErrUpgradeRequired
}

func callerIdentity(ctx *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, uuid.Nil, apperror.NewAuthorization("missing user identity")
	}

	institutionIdStr, _ := ctx.Locals("institution_id").(string)
	institutionId, err := uuid.Parse(institutionIdStr)
	if err != nil {
		return uuid.Nil, uuid.Nil, apperror.NewAuthorization("missing institution identity")
	}
	return userId, institutionId, nil
}
