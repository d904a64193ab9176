package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/projecthub/backend/internal/services"
	"github.com/projecthub/backend/pkg/utils"
)

type ChatHandler struct {
	Chat *services.ChatService
}

func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{Chat: chat}
}

func (h *ChatHandler) Message(c *fiber.Ctx) error {
	var msg services.ChatMessage
	if err := c.BodyParser(&msg); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(msg.Content) == "" {
		return utils.Error(c, fiber.StatusBadRequest, "content is required")
	}
	msg.IsUser = true

	reply, err := h.Chat.Send(c.Context(), msg)
	if err != nil {
		return utils.Fail(c, err, "failed sending message")
	}

	return utils.Success(c, fiber.StatusOK, reply)
}

func (h *ChatHandler) Suggestions(c *fiber.Ctx) error {
	return utils.Success(c, fiber.StatusOK, h.Chat.Suggestions())
}
