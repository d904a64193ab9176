package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/projecthub/backend/internal/config"
	"github.com/projecthub/backend/pkg/apperr"
	"github.com/projecthub/backend/pkg/logger"
)

type ChatMessage struct {
	Content string `json:"content"`
	IsUser  bool   `json:"isUser"`
}

// Completer is the pluggable language-model collaborator behind the chat
// passthrough.
type Completer interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

// HTTPCompleter posts an OpenAI-style chat-completions request to the
// configured endpoint.
type HTTPCompleter struct {
	url    string
	apiKey string
	model  string
	client *http.Client
}

func NewHTTPCompleter(cfg config.GPTConfig) *HTTPCompleter {
	return &HTTPCompleter{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type completionRequest struct {
	Model    string              `json:"model"`
	Messages []completionMessage `json:"messages"`
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message completionMessage `json:"message"`
	} `json:"choices"`
}

func (h *HTTPCompleter) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	payload := completionRequest{Model: h.model}
	for _, m := range messages {
		role := "assistant"
		if m.IsUser {
			role = "user"
		}
		payload.Messages = append(payload.Messages, completionMessage{Role: role, Content: m.Content})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", apperr.Internal("failed encoding completion request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return "", apperr.Internal("failed building completion request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		logger.Error("chat_completion_failed", err, map[string]interface{}{
			"url": h.url,
		})
		return "", apperr.Wrap(apperr.KindUnavailable, "language model unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.Warn("chat_completion_rejected", map[string]interface{}{
			"url":    h.url,
			"status": resp.StatusCode,
			"body":   string(raw),
		})
		return "", apperr.Unavailable(fmt.Sprintf("language model returned status %d", resp.StatusCode))
	}

	var decoded completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", apperr.Internal("failed decoding completion response", err)
	}
	if len(decoded.Choices) == 0 {
		return "", apperr.Unavailable("language model returned no choices")
	}

	return decoded.Choices[0].Message.Content, nil
}

// ChatService wraps the completer behind the message endpoints. A nil
// completer degrades every send to Unavailable.
type ChatService struct {
	completer Completer
}

func NewChatService(completer Completer) *ChatService {
	return &ChatService{completer: completer}
}

func (s *ChatService) Send(ctx context.Context, message ChatMessage) (ChatMessage, error) {
	if s.completer == nil {
		return ChatMessage{}, apperr.Unavailable("chat completion is not configured")
	}

	reply, err := s.completer.Complete(ctx, []ChatMessage{message})
	if err != nil {
		return ChatMessage{}, err
	}

	return ChatMessage{Content: reply, IsUser: false}, nil
}

func (s *ChatService) Suggestions() []string {
	return []string{
		"What can I ask about this project?",
		"Summarize the latest uploaded documents.",
		"Can you help me with something else?",
	}
}
