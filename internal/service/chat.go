package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"farm-assistant/internal/llm"
	"farm-assistant/internal/models"
	"farm-assistant/internal/repository"

	"go.uber.org/zap"
)

const titleTimeout = 30 * time.Second

// Chat runs conversations with the assistant
type Chat struct {
	backend llm.Provider
	repo    *repository.ChatRepository
	logger  *zap.Logger
	titles  sync.WaitGroup
}

// NewChat creates a new chat service
func NewChat(backend llm.Provider, repo *repository.ChatRepository, logger *zap.Logger) *Chat {
	return &Chat{
		backend: backend,
		repo:    repo,
		logger:  logger,
	}
}

func (c *Chat) Sessions() []models.ChatSession {
	return c.repo.List()
}

func (c *Chat) Session(id string) (models.ChatSession, error) {
	return c.repo.Get(id)
}

// Active returns the active session, creating one when there is none
func (c *Chat) Active() (models.ChatSession, error) {
	if session, ok := c.repo.Active(); ok {
		return session, nil
	}
	return c.repo.CreateSession()
}

func (c *Chat) CreateSession() (models.ChatSession, error) {
	return c.repo.CreateSession()
}

func (c *Chat) SelectSession(id string) (models.ChatSession, error) {
	return c.repo.SelectSession(id)
}

// DeleteSession removes a session and returns the one now active
func (c *Chat) DeleteSession(id string) (models.ChatSession, error) {
	return c.repo.DeleteSession(id)
}

// SendMessage stores the user's message, streams the reply through
// onChunk and stores the complete reply. The first message of a session
// also starts title generation in the background.
func (c *Chat) SendMessage(ctx context.Context, sessionID, text string, onChunk func(string)) (models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ChatMessage{}, repository.ErrEmptyText
	}

	session, err := c.repo.Get(sessionID)
	if err != nil {
		return models.ChatMessage{}, err
	}
	history := session.History
	first := session.UserMessageCount() == 0

	if _, err := c.repo.AppendMessage(sessionID, models.ChatMessage{Role: models.RoleUser, Text: text}); err != nil {
		return models.ChatMessage{}, err
	}

	if first {
		c.titles.Add(1)
		go c.generateTitle(sessionID, text)
	}

	reply, err := c.backend.StreamChat(ctx, history, text, onChunk)
	if err != nil {
		return models.ChatMessage{}, transportError("chat", err)
	}

	msg := models.ChatMessage{Role: models.RoleModel, Text: reply}
	if _, err := c.repo.AppendMessage(sessionID, msg); err != nil {
		return models.ChatMessage{}, err
	}
	return msg, nil
}

// generateTitle outlives the request that triggered it
func (c *Chat) generateTitle(sessionID, firstMessage string) {
	defer c.titles.Done()

	ctx, cancel := context.WithTimeout(context.Background(), titleTimeout)
	defer cancel()

	title, err := c.backend.ChatTitle(ctx, firstMessage)
	if err != nil || strings.TrimSpace(title) == "" {
		c.logger.Warn("Chat title generation failed", zap.String("session_id", sessionID), zap.Error(err))
		title = models.FallbackChatTitle(firstMessage)
	}

	if _, err := c.repo.RenameSession(sessionID, title); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			c.logger.Debug("Session deleted before its title arrived", zap.String("session_id", sessionID))
			return
		}
		c.logger.Error("Failed to rename chat session", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	c.logger.Info("Chat session titled", zap.String("session_id", sessionID), zap.String("title", title))
}

// Wait blocks until pending title generations have finished
func (c *Chat) Wait() {
	c.titles.Wait()
}
