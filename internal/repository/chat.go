package repository

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"farm-assistant/internal/kv"
	"farm-assistant/internal/models"

	"go.uber.org/zap"
)

// ChatRepository owns the chat sessions and tracks which one is active.
// Every update is applied to the current stored session with the same
// id, so a title change and a message append racing on one session both
// survive.
type ChatRepository struct {
	mu       sync.Mutex
	store    *kv.Adapter
	logger   *zap.Logger
	sessions []models.ChatSession
	activeID string
	now      func() time.Time
}

// NewChatRepository migrates the legacy chat history and loads the sessions
func NewChatRepository(store *kv.Adapter, logger *zap.Logger) (*ChatRepository, error) {
	if _, err := NewMigrator(store, logger).MigrateChat(); err != nil {
		return nil, fmt.Errorf("failed to migrate chat history: %w", err)
	}

	var sessions []models.ChatSession
	found, err := store.Get(ChatSessionsKey, &sessions)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat sessions: %w", err)
	}
	if !found {
		sessions = nil
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})

	r := &ChatRepository{
		store:    store,
		logger:   logger,
		sessions: sessions,
		now:      time.Now,
	}
	if len(sessions) > 0 {
		r.activeID = sessions[0].ID
	}

	logger.Info("Chat repository initialized", zap.Int("sessions", len(sessions)))
	return r, nil
}

// List returns every session, newest first
func (r *ChatRepository) List() []models.ChatSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ChatSession, len(r.sessions))
	for i, s := range r.sessions {
		out[i] = s.Clone()
	}
	return out
}

// Get returns the session with the given id
func (r *ChatRepository) Get(id string) (models.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return models.ChatSession{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return r.sessions[i].Clone(), nil
}

// Active returns the active session, if any
func (r *ChatRepository) Active() (models.ChatSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(r.activeID)
	if i < 0 {
		return models.ChatSession{}, false
	}
	return r.sessions[i].Clone(), true
}

// CreateSession prepends an empty session and makes it active
func (r *ChatRepository) CreateSession() (models.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked()
}

func (r *ChatRepository) createLocked() (models.ChatSession, error) {
	session := models.ChatSession{
		ID:        models.NewID(),
		Title:     models.PlaceholderChatTitle,
		History:   []models.ChatMessage{},
		CreatedAt: r.now(),
	}

	next := make([]models.ChatSession, 0, len(r.sessions)+1)
	next = append(next, session)
	next = append(next, r.sessions...)

	if err := r.persist(next); err != nil {
		return models.ChatSession{}, err
	}
	r.activeID = session.ID

	r.logger.Info("Chat session created", zap.String("id", session.ID))
	return session.Clone(), nil
}

// SelectSession marks a session active
func (r *ChatRepository) SelectSession(id string) (models.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return models.ChatSession{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	r.activeID = id
	return r.sessions[i].Clone(), nil
}

// DeleteSession removes a session and returns the session active
// afterwards. Deleting the active session activates the most recent
// remaining one, or a new empty session when none remain.
func (r *ChatRepository) DeleteSession(id string) (models.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.ChatSession{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	next := make([]models.ChatSession, 0, len(r.sessions)-1)
	next = append(next, r.sessions[:i]...)
	next = append(next, r.sessions[i+1:]...)

	if err := r.persist(next); err != nil {
		return models.ChatSession{}, err
	}
	r.logger.Info("Chat session deleted", zap.String("id", id))

	if r.activeID != id {
		if j := r.indexOf(r.activeID); j >= 0 {
			return r.sessions[j].Clone(), nil
		}
	}
	if len(r.sessions) == 0 {
		return r.createLocked()
	}

	recent := 0
	for j, s := range r.sessions {
		if s.CreatedAt.After(r.sessions[recent].CreatedAt) {
			recent = j
		}
	}
	r.activeID = r.sessions[recent].ID
	return r.sessions[recent].Clone(), nil
}

// AppendMessage adds a message to the end of a session's history
func (r *ChatRepository) AppendMessage(sessionID string, msg models.ChatMessage) (models.ChatSession, error) {
	return r.update(sessionID, func(s *models.ChatSession) {
		s.History = append(s.History, msg)
	})
}

// RenameSession replaces a session's title
func (r *ChatRepository) RenameSession(sessionID, title string) (models.ChatSession, error) {
	return r.update(sessionID, func(s *models.ChatSession) {
		s.Title = title
	})
}

// update applies merge to the stored session with the given id
func (r *ChatRepository) update(id string, merge func(*models.ChatSession)) (models.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.ChatSession{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	next := make([]models.ChatSession, len(r.sessions))
	copy(next, r.sessions)
	updated := next[i].Clone()
	merge(&updated)
	next[i] = updated

	if err := r.persist(next); err != nil {
		return models.ChatSession{}, err
	}
	return updated.Clone(), nil
}

func (r *ChatRepository) persist(next []models.ChatSession) error {
	if next == nil {
		next = []models.ChatSession{}
	}
	if err := r.store.Set(ChatSessionsKey, next); err != nil {
		return fmt.Errorf("failed to save chat sessions: %w", err)
	}
	r.sessions = next
	return nil
}

func (r *ChatRepository) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, s := range r.sessions {
		if s.ID == id {
			return i
		}
	}
	return -1
}
