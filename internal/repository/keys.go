package repository

import "errors"

// Storage keys. Each holds one JSON array.
const (
	LogbookKey        = "smartAgricultureFarmLogbook"
	ChatSessionsKey   = "smartAgricultureChatSessions"
	CommunityPostsKey = "smartAgricultureCommunityPosts"

	// Superseded by LogbookKey and ChatSessionsKey; read once by the migrator.
	LegacyGardenKey      = "smartAgricultureMyGarden"
	LegacyDiagnosisKey   = "smartAgricultureDiagnosisHistory"
	LegacyChatHistoryKey = "smartAgricultureChatHistory"
)

var (
	ErrEntryNotFound      = errors.New("logbook entry not found")
	ErrDuplicateEntry     = errors.New("logbook entry already exists")
	ErrFollowUpNotAllowed = errors.New("follow-ups can only be added to diagnosis entries")
	ErrSessionNotFound    = errors.New("chat session not found")
	ErrPostNotFound       = errors.New("community post not found")
	ErrEmptyText          = errors.New("text must not be empty")
)
