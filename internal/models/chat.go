package models

import (
	"time"
	"unicode/utf8"
)

// ChatRole is the author of a chat message
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// PlaceholderChatTitle is the title of a session until one is derived
// from its first user message
const PlaceholderChatTitle = "New chat"

// ChatMessage is one turn of a conversation
type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

// ChatSession is an independent conversation thread
type ChatSession struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	History   []ChatMessage `json:"history"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Clone copies the history so the copy can be appended to safely
func (s ChatSession) Clone() ChatSession {
	c := s
	c.History = append([]ChatMessage(nil), s.History...)
	return c
}

// UserMessageCount counts the messages written by the user
func (s ChatSession) UserMessageCount() int {
	n := 0
	for _, m := range s.History {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}

// FallbackChatTitle derives a title from the first 30 characters of the
// message, for when no title could be generated
func FallbackChatTitle(firstMessage string) string {
	const limit = 30
	if utf8.RuneCountInString(firstMessage) <= limit {
		return firstMessage + "..."
	}
	return string([]rune(firstMessage)[:limit]) + "..."
}
