package models

import "time"

// Comment is a reply under a community post
type Comment struct {
	ID         string    `json:"id"`
	AuthorName string    `json:"authorName"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CommunityPost is a post in the community feed. Likes only increase
// and comments only append.
type CommunityPost struct {
	ID           string    `json:"id"`
	AuthorName   string    `json:"authorName"`
	Text         string    `json:"text"`
	ImageDataURL string    `json:"imageDataUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	Likes        int       `json:"likes"`
	Comments     []Comment `json:"comments"`
}

// Clone copies the comment list
func (p CommunityPost) Clone() CommunityPost {
	c := p
	c.Comments = append([]Comment(nil), p.Comments...)
	return c
}
