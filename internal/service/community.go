package service

import (
	"farm-assistant/internal/models"
	"farm-assistant/internal/repository"

	"go.uber.org/zap"
)

// Community is the shared feed of posts
type Community struct {
	repo   *repository.CommunityRepository
	logger *zap.Logger
}

func NewCommunity(repo *repository.CommunityRepository, logger *zap.Logger) *Community {
	return &Community{repo: repo, logger: logger}
}

// Seed installs the example posts on a first run
func (c *Community) Seed() error {
	_, err := c.repo.SeedIfEmpty()
	return err
}

func (c *Community) Posts() []models.CommunityPost {
	return c.repo.List()
}

func (c *Community) Post(id string) (models.CommunityPost, error) {
	return c.repo.Get(id)
}

// CreatePost publishes a post. An attached image must be a data URI.
func (c *Community) CreatePost(text, imageRef string) (models.CommunityPost, error) {
	if imageRef != "" {
		if _, err := models.ParseDataURI(imageRef); err != nil {
			return models.CommunityPost{}, err
		}
	}
	return c.repo.CreatePost(text, imageRef)
}

func (c *Community) Like(id string) (models.CommunityPost, error) {
	return c.repo.Like(id)
}

func (c *Community) Comment(id, text string) (models.CommunityPost, error) {
	return c.repo.AddComment(id, text)
}
