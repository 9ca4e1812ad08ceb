package repository

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"farm-assistant/internal/kv"
	"farm-assistant/internal/models"

	"go.uber.org/zap"
)

// NameGenerator produces the pseudonym shown as a post or comment author
type NameGenerator func() string

var (
	pseudonymAdjectives = []string{"Gardener", "Farmer", "Enthusiast", "Friend", "Grower"}
	pseudonymNouns      = []string{"of Flowers", "of Plants", "of Nature", "of Green", "of the Village"}
)

// RandomPseudonym picks an adjective and a noun at random
func RandomPseudonym() string {
	return pseudonymAdjectives[rand.Intn(len(pseudonymAdjectives))] + " " +
		pseudonymNouns[rand.Intn(len(pseudonymNouns))]
}

// CommunityRepository owns the community feed
type CommunityRepository struct {
	mu     sync.Mutex
	store  *kv.Adapter
	logger *zap.Logger
	posts  []models.CommunityPost
	names  NameGenerator
	now    func() time.Time
}

// NewCommunityRepository loads the stored posts. A nil names uses
// RandomPseudonym.
func NewCommunityRepository(store *kv.Adapter, names NameGenerator, logger *zap.Logger) (*CommunityRepository, error) {
	if names == nil {
		names = RandomPseudonym
	}

	var posts []models.CommunityPost
	found, err := store.Get(CommunityPostsKey, &posts)
	if err != nil {
		return nil, fmt.Errorf("failed to load community posts: %w", err)
	}
	if !found {
		posts = nil
	}
	sortPosts(posts)

	logger.Info("Community repository initialized", zap.Int("posts", len(posts)))

	return &CommunityRepository{
		store:  store,
		logger: logger,
		posts:  posts,
		names:  names,
		now:    time.Now,
	}, nil
}

func sortPosts(posts []models.CommunityPost) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

// SeedIfEmpty installs the example posts when nothing has ever been
// stored. It reports whether it seeded.
func (r *CommunityRepository) SeedIfEmpty() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	exists, err := r.store.Has(CommunityPostsKey)
	if err != nil {
		return false, fmt.Errorf("failed to check community posts: %w", err)
	}
	if exists {
		return false, nil
	}

	now := r.now()
	seed := []models.CommunityPost{
		{
			ID:         "1",
			AuthorName: "Gardening Enthusiast",
			Text:       "Hi everyone! I just bought a fiddle-leaf fig. Any tips for looking after it?",
			CreatedAt:  now.Add(-2 * time.Hour),
			Likes:      5,
			Comments: []models.Comment{{
				ID:         "c1",
				AuthorName: "Friend of Nature",
				Text:       "Give it plenty of indirect light and water it once a week!",
				CreatedAt:  now.Add(-time.Hour),
			}},
		},
		{
			ID:           "2",
			AuthorName:   "Green Farmer",
			Text:         "Look at these tomatoes! This year's harvest turned out great.",
			ImageDataURL: "https://images.unsplash.com/photo-1598512752271-33f913a5af13?q=80&w=2070&auto=format&fit=crop",
			CreatedAt:    now.Add(-24 * time.Hour),
			Likes:        12,
			Comments:     []models.Comment{},
		},
	}

	if err := r.persist(seed); err != nil {
		return false, err
	}
	r.logger.Info("Seeded community feed", zap.Int("posts", len(seed)))
	return true, nil
}

// List returns every post, newest first
func (r *CommunityRepository) List() []models.CommunityPost {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.CommunityPost, len(r.posts))
	for i, p := range r.posts {
		out[i] = p.Clone()
	}
	return out
}

// Get returns the post with the given id
func (r *CommunityRepository) Get(id string) (models.CommunityPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return models.CommunityPost{}, fmt.Errorf("%w: %s", ErrPostNotFound, id)
	}
	return r.posts[i].Clone(), nil
}

// CreatePost prepends a post under a fresh pseudonym
func (r *CommunityRepository) CreatePost(text, imageDataURL string) (models.CommunityPost, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.CommunityPost{}, ErrEmptyText
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	post := models.CommunityPost{
		ID:           models.NewID(),
		AuthorName:   r.names(),
		Text:         text,
		ImageDataURL: imageDataURL,
		CreatedAt:    r.now(),
		Comments:     []models.Comment{},
	}

	next := make([]models.CommunityPost, 0, len(r.posts)+1)
	next = append(next, post)
	next = append(next, r.posts...)

	if err := r.persist(next); err != nil {
		return models.CommunityPost{}, err
	}

	r.logger.Info("Community post created", zap.String("id", post.ID))
	return post.Clone(), nil
}

// Like adds one like. Repeated calls all count.
func (r *CommunityRepository) Like(postID string) (models.CommunityPost, error) {
	return r.update(postID, func(p *models.CommunityPost) {
		p.Likes++
	})
}

// AddComment appends a comment under a fresh pseudonym
func (r *CommunityRepository) AddComment(postID, text string) (models.CommunityPost, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.CommunityPost{}, ErrEmptyText
	}
	return r.update(postID, func(p *models.CommunityPost) {
		p.Comments = append(p.Comments, models.Comment{
			ID:         models.NewID(),
			AuthorName: r.names(),
			Text:       text,
			CreatedAt:  r.now(),
		})
	})
}

func (r *CommunityRepository) update(id string, merge func(*models.CommunityPost)) (models.CommunityPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.CommunityPost{}, fmt.Errorf("%w: %s", ErrPostNotFound, id)
	}

	next := make([]models.CommunityPost, len(r.posts))
	copy(next, r.posts)
	updated := next[i].Clone()
	merge(&updated)
	next[i] = updated

	if err := r.persist(next); err != nil {
		return models.CommunityPost{}, err
	}
	return updated.Clone(), nil
}

func (r *CommunityRepository) persist(next []models.CommunityPost) error {
	if next == nil {
		next = []models.CommunityPost{}
	}
	if err := r.store.Set(CommunityPostsKey, next); err != nil {
		return fmt.Errorf("failed to save community posts: %w", err)
	}
	r.posts = next
	return nil
}

func (r *CommunityRepository) indexOf(id string) int {
	for i, p := range r.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}
