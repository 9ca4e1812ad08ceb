package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"farm-assistant/internal/models"

	"go.uber.org/zap"
)

// RateLimiter implements token bucket rate limiting
type RateLimiter struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
	now        func() time.Time
}

// NewRateLimiter creates a limiter allowing requestsPerMinute calls per
// minute, all of which may be spent at once
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 1
	}
	return &RateLimiter{
		tokens:     requestsPerMinute,
		maxTokens:  requestsPerMinute,
		refillRate: time.Minute / time.Duration(requestsPerMinute),
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

// Wait blocks until a token is available or ctx is done
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		wait, ok := rl.take()
		if ok {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// take consumes a token, or reports how long until the next one
func (rl *RateLimiter) take() (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	elapsed := now.Sub(rl.lastRefill)
	if tokensToAdd := int(elapsed / rl.refillRate); tokensToAdd > 0 {
		rl.tokens += tokensToAdd
		if rl.tokens > rl.maxTokens {
			rl.tokens = rl.maxTokens
		}
		rl.lastRefill = rl.lastRefill.Add(time.Duration(tokensToAdd) * rl.refillRate)
	}

	if rl.tokens > 0 {
		if rl.tokens == rl.maxTokens {
			rl.lastRefill = now
		}
		rl.tokens--
		return 0, true
	}
	return rl.refillRate - now.Sub(rl.lastRefill), false
}

// RateLimitedProvider wraps a provider with rate limiting
type RateLimitedProvider struct {
	provider Provider
	limiter  *RateLimiter
	logger   *zap.Logger
}

// NewRateLimitedProvider wraps a provider with rate limiting
func NewRateLimitedProvider(provider Provider, requestsPerMinute int, logger *zap.Logger) *RateLimitedProvider {
	logger.Info("Rate limiting generative backend", zap.Int("requests_per_minute", requestsPerMinute))
	return &RateLimitedProvider{
		provider: provider,
		limiter:  NewRateLimiter(requestsPerMinute),
		logger:   logger,
	}
}

func (p *RateLimitedProvider) wait(ctx context.Context, operation string) error {
	if err := p.limiter.Wait(ctx); err != nil {
		p.logger.Warn("Rate limit wait cancelled", zap.String("operation", operation), zap.Error(err))
		return fmt.Errorf("rate limit wait cancelled: %w", err)
	}
	return nil
}

func (p *RateLimitedProvider) IdentifyPlant(ctx context.Context, image models.InlineData) (*models.PlantInfo, error) {
	if err := p.wait(ctx, "identify"); err != nil {
		return nil, err
	}
	return p.provider.IdentifyPlant(ctx, image)
}

func (p *RateLimitedProvider) DiagnosePlant(ctx context.Context, image models.InlineData) (*models.PlantDiseaseInfo, error) {
	if err := p.wait(ctx, "diagnose"); err != nil {
		return nil, err
	}
	return p.provider.DiagnosePlant(ctx, image)
}

func (p *RateLimitedProvider) AnalyzeVideo(ctx context.Context, video models.InlineData) (*models.VideoAnalysisResult, error) {
	if err := p.wait(ctx, "video"); err != nil {
		return nil, err
	}
	return p.provider.AnalyzeVideo(ctx, video)
}

func (p *RateLimitedProvider) WeatherAlerts(ctx context.Context, pos models.Position) (*models.WeatherAlertsInfo, error) {
	if err := p.wait(ctx, "weather"); err != nil {
		return nil, err
	}
	return p.provider.WeatherAlerts(ctx, pos)
}

func (p *RateLimitedProvider) CropCalendar(ctx context.Context, crop, plantingDate string, pos models.Position) (*models.CropCalendarResult, error) {
	if err := p.wait(ctx, "calendar"); err != nil {
		return nil, err
	}
	return p.provider.CropCalendar(ctx, crop, plantingDate, pos)
}

func (p *RateLimitedProvider) EvaluateTreatment(ctx context.Context, before, after models.InlineData, originalDiagnosis string) (string, error) {
	if err := p.wait(ctx, "treatment"); err != nil {
		return "", err
	}
	return p.provider.EvaluateTreatment(ctx, before, after, originalDiagnosis)
}

func (p *RateLimitedProvider) ChatTitle(ctx context.Context, firstMessage string) (string, error) {
	if err := p.wait(ctx, "title"); err != nil {
		return "", err
	}
	return p.provider.ChatTitle(ctx, firstMessage)
}

func (p *RateLimitedProvider) StreamChat(ctx context.Context, history []models.ChatMessage, message string, onChunk func(string)) (string, error) {
	if err := p.wait(ctx, "chat"); err != nil {
		return "", err
	}
	return p.provider.StreamChat(ctx, history, message, onChunk)
}

func (p *RateLimitedProvider) Close() error {
	return p.provider.Close()
}

func (p *RateLimitedProvider) GetModelInfo() map[string]interface{} {
	info := p.provider.GetModelInfo()
	info["requests_per_minute"] = p.limiter.maxTokens
	return info
}
