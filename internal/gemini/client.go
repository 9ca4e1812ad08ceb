package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"farm-assistant/internal/models"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// ErrEmptyResponse is returned when a response carries no text
var ErrEmptyResponse = errors.New("empty response from gemini")

// Client wraps the Gemini API client. Requests are never retried; a
// failed call is reported to the caller, who decides whether to try
// again.
type Client struct {
	client      *genai.Client
	logger      *zap.Logger
	visionModel string
	videoModel  string
	chatModel   string
}

// Config for Gemini client
type Config struct {
	APIKey      string
	VisionModel string // identification, diagnosis, forecasts, treatment review
	VideoModel  string
	ChatModel   string // chat and titles
}

// NewClient creates a new Gemini client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	if cfg.VisionModel == "" {
		cfg.VisionModel = "gemini-2.5-flash"
	}
	if cfg.VideoModel == "" {
		cfg.VideoModel = "gemini-2.5-pro"
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gemini-2.5-flash"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	logger.Info("Gemini client initialized",
		zap.String("vision_model", cfg.VisionModel),
		zap.String("video_model", cfg.VideoModel),
		zap.String("chat_model", cfg.ChatModel))

	return &Client{
		client:      client,
		logger:      logger,
		visionModel: cfg.VisionModel,
		videoModel:  cfg.VideoModel,
		chatModel:   cfg.ChatModel,
	}, nil
}

// Close closes the Gemini client
func (c *Client) Close() error {
	return c.client.Close()
}

// jsonModel returns a model configured for structured output
func (c *Client) jsonModel(name string, schema *genai.Schema) *genai.GenerativeModel {
	model := c.client.GenerativeModel(name)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = schema
	model.SetTemperature(0.3)
	return model
}

func blob(media models.InlineData) genai.Blob {
	return genai.Blob{MIMEType: media.MIMEType, Data: media.Data}
}

// IdentifyPlant names the plant in an image. An unidentifiable plant is
// a successful call whose result carries Error.
func (c *Client) IdentifyPlant(ctx context.Context, image models.InlineData) (*models.PlantInfo, error) {
	var result models.PlantInfo
	if err := c.generateJSON(ctx, "identify", c.jsonModel(c.visionModel, plantInfoSchema), &result,
		blob(image), genai.Text(identifyPrompt)); err != nil {
		return nil, err
	}
	return &result, nil
}

// DiagnosePlant lists the diseases, pests and deficiencies in an image
func (c *Client) DiagnosePlant(ctx context.Context, image models.InlineData) (*models.PlantDiseaseInfo, error) {
	var result models.PlantDiseaseInfo
	if err := c.generateJSON(ctx, "diagnose", c.jsonModel(c.visionModel, diagnosisSchema), &result,
		blob(image), genai.Text(diagnosePrompt)); err != nil {
		return nil, err
	}
	return &result, nil
}

// AnalyzeVideo inspects a field video section by section
func (c *Client) AnalyzeVideo(ctx context.Context, video models.InlineData) (*models.VideoAnalysisResult, error) {
	var result models.VideoAnalysisResult
	if err := c.generateJSON(ctx, "video", c.jsonModel(c.videoModel, videoAnalysisSchema), &result,
		blob(video), genai.Text(videoPrompt)); err != nil {
		return nil, err
	}
	return &result, nil
}

// WeatherAlerts forecasts disease risks at a position
func (c *Client) WeatherAlerts(ctx context.Context, pos models.Position) (*models.WeatherAlertsInfo, error) {
	var result models.WeatherAlertsInfo
	if err := c.generateJSON(ctx, "weather", c.jsonModel(c.visionModel, weatherAlertsSchema), &result,
		genai.Text(buildWeatherPrompt(pos))); err != nil {
		return nil, err
	}
	return &result, nil
}

// CropCalendar schedules the season of a crop planted at a position
func (c *Client) CropCalendar(ctx context.Context, crop, plantingDate string, pos models.Position) (*models.CropCalendarResult, error) {
	var result models.CropCalendarResult
	if err := c.generateJSON(ctx, "calendar", c.jsonModel(c.visionModel, cropCalendarSchema), &result,
		genai.Text(buildCalendarPrompt(crop, plantingDate, pos))); err != nil {
		return nil, err
	}
	return &result, nil
}

// EvaluateTreatment compares a plant before and after treatment
func (c *Client) EvaluateTreatment(ctx context.Context, before, after models.InlineData, originalDiagnosis string) (string, error) {
	model := c.client.GenerativeModel(c.visionModel)
	resp, err := model.GenerateContent(ctx, blob(before), genai.Text(buildTreatmentPrompt(originalDiagnosis)), blob(after))
	if err != nil {
		c.logger.Error("Gemini API error", zap.String("operation", "treatment"), zap.Error(err))
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	text, err := responseText(resp)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// ChatTitle summarizes the first message of a chat in a few words. When
// the backend fails the title falls back to the start of the message.
func (c *Client) ChatTitle(ctx context.Context, firstMessage string) (string, error) {
	model := c.client.GenerativeModel(c.chatModel)
	resp, err := model.GenerateContent(ctx, genai.Text(buildTitlePrompt(firstMessage)))
	if err == nil {
		var text string
		text, err = responseText(resp)
		if title := cleanTitle(text); err == nil && title != "" {
			return title, nil
		}
	}

	c.logger.Warn("Falling back to truncated chat title", zap.Error(err))
	return models.FallbackChatTitle(firstMessage), nil
}

// StreamChat replays history and sends message, passing every received
// chunk to onChunk. It returns the complete reply.
func (c *Client) StreamChat(ctx context.Context, history []models.ChatMessage, message string, onChunk func(string)) (string, error) {
	model := c.client.GenerativeModel(c.chatModel)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(ChatSystemInstruction)},
	}

	cs := model.StartChat()
	cs.History = make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		cs.History = append(cs.History, &genai.Content{
			Role:  string(msg.Role),
			Parts: []genai.Part{genai.Text(msg.Text)},
		})
	}

	var reply strings.Builder
	iter := cs.SendMessageStream(ctx, genai.Text(message))
	for {
		resp, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			c.logger.Error("Chat stream failed",
				zap.Int("received_bytes", reply.Len()),
				zap.Error(err))
			return "", fmt.Errorf("gemini stream error: %w", err)
		}

		chunk := candidateText(resp)
		if chunk == "" {
			continue
		}
		reply.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	}

	if reply.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return reply.String(), nil
}

// GetModelInfo returns model information
func (c *Client) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider":     "gemini",
		"vision_model": c.visionModel,
		"video_model":  c.videoModel,
		"chat_model":   c.chatModel,
	}
}

func (c *Client) generateJSON(ctx context.Context, operation string, model *genai.GenerativeModel, dst any, parts ...genai.Part) error {
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		c.logger.Error("Gemini API error", zap.String("operation", operation), zap.Error(err))
		return fmt.Errorf("gemini API error: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		c.logger.Error("Empty response from Gemini", zap.String("operation", operation))
		return err
	}

	clean := cleanJSON(text)
	if err := json.Unmarshal([]byte(clean), dst); err != nil {
		c.logger.Error("Failed to parse JSON response",
			zap.String("operation", operation),
			zap.Error(err),
			zap.String("original_response", text),
			zap.String("cleaned_response", clean))
		return fmt.Errorf("failed to parse gemini response: %w", err)
	}

	c.logger.Debug("Gemini request completed", zap.String("operation", operation))
	return nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	text := candidateText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}
