// Package llm defines the generative backend contract and wraps
// providers with client-side rate limiting.
package llm

import (
	"context"

	"farm-assistant/internal/models"
)

// Provider is a generative backend. Structured operations return a result
// whose Error field is set when the model could not answer with
// confidence; a returned error means the call itself failed.
type Provider interface {
	IdentifyPlant(ctx context.Context, image models.InlineData) (*models.PlantInfo, error)
	DiagnosePlant(ctx context.Context, image models.InlineData) (*models.PlantDiseaseInfo, error)
	AnalyzeVideo(ctx context.Context, video models.InlineData) (*models.VideoAnalysisResult, error)
	WeatherAlerts(ctx context.Context, pos models.Position) (*models.WeatherAlertsInfo, error)
	CropCalendar(ctx context.Context, crop, plantingDate string, pos models.Position) (*models.CropCalendarResult, error)
	EvaluateTreatment(ctx context.Context, before, after models.InlineData, originalDiagnosis string) (string, error)
	ChatTitle(ctx context.Context, firstMessage string) (string, error)
	StreamChat(ctx context.Context, history []models.ChatMessage, message string, onChunk func(string)) (string, error)
	Close() error
	GetModelInfo() map[string]interface{}
}
