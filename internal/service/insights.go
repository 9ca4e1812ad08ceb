package service

import (
	"context"
	"strings"

	"farm-assistant/internal/llm"
	"farm-assistant/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Insights produces the forecasts and field analyses that are not kept
// in the logbook
type Insights struct {
	backend llm.Provider
	tracker *RequestTracker
	logger  *zap.Logger
}

func NewInsights(backend llm.Provider, tracker *RequestTracker, logger *zap.Logger) *Insights {
	return &Insights{backend: backend, tracker: tracker, logger: logger}
}

// WeatherAlerts forecasts disease risks around pos
func (i *Insights) WeatherAlerts(ctx context.Context, pos models.Position) (*models.WeatherAlertsInfo, error) {
	if err := pos.Validate(); err != nil {
		return nil, err
	}

	result, err := i.backend.WeatherAlerts(ctx, pos)
	if err != nil {
		return nil, transportError("weather alerts", err)
	}
	if result == nil {
		return nil, &DomainError{Op: "weather alerts", Message: "No forecast is available for this location."}
	}
	if result.Error != "" {
		return nil, &DomainError{Op: "weather alerts", Message: result.Error}
	}
	return result, nil
}

// CropCalendar schedules the season of crop planted on plantingDate
func (i *Insights) CropCalendar(ctx context.Context, crop, plantingDate string, pos models.Position) (*models.CropCalendarResult, error) {
	crop = strings.TrimSpace(crop)
	plantingDate = strings.TrimSpace(plantingDate)
	if crop == "" || plantingDate == "" {
		return nil, validationError("crop and planting date are required")
	}
	if err := pos.Validate(); err != nil {
		return nil, err
	}

	result, err := i.backend.CropCalendar(ctx, crop, plantingDate, pos)
	if err != nil {
		return nil, transportError("crop calendar", err)
	}
	if result == nil {
		return nil, &DomainError{Op: "crop calendar", Message: "No calendar could be prepared for this crop."}
	}
	if result.Error != "" {
		return nil, &DomainError{Op: "crop calendar", Message: result.Error}
	}
	return result, nil
}

// AnalyzeVideo inspects a field video. A newer video from the same slot
// supersedes this one.
func (i *Insights) AnalyzeVideo(ctx context.Context, slot, videoRef string) (*models.VideoAnalysisResult, error) {
	video, err := models.ParseDataURI(videoRef)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(video.MIMEType, "video/") {
		return nil, validationError("expected a video, got %s", video.MIMEType)
	}

	tok := i.tracker.Begin(slot + "/video")
	result, err := i.backend.AnalyzeVideo(ctx, video)
	if !i.tracker.Finish(tok) {
		i.logger.Info("Discarding superseded video analysis", zap.String("slot", slot))
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, transportError("video analysis", err)
	}
	if result == nil {
		return nil, &DomainError{Op: "video analysis", Message: "The video could not be analyzed."}
	}
	if result.Error != "" {
		return nil, &DomainError{Op: "video analysis", Message: result.Error}
	}
	return result, nil
}

// FieldBriefing fetches the weather alerts and the crop calendar for one
// field concurrently. Either failing fails the briefing.
func (i *Insights) FieldBriefing(ctx context.Context, pos models.Position, crop, plantingDate string) (*models.FieldBriefing, error) {
	var briefing models.FieldBriefing

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		alerts, err := i.WeatherAlerts(ctx, pos)
		briefing.Alerts = alerts
		return err
	})
	g.Go(func() error {
		calendar, err := i.CropCalendar(ctx, crop, plantingDate, pos)
		briefing.Calendar = calendar
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	i.logger.Info("Field briefing prepared",
		zap.Int("alerts", len(briefing.Alerts.Alerts)),
		zap.Int("weeks", len(briefing.Calendar.Schedule)))
	return &briefing, nil
}
