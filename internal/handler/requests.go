package handler

import (
	"farm-assistant/internal/models"
)

// ImageRequest carries a photo as a data URI
type ImageRequest struct {
	Image string `json:"image" binding:"required"`
}

// VideoRequest carries a field video as a data URI
type VideoRequest struct {
	Video string `json:"video" binding:"required"`
}

// PositionRequest is a client position, or the reason it could not be
// obtained
type PositionRequest struct {
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	LocationError string  `json:"location_error"`
}

// Position returns the requested position or the client's location error
func (r PositionRequest) Position() (models.Position, error) {
	if err := models.ParseLocationError(r.LocationError); err != nil {
		return models.Position{}, err
	}
	pos := models.Position{Latitude: r.Latitude, Longitude: r.Longitude}
	return pos, pos.Validate()
}

type CalendarRequest struct {
	PositionRequest
	Crop         string `json:"crop" binding:"required"`
	PlantingDate string `json:"planting_date" binding:"required"`
}

type ManualLogRequest struct {
	ActionType models.ActionType `json:"action_type" binding:"required"`
	Notes      string            `json:"notes"`
}

type MessageRequest struct {
	Text string `json:"text" binding:"required"`
}

type PostRequest struct {
	Text  string `json:"text" binding:"required"`
	Image string `json:"image"`
}

type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}
