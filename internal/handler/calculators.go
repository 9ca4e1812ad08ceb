package handler

import (
	"net/http"

	"farm-assistant/internal/models"
	"farm-assistant/internal/service"

	"github.com/gin-gonic/gin"
)

// SprayCalculator returns the product and mix needed for an application
func (h *Handler) SprayCalculator(c *gin.Context) {
	var in models.SprayInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := service.SprayMix(in)
	if err != nil {
		h.writeError(c, "spray calculator", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// IrrigationCalculator returns the water volume for an irrigation depth
func (h *Handler) IrrigationCalculator(c *gin.Context) {
	var in models.IrrigationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := service.IrrigationVolume(in)
	if err != nil {
		h.writeError(c, "irrigation calculator", err)
		return
	}

	c.JSON(http.StatusOK, result)
}
