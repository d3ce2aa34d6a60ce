package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"slipgen/models"
	"slipgen/services"
)

// AutomationRunner is the driver entry point the controller calls.
type AutomationRunner interface {
	GenerateLink(ctx context.Context, slipID string) (*services.RunResult, error)
}

type SlipController struct {
	Slips      *models.SlipModel
	Automation AutomationRunner
}

func NewSlipController(slips *models.SlipModel, automation AutomationRunner) *SlipController {
	return &SlipController{
		Slips:      slips,
		Automation: automation,
	}
}

func (c *SlipController) ListSlips(ctx *gin.Context) {
	slips, err := c.Slips.List()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch slips"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": slips})
}

func (c *SlipController) GetSlip(ctx *gin.Context) {
	slip, err := c.Slips.GetByID(ctx.Param("id"))
	if errors.Is(err, models.ErrSlipNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Slip not found"})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch slip"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": slip})
}

func (c *SlipController) CreateSlip(ctx *gin.Context) {
	var slip models.Slip
	if err := ctx.ShouldBindJSON(&slip); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if msg := validateSlip(&slip); msg != "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	created, err := c.Slips.Create(&slip)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create slip"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"data": created})
}

func (c *SlipController) UpdateSlip(ctx *gin.Context) {
	var slip models.Slip
	if err := ctx.ShouldBindJSON(&slip); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if msg := validateSlip(&slip); msg != "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	updated, err := c.Slips.Update(ctx.Param("id"), &slip)
	if errors.Is(err, models.ErrSlipNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Slip not found"})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update slip"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": updated})
}

func (c *SlipController) DeleteSlip(ctx *gin.Context) {
	err := c.Slips.Delete(ctx.Param("id"))
	if errors.Is(err, models.ErrSlipNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Slip not found"})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete slip"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// GenerateLink kicks off one automation run for the slip and blocks
// until the run reaches a terminal state or the outer deadline.
func (c *SlipController) GenerateLink(ctx *gin.Context) {
	result, err := c.Automation.GenerateLink(ctx.Request.Context(), ctx.Param("id"))
	if errors.Is(err, models.ErrSlipNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Slip not found"})
		return
	}
	if errors.Is(err, services.ErrRunInProgress) {
		ctx.JSON(http.StatusConflict, gin.H{"error": "A run is already in progress for this slip"})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if result.Status == models.StatusError {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"status": result.Status,
			"error":  lastLogMessage(result.Logs),
			"logs":   result.Logs,
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  result.Status,
		"url":     result.URL,
		"logs":    result.Logs,
	})
}

func (c *SlipController) FormOptions(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"data": models.FormOptions()})
}

func lastLogMessage(entries []models.LogEntry) string {
	if len(entries) == 0 {
		return "Automation failed"
	}
	return entries[len(entries)-1].Message
}

// validateSlip enforces what the booking form itself will reject:
// required fields and the passport confirmation match.
func validateSlip(s *models.Slip) string {
	required := map[string]string{
		"country":          s.Country,
		"traveled_country": s.TraveledCountry,
		"first_name":       s.FirstName,
		"last_name":        s.LastName,
		"dob":              s.DOB,
		"nationality":      s.Nationality,
		"gender":           s.Gender,
		"marital_status":   s.MaritalStatus,
		"passport":         s.Passport,
		"confirm_passport": s.ConfirmPassport,
		"email":            s.Email,
		"phone":            s.Phone,
		"national_id":      s.NationalID,
	}

	for name, value := range required {
		if value == "" {
			return "Missing required field: " + name
		}
	}

	if s.Passport != s.ConfirmPassport {
		return "Passport numbers do not match"
	}

	return ""
}
