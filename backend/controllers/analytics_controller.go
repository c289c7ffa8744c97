package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"progresstracker/backend/config"
	"progresstracker/backend/models"
	"progresstracker/backend/repository"
	"progresstracker/backend/services"
	"progresstracker/backend/utils"
)

type AnalyticsController struct {
	DB         *gorm.DB
	Cfg        *config.Config
	Completion *services.CompletionService
	Analytics  *services.AnalyticsService
}

func NewAnalyticsController(db *gorm.DB, cfg *config.Config, completion *services.CompletionService, analytics *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{DB: db, Cfg: cfg, Completion: completion, Analytics: analytics}
}

// GetSyllabusCompletionSummary godoc
// @Summary Completion summary for a syllabus
// @Description Overall percentage plus per-subject breakdown with completed-topic counts
// @Tags analytics
// @Security ApiKeyAuth
// @Router /analytics/completion/{syllabusId} [get]
func (ac *AnalyticsController) GetSyllabusCompletionSummary(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	syllabusID, err := paramID(c, "syllabusId")
	if err != nil {
		return utils.BadRequest(c, "Invalid syllabus ID")
	}

	var syllabus models.Syllabus
	if err := ac.DB.First(&syllabus, syllabusID).Error; err != nil {
		return utils.NotFound(c, "Syllabus not found")
	}
	if syllabus.UserID != userID && !syllabus.IsPublic {
		return utils.Forbidden(c, "You don't have permission to access this syllabus")
	}

	summary, err := ac.Completion.SyllabusSummary(syllabusID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.NotFound(c, "Syllabus not found")
		}
		return utils.InternalServerError(c, "Could not compute completion summary")
	}

	return utils.Success(c, fiber.StatusOK, summary)
}

// GetProgressSummary godoc
// @Summary Per-day progress summary over a date range
// @Tags analytics
// @Security ApiKeyAuth
// @Router /analytics/summary [get]
func (ac *AnalyticsController) GetProgressSummary(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	startDate, endDate, msg := dateRangeParams(c)
	if msg != "" {
		return utils.BadRequest(c, msg)
	}

	summary, err := ac.Analytics.ProgressSummary(userID, startDate, endDate)
	if err != nil {
		return utils.InternalServerError(c, "Could not compute progress summary")
	}

	return utils.Success(c, fiber.StatusOK, summary)
}

// GetTimeDistribution godoc
// @Summary Time-spent distribution across subjects
// @Tags analytics
// @Security ApiKeyAuth
// @Router /analytics/time-distribution [get]
func (ac *AnalyticsController) GetTimeDistribution(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	distribution, err := ac.Analytics.TimeDistribution(userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not compute time distribution")
	}

	return utils.Success(c, fiber.StatusOK, distribution)
}

// GetCurrentStreak godoc
// @Summary Current consecutive-day streak
// @Tags analytics
// @Security ApiKeyAuth
// @Router /analytics/streak [get]
func (ac *AnalyticsController) GetCurrentStreak(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	streak, err := ac.Analytics.CurrentStreak(userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not compute streak")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"streak": streak})
}
