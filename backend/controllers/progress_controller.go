package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"progresstracker/backend/config"
	"progresstracker/backend/models"
	"progresstracker/backend/repository"
	"progresstracker/backend/utils"
)

const dateLayout = "2006-01-02"

type ProgressController struct {
	DB        *gorm.DB
	Cfg       *config.Config
	Hierarchy repository.HierarchyStore
}

func NewProgressController(db *gorm.DB, cfg *config.Config, hierarchy repository.HierarchyStore) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg, Hierarchy: hierarchy}
}

type progressEntryInput struct {
	ItemType         models.ItemType `json:"item_type"`
	ItemID           uint            `json:"item_id"`
	Date             string          `json:"date"`
	Status           models.Status   `json:"status"`
	TimeSpentMinutes *int            `json:"time_spent_minutes"`
	Notes            string          `json:"notes"`
}

func (input *progressEntryInput) validate() string {
	if !input.ItemType.Valid() {
		return "item_type must be SUBJECT, TOPIC or SUBTOPIC"
	}
	if input.ItemID == 0 {
		return "item_id is required"
	}
	if _, err := time.Parse(dateLayout, input.Date); err != nil {
		return "date must be formatted YYYY-MM-DD"
	}
	if !input.Status.Valid() {
		return "status must be NOT_STARTED, IN_PROGRESS or COMPLETED"
	}
	if input.TimeSpentMinutes != nil && *input.TimeSpentMinutes < 0 {
		return "time_spent_minutes cannot be negative"
	}
	return ""
}

// CreateProgressEntry godoc
// @Summary Log progress against a hierarchy item
// @Description One entry per item per date; a second log for the same day is rejected
// @Tags progress
// @Security ApiKeyAuth
// @Router /progress [post]
func (pc *ProgressController) CreateProgressEntry(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input progressEntryInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if msg := input.validate(); msg != "" {
		return utils.BadRequest(c, msg)
	}

	syllabus, err := syllabusForItem(pc.Hierarchy, input.ItemType, input.ItemID)
	if err != nil {
		return utils.NotFound(c, "Item not found")
	}
	if syllabus.UserID != userID {
		return utils.Forbidden(c, "You don't have permission to track progress for this item")
	}

	var existing models.ProgressEntry
	err = pc.DB.Where("user_id = ? AND item_type = ? AND item_id = ? AND date = ?",
		userID, input.ItemType, input.ItemID, input.Date).First(&existing).Error
	if err == nil {
		return utils.BadRequest(c, "A progress entry already exists for this item on this date")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.InternalServerError(c, "Could not check for existing entries")
	}

	entry := models.ProgressEntry{
		UserID:           userID,
		ItemType:         input.ItemType,
		ItemID:           input.ItemID,
		Date:             input.Date,
		Status:           input.Status,
		TimeSpentMinutes: input.TimeSpentMinutes,
		Notes:            input.Notes,
	}
	if err := pc.DB.Create(&entry).Error; err != nil {
		return utils.InternalServerError(c, "Could not create progress entry")
	}

	return utils.Created(c, pc.entryResponse(&entry))
}

// GetProgressEntry godoc
// @Summary Get one progress entry
// @Tags progress
// @Security ApiKeyAuth
// @Router /progress/{id} [get]
func (pc *ProgressController) GetProgressEntry(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid entry ID")
	}

	var entry models.ProgressEntry
	if err := pc.DB.First(&entry, id).Error; err != nil {
		return utils.NotFound(c, "Progress entry not found")
	}
	if entry.UserID != userID {
		return utils.Forbidden(c, "You don't have permission to access this progress entry")
	}

	return utils.Success(c, fiber.StatusOK, pc.entryResponse(&entry))
}

// UpdateProgressEntry godoc
// @Summary Update a progress entry
// @Tags progress
// @Security ApiKeyAuth
// @Router /progress/{id} [put]
func (pc *ProgressController) UpdateProgressEntry(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid entry ID")
	}

	var entry models.ProgressEntry
	if err := pc.DB.First(&entry, id).Error; err != nil {
		return utils.NotFound(c, "Progress entry not found")
	}
	if entry.UserID != userID {
		return utils.Forbidden(c, "You don't have permission to update this progress entry")
	}

	var input progressEntryInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if msg := input.validate(); msg != "" {
		return utils.BadRequest(c, msg)
	}

	// Moving the entry to another item re-runs the ownership check.
	if entry.ItemType != input.ItemType || entry.ItemID != input.ItemID {
		syllabus, err := syllabusForItem(pc.Hierarchy, input.ItemType, input.ItemID)
		if err != nil {
			return utils.NotFound(c, "Item not found")
		}
		if syllabus.UserID != userID {
			return utils.Forbidden(c, "You don't have permission to track progress for this item")
		}
	}

	// Moving to another date (or item) must not collide with an
	// existing entry.
	var existing models.ProgressEntry
	err = pc.DB.Where("user_id = ? AND item_type = ? AND item_id = ? AND date = ?",
		userID, input.ItemType, input.ItemID, input.Date).First(&existing).Error
	if err == nil && existing.ID != entry.ID {
		return utils.BadRequest(c, "A progress entry already exists for this item on this date")
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.InternalServerError(c, "Could not check for existing entries")
	}

	entry.ItemType = input.ItemType
	entry.ItemID = input.ItemID
	entry.Date = input.Date
	entry.Status = input.Status
	entry.TimeSpentMinutes = input.TimeSpentMinutes
	entry.Notes = input.Notes
	if err := pc.DB.Save(&entry).Error; err != nil {
		return utils.InternalServerError(c, "Could not update progress entry")
	}

	return utils.Success(c, fiber.StatusOK, pc.entryResponse(&entry))
}

// DeleteProgressEntry godoc
// @Summary Delete a progress entry
// @Tags progress
// @Security ApiKeyAuth
// @Router /progress/{id} [delete]
func (pc *ProgressController) DeleteProgressEntry(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid entry ID")
	}

	var entry models.ProgressEntry
	if err := pc.DB.First(&entry, id).Error; err != nil {
		return utils.NotFound(c, "Progress entry not found")
	}
	if entry.UserID != userID {
		return utils.Forbidden(c, "You don't have permission to delete this progress entry")
	}

	if err := pc.DB.Delete(&entry).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete progress entry")
	}

	return utils.NoContent(c)
}

// GetUserProgressEntries godoc
// @Summary List the caller's progress entries
// @Tags progress
// @Security ApiKeyAuth
// @Router /progress [get]
func (pc *ProgressController) GetUserProgressEntries(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	page, pageSize := paging(c)

	var total int64
	pc.DB.Model(&models.ProgressEntry{}).Where("user_id = ?", userID).Count(&total)

	var entries []models.ProgressEntry
	if err := pc.DB.Where("user_id = ?", userID).
		Order("date DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch progress entries")
	}

	result := make([]fiber.Map, 0, len(entries))
	for i := range entries {
		result = append(result, pc.entryResponse(&entries[i]))
	}

	return utils.Paginate(c, result, total, page, pageSize)
}

// GetProgressEntriesByDateRange godoc
// @Summary List the caller's entries between two dates (inclusive)
// @Tags progress
// @Security ApiKeyAuth
// @Router /progress/date-range [get]
func (pc *ProgressController) GetProgressEntriesByDateRange(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	startDate, endDate, msg := dateRangeParams(c)
	if msg != "" {
		return utils.BadRequest(c, msg)
	}

	var entries []models.ProgressEntry
	if err := pc.DB.Where("user_id = ? AND date BETWEEN ? AND ?", userID, startDate, endDate).
		Order("date").
		Find(&entries).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch progress entries")
	}

	result := make([]fiber.Map, 0, len(entries))
	for i := range entries {
		result = append(result, pc.entryResponse(&entries[i]))
	}

	return utils.Success(c, fiber.StatusOK, result)
}

func (pc *ProgressController) entryResponse(entry *models.ProgressEntry) fiber.Map {
	return fiber.Map{
		"id":                 entry.ID,
		"user_id":            entry.UserID,
		"item_type":          entry.ItemType,
		"item_id":            entry.ItemID,
		"item_title":         pc.itemTitle(entry.ItemType, entry.ItemID),
		"date":               entry.Date,
		"status":             entry.Status,
		"time_spent_minutes": entry.TimeSpentMinutes,
		"notes":              entry.Notes,
	}
}

// itemTitle is best-effort; an entry orphaned by a concurrent delete
// just reports an empty title.
func (pc *ProgressController) itemTitle(itemType models.ItemType, itemID uint) string {
	switch itemType {
	case models.ItemTypeSubject:
		if subject, err := pc.Hierarchy.SubjectByID(itemID); err == nil {
			return subject.Title
		}
	case models.ItemTypeTopic:
		if topic, err := pc.Hierarchy.TopicByID(itemID); err == nil {
			return topic.Title
		}
	case models.ItemTypeSubTopic:
		if subTopic, err := pc.Hierarchy.SubTopicByID(itemID); err == nil {
			return subTopic.Title
		}
	}
	return ""
}

// dateRangeParams parses start_date/end_date query params, defaulting
// to the last month.
func dateRangeParams(c *fiber.Ctx) (startDate, endDate, errMsg string) {
	now := time.Now()
	startDate = c.Query("start_date", now.AddDate(0, -1, 0).Format(dateLayout))
	endDate = c.Query("end_date", now.Format(dateLayout))

	if _, err := time.Parse(dateLayout, startDate); err != nil {
		return "", "", "Invalid start_date format. Use YYYY-MM-DD"
	}
	if _, err := time.Parse(dateLayout, endDate); err != nil {
		return "", "", "Invalid end_date format. Use YYYY-MM-DD"
	}
	if endDate < startDate {
		return "", "", "end_date must not be before start_date"
	}
	return startDate, endDate, ""
}
