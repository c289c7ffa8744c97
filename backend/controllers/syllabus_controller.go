package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"progresstracker/backend/config"
	"progresstracker/backend/models"
	"progresstracker/backend/repository"
	"progresstracker/backend/services"
	"progresstracker/backend/utils"
)

type SyllabusController struct {
	DB         *gorm.DB
	Cfg        *config.Config
	Completion *services.CompletionService
}

func NewSyllabusController(db *gorm.DB, cfg *config.Config, completion *services.CompletionService) *SyllabusController {
	return &SyllabusController{DB: db, Cfg: cfg, Completion: completion}
}

type syllabusInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

// CreateSyllabus godoc
// @Summary Create a syllabus
// @Tags syllabi
// @Security ApiKeyAuth
// @Router /syllabi [post]
func (sc *SyllabusController) CreateSyllabus(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input syllabusInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	syllabus := models.Syllabus{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		IsPublic:    input.IsPublic,
	}
	if err := sc.DB.Create(&syllabus).Error; err != nil {
		return utils.InternalServerError(c, "Could not create syllabus")
	}

	return utils.Created(c, sc.syllabusResponse(&syllabus))
}

// GetSyllabus godoc
// @Summary Get a syllabus by id
// @Tags syllabi
// @Security ApiKeyAuth
// @Router /syllabi/{id} [get]
func (sc *SyllabusController) GetSyllabus(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid syllabus ID")
	}

	var syllabus models.Syllabus
	if err := sc.DB.First(&syllabus, id).Error; err != nil {
		return utils.NotFound(c, "Syllabus not found")
	}

	if syllabus.UserID != userID && !syllabus.IsPublic {
		return utils.Forbidden(c, "You don't have permission to access this syllabus")
	}

	return utils.Success(c, fiber.StatusOK, sc.syllabusResponse(&syllabus))
}

// UpdateSyllabus godoc
// @Summary Update a syllabus
// @Tags syllabi
// @Security ApiKeyAuth
// @Router /syllabi/{id} [put]
func (sc *SyllabusController) UpdateSyllabus(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid syllabus ID")
	}

	var syllabus models.Syllabus
	if err := sc.DB.First(&syllabus, id).Error; err != nil {
		return utils.NotFound(c, "Syllabus not found")
	}
	if syllabus.UserID != userID {
		return utils.Forbidden(c, "You don't have permission to update this syllabus")
	}

	var input syllabusInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	syllabus.Title = input.Title
	syllabus.Description = input.Description
	syllabus.IsPublic = input.IsPublic
	if err := sc.DB.Save(&syllabus).Error; err != nil {
		return utils.InternalServerError(c, "Could not update syllabus")
	}

	return utils.Success(c, fiber.StatusOK, sc.syllabusResponse(&syllabus))
}

// DeleteSyllabus godoc
// @Summary Delete a syllabus and everything under it
// @Tags syllabi
// @Security ApiKeyAuth
// @Router /syllabi/{id} [delete]
func (sc *SyllabusController) DeleteSyllabus(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid syllabus ID")
	}

	var syllabus models.Syllabus
	if err := sc.DB.First(&syllabus, id).Error; err != nil {
		return utils.NotFound(c, "Syllabus not found")
	}
	if syllabus.UserID != userID {
		return utils.Forbidden(c, "You don't have permission to delete this syllabus")
	}

	if err := deleteSyllabusCascade(sc.DB, &syllabus); err != nil {
		return utils.InternalServerError(c, "Could not delete syllabus")
	}

	return utils.NoContent(c)
}

// GetUserSyllabi godoc
// @Summary List the caller's syllabi
// @Tags syllabi
// @Security ApiKeyAuth
// @Router /syllabi [get]
func (sc *SyllabusController) GetUserSyllabi(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	page, pageSize := paging(c)

	var total int64
	sc.DB.Model(&models.Syllabus{}).Where("user_id = ?", userID).Count(&total)

	var syllabi []models.Syllabus
	if err := sc.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&syllabi).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch syllabi")
	}

	result := make([]fiber.Map, 0, len(syllabi))
	for i := range syllabi {
		result = append(result, sc.syllabusResponse(&syllabi[i]))
	}

	return utils.Paginate(c, result, total, page, pageSize)
}

// GetPublicSyllabi godoc
// @Summary List public syllabi
// @Tags syllabi
// @Router /syllabi/public [get]
func (sc *SyllabusController) GetPublicSyllabi(c *fiber.Ctx) error {
	page, pageSize := paging(c)

	var total int64
	sc.DB.Model(&models.Syllabus{}).Where("is_public = ?", true).Count(&total)

	var syllabi []models.Syllabus
	if err := sc.DB.Where("is_public = ?", true).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&syllabi).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch syllabi")
	}

	result := make([]fiber.Map, 0, len(syllabi))
	for i := range syllabi {
		result = append(result, sc.syllabusResponse(&syllabi[i]))
	}

	return utils.Paginate(c, result, total, page, pageSize)
}

// GetSyllabusByShareableLink godoc
// @Summary Fetch a syllabus through its shareable link
// @Tags syllabi
// @Router /syllabi/shared/{link} [get]
func (sc *SyllabusController) GetSyllabusByShareableLink(c *fiber.Ctx) error {
	link := c.Params("link")

	var syllabus models.Syllabus
	if err := sc.DB.Where("shareable_link = ?", link).First(&syllabus).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Syllabus not found")
		}
		return utils.InternalServerError(c, "Could not fetch syllabus")
	}

	return utils.Success(c, fiber.StatusOK, sc.syllabusResponse(&syllabus))
}

// GenerateShareableLink godoc
// @Summary Create (or rotate) a shareable link
// @Tags syllabi
// @Security ApiKeyAuth
// @Router /syllabi/{id}/share [post]
func (sc *SyllabusController) GenerateShareableLink(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid syllabus ID")
	}

	var syllabus models.Syllabus
	if err := sc.DB.First(&syllabus, id).Error; err != nil {
		return utils.NotFound(c, "Syllabus not found")
	}
	if syllabus.UserID != userID {
		return utils.Forbidden(c, "You don't have permission to share this syllabus")
	}

	link := uuid.NewString()
	syllabus.ShareableLink = &link
	if err := sc.DB.Save(&syllabus).Error; err != nil {
		return utils.InternalServerError(c, "Could not generate shareable link")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"shareable_link": link})
}

// RevokeShareableLink godoc
// @Summary Revoke the shareable link
// @Tags syllabi
// @Security ApiKeyAuth
// @Router /syllabi/{id}/share [delete]
func (sc *SyllabusController) RevokeShareableLink(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid syllabus ID")
	}

	var syllabus models.Syllabus
	if err := sc.DB.First(&syllabus, id).Error; err != nil {
		return utils.NotFound(c, "Syllabus not found")
	}
	if syllabus.UserID != userID {
		return utils.Forbidden(c, "You don't have permission to revoke sharing for this syllabus")
	}

	syllabus.ShareableLink = nil
	if err := sc.DB.Save(&syllabus).Error; err != nil {
		return utils.InternalServerError(c, "Could not revoke shareable link")
	}

	return utils.NoContent(c)
}

func (sc *SyllabusController) syllabusResponse(syllabus *models.Syllabus) fiber.Map {
	completion, err := sc.Completion.SyllabusCompletion(syllabus.ID)
	if err != nil {
		completion = 0.0
	}

	var subjectCount int64
	sc.DB.Model(&models.Subject{}).Where("syllabus_id = ?", syllabus.ID).Count(&subjectCount)

	return fiber.Map{
		"id":                    syllabus.ID,
		"title":                 syllabus.Title,
		"description":           syllabus.Description,
		"is_public":             syllabus.IsPublic,
		"shareable_link":        syllabus.ShareableLink,
		"subject_count":         subjectCount,
		"completion_percentage": completion,
		"created_at":            syllabus.CreatedAt,
		"updated_at":            syllabus.UpdatedAt,
	}
}

// deleteSyllabusCascade removes a syllabus with its subjects, topics,
// subtopics, attached resources and the progress entries that
// referenced any of them.
func deleteSyllabusCascade(db *gorm.DB, syllabus *models.Syllabus) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var subjects []models.Subject
		if err := tx.Where("syllabus_id = ?", syllabus.ID).Find(&subjects).Error; err != nil {
			return err
		}
		store := repository.NewHierarchyStore(tx)
		for i := range subjects {
			if err := deleteSubjectCascade(tx, store, &subjects[i]); err != nil {
				return err
			}
		}
		return tx.Delete(syllabus).Error
	})
}

func deleteSubjectCascade(tx *gorm.DB, store repository.HierarchyStore, subject *models.Subject) error {
	topics, err := store.TopicsBySubject(subject.ID)
	if err != nil {
		return err
	}
	for i := range topics {
		if err := deleteTopicCascade(tx, store, &topics[i]); err != nil {
			return err
		}
	}
	if err := deleteItemOwnedRows(tx, models.ItemTypeSubject, subject.ID); err != nil {
		return err
	}
	return tx.Delete(subject).Error
}

func deleteTopicCascade(tx *gorm.DB, store repository.HierarchyStore, topic *models.Topic) error {
	subTopics, err := store.SubTopicsByTopic(topic.ID)
	if err != nil {
		return err
	}
	for i := range subTopics {
		if err := deleteItemOwnedRows(tx, models.ItemTypeSubTopic, subTopics[i].ID); err != nil {
			return err
		}
		if err := tx.Delete(&subTopics[i]).Error; err != nil {
			return err
		}
	}
	if err := deleteItemOwnedRows(tx, models.ItemTypeTopic, topic.ID); err != nil {
		return err
	}
	return tx.Delete(topic).Error
}

// deleteItemOwnedRows clears resources and progress entries pointing at
// a hierarchy item that is going away.
func deleteItemOwnedRows(tx *gorm.DB, itemType models.ItemType, itemID uint) error {
	if err := tx.Where("item_type = ? AND item_id = ?", itemType, itemID).
		Delete(&models.Resource{}).Error; err != nil {
		return err
	}
	return tx.Where("item_type = ? AND item_id = ?", itemType, itemID).
		Delete(&models.ProgressEntry{}).Error
}
