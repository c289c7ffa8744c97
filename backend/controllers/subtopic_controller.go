package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"progresstracker/backend/config"
	"progresstracker/backend/models"
	"progresstracker/backend/repository"
	"progresstracker/backend/services"
	"progresstracker/backend/utils"
)

type SubTopicController struct {
	DB         *gorm.DB
	Cfg        *config.Config
	Hierarchy  repository.HierarchyStore
	Completion *services.CompletionService
}

func NewSubTopicController(db *gorm.DB, cfg *config.Config, hierarchy repository.HierarchyStore, completion *services.CompletionService) *SubTopicController {
	return &SubTopicController{DB: db, Cfg: cfg, Hierarchy: hierarchy, Completion: completion}
}

// CreateSubTopic godoc
// @Summary Add a subtopic to a topic
// @Tags subtopics
// @Security ApiKeyAuth
// @Router /subtopics/topic/{topicId} [post]
func (stc *SubTopicController) CreateSubTopic(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, stc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	topicID, err := paramID(c, "topicId")
	if err != nil {
		return utils.BadRequest(c, "Invalid topic ID")
	}

	syllabus, err := syllabusForItem(stc.Hierarchy, models.ItemTypeTopic, topicID)
	if err != nil {
		return utils.NotFound(c, "Topic not found")
	}
	if syllabus.UserID != userID {
		return utils.Forbidden(c, "You don't have permission to modify this topic")
	}

	var input nodeInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	subTopic := models.SubTopic{
		TopicID:              topicID,
		Title:                input.Title,
		Description:          input.Description,
		DisplayOrder:         nextDisplayOrder(stc.DB, &models.SubTopic{}, "topic_id", topicID, input.DisplayOrder),
		TargetCompletionDate: input.TargetCompletionDate,
	}
	if err := stc.DB.Create(&subTopic).Error; err != nil {
		return utils.InternalServerError(c, "Could not create subtopic")
	}

	return utils.Created(c, stc.subTopicResponse(&subTopic))
}

// GetSubTopic godoc
// @Summary Get a subtopic by id
// @Tags subtopics
// @Security ApiKeyAuth
// @Router /subtopics/{id} [get]
func (stc *SubTopicController) GetSubTopic(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, stc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid subtopic ID")
	}

	subTopic, err := stc.Hierarchy.SubTopicByID(id)
	if err != nil {
		return utils.NotFound(c, "Subtopic not found")
	}

	syllabus, err := syllabusForItem(stc.Hierarchy, models.ItemTypeSubTopic, id)
	if err != nil {
		return utils.NotFound(c, "Subtopic not found")
	}
	if syllabus.UserID != userID && !syllabus.IsPublic {
		return utils.Forbidden(c, "You don't have permission to access this subtopic")
	}

	return utils.Success(c, fiber.StatusOK, stc.subTopicResponse(subTopic))
}

// GetSubTopicsByTopic godoc
// @Summary List a topic's subtopics in display order
// @Tags subtopics
// @Security ApiKeyAuth
// @Router /subtopics/topic/{topicId} [get]
func (stc *SubTopicController) GetSubTopicsByTopic(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, stc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	topicID, err := paramID(c, "topicId")
	if err != nil {
		return utils.BadRequest(c, "Invalid topic ID")
	}

	syllabus, err := syllabusForItem(stc.Hierarchy, models.ItemTypeTopic, topicID)
	if err != nil {
		return utils.NotFound(c, "Topic not found")
	}
	if syllabus.UserID != userID && !syllabus.IsPublic {
		return utils.Forbidden(c, "You don't have permission to access this topic")
	}

	subTopics, err := stc.Hierarchy.SubTopicsByTopic(topicID)
	if err != nil {
		return utils.InternalServerError(c, "Could not fetch subtopics")
	}

	result := make([]fiber.Map, 0, len(subTopics))
	for i := range subTopics {
		result = append(result, stc.subTopicResponse(&subTopics[i]))
	}

	return utils.Success(c, fiber.StatusOK, result)
}

// UpdateSubTopic godoc
// @Summary Update a subtopic
// @Tags subtopics
// @Security ApiKeyAuth
// @Router /subtopics/{id} [put]
func (stc *SubTopicController) UpdateSubTopic(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, stc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid subtopic ID")
	}

	var subTopic models.SubTopic
	if err := stc.DB.First(&subTopic, id).Error; err != nil {
		return utils.NotFound(c, "Subtopic not found")
	}

	syllabus, err := syllabusForItem(stc.Hierarchy, models.ItemTypeSubTopic, id)
	if err != nil {
		return utils.NotFound(c, "Subtopic not found")
	}
	if syllabus.UserID != userID {
		return utils.Forbidden(c, "You don't have permission to update this subtopic")
	}

	var input nodeInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	subTopic.Title = input.Title
	subTopic.Description = input.Description
	subTopic.TargetCompletionDate = input.TargetCompletionDate
	if input.DisplayOrder != nil {
		subTopic.DisplayOrder = *input.DisplayOrder
	}
	if err := stc.DB.Save(&subTopic).Error; err != nil {
		return utils.InternalServerError(c, "Could not update subtopic")
	}

	return utils.Success(c, fiber.StatusOK, stc.subTopicResponse(&subTopic))
}

// DeleteSubTopic godoc
// @Summary Delete a subtopic
// @Tags subtopics
// @Security ApiKeyAuth
// @Router /subtopics/{id} [delete]
func (stc *SubTopicController) DeleteSubTopic(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, stc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid subtopic ID")
	}

	var subTopic models.SubTopic
	if err := stc.DB.First(&subTopic, id).Error; err != nil {
		return utils.NotFound(c, "Subtopic not found")
	}

	syllabus, err := syllabusForItem(stc.Hierarchy, models.ItemTypeSubTopic, id)
	if err != nil {
		return utils.NotFound(c, "Subtopic not found")
	}
	if syllabus.UserID != userID {
		return utils.Forbidden(c, "You don't have permission to delete this subtopic")
	}

	err = stc.DB.Transaction(func(tx *gorm.DB) error {
		if err := deleteItemOwnedRows(tx, models.ItemTypeSubTopic, subTopic.ID); err != nil {
			return err
		}
		return tx.Delete(&subTopic).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not delete subtopic")
	}

	return utils.NoContent(c)
}

// ReorderSubTopics godoc
// @Summary Reorder a topic's subtopics
// @Tags subtopics
// @Security ApiKeyAuth
// @Router /subtopics/topic/{topicId}/reorder [put]
func (stc *SubTopicController) ReorderSubTopics(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, stc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	topicID, err := paramID(c, "topicId")
	if err != nil {
		return utils.BadRequest(c, "Invalid topic ID")
	}

	syllabus, err := syllabusForItem(stc.Hierarchy, models.ItemTypeTopic, topicID)
	if err != nil {
		return utils.NotFound(c, "Topic not found")
	}
	if syllabus.UserID != userID {
		return utils.Forbidden(c, "You don't have permission to modify this topic")
	}

	var ids []uint
	if err := c.BodyParser(&ids); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if err := applyOrder(stc.DB, &models.SubTopic{}, "topic_id", topicID, ids); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	return utils.NoContent(c)
}

func (stc *SubTopicController) subTopicResponse(subTopic *models.SubTopic) fiber.Map {
	completion, err := stc.Completion.SubTopicCompletion(subTopic.ID)
	if err != nil {
		completion = 0.0
	}

	return fiber.Map{
		"id":                     subTopic.ID,
		"topic_id":               subTopic.TopicID,
		"title":                  subTopic.Title,
		"description":            subTopic.Description,
		"display_order":          subTopic.DisplayOrder,
		"target_completion_date": subTopic.TargetCompletionDate,
		"completion_percentage":  completion,
	}
}
