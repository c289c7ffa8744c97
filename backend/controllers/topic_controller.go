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

type TopicController struct {
	DB         *gorm.DB
	Cfg        *config.Config
	Hierarchy  repository.HierarchyStore
	Completion *services.CompletionService
}

func NewTopicController(db *gorm.DB, cfg *config.Config, hierarchy repository.HierarchyStore, completion *services.CompletionService) *TopicController {
	return &TopicController{DB: db, Cfg: cfg, Hierarchy: hierarchy, Completion: completion}
}

// CreateTopic godoc
// @Summary Add a topic to a subject
// @Tags topics
// @Security ApiKeyAuth
// @Router /topics/subject/{subjectId} [post]
func (tc *TopicController) CreateTopic(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	subjectID, err := paramID(c, "subjectId")
	if err != nil {
		return utils.BadRequest(c, "Invalid subject ID")
	}

	syllabus, err := syllabusForItem(tc.Hierarchy, models.ItemTypeSubject, subjectID)
	if err != nil {
		return utils.NotFound(c, "Subject not found")
	}
	if syllabus.UserID != userID {
		return utils.Forbidden(c, "You don't have permission to modify this subject")
	}

	var input nodeInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	topic := models.Topic{
		SubjectID:            subjectID,
		Title:                input.Title,
		Description:          input.Description,
		DisplayOrder:         nextDisplayOrder(tc.DB, &models.Topic{}, "subject_id", subjectID, input.DisplayOrder),
		TargetCompletionDate: input.TargetCompletionDate,
	}
	if err := tc.DB.Create(&topic).Error; err != nil {
		return utils.InternalServerError(c, "Could not create topic")
	}

	return utils.Created(c, tc.topicResponse(&topic))
}

// GetTopic godoc
// @Summary Get a topic by id
// @Tags topics
// @Security ApiKeyAuth
// @Router /topics/{id} [get]
func (tc *TopicController) GetTopic(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid topic ID")
	}

	topic, err := tc.Hierarchy.TopicByID(id)
	if err != nil {
		return utils.NotFound(c, "Topic not found")
	}

	syllabus, err := syllabusForItem(tc.Hierarchy, models.ItemTypeTopic, id)
	if err != nil {
		return utils.NotFound(c, "Topic not found")
	}
	if syllabus.UserID != userID && !syllabus.IsPublic {
		return utils.Forbidden(c, "You don't have permission to access this topic")
	}

	return utils.Success(c, fiber.StatusOK, tc.topicResponse(topic))
}

// GetTopicsBySubject godoc
// @Summary List a subject's topics in display order
// @Tags topics
// @Security ApiKeyAuth
// @Router /topics/subject/{subjectId} [get]
func (tc *TopicController) GetTopicsBySubject(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	subjectID, err := paramID(c, "subjectId")
	if err != nil {
		return utils.BadRequest(c, "Invalid subject ID")
	}

	syllabus, err := syllabusForItem(tc.Hierarchy, models.ItemTypeSubject, subjectID)
	if err != nil {
		return utils.NotFound(c, "Subject not found")
	}
	if syllabus.UserID != userID && !syllabus.IsPublic {
		return utils.Forbidden(c, "You don't have permission to access this subject")
	}

	topics, err := tc.Hierarchy.TopicsBySubject(subjectID)
	if err != nil {
		return utils.InternalServerError(c, "Could not fetch topics")
	}

	result := make([]fiber.Map, 0, len(topics))
	for i := range topics {
		result = append(result, tc.topicResponse(&topics[i]))
	}

	return utils.Success(c, fiber.StatusOK, result)
}

// UpdateTopic godoc
// @Summary Update a topic
// @Tags topics
// @Security ApiKeyAuth
// @Router /topics/{id} [put]
func (tc *TopicController) UpdateTopic(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid topic ID")
	}

	var topic models.Topic
	if err := tc.DB.First(&topic, id).Error; err != nil {
		return utils.NotFound(c, "Topic not found")
	}

	syllabus, err := syllabusForItem(tc.Hierarchy, models.ItemTypeTopic, id)
	if err != nil {
		return utils.NotFound(c, "Topic not found")
	}
	if syllabus.UserID != userID {
		return utils.Forbidden(c, "You don't have permission to update this topic")
	}

	var input nodeInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	topic.Title = input.Title
	topic.Description = input.Description
	topic.TargetCompletionDate = input.TargetCompletionDate
	if input.DisplayOrder != nil {
		topic.DisplayOrder = *input.DisplayOrder
	}
	if err := tc.DB.Save(&topic).Error; err != nil {
		return utils.InternalServerError(c, "Could not update topic")
	}

	return utils.Success(c, fiber.StatusOK, tc.topicResponse(&topic))
}

// DeleteTopic godoc
// @Summary Delete a topic and its subtopics
// @Tags topics
// @Security ApiKeyAuth
// @Router /topics/{id} [delete]
func (tc *TopicController) DeleteTopic(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid topic ID")
	}

	var topic models.Topic
	if err := tc.DB.First(&topic, id).Error; err != nil {
		return utils.NotFound(c, "Topic not found")
	}

	syllabus, err := syllabusForItem(tc.Hierarchy, models.ItemTypeTopic, id)
	if err != nil {
		return utils.NotFound(c, "Topic not found")
	}
	if syllabus.UserID != userID {
		return utils.Forbidden(c, "You don't have permission to delete this topic")
	}

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		return deleteTopicCascade(tx, repository.NewHierarchyStore(tx), &topic)
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not delete topic")
	}

	return utils.NoContent(c)
}

// ReorderTopics godoc
// @Summary Reorder a subject's topics
// @Tags topics
// @Security ApiKeyAuth
// @Router /topics/subject/{subjectId}/reorder [put]
func (tc *TopicController) ReorderTopics(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, tc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	subjectID, err := paramID(c, "subjectId")
	if err != nil {
		return utils.BadRequest(c, "Invalid subject ID")
	}

	syllabus, err := syllabusForItem(tc.Hierarchy, models.ItemTypeSubject, subjectID)
	if err != nil {
		return utils.NotFound(c, "Subject not found")
	}
	if syllabus.UserID != userID {
		return utils.Forbidden(c, "You don't have permission to modify this subject")
	}

	var ids []uint
	if err := c.BodyParser(&ids); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if err := applyOrder(tc.DB, &models.Topic{}, "subject_id", subjectID, ids); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	return utils.NoContent(c)
}

func (tc *TopicController) topicResponse(topic *models.Topic) fiber.Map {
	completion, err := tc.Completion.TopicCompletion(topic.ID)
	if err != nil {
		completion = 0.0
	}

	var subTopicCount int64
	tc.DB.Model(&models.SubTopic{}).Where("topic_id = ?", topic.ID).Count(&subTopicCount)

	return fiber.Map{
		"id":                     topic.ID,
		"subject_id":             topic.SubjectID,
		"title":                  topic.Title,
		"description":            topic.Description,
		"display_order":          topic.DisplayOrder,
		"target_completion_date": topic.TargetCompletionDate,
		"subtopic_count":         subTopicCount,
		"completion_percentage":  completion,
	}
}
