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

type SubjectController struct {
	DB         *gorm.DB
	Cfg        *config.Config
	Hierarchy  repository.HierarchyStore
	Completion *services.CompletionService
}

func NewSubjectController(db *gorm.DB, cfg *config.Config, hierarchy repository.HierarchyStore, completion *services.CompletionService) *SubjectController {
	return &SubjectController{DB: db, Cfg: cfg, Hierarchy: hierarchy, Completion: completion}
}

type nodeInput struct {
	Title                string `json:"title"`
	Description          string `json:"description"`
	DisplayOrder         *int   `json:"display_order"`
	TargetCompletionDate string `json:"target_completion_date"`
}

// CreateSubject godoc
// @Summary Add a subject to a syllabus
// @Tags subjects
// @Security ApiKeyAuth
// @Router /subjects/syllabus/{syllabusId} [post]
func (sc *SubjectController) CreateSubject(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	syllabusID, err := paramID(c, "syllabusId")
	if err != nil {
		return utils.BadRequest(c, "Invalid syllabus ID")
	}

	syllabus, err := sc.Hierarchy.SyllabusByID(syllabusID)
	if err != nil {
		return utils.NotFound(c, "Syllabus not found")
	}
	if syllabus.UserID != userID {
		return utils.Forbidden(c, "You don't have permission to modify this syllabus")
	}

	var input nodeInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	subject := models.Subject{
		SyllabusID:           syllabusID,
		Title:                input.Title,
		Description:          input.Description,
		DisplayOrder:         nextDisplayOrder(sc.DB, &models.Subject{}, "syllabus_id", syllabusID, input.DisplayOrder),
		TargetCompletionDate: input.TargetCompletionDate,
	}
	if err := sc.DB.Create(&subject).Error; err != nil {
		return utils.InternalServerError(c, "Could not create subject")
	}

	return utils.Created(c, sc.subjectResponse(&subject))
}

// GetSubject godoc
// @Summary Get a subject by id
// @Tags subjects
// @Security ApiKeyAuth
// @Router /subjects/{id} [get]
func (sc *SubjectController) GetSubject(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid subject ID")
	}

	subject, err := sc.Hierarchy.SubjectByID(id)
	if err != nil {
		return utils.NotFound(c, "Subject not found")
	}

	syllabus, err := sc.Hierarchy.SyllabusByID(subject.SyllabusID)
	if err != nil {
		return utils.NotFound(c, "Syllabus not found")
	}
	if syllabus.UserID != userID && !syllabus.IsPublic {
		return utils.Forbidden(c, "You don't have permission to access this subject")
	}

	return utils.Success(c, fiber.StatusOK, sc.subjectResponse(subject))
}

// GetSubjectsBySyllabus godoc
// @Summary List a syllabus's subjects in display order
// @Tags subjects
// @Security ApiKeyAuth
// @Router /subjects/syllabus/{syllabusId} [get]
func (sc *SubjectController) GetSubjectsBySyllabus(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	syllabusID, err := paramID(c, "syllabusId")
	if err != nil {
		return utils.BadRequest(c, "Invalid syllabus ID")
	}

	syllabus, err := sc.Hierarchy.SyllabusByID(syllabusID)
	if err != nil {
		return utils.NotFound(c, "Syllabus not found")
	}
	if syllabus.UserID != userID && !syllabus.IsPublic {
		return utils.Forbidden(c, "You don't have permission to access this syllabus")
	}

	subjects, err := sc.Hierarchy.SubjectsBySyllabus(syllabusID)
	if err != nil {
		return utils.InternalServerError(c, "Could not fetch subjects")
	}

	result := make([]fiber.Map, 0, len(subjects))
	for i := range subjects {
		result = append(result, sc.subjectResponse(&subjects[i]))
	}

	return utils.Success(c, fiber.StatusOK, result)
}

// UpdateSubject godoc
// @Summary Update a subject
// @Tags subjects
// @Security ApiKeyAuth
// @Router /subjects/{id} [put]
func (sc *SubjectController) UpdateSubject(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid subject ID")
	}

	var subject models.Subject
	if err := sc.DB.First(&subject, id).Error; err != nil {
		return utils.NotFound(c, "Subject not found")
	}

	syllabus, err := sc.Hierarchy.SyllabusByID(subject.SyllabusID)
	if err != nil {
		return utils.NotFound(c, "Syllabus not found")
	}
	if syllabus.UserID != userID {
		return utils.Forbidden(c, "You don't have permission to update this subject")
	}

	var input nodeInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}

	subject.Title = input.Title
	subject.Description = input.Description
	subject.TargetCompletionDate = input.TargetCompletionDate
	if input.DisplayOrder != nil {
		subject.DisplayOrder = *input.DisplayOrder
	}
	if err := sc.DB.Save(&subject).Error; err != nil {
		return utils.InternalServerError(c, "Could not update subject")
	}

	return utils.Success(c, fiber.StatusOK, sc.subjectResponse(&subject))
}

// DeleteSubject godoc
// @Summary Delete a subject and everything under it
// @Tags subjects
// @Security ApiKeyAuth
// @Router /subjects/{id} [delete]
func (sc *SubjectController) DeleteSubject(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	id, err := paramID(c, "id")
	if err != nil {
		return utils.BadRequest(c, "Invalid subject ID")
	}

	var subject models.Subject
	if err := sc.DB.First(&subject, id).Error; err != nil {
		return utils.NotFound(c, "Subject not found")
	}

	syllabus, err := sc.Hierarchy.SyllabusByID(subject.SyllabusID)
	if err != nil {
		return utils.NotFound(c, "Syllabus not found")
	}
	if syllabus.UserID != userID {
		return utils.Forbidden(c, "You don't have permission to delete this subject")
	}

	err = sc.DB.Transaction(func(tx *gorm.DB) error {
		return deleteSubjectCascade(tx, repository.NewHierarchyStore(tx), &subject)
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not delete subject")
	}

	return utils.NoContent(c)
}

// ReorderSubjects godoc
// @Summary Reorder a syllabus's subjects
// @Description Body is the full list of subject ids in the new order
// @Tags subjects
// @Security ApiKeyAuth
// @Router /subjects/syllabus/{syllabusId}/reorder [put]
func (sc *SubjectController) ReorderSubjects(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	syllabusID, err := paramID(c, "syllabusId")
	if err != nil {
		return utils.BadRequest(c, "Invalid syllabus ID")
	}

	syllabus, err := sc.Hierarchy.SyllabusByID(syllabusID)
	if err != nil {
		return utils.NotFound(c, "Syllabus not found")
	}
	if syllabus.UserID != userID {
		return utils.Forbidden(c, "You don't have permission to modify this syllabus")
	}

	var ids []uint
	if err := c.BodyParser(&ids); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	err = applyOrder(sc.DB, &models.Subject{}, "syllabus_id", syllabusID, ids)
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	return utils.NoContent(c)
}

func (sc *SubjectController) subjectResponse(subject *models.Subject) fiber.Map {
	completion, err := sc.Completion.SubjectCompletion(subject.ID)
	if err != nil {
		completion = 0.0
	}

	var topicCount int64
	sc.DB.Model(&models.Topic{}).Where("subject_id = ?", subject.ID).Count(&topicCount)

	return fiber.Map{
		"id":                     subject.ID,
		"syllabus_id":            subject.SyllabusID,
		"title":                  subject.Title,
		"description":            subject.Description,
		"display_order":          subject.DisplayOrder,
		"target_completion_date": subject.TargetCompletionDate,
		"topic_count":            topicCount,
		"completion_percentage":  completion,
	}
}
