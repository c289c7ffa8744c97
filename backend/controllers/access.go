package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"progresstracker/backend/models"
	"progresstracker/backend/repository"
)

// paramID reads a :name path parameter as an unsigned id.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// paging reads page/page_size query parameters with sane defaults.
func paging(c *fiber.Ctx) (page int, pageSize int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize = c.QueryInt("page_size", 20)
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// syllabusForItem walks an item up to its enclosing syllabus. Used for
// ownership checks on anything below the syllabus level.
func syllabusForItem(hierarchy repository.HierarchyStore, itemType models.ItemType, itemID uint) (*models.Syllabus, error) {
	switch itemType {
	case models.ItemTypeSubject:
		subject, err := hierarchy.SubjectByID(itemID)
		if err != nil {
			return nil, err
		}
		return hierarchy.SyllabusByID(subject.SyllabusID)
	case models.ItemTypeTopic:
		topic, err := hierarchy.TopicByID(itemID)
		if err != nil {
			return nil, err
		}
		subject, err := hierarchy.SubjectByID(topic.SubjectID)
		if err != nil {
			return nil, err
		}
		return hierarchy.SyllabusByID(subject.SyllabusID)
	case models.ItemTypeSubTopic:
		subTopic, err := hierarchy.SubTopicByID(itemID)
		if err != nil {
			return nil, err
		}
		topic, err := hierarchy.TopicByID(subTopic.TopicID)
		if err != nil {
			return nil, err
		}
		subject, err := hierarchy.SubjectByID(topic.SubjectID)
		if err != nil {
			return nil, err
		}
		return hierarchy.SyllabusByID(subject.SyllabusID)
	}
	return nil, repository.ErrNotFound
}
