package repository

import (
	"errors"

	"gorm.io/gorm"

	"progresstracker/backend/models"
)

// ErrNotFound is returned when a looked-up record does not exist.
// Callers match it with errors.Is so they never depend on gorm directly.
var ErrNotFound = errors.New("record not found")

// HierarchyStore resolves hierarchy nodes by id and enumerates children
// in display order. The completion engine walks the tree exclusively
// through this interface.
type HierarchyStore interface {
	SyllabusByID(id uint) (*models.Syllabus, error)
	SubjectByID(id uint) (*models.Subject, error)
	TopicByID(id uint) (*models.Topic, error)
	SubTopicByID(id uint) (*models.SubTopic, error)
	SubjectsBySyllabus(syllabusID uint) ([]models.Subject, error)
	TopicsBySubject(subjectID uint) ([]models.Topic, error)
	SubTopicsByTopic(topicID uint) ([]models.SubTopic, error)
}

type GormHierarchyStore struct {
	DB *gorm.DB
}

func NewHierarchyStore(db *gorm.DB) *GormHierarchyStore {
	return &GormHierarchyStore{DB: db}
}

func (s *GormHierarchyStore) SyllabusByID(id uint) (*models.Syllabus, error) {
	var syllabus models.Syllabus
	if err := s.DB.First(&syllabus, id).Error; err != nil {
		return nil, translate(err)
	}
	return &syllabus, nil
}

func (s *GormHierarchyStore) SubjectByID(id uint) (*models.Subject, error) {
	var subject models.Subject
	if err := s.DB.First(&subject, id).Error; err != nil {
		return nil, translate(err)
	}
	return &subject, nil
}

func (s *GormHierarchyStore) TopicByID(id uint) (*models.Topic, error) {
	var topic models.Topic
	if err := s.DB.First(&topic, id).Error; err != nil {
		return nil, translate(err)
	}
	return &topic, nil
}

func (s *GormHierarchyStore) SubTopicByID(id uint) (*models.SubTopic, error) {
	var subTopic models.SubTopic
	if err := s.DB.First(&subTopic, id).Error; err != nil {
		return nil, translate(err)
	}
	return &subTopic, nil
}

func (s *GormHierarchyStore) SubjectsBySyllabus(syllabusID uint) ([]models.Subject, error) {
	var subjects []models.Subject
	err := s.DB.Where("syllabus_id = ?", syllabusID).
		Order("display_order").
		Find(&subjects).Error
	return subjects, err
}

func (s *GormHierarchyStore) TopicsBySubject(subjectID uint) ([]models.Topic, error) {
	var topics []models.Topic
	err := s.DB.Where("subject_id = ?", subjectID).
		Order("display_order").
		Find(&topics).Error
	return topics, err
}

func (s *GormHierarchyStore) SubTopicsByTopic(topicID uint) ([]models.SubTopic, error) {
	var subTopics []models.SubTopic
	err := s.DB.Where("topic_id = ?", topicID).
		Order("display_order").
		Find(&subTopics).Error
	return subTopics, err
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
