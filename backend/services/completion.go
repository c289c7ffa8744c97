package services

import (
	"progresstracker/backend/models"
	"progresstracker/backend/repository"
)

// CompletionService derives completion percentages for hierarchy nodes.
// A node with children scores the unweighted mean of its children's
// percentages; a node without children falls back to its own logged
// progress entries. Everything is recomputed from current stored state
// on every call.
type CompletionService struct {
	hierarchy repository.HierarchyStore
	progress  repository.ProgressStore
}

func NewCompletionService(hierarchy repository.HierarchyStore, progress repository.ProgressStore) *CompletionService {
	return &CompletionService{hierarchy: hierarchy, progress: progress}
}

// SubjectCompletionItem is one row of a syllabus completion summary.
type SubjectCompletionItem struct {
	SubjectID            uint    `json:"subject_id"`
	SubjectTitle         string  `json:"subject_title"`
	CompletionPercentage float64 `json:"completion_percentage"`
	CompletedTopics      int     `json:"completed_topics"`
	TotalTopics          int     `json:"total_topics"`
}

type CompletionSummary struct {
	SyllabusID                  uint                    `json:"syllabus_id"`
	SyllabusTitle               string                  `json:"syllabus_title"`
	OverallCompletionPercentage float64                 `json:"overall_completion_percentage"`
	SubjectCompletions          []SubjectCompletionItem `json:"subject_completions"`
}

func (s *CompletionService) SyllabusCompletion(syllabusID uint) (float64, error) {
	if _, err := s.hierarchy.SyllabusByID(syllabusID); err != nil {
		return 0, err
	}

	subjects, err := s.hierarchy.SubjectsBySyllabus(syllabusID)
	if err != nil {
		return 0, err
	}
	if len(subjects) == 0 {
		return 0.0, nil
	}

	total := 0.0
	for _, subject := range subjects {
		percentage, err := s.SubjectCompletion(subject.ID)
		if err != nil {
			return 0, err
		}
		total += percentage
	}
	return total / float64(len(subjects)), nil
}

func (s *CompletionService) SubjectCompletion(subjectID uint) (float64, error) {
	subject, err := s.hierarchy.SubjectByID(subjectID)
	if err != nil {
		return 0, err
	}

	topics, err := s.hierarchy.TopicsBySubject(subjectID)
	if err != nil {
		return 0, err
	}
	if len(topics) == 0 {
		// No topics underneath, so the subject's own entries decide.
		ownerID, err := s.syllabusOwner(subject.SyllabusID)
		if err != nil {
			return 0, err
		}
		return s.entryFallback(ownerID, models.ItemTypeSubject, subjectID)
	}

	total := 0.0
	for _, topic := range topics {
		percentage, err := s.TopicCompletion(topic.ID)
		if err != nil {
			return 0, err
		}
		total += percentage
	}
	return total / float64(len(topics)), nil
}

func (s *CompletionService) TopicCompletion(topicID uint) (float64, error) {
	topic, err := s.hierarchy.TopicByID(topicID)
	if err != nil {
		return 0, err
	}

	subTopics, err := s.hierarchy.SubTopicsByTopic(topicID)
	if err != nil {
		return 0, err
	}
	if len(subTopics) == 0 {
		subject, err := s.hierarchy.SubjectByID(topic.SubjectID)
		if err != nil {
			return 0, err
		}
		ownerID, err := s.syllabusOwner(subject.SyllabusID)
		if err != nil {
			return 0, err
		}
		return s.entryFallback(ownerID, models.ItemTypeTopic, topicID)
	}

	total := 0.0
	for _, subTopic := range subTopics {
		percentage, err := s.SubTopicCompletion(subTopic.ID)
		if err != nil {
			return 0, err
		}
		total += percentage
	}
	return total / float64(len(subTopics)), nil
}

func (s *CompletionService) SubTopicCompletion(subTopicID uint) (float64, error) {
	subTopic, err := s.hierarchy.SubTopicByID(subTopicID)
	if err != nil {
		return 0, err
	}

	topic, err := s.hierarchy.TopicByID(subTopic.TopicID)
	if err != nil {
		return 0, err
	}
	subject, err := s.hierarchy.SubjectByID(topic.SubjectID)
	if err != nil {
		return 0, err
	}
	ownerID, err := s.syllabusOwner(subject.SyllabusID)
	if err != nil {
		return 0, err
	}
	return s.entryFallback(ownerID, models.ItemTypeSubTopic, subTopicID)
}

// SyllabusSummary reports the overall percentage plus a per-subject
// breakdown with completed-topic counts. A topic counts as completed
// when its own percentage reaches 100.
func (s *CompletionService) SyllabusSummary(syllabusID uint) (*CompletionSummary, error) {
	syllabus, err := s.hierarchy.SyllabusByID(syllabusID)
	if err != nil {
		return nil, err
	}

	overall, err := s.SyllabusCompletion(syllabusID)
	if err != nil {
		return nil, err
	}

	subjects, err := s.hierarchy.SubjectsBySyllabus(syllabusID)
	if err != nil {
		return nil, err
	}

	summary := &CompletionSummary{
		SyllabusID:                  syllabus.ID,
		SyllabusTitle:               syllabus.Title,
		OverallCompletionPercentage: overall,
		SubjectCompletions:          make([]SubjectCompletionItem, 0, len(subjects)),
	}

	for _, subject := range subjects {
		percentage, err := s.SubjectCompletion(subject.ID)
		if err != nil {
			return nil, err
		}

		topics, err := s.hierarchy.TopicsBySubject(subject.ID)
		if err != nil {
			return nil, err
		}
		completed := 0
		for _, topic := range topics {
			topicPercentage, err := s.TopicCompletion(topic.ID)
			if err != nil {
				return nil, err
			}
			if topicPercentage >= 100.0 {
				completed++
			}
		}

		summary.SubjectCompletions = append(summary.SubjectCompletions, SubjectCompletionItem{
			SubjectID:            subject.ID,
			SubjectTitle:         subject.Title,
			CompletionPercentage: percentage,
			CompletedTopics:      completed,
			TotalTopics:          len(topics),
		})
	}

	return summary, nil
}

// entryFallback scores a childless node from its own entries: any
// COMPLETED entry in history wins outright, otherwise any IN_PROGRESS
// entry counts as half done. This rule is fixed, not date-weighted.
func (s *CompletionService) entryFallback(ownerID uint, itemType models.ItemType, itemID uint) (float64, error) {
	entries, err := s.progress.EntriesByItem(ownerID, itemType, itemID)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0.0, nil
	}

	inProgress := false
	for _, entry := range entries {
		switch entry.Status {
		case models.StatusCompleted:
			return 100.0, nil
		case models.StatusInProgress:
			inProgress = true
		}
	}
	if inProgress {
		return 50.0, nil
	}
	return 0.0, nil
}

// syllabusOwner resolves the user whose entries count toward the
// syllabus tree the node belongs to.
func (s *CompletionService) syllabusOwner(syllabusID uint) (uint, error) {
	syllabus, err := s.hierarchy.SyllabusByID(syllabusID)
	if err != nil {
		return 0, err
	}
	return syllabus.UserID, nil
}
