package services

import (
	"sort"

	"progresstracker/backend/models"
	"progresstracker/backend/repository"
)

// fakeStore backs both HierarchyStore and ProgressStore for service
// tests, so the engine runs against plain maps instead of a database.
type fakeStore struct {
	syllabi   map[uint]models.Syllabus
	subjects  map[uint]models.Subject
	topics    map[uint]models.Topic
	subTopics map[uint]models.SubTopic
	entries   []models.ProgressEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		syllabi:   make(map[uint]models.Syllabus),
		subjects:  make(map[uint]models.Subject),
		topics:    make(map[uint]models.Topic),
		subTopics: make(map[uint]models.SubTopic),
	}
}

func (f *fakeStore) addSyllabus(id, userID uint, title string) {
	syllabus := models.Syllabus{UserID: userID, Title: title}
	syllabus.ID = id
	f.syllabi[id] = syllabus
}

func (f *fakeStore) addSubject(id, syllabusID uint, title string) {
	subject := models.Subject{SyllabusID: syllabusID, Title: title, DisplayOrder: int(id)}
	subject.ID = id
	f.subjects[id] = subject
}

func (f *fakeStore) addTopic(id, subjectID uint, title string) {
	topic := models.Topic{SubjectID: subjectID, Title: title, DisplayOrder: int(id)}
	topic.ID = id
	f.topics[id] = topic
}

func (f *fakeStore) addSubTopic(id, topicID uint, title string) {
	subTopic := models.SubTopic{TopicID: topicID, Title: title, DisplayOrder: int(id)}
	subTopic.ID = id
	f.subTopics[id] = subTopic
}

func (f *fakeStore) addEntry(userID uint, itemType models.ItemType, itemID uint, date string, status models.Status, minutes *int) {
	f.entries = append(f.entries, models.ProgressEntry{
		UserID:           userID,
		ItemType:         itemType,
		ItemID:           itemID,
		Date:             date,
		Status:           status,
		TimeSpentMinutes: minutes,
	})
}

func (f *fakeStore) SyllabusByID(id uint) (*models.Syllabus, error) {
	if syllabus, ok := f.syllabi[id]; ok {
		return &syllabus, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) SubjectByID(id uint) (*models.Subject, error) {
	if subject, ok := f.subjects[id]; ok {
		return &subject, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) TopicByID(id uint) (*models.Topic, error) {
	if topic, ok := f.topics[id]; ok {
		return &topic, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) SubTopicByID(id uint) (*models.SubTopic, error) {
	if subTopic, ok := f.subTopics[id]; ok {
		return &subTopic, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) SubjectsBySyllabus(syllabusID uint) ([]models.Subject, error) {
	var subjects []models.Subject
	for _, subject := range f.subjects {
		if subject.SyllabusID == syllabusID {
			subjects = append(subjects, subject)
		}
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].DisplayOrder < subjects[j].DisplayOrder })
	return subjects, nil
}

func (f *fakeStore) TopicsBySubject(subjectID uint) ([]models.Topic, error) {
	var topics []models.Topic
	for _, topic := range f.topics {
		if topic.SubjectID == subjectID {
			topics = append(topics, topic)
		}
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i].DisplayOrder < topics[j].DisplayOrder })
	return topics, nil
}

func (f *fakeStore) SubTopicsByTopic(topicID uint) ([]models.SubTopic, error) {
	var subTopics []models.SubTopic
	for _, subTopic := range f.subTopics {
		if subTopic.TopicID == topicID {
			subTopics = append(subTopics, subTopic)
		}
	}
	sort.Slice(subTopics, func(i, j int) bool { return subTopics[i].DisplayOrder < subTopics[j].DisplayOrder })
	return subTopics, nil
}

func (f *fakeStore) EntriesByItem(userID uint, itemType models.ItemType, itemID uint) ([]models.ProgressEntry, error) {
	var entries []models.ProgressEntry
	for _, entry := range f.entries {
		if entry.UserID == userID && entry.ItemType == itemType && entry.ItemID == itemID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (f *fakeStore) EntriesByDateRange(userID uint, startDate, endDate string) ([]models.ProgressEntry, error) {
	var entries []models.ProgressEntry
	for _, entry := range f.entries {
		if entry.UserID == userID && entry.Date >= startDate && entry.Date <= endDate {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
	return entries, nil
}

func (f *fakeStore) EntriesByUser(userID uint) ([]models.ProgressEntry, error) {
	var entries []models.ProgressEntry
	for _, entry := range f.entries {
		if entry.UserID == userID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (f *fakeStore) DistinctDatesDesc(userID uint) ([]string, error) {
	seen := make(map[string]bool)
	var dates []string
	for _, entry := range f.entries {
		if entry.UserID == userID && !seen[entry.Date] {
			seen[entry.Date] = true
			dates = append(dates, entry.Date)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

func (f *fakeStore) CountDistinctDates(userID uint, startDate, endDate string) (int64, error) {
	seen := make(map[string]bool)
	for _, entry := range f.entries {
		if entry.UserID == userID && entry.Date >= startDate && entry.Date <= endDate {
			seen[entry.Date] = true
		}
	}
	return int64(len(seen)), nil
}

func (f *fakeStore) SumMinutes(userID uint, startDate, endDate string) (int, error) {
	total := 0
	for _, entry := range f.entries {
		if entry.UserID == userID && entry.Date >= startDate && entry.Date <= endDate && entry.TimeSpentMinutes != nil {
			total += *entry.TimeSpentMinutes
		}
	}
	return total, nil
}

func minutes(m int) *int {
	return &m
}
