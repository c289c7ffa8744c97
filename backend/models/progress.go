package models

import "gorm.io/gorm"

type ItemType string

const (
	ItemTypeSubject  ItemType = "SUBJECT"
	ItemTypeTopic    ItemType = "TOPIC"
	ItemTypeSubTopic ItemType = "SUBTOPIC"
)

func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeSubject, ItemTypeTopic, ItemTypeSubTopic:
		return true
	}
	return false
}

type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ProgressEntry is one user-logged status/time record against one
// hierarchy item on one calendar date. At most one entry per
// (user, item type, item id, date).
type ProgressEntry struct {
	gorm.Model
	UserID           uint     `gorm:"not null;uniqueIndex:idx_entry_item_date"`
	ItemType         ItemType `gorm:"not null;uniqueIndex:idx_entry_item_date"`
	ItemID           uint     `gorm:"not null;uniqueIndex:idx_entry_item_date"`
	Date             string   `gorm:"not null;uniqueIndex:idx_entry_item_date"` // YYYY-MM-DD
	Status           Status   `gorm:"not null"`
	TimeSpentMinutes *int
	Notes            string
}
