package models

import "gorm.io/gorm"

// Syllabus is the root of a four-level hierarchy:
// Syllabus -> Subject -> Topic -> SubTopic.
// Children are never navigated through these slices in application code;
// they exist for migration and cascade deletes. Child enumeration goes
// through the repository, ordered by DisplayOrder.
type Syllabus struct {
	gorm.Model
	UserID        uint   `gorm:"not null;index"`
	Title         string `gorm:"not null"`
	Description   string
	IsPublic      bool
	ShareableLink *string   `gorm:"uniqueIndex"`
	Subjects      []Subject `gorm:"constraint:OnDelete:CASCADE"`
}

type Subject struct {
	gorm.Model
	SyllabusID           uint   `gorm:"not null;index"`
	Title                string `gorm:"not null"`
	Description          string
	DisplayOrder         int    `gorm:"not null"`
	TargetCompletionDate string // YYYY-MM-DD, optional
	Topics               []Topic `gorm:"constraint:OnDelete:CASCADE"`
}

type Topic struct {
	gorm.Model
	SubjectID            uint   `gorm:"not null;index"`
	Title                string `gorm:"not null"`
	Description          string
	DisplayOrder         int `gorm:"not null"`
	TargetCompletionDate string
	SubTopics            []SubTopic `gorm:"constraint:OnDelete:CASCADE"`
}

type SubTopic struct {
	gorm.Model
	TopicID              uint   `gorm:"not null;index"`
	Title                string `gorm:"not null"`
	Description          string
	DisplayOrder         int `gorm:"not null"`
	TargetCompletionDate string
}

type Resource struct {
	gorm.Model
	ItemType     ItemType `gorm:"not null;index:idx_resource_item"`
	ItemID       uint     `gorm:"not null;index:idx_resource_item"`
	ResourceType string   `gorm:"not null"` // LINK, NOTE, FILE
	Content      string   `gorm:"not null"`
}
