package repository

import (
	"gorm.io/gorm"

	"progresstracker/backend/models"
)

// ProgressStore is the event-query capability the analytics and
// completion services read through. Dates are YYYY-MM-DD strings, so
// lexicographic ordering in SQL matches chronological ordering.
type ProgressStore interface {
	EntriesByItem(userID uint, itemType models.ItemType, itemID uint) ([]models.ProgressEntry, error)
	EntriesByDateRange(userID uint, startDate, endDate string) ([]models.ProgressEntry, error)
	EntriesByUser(userID uint) ([]models.ProgressEntry, error)
	DistinctDatesDesc(userID uint) ([]string, error)
	CountDistinctDates(userID uint, startDate, endDate string) (int64, error)
	SumMinutes(userID uint, startDate, endDate string) (int, error)
}

type GormProgressStore struct {
	DB *gorm.DB
}

func NewProgressStore(db *gorm.DB) *GormProgressStore {
	return &GormProgressStore{DB: db}
}

func (s *GormProgressStore) EntriesByItem(userID uint, itemType models.ItemType, itemID uint) ([]models.ProgressEntry, error) {
	var entries []models.ProgressEntry
	err := s.DB.Where("user_id = ? AND item_type = ? AND item_id = ?", userID, itemType, itemID).
		Find(&entries).Error
	return entries, err
}

func (s *GormProgressStore) EntriesByDateRange(userID uint, startDate, endDate string) ([]models.ProgressEntry, error) {
	var entries []models.ProgressEntry
	err := s.DB.Where("user_id = ? AND date BETWEEN ? AND ?", userID, startDate, endDate).
		Order("date").
		Find(&entries).Error
	return entries, err
}

func (s *GormProgressStore) EntriesByUser(userID uint) ([]models.ProgressEntry, error) {
	var entries []models.ProgressEntry
	err := s.DB.Where("user_id = ?", userID).Find(&entries).Error
	return entries, err
}

func (s *GormProgressStore) DistinctDatesDesc(userID uint) ([]string, error) {
	var dates []string
	err := s.DB.Model(&models.ProgressEntry{}).
		Where("user_id = ?", userID).
		Distinct("date").
		Order("date DESC").
		Pluck("date", &dates).Error
	return dates, err
}

func (s *GormProgressStore) CountDistinctDates(userID uint, startDate, endDate string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.ProgressEntry{}).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, startDate, endDate).
		Distinct("date").
		Count(&count).Error
	return count, err
}

func (s *GormProgressStore) SumMinutes(userID uint, startDate, endDate string) (int, error) {
	var total int
	err := s.DB.Model(&models.ProgressEntry{}).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, startDate, endDate).
		Select("COALESCE(SUM(time_spent_minutes), 0)").
		Scan(&total).Error
	return total, err
}
