package controllers

import (
	"errors"

	"gorm.io/gorm"
)

// nextDisplayOrder picks the order for a newly created child: the
// requested value if the client sent one, else one past the current
// maximum among its siblings.
func nextDisplayOrder(db *gorm.DB, model interface{}, parentColumn string, parentID uint, requested *int) int {
	if requested != nil {
		return *requested
	}
	var max int
	db.Model(model).
		Where(parentColumn+" = ?", parentID).
		Select("COALESCE(MAX(display_order), 0)").
		Scan(&max)
	return max + 1
}

// applyOrder rewrites display_order for all children of a parent from
// an id list. The list must name every child exactly once.
func applyOrder(db *gorm.DB, model interface{}, parentColumn string, parentID uint, ids []uint) error {
	var count int64
	if err := db.Model(model).Where(parentColumn+" = ?", parentID).Count(&count).Error; err != nil {
		return err
	}
	if int64(len(ids)) != count {
		return errors.New("reorder list must contain every child id exactly once")
	}

	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return errors.New("reorder list contains duplicate ids")
		}
		seen[id] = true
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			result := tx.Model(model).
				Where(parentColumn+" = ? AND id = ?", parentID, id).
				Update("display_order", i+1)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return errors.New("reorder list contains an id outside this parent")
			}
		}
		return nil
	})
}
