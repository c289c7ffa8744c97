package repository

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"progresstracker/backend/models"
	"progresstracker/backend/utils"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))
	return db
}

func TestHierarchyStoreNotFound(t *testing.T) {
	store := NewHierarchyStore(testDB(t))

	_, err := store.SyllabusByID(1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.SubjectByID(1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.TopicByID(1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.SubTopicByID(1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHierarchyStoreChildrenOrderedByDisplayOrder(t *testing.T) {
	db := testDB(t)
	store := NewHierarchyStore(db)

	syllabus := models.Syllabus{UserID: 1, Title: "Math"}
	require.NoError(t, db.Create(&syllabus).Error)

	second := models.Subject{SyllabusID: syllabus.ID, Title: "Second", DisplayOrder: 2}
	first := models.Subject{SyllabusID: syllabus.ID, Title: "First", DisplayOrder: 1}
	require.NoError(t, db.Create(&second).Error)
	require.NoError(t, db.Create(&first).Error)

	subjects, err := store.SubjectsBySyllabus(syllabus.ID)
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "First", subjects[0].Title)
	assert.Equal(t, "Second", subjects[1].Title)
}

func TestHierarchyStoreLookupRoundTrip(t *testing.T) {
	db := testDB(t)
	store := NewHierarchyStore(db)

	syllabus := models.Syllabus{UserID: 1, Title: "Math"}
	require.NoError(t, db.Create(&syllabus).Error)
	subject := models.Subject{SyllabusID: syllabus.ID, Title: "Algebra", DisplayOrder: 1}
	require.NoError(t, db.Create(&subject).Error)
	topic := models.Topic{SubjectID: subject.ID, Title: "Linear equations", DisplayOrder: 1}
	require.NoError(t, db.Create(&topic).Error)
	subTopic := models.SubTopic{TopicID: topic.ID, Title: "Substitution", DisplayOrder: 1}
	require.NoError(t, db.Create(&subTopic).Error)

	gotSubTopic, err := store.SubTopicByID(subTopic.ID)
	require.NoError(t, err)
	gotTopic, err := store.TopicByID(gotSubTopic.TopicID)
	require.NoError(t, err)
	gotSubject, err := store.SubjectByID(gotTopic.SubjectID)
	require.NoError(t, err)
	gotSyllabus, err := store.SyllabusByID(gotSubject.SyllabusID)
	require.NoError(t, err)
	assert.Equal(t, uint(1), gotSyllabus.UserID)
}

func seedEntries(t *testing.T, db *gorm.DB) {
	t.Helper()
	thirty := 30
	fifteen := 15
	entries := []models.ProgressEntry{
		{UserID: 1, ItemType: models.ItemTypeTopic, ItemID: 1, Date: "2024-01-01", Status: models.StatusCompleted, TimeSpentMinutes: &thirty},
		{UserID: 1, ItemType: models.ItemTypeTopic, ItemID: 2, Date: "2024-01-01", Status: models.StatusInProgress},
		{UserID: 1, ItemType: models.ItemTypeTopic, ItemID: 1, Date: "2024-01-02", Status: models.StatusInProgress, TimeSpentMinutes: &fifteen},
		{UserID: 1, ItemType: models.ItemTypeTopic, ItemID: 1, Date: "2024-01-05", Status: models.StatusInProgress},
		{UserID: 2, ItemType: models.ItemTypeTopic, ItemID: 1, Date: "2024-01-03", Status: models.StatusInProgress},
	}
	for i := range entries {
		require.NoError(t, db.Create(&entries[i]).Error)
	}
}

func TestProgressStoreDistinctDatesDesc(t *testing.T) {
	db := testDB(t)
	seedEntries(t, db)
	store := NewProgressStore(db)

	dates, err := store.DistinctDatesDesc(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-05", "2024-01-02", "2024-01-01"}, dates)
}

func TestProgressStoreCountDistinctDates(t *testing.T) {
	db := testDB(t)
	seedEntries(t, db)
	store := NewProgressStore(db)

	count, err := store.CountDistinctDates(1, "2024-01-01", "2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestProgressStoreSumMinutesIgnoresNull(t *testing.T) {
	db := testDB(t)
	seedEntries(t, db)
	store := NewProgressStore(db)

	total, err := store.SumMinutes(1, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, 45, total)
}

func TestProgressStoreDateRangeInclusive(t *testing.T) {
	db := testDB(t)
	seedEntries(t, db)
	store := NewProgressStore(db)

	entries, err := store.EntriesByDateRange(1, "2024-01-01", "2024-01-02")
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	for _, entry := range entries {
		assert.Equal(t, uint(1), entry.UserID)
	}
}

func TestProgressStoreEntriesByItemScopedToUser(t *testing.T) {
	db := testDB(t)
	seedEntries(t, db)
	store := NewProgressStore(db)

	entries, err := store.EntriesByItem(1, models.ItemTypeTopic, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	entries, err = store.EntriesByItem(2, models.ItemTypeTopic, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestProgressStoreDuplicateEntryRejected(t *testing.T) {
	db := testDB(t)
	store := NewProgressStore(db)

	entry := models.ProgressEntry{UserID: 1, ItemType: models.ItemTypeTopic, ItemID: 1, Date: "2024-01-01", Status: models.StatusInProgress}
	require.NoError(t, db.Create(&entry).Error)

	duplicate := models.ProgressEntry{UserID: 1, ItemType: models.ItemTypeTopic, ItemID: 1, Date: "2024-01-01", Status: models.StatusCompleted}
	assert.Error(t, db.Create(&duplicate).Error)

	entries, err := store.EntriesByItem(1, models.ItemTypeTopic, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
