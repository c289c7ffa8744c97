package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progresstracker/backend/models"
)

func fixedClock(date string) func() time.Time {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func newAnalytics(store *fakeStore, today string) *AnalyticsService {
	svc := NewAnalyticsService(store, store)
	svc.now = fixedClock(today)
	return svc
}

func TestCurrentStreakNoEntries(t *testing.T) {
	svc := newAnalytics(newFakeStore(), "2024-03-10")

	streak, err := svc.CurrentStreak(ownerID)
	require.NoError(t, err)
	assert.Equal(t, 0, streak)
}

func TestCurrentStreakBrokenBeforeYesterday(t *testing.T) {
	store := newFakeStore()
	// A long run of activity that ended three days ago counts for
	// nothing.
	store.addEntry(ownerID, models.ItemTypeTopic, 1, "2024-03-07", models.StatusInProgress, nil)
	store.addEntry(ownerID, models.ItemTypeTopic, 1, "2024-03-06", models.StatusInProgress, nil)
	store.addEntry(ownerID, models.ItemTypeTopic, 1, "2024-03-05", models.StatusInProgress, nil)

	svc := newAnalytics(store, "2024-03-10")
	streak, err := svc.CurrentStreak(ownerID)
	require.NoError(t, err)
	assert.Equal(t, 0, streak)
}

func TestCurrentStreakStopsAtGap(t *testing.T) {
	store := newFakeStore()
	// today, yesterday, then a gap before three days ago: streak is 2.
	store.addEntry(ownerID, models.ItemTypeTopic, 1, "2024-03-10", models.StatusInProgress, nil)
	store.addEntry(ownerID, models.ItemTypeTopic, 1, "2024-03-09", models.StatusInProgress, nil)
	store.addEntry(ownerID, models.ItemTypeTopic, 1, "2024-03-07", models.StatusInProgress, nil)

	svc := newAnalytics(store, "2024-03-10")
	streak, err := svc.CurrentStreak(ownerID)
	require.NoError(t, err)
	assert.Equal(t, 2, streak)
}

func TestCurrentStreakAnchoredAtYesterday(t *testing.T) {
	store := newFakeStore()
	store.addEntry(ownerID, models.ItemTypeTopic, 1, "2024-03-09", models.StatusInProgress, nil)
	store.addEntry(ownerID, models.ItemTypeTopic, 1, "2024-03-08", models.StatusInProgress, nil)
	store.addEntry(ownerID, models.ItemTypeTopic, 1, "2024-03-07", models.StatusInProgress, nil)

	svc := newAnalytics(store, "2024-03-10")
	streak, err := svc.CurrentStreak(ownerID)
	require.NoError(t, err)
	assert.Equal(t, 3, streak)
}

func TestCurrentStreakMultipleEntriesSameDay(t *testing.T) {
	store := newFakeStore()
	store.addEntry(ownerID, models.ItemTypeTopic, 1, "2024-03-10", models.StatusInProgress, nil)
	store.addEntry(ownerID, models.ItemTypeSubTopic, 2, "2024-03-10", models.StatusCompleted, nil)
	store.addEntry(ownerID, models.ItemTypeTopic, 1, "2024-03-09", models.StatusInProgress, nil)

	svc := newAnalytics(store, "2024-03-10")
	streak, err := svc.CurrentStreak(ownerID)
	require.NoError(t, err)
	assert.Equal(t, 2, streak)
}

func TestProgressSummary(t *testing.T) {
	store := newFakeStore()
	store.addEntry(ownerID, models.ItemTypeTopic, 1, "2024-01-01", models.StatusCompleted, minutes(30))
	store.addEntry(ownerID, models.ItemTypeTopic, 1, "2024-01-02", models.StatusInProgress, minutes(15))

	svc := newAnalytics(store, "2024-01-02")
	summary, err := svc.ProgressSummary(ownerID, "2024-01-01", "2024-01-31")
	require.NoError(t, err)

	assert.Equal(t, 45, summary.TotalTimeSpentMinutes)
	assert.Equal(t, 2, summary.TotalDaysWithProgress)
	assert.Equal(t, 2, summary.Streak)
	require.Len(t, summary.DailyProgress, 2)

	assert.Equal(t, "2024-01-01", summary.DailyProgress[0].Date)
	assert.Equal(t, 30, summary.DailyProgress[0].TimeSpentMinutes)
	assert.Equal(t, 1, summary.DailyProgress[0].ItemsProgressed)

	assert.Equal(t, "2024-01-02", summary.DailyProgress[1].Date)
	assert.Equal(t, 15, summary.DailyProgress[1].TimeSpentMinutes)
	assert.Equal(t, 1, summary.DailyProgress[1].ItemsProgressed)
}

func TestProgressSummaryNilMinutesCountAsZero(t *testing.T) {
	store := newFakeStore()
	store.addEntry(ownerID, models.ItemTypeTopic, 1, "2024-01-01", models.StatusInProgress, nil)
	store.addEntry(ownerID, models.ItemTypeSubTopic, 2, "2024-01-01", models.StatusInProgress, minutes(20))

	svc := newAnalytics(store, "2024-01-01")
	summary, err := svc.ProgressSummary(ownerID, "2024-01-01", "2024-01-07")
	require.NoError(t, err)

	assert.Equal(t, 20, summary.TotalTimeSpentMinutes)
	assert.Equal(t, 1, summary.TotalDaysWithProgress)
	require.Len(t, summary.DailyProgress, 1)
	assert.Equal(t, 20, summary.DailyProgress[0].TimeSpentMinutes)
	// Both entries count toward the day's activity, with or without
	// minutes attached.
	assert.Equal(t, 2, summary.DailyProgress[0].ItemsProgressed)
}

func TestProgressSummaryRangeIsInclusive(t *testing.T) {
	store := newFakeStore()
	store.addEntry(ownerID, models.ItemTypeTopic, 1, "2024-01-01", models.StatusInProgress, minutes(10))
	store.addEntry(ownerID, models.ItemTypeTopic, 1, "2024-01-05", models.StatusInProgress, minutes(10))
	store.addEntry(ownerID, models.ItemTypeTopic, 1, "2024-01-06", models.StatusInProgress, minutes(10))

	svc := newAnalytics(store, "2024-01-06")
	summary, err := svc.ProgressSummary(ownerID, "2024-01-01", "2024-01-05")
	require.NoError(t, err)

	assert.Equal(t, 20, summary.TotalTimeSpentMinutes)
	assert.Equal(t, 2, summary.TotalDaysWithProgress)
	require.Len(t, summary.DailyProgress, 2)
}

func treeStore() *fakeStore {
	store := newFakeStore()
	store.addSyllabus(1, ownerID, "Math")
	store.addSubject(10, 1, "Algebra")
	store.addSubject(11, 1, "Geometry")
	store.addTopic(100, 10, "Linear equations")
	store.addSubTopic(1000, 100, "Substitution")
	store.addTopic(110, 11, "Triangles")
	return store
}

func TestTimeDistributionResolvesAllLevels(t *testing.T) {
	store := treeStore()
	// Algebra gets minutes through the subject itself, a topic and a
	// subtopic; Geometry only through a topic.
	store.addEntry(ownerID, models.ItemTypeSubject, 10, "2024-01-01", models.StatusInProgress, minutes(10))
	store.addEntry(ownerID, models.ItemTypeTopic, 100, "2024-01-02", models.StatusInProgress, minutes(20))
	store.addEntry(ownerID, models.ItemTypeSubTopic, 1000, "2024-01-03", models.StatusInProgress, minutes(30))
	store.addEntry(ownerID, models.ItemTypeTopic, 110, "2024-01-04", models.StatusInProgress, minutes(20))

	svc := newAnalytics(store, "2024-01-04")
	distribution, err := svc.TimeDistribution(ownerID)
	require.NoError(t, err)

	assert.Equal(t, 80, distribution.TotalTimeSpentMinutes)
	require.Len(t, distribution.SubjectDistribution, 2)

	// Sorted by minutes descending.
	assert.Equal(t, uint(10), distribution.SubjectDistribution[0].SubjectID)
	assert.Equal(t, "Algebra", distribution.SubjectDistribution[0].SubjectTitle)
	assert.Equal(t, 60, distribution.SubjectDistribution[0].TimeSpentMinutes)
	assert.Equal(t, 75.0, distribution.SubjectDistribution[0].PercentageOfTotal)

	assert.Equal(t, uint(11), distribution.SubjectDistribution[1].SubjectID)
	assert.Equal(t, 20, distribution.SubjectDistribution[1].TimeSpentMinutes)
	assert.Equal(t, 25.0, distribution.SubjectDistribution[1].PercentageOfTotal)

	sum := 0.0
	for _, subject := range distribution.SubjectDistribution {
		sum += subject.PercentageOfTotal
	}
	assert.InDelta(t, 100.0, sum, 1e-9)
}

func TestTimeDistributionSkipsNilMinutes(t *testing.T) {
	store := treeStore()
	store.addEntry(ownerID, models.ItemTypeTopic, 100, "2024-01-01", models.StatusInProgress, nil)
	store.addEntry(ownerID, models.ItemTypeTopic, 100, "2024-01-02", models.StatusInProgress, minutes(40))

	svc := newAnalytics(store, "2024-01-02")
	distribution, err := svc.TimeDistribution(ownerID)
	require.NoError(t, err)

	assert.Equal(t, 40, distribution.TotalTimeSpentMinutes)
	require.Len(t, distribution.SubjectDistribution, 1)
	assert.Equal(t, 100.0, distribution.SubjectDistribution[0].PercentageOfTotal)
}

func TestTimeDistributionSkipsOrphanedEntries(t *testing.T) {
	store := treeStore()
	store.addEntry(ownerID, models.ItemTypeTopic, 100, "2024-01-01", models.StatusInProgress, minutes(40))
	// Entry left behind by a deleted topic: excluded, not fatal.
	store.addEntry(ownerID, models.ItemTypeTopic, 999, "2024-01-02", models.StatusInProgress, minutes(60))

	svc := newAnalytics(store, "2024-01-02")
	distribution, err := svc.TimeDistribution(ownerID)
	require.NoError(t, err)

	assert.Equal(t, 40, distribution.TotalTimeSpentMinutes)
	require.Len(t, distribution.SubjectDistribution, 1)
	assert.Equal(t, uint(10), distribution.SubjectDistribution[0].SubjectID)
	assert.Equal(t, 100.0, distribution.SubjectDistribution[0].PercentageOfTotal)
}

func TestTimeDistributionEmpty(t *testing.T) {
	svc := newAnalytics(treeStore(), "2024-01-01")
	distribution, err := svc.TimeDistribution(ownerID)
	require.NoError(t, err)

	assert.Equal(t, 0, distribution.TotalTimeSpentMinutes)
	assert.Empty(t, distribution.SubjectDistribution)
}
