package services

import (
	"errors"
	"sort"
	"time"

	"progresstracker/backend/models"
	"progresstracker/backend/repository"
)

const dateLayout = "2006-01-02"

// AnalyticsService computes read-only views over a user's progress
// entries: the current day-streak, a per-day summary for a date range,
// and the time-spent distribution across subjects.
type AnalyticsService struct {
	hierarchy repository.HierarchyStore
	progress  repository.ProgressStore
	now       func() time.Time
}

func NewAnalyticsService(hierarchy repository.HierarchyStore, progress repository.ProgressStore) *AnalyticsService {
	return &AnalyticsService{hierarchy: hierarchy, progress: progress, now: time.Now}
}

type DailyProgress struct {
	Date             string `json:"date"`
	TimeSpentMinutes int    `json:"time_spent_minutes"`
	ItemsProgressed  int    `json:"items_progressed"`
}

type ProgressSummary struct {
	StartDate             string          `json:"start_date"`
	EndDate               string          `json:"end_date"`
	TotalDaysWithProgress int             `json:"total_days_with_progress"`
	TotalTimeSpentMinutes int             `json:"total_time_spent_minutes"`
	Streak                int             `json:"streak"`
	DailyProgress         []DailyProgress `json:"daily_progress"`
}

type SubjectTime struct {
	SubjectID         uint    `json:"subject_id"`
	SubjectTitle      string  `json:"subject_title"`
	TimeSpentMinutes  int     `json:"time_spent_minutes"`
	PercentageOfTotal float64 `json:"percentage_of_total"`
}

type TimeDistribution struct {
	TotalTimeSpentMinutes int           `json:"total_time_spent_minutes"`
	SubjectDistribution   []SubjectTime `json:"subject_distribution"`
}

// CurrentStreak counts consecutive calendar days with at least one
// entry, ending at today or yesterday. A most recent activity older
// than yesterday means the chain is already broken.
func (s *AnalyticsService) CurrentStreak(userID uint) (int, error) {
	dates, err := s.progress.DistinctDatesDesc(userID)
	if err != nil {
		return 0, err
	}
	if len(dates) == 0 {
		return 0, nil
	}

	mostRecent, err := time.Parse(dateLayout, dates[0])
	if err != nil {
		return 0, err
	}

	today := s.now().Format(dateLayout)
	yesterday := s.now().AddDate(0, 0, -1).Format(dateLayout)
	if dates[0] != today && dates[0] != yesterday {
		return 0, nil
	}

	streak := 1
	expected := mostRecent.AddDate(0, 0, -1)
	for _, raw := range dates[1:] {
		if raw != expected.Format(dateLayout) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}
	return streak, nil
}

// ProgressSummary aggregates a user's entries over an inclusive date
// range. Per-day buckets come from grouping the fetched entries; the
// distinct-day and total-minute figures are computed by the store
// directly over the range.
func (s *AnalyticsService) ProgressSummary(userID uint, startDate, endDate string) (*ProgressSummary, error) {
	entries, err := s.progress.EntriesByDateRange(userID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	totalDays, err := s.progress.CountDistinctDates(userID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	totalMinutes, err := s.progress.SumMinutes(userID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	streak, err := s.CurrentStreak(userID)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string][]models.ProgressEntry)
	for _, entry := range entries {
		byDate[entry.Date] = append(byDate[entry.Date], entry)
	}

	daily := make([]DailyProgress, 0, len(byDate))
	for date, dayEntries := range byDate {
		minutes := 0
		for _, entry := range dayEntries {
			if entry.TimeSpentMinutes != nil {
				minutes += *entry.TimeSpentMinutes
			}
		}
		daily = append(daily, DailyProgress{
			Date:             date,
			TimeSpentMinutes: minutes,
			ItemsProgressed:  len(dayEntries),
		})
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Date < daily[j].Date })

	return &ProgressSummary{
		StartDate:             startDate,
		EndDate:               endDate,
		TotalDaysWithProgress: int(totalDays),
		TotalTimeSpentMinutes: totalMinutes,
		Streak:                streak,
		DailyProgress:         daily,
	}, nil
}

// TimeDistribution sums minutes across all of a user's entries and
// buckets them by top-level subject. Entries without minutes are
// ignored; entries whose item no longer resolves to a subject are
// skipped rather than failing the whole view, so a delete racing a
// query costs at most the orphaned entry's share.
func (s *AnalyticsService) TimeDistribution(userID uint) (*TimeDistribution, error) {
	entries, err := s.progress.EntriesByUser(userID)
	if err != nil {
		return nil, err
	}

	minutesBySubject := make(map[uint]int)
	titles := make(map[uint]string)
	total := 0

	for _, entry := range entries {
		if entry.TimeSpentMinutes == nil {
			continue
		}
		subject, err := s.resolveSubject(entry.ItemType, entry.ItemID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		minutesBySubject[subject.ID] += *entry.TimeSpentMinutes
		titles[subject.ID] = subject.Title
		total += *entry.TimeSpentMinutes
	}

	distribution := make([]SubjectTime, 0, len(minutesBySubject))
	for subjectID, minutes := range minutesBySubject {
		percentage := 0.0
		if total > 0 {
			percentage = float64(minutes) / float64(total) * 100
		}
		distribution = append(distribution, SubjectTime{
			SubjectID:         subjectID,
			SubjectTitle:      titles[subjectID],
			TimeSpentMinutes:  minutes,
			PercentageOfTotal: percentage,
		})
	}
	sort.Slice(distribution, func(i, j int) bool {
		return distribution[i].TimeSpentMinutes > distribution[j].TimeSpentMinutes
	})

	return &TimeDistribution{
		TotalTimeSpentMinutes: total,
		SubjectDistribution:   distribution,
	}, nil
}

// resolveSubject maps an entry's item to its owning top-level subject.
func (s *AnalyticsService) resolveSubject(itemType models.ItemType, itemID uint) (*models.Subject, error) {
	switch itemType {
	case models.ItemTypeSubject:
		return s.hierarchy.SubjectByID(itemID)
	case models.ItemTypeTopic:
		topic, err := s.hierarchy.TopicByID(itemID)
		if err != nil {
			return nil, err
		}
		return s.hierarchy.SubjectByID(topic.SubjectID)
	case models.ItemTypeSubTopic:
		subTopic, err := s.hierarchy.SubTopicByID(itemID)
		if err != nil {
			return nil, err
		}
		topic, err := s.hierarchy.TopicByID(subTopic.TopicID)
		if err != nil {
			return nil, err
		}
		return s.hierarchy.SubjectByID(topic.SubjectID)
	}
	return nil, repository.ErrNotFound
}
