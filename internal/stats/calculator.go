// Package stats computes weekly meeting-time aggregates from raw meeting
// records. The package is pure: it performs no I/O and no authorization,
// and callers are responsible for restricting the input to meetings the
// requesting user may see.
package stats

import "time"

// weekdayNames holds the short Japanese weekday labels indexed by time.Weekday.
var weekdayNames = [7]string{"日", "月", "火", "水", "木", "金", "土"}

// MeetingRecord carries the minimal fields the calculator reads. Records
// are never mutated.
type MeetingRecord struct {
	Start time.Time
	End   time.Time
}

// Window bounds the reporting period. The calculator always produces
// exactly seven day buckets counted from Start; End is carried for callers
// that derived the window but does not change the bucket count.
type Window struct {
	Start time.Time
	End   time.Time
}

// DayTotal is one calendar day's slot in the weekly breakdown.
type DayTotal struct {
	Date         string
	Weekday      string
	TotalMinutes float64
}

// WeeklyReport is the output of the calculator. AverageDailyMinutes is
// unrounded; presentation-layer rounding happens at the formatting boundary.
type WeeklyReport struct {
	Days                []DayTotal
	AverageDailyMinutes float64
}

// Weekly partitions the window into seven calendar-day buckets, attributes
// each record to the single day its start falls on, sums durations in
// minutes per bucket, and averages the totals over seven days regardless
// of the literal span of the window.
func Weekly(records []MeetingRecord, window Window) WeeklyReport {
	days := make([]DayTotal, 0, 7)
	total := 0.0

	day := truncateToDate(window.Start)
	for i := 0; i < 7; i++ {
		minutes := 0.0
		for _, record := range records {
			if sameDate(record.Start, day) {
				minutes += record.End.Sub(record.Start).Minutes()
			}
		}
		days = append(days, DayTotal{
			Date:         day.Format("2006-01-02"),
			Weekday:      weekdayNames[day.Weekday()],
			TotalMinutes: minutes,
		})
		total += minutes
		day = day.AddDate(0, 0, 1)
	}

	return WeeklyReport{
		Days:                days,
		AverageDailyMinutes: total / 7,
	}
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
