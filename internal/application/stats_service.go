package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/meeting-calendar/internal/meeting"
	"github.com/example/meeting-calendar/internal/stats"
)

// MeetingQuery fetches the raw meetings a user owns or participates in
// whose start falls within the half-open window [from, to).
type MeetingQuery interface {
	ListMeetingsForUser(ctx context.Context, userID string, from, to time.Time) ([]meeting.Meeting, error)
}

// StatsService feeds filtered meeting records into the weekly calculator.
// Entitlement filtering happens here, at the query; the calculator itself
// performs none.
type StatsService struct {
	query  MeetingQuery
	logger *slog.Logger
}

// NewStatsService wires dependencies for statistics queries.
func NewStatsService(query MeetingQuery) *StatsService {
	return NewStatsServiceWithLogger(query, nil)
}

// NewStatsServiceWithLogger constructs a StatsService with a specified logger.
func NewStatsServiceWithLogger(query MeetingQuery, logger *slog.Logger) *StatsService {
	return &StatsService{query: query, logger: defaultLogger(logger)}
}

// WeeklyStats aggregates the user's meeting minutes for the seven days
// starting at WeekStart.
func (s *StatsService) WeeklyStats(ctx context.Context, params WeeklyStatsParams) (stats.WeeklyReport, error) {
	if s == nil {
		return stats.WeeklyReport{}, fmt.Errorf("StatsService is nil")
	}
	if s.query == nil {
		return stats.WeeklyReport{}, fmt.Errorf("meeting query not configured")
	}

	logger := serviceLogger(ctx, s.logger, "StatsService", "WeeklyStats", "user_id", params.UserID)

	window := stats.Window{
		Start: params.WeekStart,
		End:   params.WeekStart.AddDate(0, 0, 7),
	}

	meetings, err := s.query.ListMeetingsForUser(ctx, params.UserID, window.Start, window.End)
	if err != nil {
		logger.ErrorContext(ctx, "meeting query failed", "error", err, "error_kind", ErrorKind(err))
		return stats.WeeklyReport{}, err
	}

	records := make([]stats.MeetingRecord, 0, len(meetings))
	for _, m := range meetings {
		records = append(records, stats.MeetingRecord{Start: m.Start, End: m.End})
	}

	report := stats.Weekly(records, window)
	logger.InfoContext(ctx, "weekly stats computed", "meetings", len(records))
	return report, nil
}
