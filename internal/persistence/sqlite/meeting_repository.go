package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/meeting-calendar/internal/persistence"
)

// MeetingRepository implements persistence.MeetingRepository using SQLite.
// Meeting rows and their participant snapshots are written in one
// transaction so a roster is never persisted without its meeting.
type MeetingRepository struct {
	pool *ConnectionPool
}

// NewMeetingRepository creates a SQLite backed meeting repository.
func NewMeetingRepository(pool *ConnectionPool) *MeetingRepository {
	return &MeetingRepository{pool: pool}
}

// CreateMeeting inserts a meeting with its participants.
func (r *MeetingRepository) CreateMeeting(ctx context.Context, meeting persistence.Meeting) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO meetings (id, title, start_time, end_time, is_important, owner_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := tx.ExecContext(ctx, query,
			meeting.ID,
			meeting.Title,
			meeting.Start.Format(time.RFC3339Nano),
			meeting.End.Format(time.RFC3339Nano),
			boolToInt(meeting.IsImportant),
			meeting.OwnerID,
			meeting.CreatedAt.Format(time.RFC3339Nano),
			meeting.UpdatedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			return mapSQLiteError(err)
		}
		return r.insertParticipants(ctx, tx, meeting.ID, meeting.Participants)
	})
}

// SaveMeeting updates a meeting and replaces its participant snapshots.
// The owner column is never overwritten.
func (r *MeetingRepository) SaveMeeting(ctx context.Context, meeting persistence.Meeting) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE meetings
			SET title = ?, start_time = ?, end_time = ?, is_important = ?, updated_at = ?
			WHERE id = ?
		`
		result, err := tx.ExecContext(ctx, query,
			meeting.Title,
			meeting.Start.Format(time.RFC3339Nano),
			meeting.End.Format(time.RFC3339Nano),
			boolToInt(meeting.IsImportant),
			meeting.UpdatedAt.Format(time.RFC3339Nano),
			meeting.ID,
		)
		if err != nil {
			return mapSQLiteError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM meeting_participants WHERE meeting_id = ?", meeting.ID); err != nil {
			return mapSQLiteError(err)
		}
		return r.insertParticipants(ctx, tx, meeting.ID, meeting.Participants)
	})
}

// GetMeeting retrieves a meeting with its participants.
func (r *MeetingRepository) GetMeeting(ctx context.Context, id string) (persistence.Meeting, error) {
	query := `
		SELECT id, title, start_time, end_time, is_important, owner_id, created_at, updated_at
		FROM meetings
		WHERE id = ?
	`
	meeting, err := r.scanMeeting(r.pool.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return persistence.Meeting{}, err
	}

	participants, err := r.loadParticipants(ctx, id)
	if err != nil {
		return persistence.Meeting{}, err
	}
	meeting.Participants = participants
	return meeting, nil
}

// ListMeetings lists meetings matching the filter. A filter user matches
// meetings it owns or participates in.
func (r *MeetingRepository) ListMeetings(ctx context.Context, filter persistence.MeetingFilter) ([]persistence.Meeting, error) {
	query := `
		SELECT DISTINCT m.id, m.title, m.start_time, m.end_time, m.is_important, m.owner_id, m.created_at, m.updated_at
		FROM meetings m
		LEFT JOIN meeting_participants p ON p.meeting_id = m.id
	`
	var clauses []string
	var args []any

	if filter.UserID != "" {
		clauses = append(clauses, "(m.owner_id = ? OR p.user_id = ?)")
		args = append(args, filter.UserID, filter.UserID)
	}
	if filter.StartsAfter != nil {
		clauses = append(clauses, "m.start_time >= ?")
		args = append(args, filter.StartsAfter.Format(time.RFC3339Nano))
	}
	if filter.StartsBefore != nil {
		clauses = append(clauses, "m.start_time < ?")
		args = append(args, filter.StartsBefore.Format(time.RFC3339Nano))
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY m.start_time, m.id"

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var meetings []persistence.Meeting
	for rows.Next() {
		meeting, err := r.scanMeetingRows(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, meeting)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range meetings {
		participants, err := r.loadParticipants(ctx, meetings[i].ID)
		if err != nil {
			return nil, err
		}
		meetings[i].Participants = participants
	}
	return meetings, nil
}

// DeleteMeeting removes a meeting; participants cascade.
func (r *MeetingRepository) DeleteMeeting(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM meetings WHERE id = ?", id)
	if err != nil {
		return mapSQLiteError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (r *MeetingRepository) insertParticipants(ctx context.Context, tx *sql.Tx, meetingID string, participants []persistence.Participant) error {
	if len(participants) == 0 {
		return nil
	}
	query := `
		INSERT INTO meeting_participants (id, meeting_id, user_id, user_name, user_email, joined_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for _, p := range participants {
		_, err := tx.ExecContext(ctx, query,
			p.ID,
			meetingID,
			p.UserID,
			p.UserName,
			p.UserEmail,
			p.JoinedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			return mapSQLiteError(err)
		}
	}
	return nil
}

func (r *MeetingRepository) loadParticipants(ctx context.Context, meetingID string) ([]persistence.Participant, error) {
	query := `
		SELECT id, meeting_id, user_id, user_name, user_email, joined_at
		FROM meeting_participants
		WHERE meeting_id = ?
		ORDER BY joined_at, id
	`
	rows, err := r.pool.db.QueryContext(ctx, query, meetingID)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var participants []persistence.Participant
	for rows.Next() {
		var p persistence.Participant
		var joinedAt string
		if err := rows.Scan(&p.ID, &p.MeetingID, &p.UserID, &p.UserName, &p.UserEmail, &joinedAt); err != nil {
			return nil, mapSQLiteError(err)
		}
		if p.JoinedAt, err = time.Parse(time.RFC3339Nano, joinedAt); err != nil {
			return nil, fmt.Errorf("failed to parse joined_at: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *MeetingRepository) scanMeeting(row *sql.Row) (persistence.Meeting, error) {
	meeting, err := scanMeetingColumns(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Meeting{}, persistence.ErrNotFound
		}
		return persistence.Meeting{}, err
	}
	return meeting, nil
}

func (r *MeetingRepository) scanMeetingRows(rows *sql.Rows) (persistence.Meeting, error) {
	return scanMeetingColumns(rows)
}

func scanMeetingColumns(scanner rowScanner) (persistence.Meeting, error) {
	var meeting persistence.Meeting
	var start, end, createdAt, updatedAt string
	var important int

	err := scanner.Scan(
		&meeting.ID,
		&meeting.Title,
		&start,
		&end,
		&important,
		&meeting.OwnerID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Meeting{}, err
	}

	meeting.IsImportant = important != 0
	if meeting.Start, err = time.Parse(time.RFC3339Nano, start); err != nil {
		return persistence.Meeting{}, fmt.Errorf("failed to parse start_time: %w", err)
	}
	if meeting.End, err = time.Parse(time.RFC3339Nano, end); err != nil {
		return persistence.Meeting{}, fmt.Errorf("failed to parse end_time: %w", err)
	}
	if meeting.CreatedAt, meeting.UpdatedAt, err = parseTimestamps(createdAt, updatedAt); err != nil {
		return persistence.Meeting{}, err
	}
	return meeting, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
