package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/meeting-calendar/internal/meeting"
	"github.com/example/meeting-calendar/internal/persistence"
)

// MeetingRepository captures the persistence interactions needed by the
// meeting commands.
type MeetingRepository interface {
	CreateMeeting(ctx context.Context, m meeting.Meeting) (meeting.Meeting, error)
	GetMeeting(ctx context.Context, id string) (meeting.Meeting, error)
	SaveMeeting(ctx context.Context, m meeting.Meeting) (meeting.Meeting, error)
	DeleteMeeting(ctx context.Context, id string) error
}

// MeetingService orchestrates loading, authorization, aggregate mutation,
// and persistence for the meeting use cases.
type MeetingService struct {
	meetings    MeetingRepository
	users       UserRepository
	resolver    UserResolver
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewMeetingService wires dependencies for the meeting commands.
func NewMeetingService(meetings MeetingRepository, users UserRepository, resolver UserResolver, idGenerator func() string, now func() time.Time) *MeetingService {
	return NewMeetingServiceWithLogger(meetings, users, resolver, idGenerator, now, nil)
}

// NewMeetingServiceWithLogger constructs a MeetingService with a specified logger.
func NewMeetingServiceWithLogger(meetings MeetingRepository, users UserRepository, resolver UserResolver, idGenerator func() string, now func() time.Time, logger *slog.Logger) *MeetingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &MeetingService{
		meetings:    meetings,
		users:       users,
		resolver:    resolver,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *MeetingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "MeetingService", operation, attrs...)
}

// CreateMeeting resolves the owner by email, constructs the aggregate, and
// persists it. Anyone may create a meeting for themselves, so there is no
// separate authorization step.
func (s *MeetingService) CreateMeeting(ctx context.Context, params CreateMeetingParams) (meeting.Meeting, error) {
	if s == nil {
		return meeting.Meeting{}, fmt.Errorf("MeetingService is nil")
	}
	if s.resolver == nil || s.meetings == nil {
		return meeting.Meeting{}, fmt.Errorf("meeting service not configured")
	}

	logger := s.loggerWith(ctx, "CreateMeeting", "owner_email", params.Input.OwnerEmail)

	owner, err := s.resolver.ResolveOrCreate(ctx, params.Input.OwnerEmail, "")
	if err != nil {
		logger.ErrorContext(ctx, "owner resolution failed", "error", err, "error_kind", ErrorKind(err))
		return meeting.Meeting{}, err
	}

	created, err := meeting.New(meeting.CreateInput{
		Title:       params.Input.Title,
		Start:       params.Input.Start,
		End:         params.Input.End,
		IsImportant: params.Input.IsImportant,
		OwnerID:     owner.ID,
	}, s.idGenerator(), s.now())
	if err != nil {
		logger.ErrorContext(ctx, "meeting construction failed", "error", err, "error_kind", ErrorKind(err))
		return meeting.Meeting{}, err
	}

	persisted, err := s.meetings.CreateMeeting(ctx, created)
	if err != nil {
		return meeting.Meeting{}, mapMeetingRepoError(err)
	}

	logger.InfoContext(ctx, "meeting created", "meeting_id", persisted.ID, "owner_id", owner.ID)
	return persisted, nil
}

// UpdateMeeting loads the meeting and delegates authorization, lifecycle,
// and validation checks entirely to the aggregate before persisting.
func (s *MeetingService) UpdateMeeting(ctx context.Context, params UpdateMeetingParams) (meeting.Meeting, error) {
	if s == nil {
		return meeting.Meeting{}, fmt.Errorf("MeetingService is nil")
	}
	if s.meetings == nil {
		return meeting.Meeting{}, fmt.Errorf("meeting repository not configured")
	}

	logger := s.loggerWith(ctx, "UpdateMeeting", "meeting_id", params.MeetingID)

	existing, err := s.meetings.GetMeeting(ctx, params.MeetingID)
	if err != nil {
		return meeting.Meeting{}, mapMeetingRepoError(err)
	}

	if err := existing.ModifyDetails(params.Input, params.RequesterID, s.now()); err != nil {
		logger.ErrorContext(ctx, "meeting update rejected", "error", err, "error_kind", ErrorKind(err))
		return meeting.Meeting{}, err
	}

	persisted, err := s.meetings.SaveMeeting(ctx, existing)
	if err != nil {
		return meeting.Meeting{}, mapMeetingRepoError(err)
	}

	logger.InfoContext(ctx, "meeting updated")
	return persisted, nil
}

// DeleteMeeting removes a meeting by id. No ownership check is performed
// at this layer in the current design.
func (s *MeetingService) DeleteMeeting(ctx context.Context, meetingID string) error {
	if s == nil {
		return fmt.Errorf("MeetingService is nil")
	}
	if s.meetings == nil {
		return fmt.Errorf("meeting repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteMeeting", "meeting_id", meetingID)

	if _, err := s.meetings.GetMeeting(ctx, meetingID); err != nil {
		return mapMeetingRepoError(err)
	}

	if err := s.meetings.DeleteMeeting(ctx, meetingID); err != nil {
		return mapMeetingRepoError(err)
	}

	logger.InfoContext(ctx, "meeting deleted")
	return nil
}

// AddParticipant resolves the requester and invitee, authorizes the
// requester as the meeting owner, and appends the invitee snapshot.
// Capacity and uniqueness errors from the aggregate propagate unchanged.
func (s *MeetingService) AddParticipant(ctx context.Context, params AddParticipantParams) (meeting.Meeting, error) {
	if s == nil {
		return meeting.Meeting{}, fmt.Errorf("MeetingService is nil")
	}
	if s.meetings == nil || s.resolver == nil {
		return meeting.Meeting{}, fmt.Errorf("meeting service not configured")
	}

	logger := s.loggerWith(ctx, "AddParticipant", "meeting_id", params.MeetingID)

	existing, err := s.meetings.GetMeeting(ctx, params.MeetingID)
	if err != nil {
		return meeting.Meeting{}, mapMeetingRepoError(err)
	}

	requester, err := s.resolver.ResolveOrCreate(ctx, params.RequesterEmail, "")
	if err != nil {
		return meeting.Meeting{}, err
	}
	if requester.ID != existing.OwnerID {
		logger.ErrorContext(ctx, "participant add rejected", "error_kind", "forbidden")
		return meeting.Meeting{}, &meeting.ForbiddenError{Message: "オーナーのみが参加者を追加できます"}
	}

	invitee, err := s.resolver.ResolveOrCreate(ctx, params.InviteeEmail, params.InviteeName)
	if err != nil {
		return meeting.Meeting{}, err
	}

	if err := existing.AddParticipant(meeting.User{
		ID:    invitee.ID,
		Name:  invitee.Name,
		Email: invitee.Email,
	}, s.idGenerator(), s.now()); err != nil {
		logger.ErrorContext(ctx, "participant add rejected", "error", err, "error_kind", ErrorKind(err))
		return meeting.Meeting{}, err
	}

	persisted, err := s.meetings.SaveMeeting(ctx, existing)
	if err != nil {
		return meeting.Meeting{}, mapMeetingRepoError(err)
	}

	logger.InfoContext(ctx, "participant added", "user_id", invitee.ID)
	return persisted, nil
}

// RemoveParticipant authorizes the requester against the owner's email and
// removes the referenced participant. The requester arrives as an
// email-like string in this flow, so the owner user is resolved
// independently rather than comparing ids.
func (s *MeetingService) RemoveParticipant(ctx context.Context, params RemoveParticipantParams) (meeting.Meeting, error) {
	if s == nil {
		return meeting.Meeting{}, fmt.Errorf("MeetingService is nil")
	}
	if s.meetings == nil || s.users == nil {
		return meeting.Meeting{}, fmt.Errorf("meeting service not configured")
	}

	logger := s.loggerWith(ctx, "RemoveParticipant",
		"meeting_id", params.MeetingID,
		"participant_id", params.ParticipantID,
	)

	existing, err := s.meetings.GetMeeting(ctx, params.MeetingID)
	if err != nil {
		return meeting.Meeting{}, mapMeetingRepoError(err)
	}

	owner, err := s.users.GetUser(ctx, existing.OwnerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return meeting.Meeting{}, &meeting.NotFoundError{Message: "会議が見つかりません"}
		}
		return meeting.Meeting{}, err
	}
	if !strings.EqualFold(strings.TrimSpace(params.Requester), owner.Email) {
		logger.ErrorContext(ctx, "participant removal rejected", "error_kind", "bad_request")
		return meeting.Meeting{}, &meeting.BadRequestError{Message: "会議のオーナーのみが参加者を削除できます"}
	}

	participant, ok := existing.ParticipantByID(params.ParticipantID)
	if !ok {
		return meeting.Meeting{}, &meeting.NotFoundError{Message: "この会議に参加者が見つかりません"}
	}

	existing.RemoveParticipant(participant.UserID, s.now())

	persisted, err := s.meetings.SaveMeeting(ctx, existing)
	if err != nil {
		return meeting.Meeting{}, mapMeetingRepoError(err)
	}

	logger.InfoContext(ctx, "participant removed", "user_id", participant.UserID)
	return persisted, nil
}

func mapMeetingRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
		return &meeting.NotFoundError{Message: "会議が見つかりません"}
	}
	return err
}
