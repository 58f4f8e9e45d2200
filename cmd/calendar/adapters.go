package main

import (
	"context"
	"errors"
	"time"

	"github.com/example/meeting-calendar/internal/application"
	"github.com/example/meeting-calendar/internal/meeting"
	"github.com/example/meeting-calendar/internal/persistence"
)

// userRepositoryAdapter bridges the persistence user repository to the
// application's UserRepository and CredentialStore interfaces.
type userRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newUserRepositoryAdapter(repo persistence.UserRepository) *userRepositoryAdapter {
	return &userRepositoryAdapter{repo: repo}
}

func (a *userRepositoryAdapter) CreateUser(ctx context.Context, user application.User) (application.User, error) {
	if err := a.repo.CreateUser(ctx, toPersistenceUser(user)); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, mapPersistenceError(err)
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) GetUserByEmail(ctx context.Context, email string) (application.User, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.User{}, mapPersistenceError(err)
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserCredentials{}, mapPersistenceError(err)
	}
	return application.UserCredentials{
		User:         toApplicationUser(stored),
		PasswordHash: stored.PasswordHash,
	}, nil
}

// meetingRepositoryAdapter bridges the persistence meeting repository to the
// application's MeetingRepository and MeetingQuery interfaces.
type meetingRepositoryAdapter struct {
	repo persistence.MeetingRepository
}

func newMeetingRepositoryAdapter(repo persistence.MeetingRepository) *meetingRepositoryAdapter {
	return &meetingRepositoryAdapter{repo: repo}
}

func (a *meetingRepositoryAdapter) CreateMeeting(ctx context.Context, m meeting.Meeting) (meeting.Meeting, error) {
	if err := a.repo.CreateMeeting(ctx, toPersistenceMeeting(m)); err != nil {
		return meeting.Meeting{}, err
	}
	stored, err := a.repo.GetMeeting(ctx, m.ID)
	if err != nil {
		return meeting.Meeting{}, err
	}
	return toDomainMeeting(stored), nil
}

func (a *meetingRepositoryAdapter) GetMeeting(ctx context.Context, id string) (meeting.Meeting, error) {
	stored, err := a.repo.GetMeeting(ctx, id)
	if err != nil {
		return meeting.Meeting{}, err
	}
	return toDomainMeeting(stored), nil
}

func (a *meetingRepositoryAdapter) SaveMeeting(ctx context.Context, m meeting.Meeting) (meeting.Meeting, error) {
	if err := a.repo.SaveMeeting(ctx, toPersistenceMeeting(m)); err != nil {
		return meeting.Meeting{}, err
	}
	stored, err := a.repo.GetMeeting(ctx, m.ID)
	if err != nil {
		return meeting.Meeting{}, err
	}
	return toDomainMeeting(stored), nil
}

func (a *meetingRepositoryAdapter) DeleteMeeting(ctx context.Context, id string) error {
	return a.repo.DeleteMeeting(ctx, id)
}

func (a *meetingRepositoryAdapter) ListMeetingsForUser(ctx context.Context, userID string, from, to time.Time) ([]meeting.Meeting, error) {
	stored, err := a.repo.ListMeetings(ctx, persistence.MeetingFilter{
		UserID:       userID,
		StartsAfter:  &from,
		StartsBefore: &to,
	})
	if err != nil {
		return nil, err
	}
	meetings := make([]meeting.Meeting, 0, len(stored))
	for _, record := range stored {
		meetings = append(meetings, toDomainMeeting(record))
	}
	return meetings, nil
}

// sessionRepositoryAdapter bridges the persistence session repository to the
// application's SessionRepository interface.
type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, mapPersistenceError(err)
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, mapPersistenceError(err)
	}
	return toApplicationSession(stored), nil
}

func mapPersistenceError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return application.ErrNotFound
	}
	return err
}

func toApplicationUser(user persistence.User) application.User {
	return application.User{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.DisplayName,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func toPersistenceUser(user application.User) persistence.User {
	return persistence.User{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.Name,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

func toDomainMeeting(m persistence.Meeting) meeting.Meeting {
	participants := make([]meeting.Participant, 0, len(m.Participants))
	for _, p := range m.Participants {
		participants = append(participants, meeting.Participant{
			ID:        p.ID,
			UserID:    p.UserID,
			UserName:  p.UserName,
			UserEmail: p.UserEmail,
			JoinedAt:  p.JoinedAt,
		})
	}
	return meeting.Meeting{
		ID:           m.ID,
		Title:        m.Title,
		Start:        m.Start,
		End:          m.End,
		IsImportant:  m.IsImportant,
		OwnerID:      m.OwnerID,
		Participants: participants,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toPersistenceMeeting(m meeting.Meeting) persistence.Meeting {
	participants := make([]persistence.Participant, 0, len(m.Participants))
	for _, p := range m.Participants {
		participants = append(participants, persistence.Participant{
			ID:        p.ID,
			MeetingID: m.ID,
			UserID:    p.UserID,
			UserName:  p.UserName,
			UserEmail: p.UserEmail,
			JoinedAt:  p.JoinedAt,
		})
	}
	return persistence.Meeting{
		ID:           m.ID,
		Title:        m.Title,
		Start:        m.Start,
		End:          m.End,
		IsImportant:  m.IsImportant,
		OwnerID:      m.OwnerID,
		Participants: participants,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toApplicationSession(session persistence.Session) application.Session {
	return application.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		RevokedAt: session.RevokedAt,
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		RevokedAt: session.RevokedAt,
	}
}
