package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/meeting-calendar/internal/application"
	"github.com/example/meeting-calendar/internal/meeting"
)

type meetingService interface {
	CreateMeeting(ctx context.Context, params application.CreateMeetingParams) (meeting.Meeting, error)
	UpdateMeeting(ctx context.Context, params application.UpdateMeetingParams) (meeting.Meeting, error)
	DeleteMeeting(ctx context.Context, meetingID string) error
	AddParticipant(ctx context.Context, params application.AddParticipantParams) (meeting.Meeting, error)
	RemoveParticipant(ctx context.Context, params application.RemoveParticipantParams) (meeting.Meeting, error)
}

type MeetingHandler struct {
	service   meetingService
	responder responder
}

func NewMeetingHandler(service meetingService, logger *slog.Logger) *MeetingHandler {
	return &MeetingHandler{service: service, responder: newResponder(logger)}
}

func (h *MeetingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req createMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	ownerEmail := strings.TrimSpace(req.OwnerEmail)
	if ownerEmail == "" {
		principal, _ := PrincipalFromContext(r.Context())
		ownerEmail = principal.Email
	}

	created, err := h.service.CreateMeeting(r.Context(), application.CreateMeetingParams{
		Input: application.MeetingInput{
			Title:       req.Title,
			Start:       parseTime(req.Start),
			End:         parseTime(req.End),
			IsImportant: req.IsImportant,
			OwnerEmail:  ownerEmail,
		},
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, meetingResponse{Meeting: toMeetingDTO(created)})
}

func (h *MeetingHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := MeetingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMeetingID)
		return
	}

	var req updateMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	updated, err := h.service.UpdateMeeting(r.Context(), application.UpdateMeetingParams{
		MeetingID:   meetingID,
		RequesterID: principal.UserID,
		Input:       req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, meetingResponse{Meeting: toMeetingDTO(updated)})
}

func (h *MeetingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := MeetingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMeetingID)
		return
	}

	if err := h.service.DeleteMeeting(r.Context(), meetingID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *MeetingHandler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := MeetingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMeetingID)
		return
	}

	var req addParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	updated, err := h.service.AddParticipant(r.Context(), application.AddParticipantParams{
		MeetingID:      meetingID,
		RequesterEmail: principal.Email,
		InviteeEmail:   req.Email,
		InviteeName:    req.Name,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, meetingResponse{Meeting: toMeetingDTO(updated)})
}

func (h *MeetingHandler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	meetingID, ok := MeetingIDFromContext(r.Context())
	if !ok || strings.TrimSpace(meetingID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMeetingID)
		return
	}

	participantID, ok := ParticipantIDFromContext(r.Context())
	if !ok || strings.TrimSpace(participantID) == "" {
		http.NotFound(w, r)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	updated, err := h.service.RemoveParticipant(r.Context(), application.RemoveParticipantParams{
		MeetingID:     meetingID,
		ParticipantID: participantID,
		Requester:     principal.Email,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, meetingResponse{Meeting: toMeetingDTO(updated)})
}

type createMeetingRequest struct {
	Title       string `json:"title"`
	Start       string `json:"start"`
	End         string `json:"end"`
	IsImportant bool   `json:"is_important"`
	OwnerEmail  string `json:"owner_email"`
}

type updateMeetingRequest struct {
	Title       *string `json:"title"`
	Start       *string `json:"start"`
	End         *string `json:"end"`
	IsImportant *bool   `json:"is_important"`
}

func (r updateMeetingRequest) toInput() meeting.UpdateInput {
	input := meeting.UpdateInput{
		Title:       r.Title,
		IsImportant: r.IsImportant,
	}
	if r.Start != nil {
		ts := parseTime(*r.Start)
		input.Start = &ts
	}
	if r.End != nil {
		ts := parseTime(*r.End)
		input.End = &ts
	}
	return input
}

type addParticipantRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	return time.Time{}
}

type meetingResponse struct {
	Meeting meetingDTO `json:"meeting"`
}

type meetingDTO struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Start        string           `json:"start"`
	End          string           `json:"end"`
	IsImportant  bool             `json:"is_important"`
	OwnerID      string           `json:"owner_id"`
	Participants []participantDTO `json:"participants"`
	CreatedAt    string           `json:"created_at"`
	UpdatedAt    string           `json:"updated_at"`
}

type participantDTO struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
	JoinedAt  string `json:"joined_at"`
}

func toMeetingDTO(m meeting.Meeting) meetingDTO {
	participants := make([]participantDTO, 0, len(m.Participants))
	for _, p := range m.Participants {
		participants = append(participants, participantDTO{
			ID:        p.ID,
			UserID:    p.UserID,
			UserName:  p.UserName,
			UserEmail: p.UserEmail,
			JoinedAt:  p.JoinedAt.UTC().Format(time.RFC3339Nano),
		})
	}

	return meetingDTO{
		ID:           m.ID,
		Title:        m.Title,
		Start:        m.Start.UTC().Format(time.RFC3339Nano),
		End:          m.End.UTC().Format(time.RFC3339Nano),
		IsImportant:  m.IsImportant,
		OwnerID:      m.OwnerID,
		Participants: participants,
		CreatedAt:    m.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    m.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
