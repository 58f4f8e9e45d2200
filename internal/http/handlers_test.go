package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/meeting-calendar/internal/application"
	"github.com/example/meeting-calendar/internal/meeting"
	"github.com/example/meeting-calendar/internal/stats"
)

type meetingServiceStub struct {
	createFn func(ctx context.Context, params application.CreateMeetingParams) (meeting.Meeting, error)
	updateFn func(ctx context.Context, params application.UpdateMeetingParams) (meeting.Meeting, error)
	deleteFn func(ctx context.Context, meetingID string) error
	addFn    func(ctx context.Context, params application.AddParticipantParams) (meeting.Meeting, error)
	removeFn func(ctx context.Context, params application.RemoveParticipantParams) (meeting.Meeting, error)
}

func (s *meetingServiceStub) CreateMeeting(ctx context.Context, params application.CreateMeetingParams) (meeting.Meeting, error) {
	return s.createFn(ctx, params)
}

func (s *meetingServiceStub) UpdateMeeting(ctx context.Context, params application.UpdateMeetingParams) (meeting.Meeting, error) {
	return s.updateFn(ctx, params)
}

func (s *meetingServiceStub) DeleteMeeting(ctx context.Context, meetingID string) error {
	return s.deleteFn(ctx, meetingID)
}

func (s *meetingServiceStub) AddParticipant(ctx context.Context, params application.AddParticipantParams) (meeting.Meeting, error) {
	return s.addFn(ctx, params)
}

func (s *meetingServiceStub) RemoveParticipant(ctx context.Context, params application.RemoveParticipantParams) (meeting.Meeting, error) {
	return s.removeFn(ctx, params)
}

type statsServiceStub struct {
	weeklyFn func(ctx context.Context, params application.WeeklyStatsParams) (stats.WeeklyReport, error)
}

func (s *statsServiceStub) WeeklyStats(ctx context.Context, params application.WeeklyStatsParams) (stats.WeeklyReport, error) {
	return s.weeklyFn(ctx, params)
}

type authServiceStub struct {
	authenticateFn func(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error)
	revokeFn       func(ctx context.Context, token string) error
}

func (s *authServiceStub) Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error) {
	return s.authenticateFn(ctx, params)
}

func (s *authServiceStub) RevokeSession(ctx context.Context, token string) error {
	return s.revokeFn(ctx, token)
}

// withPrincipal injects a fixed principal, standing in for RequireSession.
func withPrincipal(principal application.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

func decodeErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}

func sampleMeeting() meeting.Meeting {
	start := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)
	return meeting.Meeting{
		ID:        "meeting-1",
		Title:     "定例会議",
		Start:     start,
		End:       start.Add(time.Hour),
		OwnerID:   "user-owner",
		CreatedAt: start.Add(-24 * time.Hour),
		UpdatedAt: start.Add(-24 * time.Hour),
	}
}

func TestMeetingHandlerCreate(t *testing.T) {
	principal := application.Principal{UserID: "user-owner", Email: "owner@example.com"}

	t.Run("creates a meeting and defaults the owner to the caller", func(t *testing.T) {
		var captured application.CreateMeetingParams
		service := &meetingServiceStub{
			createFn: func(ctx context.Context, params application.CreateMeetingParams) (meeting.Meeting, error) {
				captured = params
				return sampleMeeting(), nil
			},
		}
		router := NewRouter(RouterConfig{
			Meetings:   NewMeetingHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{withPrincipal(principal)},
		})

		body := `{"title":"定例会議","start":"2025-03-03T10:00:00Z","end":"2025-03-03T11:00:00Z","is_important":true}`
		req := httptest.NewRequest(http.MethodPost, "/meetings", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured.Input.OwnerEmail != "owner@example.com" {
			t.Fatalf("expected owner email from principal, got %q", captured.Input.OwnerEmail)
		}
		if !captured.Input.IsImportant {
			t.Fatal("expected is_important to be carried")
		}

		var resp meetingResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Meeting.ID != "meeting-1" {
			t.Fatalf("expected created meeting in response, got %+v", resp.Meeting)
		}
		if resp.Meeting.Participants == nil {
			t.Fatal("expected participants array, got null")
		}
	})

	t.Run("maps validation errors to 422 with the domain message", func(t *testing.T) {
		service := &meetingServiceStub{
			createFn: func(ctx context.Context, params application.CreateMeetingParams) (meeting.Meeting, error) {
				return meeting.Meeting{}, &meeting.ValidationError{Message: "タイトルは必須です"}
			},
		}
		router := NewRouter(RouterConfig{
			Meetings:   NewMeetingHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{withPrincipal(principal)},
		})

		req := httptest.NewRequest(http.MethodPost, "/meetings", strings.NewReader(`{"title":""}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		if resp := decodeErrorResponse(t, rec); resp.Message != "タイトルは必須です" {
			t.Fatalf("unexpected message %q", resp.Message)
		}
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		service := &meetingServiceStub{
			createFn: func(ctx context.Context, params application.CreateMeetingParams) (meeting.Meeting, error) {
				t.Fatal("service must not be called for malformed input")
				return meeting.Meeting{}, nil
			},
		}
		router := NewRouter(RouterConfig{
			Meetings:   NewMeetingHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{withPrincipal(principal)},
		})

		req := httptest.NewRequest(http.MethodPost, "/meetings", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestMeetingHandlerUpdate(t *testing.T) {
	principal := application.Principal{UserID: "user-intruder", Email: "intruder@example.com"}

	t.Run("passes path ID and requester to the service", func(t *testing.T) {
		var captured application.UpdateMeetingParams
		service := &meetingServiceStub{
			updateFn: func(ctx context.Context, params application.UpdateMeetingParams) (meeting.Meeting, error) {
				captured = params
				return sampleMeeting(), nil
			},
		}
		router := NewRouter(RouterConfig{
			Meetings:   NewMeetingHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{withPrincipal(principal)},
		})

		body := `{"title":"改名後","is_important":false}`
		req := httptest.NewRequest(http.MethodPut, "/meetings/meeting-1", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured.MeetingID != "meeting-1" {
			t.Fatalf("expected meeting ID from path, got %q", captured.MeetingID)
		}
		if captured.RequesterID != "user-intruder" {
			t.Fatalf("expected requester from principal, got %q", captured.RequesterID)
		}
		if captured.Input.Title == nil || *captured.Input.Title != "改名後" {
			t.Fatalf("expected title pointer to be set, got %+v", captured.Input.Title)
		}
		if captured.Input.Start != nil {
			t.Fatal("expected absent start to stay nil")
		}
		if captured.Input.IsImportant == nil || *captured.Input.IsImportant {
			t.Fatalf("expected is_important=false pointer, got %+v", captured.Input.IsImportant)
		}
	})

	t.Run("maps authorization failures to 403", func(t *testing.T) {
		service := &meetingServiceStub{
			updateFn: func(ctx context.Context, params application.UpdateMeetingParams) (meeting.Meeting, error) {
				return meeting.Meeting{}, &meeting.ForbiddenError{Message: "オーナーのみが会議を編集できます"}
			},
		}
		router := NewRouter(RouterConfig{
			Meetings:   NewMeetingHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{withPrincipal(principal)},
		})

		req := httptest.NewRequest(http.MethodPut, "/meetings/meeting-1", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		if resp := decodeErrorResponse(t, rec); resp.Message != "オーナーのみが会議を編集できます" {
			t.Fatalf("unexpected message %q", resp.Message)
		}
	})
}

func TestMeetingHandlerDelete(t *testing.T) {
	principal := application.Principal{UserID: "user-owner", Email: "owner@example.com"}

	t.Run("deletes and returns 204", func(t *testing.T) {
		var captured string
		service := &meetingServiceStub{
			deleteFn: func(ctx context.Context, meetingID string) error {
				captured = meetingID
				return nil
			},
		}
		router := NewRouter(RouterConfig{
			Meetings:   NewMeetingHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{withPrincipal(principal)},
		})

		req := httptest.NewRequest(http.MethodDelete, "/meetings/meeting-1", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if captured != "meeting-1" {
			t.Fatalf("expected deletion of meeting-1, got %q", captured)
		}
	})

	t.Run("maps missing meetings to 404", func(t *testing.T) {
		service := &meetingServiceStub{
			deleteFn: func(ctx context.Context, meetingID string) error {
				return &meeting.NotFoundError{Message: "会議が見つかりません"}
			},
		}
		router := NewRouter(RouterConfig{
			Meetings:   NewMeetingHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{withPrincipal(principal)},
		})

		req := httptest.NewRequest(http.MethodDelete, "/meetings/ghost", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if resp := decodeErrorResponse(t, rec); resp.Message != "会議が見つかりません" {
			t.Fatalf("unexpected message %q", resp.Message)
		}
	})
}

func TestMeetingHandlerParticipants(t *testing.T) {
	principal := application.Principal{UserID: "user-owner", Email: "owner@example.com"}

	t.Run("adds a participant identified by email", func(t *testing.T) {
		var captured application.AddParticipantParams
		service := &meetingServiceStub{
			addFn: func(ctx context.Context, params application.AddParticipantParams) (meeting.Meeting, error) {
				captured = params
				return sampleMeeting(), nil
			},
		}
		router := NewRouter(RouterConfig{
			Meetings:   NewMeetingHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{withPrincipal(principal)},
		})

		body := `{"email":"guest@example.com","name":"ゲスト"}`
		req := httptest.NewRequest(http.MethodPost, "/meetings/meeting-1/participants", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured.MeetingID != "meeting-1" || captured.InviteeEmail != "guest@example.com" {
			t.Fatalf("unexpected params %+v", captured)
		}
		if captured.RequesterEmail != "owner@example.com" {
			t.Fatalf("expected requester email from principal, got %q", captured.RequesterEmail)
		}
	})

	t.Run("maps roster authorization failures to 403", func(t *testing.T) {
		service := &meetingServiceStub{
			addFn: func(ctx context.Context, params application.AddParticipantParams) (meeting.Meeting, error) {
				return meeting.Meeting{}, &meeting.ForbiddenError{Message: "オーナーのみが参加者を追加できます"}
			},
		}
		router := NewRouter(RouterConfig{
			Meetings:   NewMeetingHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{withPrincipal(principal)},
		})

		req := httptest.NewRequest(http.MethodPost, "/meetings/meeting-1/participants", strings.NewReader(`{"email":"x@example.com"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("removes a participant addressed by path", func(t *testing.T) {
		var captured application.RemoveParticipantParams
		service := &meetingServiceStub{
			removeFn: func(ctx context.Context, params application.RemoveParticipantParams) (meeting.Meeting, error) {
				captured = params
				return sampleMeeting(), nil
			},
		}
		router := NewRouter(RouterConfig{
			Meetings:   NewMeetingHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{withPrincipal(principal)},
		})

		req := httptest.NewRequest(http.MethodDelete, "/meetings/meeting-1/participants/participant-9", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured.MeetingID != "meeting-1" || captured.ParticipantID != "participant-9" {
			t.Fatalf("unexpected params %+v", captured)
		}
		if captured.Requester != "owner@example.com" {
			t.Fatalf("expected requester identity from principal, got %q", captured.Requester)
		}
	})

	t.Run("maps non-owner removal attempts to 400", func(t *testing.T) {
		service := &meetingServiceStub{
			removeFn: func(ctx context.Context, params application.RemoveParticipantParams) (meeting.Meeting, error) {
				return meeting.Meeting{}, &meeting.BadRequestError{Message: "会議のオーナーのみが参加者を削除できます"}
			},
		}
		router := NewRouter(RouterConfig{
			Meetings:   NewMeetingHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{withPrincipal(principal)},
		})

		req := httptest.NewRequest(http.MethodDelete, "/meetings/meeting-1/participants/participant-9", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if resp := decodeErrorResponse(t, rec); resp.Message != "会議のオーナーのみが参加者を削除できます" {
			t.Fatalf("unexpected message %q", resp.Message)
		}
	})
}

func TestStatsHandlerWeekly(t *testing.T) {
	principal := application.Principal{UserID: "user-1", Email: "user@example.com"}

	t.Run("rounds the average to one decimal place", func(t *testing.T) {
		var captured application.WeeklyStatsParams
		service := &statsServiceStub{
			weeklyFn: func(ctx context.Context, params application.WeeklyStatsParams) (stats.WeeklyReport, error) {
				captured = params
				return stats.WeeklyReport{
					Days: []stats.DayTotal{
						{Date: "2025-03-03", Weekday: "月", TotalMinutes: 60},
					},
					AverageDailyMinutes: 225.0 / 7,
				}, nil
			},
		}
		router := NewRouter(RouterConfig{
			Stats:      NewStatsHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{withPrincipal(principal)},
		})

		req := httptest.NewRequest(http.MethodGet, "/stats/weekly?week_start=2025-03-03", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured.UserID != "user-1" {
			t.Fatalf("expected principal user ID, got %q", captured.UserID)
		}
		if got, want := captured.WeekStart, time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
			t.Fatalf("expected week start %v, got %v", want, got)
		}

		var resp weeklyStatsResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.AverageDailyMinutes != 32.1 {
			t.Fatalf("expected rounded average 32.1, got %v", resp.AverageDailyMinutes)
		}
		if resp.WeekStart != "2025-03-03" {
			t.Fatalf("unexpected week_start %q", resp.WeekStart)
		}
	})

	t.Run("rejects a missing or malformed week_start", func(t *testing.T) {
		service := &statsServiceStub{
			weeklyFn: func(ctx context.Context, params application.WeeklyStatsParams) (stats.WeeklyReport, error) {
				t.Fatal("service must not be called without a valid week_start")
				return stats.WeeklyReport{}, nil
			},
		}
		router := NewRouter(RouterConfig{
			Stats:      NewStatsHandler(service, nil),
			Middleware: []func(http.Handler) http.Handler{withPrincipal(principal)},
		})

		for _, target := range []string{"/stats/weekly", "/stats/weekly?week_start=03-03-2025"} {
			req := httptest.NewRequest(http.MethodGet, target, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("%s: expected 400, got %d", target, rec.Code)
			}
		}
	})
}

func TestAuthHandlerLogin(t *testing.T) {
	t.Run("issues a session token via body, header and cookie", func(t *testing.T) {
		expires := time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC)
		service := &authServiceStub{
			authenticateFn: func(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error) {
				if params.Email != "owner@example.com" {
					t.Fatalf("expected lowercased trimmed email, got %q", params.Email)
				}
				return application.AuthenticateResult{
					User:    application.User{ID: "user-1", Email: params.Email},
					Session: application.Session{Token: "token-abc", ExpiresAt: expires},
				}, nil
			},
		}
		router := NewRouter(RouterConfig{Auth: NewAuthHandler(service, nil)})

		body := `{"email":"  Owner@Example.com ","password":"secret"}`
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got := rec.Header().Get("X-Session-Token"); got != "token-abc" {
			t.Fatalf("expected session token header, got %q", got)
		}

		var resp loginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Token != "token-abc" {
			t.Fatalf("unexpected token %q", resp.Token)
		}

		foundCookie := false
		for _, cookie := range rec.Result().Cookies() {
			if cookie.Name == "session_token" && cookie.Value == "token-abc" {
				foundCookie = true
			}
		}
		if !foundCookie {
			t.Fatal("expected session cookie to be set")
		}
	})

	t.Run("masks invalid credentials as 401", func(t *testing.T) {
		service := &authServiceStub{
			authenticateFn: func(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error) {
				return application.AuthenticateResult{}, application.ErrInvalidCredentials
			},
		}
		router := NewRouter(RouterConfig{Auth: NewAuthHandler(service, nil)})

		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"x@example.com","password":"bad"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		resp := decodeErrorResponse(t, rec)
		if resp.ErrorCode != "AUTH_INVALID_CREDENTIALS" {
			t.Fatalf("unexpected error code %q", resp.ErrorCode)
		}
	})

	t.Run("revokes the current session and clears the cookie", func(t *testing.T) {
		var revoked string
		service := &authServiceStub{
			revokeFn: func(ctx context.Context, token string) error {
				revoked = token
				return nil
			},
		}
		router := NewRouter(RouterConfig{Auth: NewAuthHandler(service, nil)})

		req := httptest.NewRequest(http.MethodDelete, "/sessions/current", nil)
		req.Header.Set("Authorization", "Bearer token-abc")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if revoked != "token-abc" {
			t.Fatalf("expected token-abc revoked, got %q", revoked)
		}
	})
}

func TestRouterMethodDispatch(t *testing.T) {
	service := &meetingServiceStub{}
	router := NewRouter(RouterConfig{Meetings: NewMeetingHandler(service, nil)})

	cases := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/meetings"},
		{http.MethodPatch, "/meetings/meeting-1"},
		{http.MethodGet, "/meetings/meeting-1/participants"},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s: expected 405, got %d", tc.method, tc.target, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodDelete, "/meetings/meeting-1/participants/p-1/extra", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for overlong path, got %d", rec.Code)
	}
}
