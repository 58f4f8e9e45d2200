package http

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/example/meeting-calendar/internal/application"
	"github.com/example/meeting-calendar/internal/stats"
)

type statsService interface {
	WeeklyStats(ctx context.Context, params application.WeeklyStatsParams) (stats.WeeklyReport, error)
}

type StatsHandler struct {
	service   statsService
	responder responder
}

func NewStatsHandler(service statsService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{service: service, responder: newResponder(logger)}
}

func (h *StatsHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	raw := strings.TrimSpace(r.URL.Query().Get("week_start"))
	if raw == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWeekStart)
		return
	}
	weekStart, err := time.Parse("2006-01-02", raw)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWeekStart)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	report, err := h.service.WeeklyStats(r.Context(), application.WeeklyStatsParams{
		UserID:    principal.UserID,
		WeekStart: weekStart,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toWeeklyStatsResponse(raw, report))
}

type weeklyStatsResponse struct {
	WeekStart           string        `json:"week_start"`
	Days                []dayTotalDTO `json:"days"`
	AverageDailyMinutes float64       `json:"average_daily_minutes"`
}

type dayTotalDTO struct {
	Date         string  `json:"date"`
	Weekday      string  `json:"weekday"`
	TotalMinutes float64 `json:"total_minutes"`
}

func toWeeklyStatsResponse(weekStart string, report stats.WeeklyReport) weeklyStatsResponse {
	days := make([]dayTotalDTO, 0, len(report.Days))
	for _, day := range report.Days {
		days = append(days, dayTotalDTO{
			Date:         day.Date,
			Weekday:      day.Weekday,
			TotalMinutes: day.TotalMinutes,
		})
	}

	return weeklyStatsResponse{
		WeekStart:           weekStart,
		Days:                days,
		AverageDailyMinutes: roundToTenth(report.AverageDailyMinutes),
	}
}

// roundToTenth rounds the average at the presentation boundary only; the
// calculator itself returns the exact quotient.
func roundToTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
