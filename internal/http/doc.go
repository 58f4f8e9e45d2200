// Package http provides HTTP handlers and middleware for the calendar API.
//
// The router exposes the following endpoints:
//   - POST /login: issues a session token. Body: {"email","password"}. The token
//     is returned in the JSON body and surfaced via the `X-Session-Token` header
//     and a `session_token` cookie.
//   - DELETE /sessions/current: revokes the current session token extracted from
//     the Authorization header or session cookie. Returns 204 and clears the cookie.
//   - POST /meetings, PUT /meetings/{id}, DELETE /meetings/{id}: meeting
//     management endpoints exchanging the `meetingDTO` payload defined in
//     meeting_handler.go.
//   - POST /meetings/{id}/participants, DELETE /meetings/{id}/participants/{pid}:
//     roster management for a single meeting.
//   - GET /stats/weekly?week_start=YYYY-MM-DD: per-day meeting-time totals and
//     the daily average for the authenticated user's week.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
