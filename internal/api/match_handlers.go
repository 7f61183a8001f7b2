package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/renforthq/renfort/internal/geo"
	"github.com/renforthq/renfort/internal/matching"
	"github.com/renforthq/renfort/internal/middleware"
	"github.com/renforthq/renfort/internal/validate"
)

// MatchHandlers holds dependencies for candidate ranking HTTP handlers.
type MatchHandlers struct {
	pipeline *matching.Pipeline
	logger   *slog.Logger
	timeout  time.Duration
}

// NewMatchHandlers creates a new MatchHandlers instance. The timeout bounds
// every ranking call; zero disables the per-request deadline.
func NewMatchHandlers(pipeline *matching.Pipeline, logger *slog.Logger, timeout time.Duration) *MatchHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &MatchHandlers{
		pipeline: pipeline,
		logger:   logger,
		timeout:  timeout,
	}
}

// candidateResponse is the wire shape of one ranked candidate.
// DistanceKm is a pointer so an unknown distance serializes as null rather
// than breaking JSON encoding with an infinite value.
type candidateResponse struct {
	WorkerID      string   `json:"worker_id"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	Specialties   []string `json:"specialties"`
	Diplomas      []string `json:"diplomas"`
	DistanceKm    *float64 `json:"distance_km"`
	SkillRatio    float64  `json:"skill_ratio"`
	DiplomaRatio  float64  `json:"diploma_ratio"`
	IsAvailable   bool     `json:"is_available"`
	HourlyRate    float64  `json:"hourly_rate"`
	AverageRating float64  `json:"average_rating"`
	CompletedJobs int      `json:"completed_jobs"`
	Score         int      `json:"score"`
}

// rankingResponse is the wire shape of a full ranking call.
type rankingResponse struct {
	MissionID      string              `json:"mission_id"`
	SearchRadiusKm float64             `json:"search_radius_km"`
	TotalFound     int                 `json:"total_found"`
	Matches        []candidateResponse `json:"matches"`
}

// toCandidateResponse converts an engine match to its wire shape.
func toCandidateResponse(m matching.CandidateMatch) candidateResponse {
	resp := candidateResponse{
		WorkerID:      m.Worker.ID,
		FirstName:     m.Worker.FirstName,
		LastName:      m.Worker.LastName,
		Specialties:   m.Worker.Specialties,
		Diplomas:      matching.CredentialNames(m.Worker.Credentials),
		SkillRatio:    m.SkillRatio,
		DiplomaRatio:  m.DiplomaRatio,
		IsAvailable:   m.IsAvailable,
		HourlyRate:    m.Worker.HourlyRate,
		AverageRating: m.Worker.AverageRating,
		CompletedJobs: m.Worker.CompletedJobs,
		Score:         m.Score,
	}
	if !geo.IsUnreachable(m.DistanceKm) {
		d := m.DistanceKm
		resp.DistanceKm = &d
	}
	return resp
}

// Candidates handles GET /missions/{id}/candidates.
//
// Query parameters:
//   - limit: maximum number of matches to return (optional, must be positive)
//   - radius_km: search radius override in kilometers (optional, must be positive)
//   - skills: comma-separated skill override (optional; present-but-empty
//     means "no skill requirement")
func (h *MatchHandlers) Candidates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	missionID := parseCandidatesPath(r.URL.Path)
	if missionID == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Mission ID is required")
		return
	}
	if _, err := validate.ID(missionID); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "invalid mission id")
		return
	}

	ctx := middleware.SetMissionID(r.Context(), missionID)
	middleware.UpdateResponseContext(w, ctx)

	opts, err := parseRankingOptions(r)
	if err != nil {
		ctx = middleware.SetErrorCode(ctx, ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.pipeline.ComputeCandidates(ctx, missionID, opts)
	if err != nil {
		h.writeMatchError(w, ctx, err)
		return
	}

	matches := make([]candidateResponse, 0, len(result.Matches))
	for _, m := range result.Matches {
		matches = append(matches, toCandidateResponse(m))
	}

	writeJSON(w, http.StatusOK, rankingResponse{
		MissionID:      result.MissionID,
		SearchRadiusKm: result.SearchRadiusKm,
		TotalFound:     result.TotalFound,
		Matches:        matches,
	})
}

// ScoreRequest is the request body for POST /matches/score.
type ScoreRequest struct {
	Mission *matching.Mission       `json:"mission"`
	Worker  *matching.WorkerProfile `json:"worker"`
}

// Score handles POST /matches/score: it scores one worker against one
// mission without the geographic filter, for inspection and tooling.
func (h *MatchHandlers) Score(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body")
		return
	}

	if req.Mission == nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "mission with id is required")
		return
	}
	if _, err := validate.ID(req.Mission.ID); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "mission with id is required")
		return
	}
	if req.Worker == nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "worker with id is required")
		return
	}
	if _, err := validate.ID(req.Worker.ID); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "worker with id is required")
		return
	}

	match := h.pipeline.ComputeScore(req.Mission, req.Worker)
	writeJSON(w, http.StatusOK, toCandidateResponse(match))
}

// parseCandidatesPath extracts the mission id from /missions/{id}/candidates.
// Returns "" when the path does not match.
func parseCandidatesPath(path string) string {
	parts := strings.Split(strings.TrimPrefix(path, "/missions/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "candidates" {
		return ""
	}
	return parts[0]
}

// parseRankingOptions reads limit, radius_km, and skills query parameters.
func parseRankingOptions(r *http.Request) (matching.Options, error) {
	var opts matching.Options
	q := r.URL.Query()

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return opts, errors.New("limit must be an integer")
		}
		opts.Limit = &limit
	}

	if raw := q.Get("radius_km"); raw != "" {
		radius, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return opts, errors.New("radius_km must be a number")
		}
		opts.RadiusKm = &radius
	}

	if _, present := q["skills"]; present {
		skills := []string{}
		for _, part := range strings.Split(q.Get("skills"), ",") {
			term, err := validate.SkillTerm(part)
			if err != nil {
				return opts, errors.New("skills contains an invalid term")
			}
			if term != "" {
				skills = append(skills, term)
			}
		}
		opts.RequiredSkillsOverride = skills
	}

	return opts, nil
}

// writeMatchError maps engine errors to HTTP error responses.
func (h *MatchHandlers) writeMatchError(w http.ResponseWriter, ctx context.Context, err error) {
	var (
		status int
		code   string
	)

	switch {
	case errors.Is(err, matching.ErrInvalidInput):
		status, code = http.StatusBadRequest, ErrCodeValidation
	case errors.Is(err, matching.ErrMissionNotFound):
		status, code = http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, matching.ErrDeadlineExceeded):
		status, code = http.StatusGatewayTimeout, ErrCodeTimeout
	case errors.Is(err, matching.ErrUpstream):
		status, code = http.StatusBadGateway, ErrCodeUpstream
		h.logger.Error("ranking upstream failure", "error", err)
	default:
		status, code = http.StatusInternalServerError, ErrCodeInternal
		h.logger.Error("unexpected ranking failure", "error", err)
	}

	ctx = middleware.SetErrorCode(ctx, code)
	WriteError(w, ctx, status, code, err.Error())
}

// writeJSON writes a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
