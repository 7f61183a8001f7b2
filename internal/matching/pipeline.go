package matching

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/renforthq/renfort/internal/geo"
	"github.com/renforthq/renfort/internal/ranking"
	"github.com/renforthq/renfort/internal/tracing"
)

// Pipeline defaults.
const (
	DefaultRadiusKm    = 50.0
	DefaultLimit       = 10
	DefaultConcurrency = 8
)

// Options are the caller-supplied parameters of a ranking call. Nil pointer
// fields mean "not supplied"; explicitly supplied non-positive values are
// rejected with an InvalidInputError.
type Options struct {
	// RequiredSkillsOverride replaces the mission's required skill set when
	// non-nil. A non-nil empty override means "no skill requirement".
	RequiredSkillsOverride []string
	// RadiusKm overrides the effective search radius.
	RadiusKm *float64
	// Limit overrides the maximum number of returned matches.
	Limit *int
}

// PipelineConfig configures a ranking Pipeline. Zero values fall back to
// sensible defaults.
type PipelineConfig struct {
	// Matcher used for skill and credential matching. Defaults to the
	// bidirectional substring matcher.
	Matcher Matcher
	// Weights for composite scoring. Defaults to ranking.DefaultWeights().
	Weights *ranking.Weights
	// Logger for per-request diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
	// Metrics for pipeline instrumentation. Optional.
	Metrics *Metrics
	// Concurrency caps the number of goroutines scoring candidates.
	Concurrency int
	// DefaultRadiusKm applies when neither the mission nor the caller
	// supplies a radius.
	DefaultRadiusKm float64
	// DefaultLimit applies when the caller supplies no limit.
	DefaultLimit int
}

// Pipeline orchestrates one ranking call: it loads the mission and the
// candidate pool through the injected sources, applies the hard geographic
// filter, scores surviving candidates concurrently, and returns a sorted,
// truncated result. The pipeline holds no mutable state between calls and is
// safe for concurrent use.
type Pipeline struct {
	missions MissionSource
	workers  WorkerSource

	matcher         Matcher
	weights         *ranking.Weights
	logger          *slog.Logger
	metrics         *Metrics
	concurrency     int
	defaultRadiusKm float64
	defaultLimit    int
}

// NewPipeline creates a ranking pipeline over the given sources.
func NewPipeline(missions MissionSource, workers WorkerSource, cfg PipelineConfig) *Pipeline {
	if cfg.Matcher == nil {
		cfg.Matcher = NewSubstringMatcher()
	}
	if cfg.Weights == nil {
		cfg.Weights = ranking.DefaultWeights()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.DefaultRadiusKm <= 0 {
		cfg.DefaultRadiusKm = DefaultRadiusKm
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultLimit
	}

	return &Pipeline{
		missions:        missions,
		workers:         workers,
		matcher:         cfg.Matcher,
		weights:         cfg.Weights,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
		concurrency:     cfg.Concurrency,
		defaultRadiusKm: cfg.DefaultRadiusKm,
		defaultLimit:    cfg.DefaultLimit,
	}
}

// ComputeCandidates ranks the verified worker pool against the mission with
// the given id and returns the ordered, truncated result envelope.
//
// Failure semantics: an absent mission yields a NotFoundError, explicitly
// supplied non-positive options an InvalidInputError, an expired context a
// TimeoutError (atomic, never a partial list), and a failed collaborator
// call an UpstreamError. A malformed individual candidate is skipped with a
// logged warning, never aborting the batch.
func (p *Pipeline) ComputeCandidates(ctx context.Context, missionID string, opts Options) (*RankingResult, error) {
	start := time.Now()
	ctx, endSpan := tracing.StartSpan(ctx, "compute_candidates")

	result, err := p.computeCandidates(ctx, missionID, opts)
	endSpan(err)

	p.metrics.ObserveDuration(time.Since(start).Seconds())
	p.metrics.IncRequests(statusFor(err))
	return result, err
}

func (p *Pipeline) computeCandidates(ctx context.Context, missionID string, opts Options) (*RankingResult, error) {
	if opts.Limit != nil && *opts.Limit <= 0 {
		return nil, &InvalidInputError{MissionID: missionID, Reason: "limit must be positive"}
	}
	if opts.RadiusKm != nil && *opts.RadiusKm <= 0 {
		return nil, &InvalidInputError{MissionID: missionID, Reason: "radius must be positive"}
	}

	mission, err := p.missions.GetMission(ctx, missionID)
	if err != nil {
		return nil, p.wrapSourceError(missionID, err)
	}
	if mission == nil {
		return nil, &NotFoundError{MissionID: missionID}
	}

	radius := p.defaultRadiusKm
	if mission.RadiusKm > 0 {
		radius = mission.RadiusKm
	}
	if opts.RadiusKm != nil {
		radius = *opts.RadiusKm
	}

	limit := p.defaultLimit
	if opts.Limit != nil {
		limit = *opts.Limit
	}

	requiredSkills := mission.RequiredSkills
	if opts.RequiredSkillsOverride != nil {
		requiredSkills = opts.RequiredSkillsOverride
	}

	pool, err := p.workers.ListVerifiedWorkers(ctx)
	if err != nil {
		return nil, p.wrapSourceError(missionID, err)
	}
	p.metrics.SetPoolSize(len(pool))

	matches, err := p.scorePool(ctx, mission, pool, radius, requiredSkills)
	if err != nil {
		return nil, err
	}

	// Deterministic ordering: composite score descending, then worker id
	// ascending so equal scores always rank the same way across runs.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Worker.ID < matches[j].Worker.ID
	})

	totalFound := len(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}

	p.logger.Info("ranking completed",
		"mission_id", mission.ID,
		"pool_size", len(pool),
		"total_found", totalFound,
		"returned", len(matches),
		"radius_km", radius)

	return &RankingResult{
		MissionID:      mission.ID,
		SearchRadiusKm: radius,
		TotalFound:     totalFound,
		Matches:        matches,
	}, nil
}

// scorePool scores candidates concurrently with a bounded worker pool and
// merges the results. The merge never depends on completion order; the
// caller's sort makes the final order reproducible regardless of scheduling.
func (p *Pipeline) scorePool(ctx context.Context, mission *Mission, pool []*WorkerProfile, radius float64, requiredSkills []string) ([]CandidateMatch, error) {
	workers := p.concurrency
	if workers > len(pool) {
		workers = len(pool)
	}
	if workers < 1 {
		workers = 1
	}

	var (
		mu      sync.Mutex
		matches []CandidateMatch
		scored  int
	)

	jobs := make(chan *WorkerProfile)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for w := range jobs {
				if w == nil || w.ID == "" {
					p.logger.Warn("skipping malformed candidate record",
						"mission_id", mission.ID)
					p.metrics.IncCandidatesSkipped(SkipReasonMalformed)
					continue
				}

				// Hard geographic filter: eligibility beyond the radius is
				// binary, so out-of-range candidates are discarded before
				// any weighting. Unknown locations are unreachable and
				// therefore always out of range.
				distance := geo.DistanceKm(mission.Location, w.Location)
				if geo.IsUnreachable(distance) || distance > radius {
					p.metrics.IncCandidatesSkipped(SkipReasonOutOfRadius)
					continue
				}

				match := p.scoreCandidate(mission, w, distance, radius, requiredSkills)
				mu.Lock()
				matches = append(matches, match)
				scored++
				mu.Unlock()
			}
		}()
	}

feed:
	for _, w := range pool {
		select {
		case jobs <- w:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if ctx.Err() != nil {
		// Atomic failure: a partial ranking would misrepresent "the best N
		// of the whole eligible pool".
		return nil, &TimeoutError{MissionID: mission.ID}
	}

	p.metrics.AddCandidatesEvaluated(scored)
	return matches, nil
}

// scoreCandidate computes the full CandidateMatch for one worker at a known
// distance.
func (p *Pipeline) scoreCandidate(mission *Mission, w *WorkerProfile, distance, radius float64, requiredSkills []string) CandidateMatch {
	skillRatio := p.matcher.MatchRatio(requiredSkills, w.Specialties)
	diplomaRatio := p.matcher.MatchRatio(mission.RequiredDiplomas, CredentialNames(w.Credentials))
	available := IsAvailable(w.Availability, mission.StartsAt, mission.NightShift)

	score := ranking.CompositeScore(ranking.CandidateParams{
		Distance:    ranking.DistanceWeight(distance, radius),
		Skill:       skillRatio,
		Diploma:     diplomaRatio,
		IsAvailable: available,
		Rating:      ranking.RatingWeight(w.AverageRating),
		Experience:  ranking.ExperienceWeight(w.CompletedJobs),
	}, p.weights)

	return CandidateMatch{
		Worker:       w,
		DistanceKm:   geo.RoundKm(distance),
		SkillRatio:   skillRatio,
		DiplomaRatio: diplomaRatio,
		IsAvailable:  available,
		Score:        score,
	}
}

// ComputeScore scores a single worker against a mission without running the
// full pipeline. No geographic filter is applied: the distance (possibly
// unreachable) is reported as-is so callers can compose or inspect single
// matches.
func (p *Pipeline) ComputeScore(mission *Mission, w *WorkerProfile) CandidateMatch {
	radius := p.defaultRadiusKm
	if mission.RadiusKm > 0 {
		radius = mission.RadiusKm
	}
	distance := geo.DistanceKm(mission.Location, w.Location)
	return p.scoreCandidate(mission, w, distance, radius, mission.RequiredSkills)
}

// wrapSourceError classifies a collaborator failure: context expiry becomes
// a TimeoutError, everything else an UpstreamError carrying the original
// error unmodified.
func (p *Pipeline) wrapSourceError(missionID string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &TimeoutError{MissionID: missionID}
	}
	return &UpstreamError{MissionID: missionID, Err: err}
}

// statusFor maps a ranking error to its metrics status label.
func statusFor(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrMissionNotFound):
		return StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return StatusInvalidInput
	case errors.Is(err, ErrDeadlineExceeded):
		return StatusTimeout
	default:
		return StatusUpstream
	}
}
