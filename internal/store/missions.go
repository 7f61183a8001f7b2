package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/renforthq/renfort/internal/matching"
	"github.com/renforthq/renfort/internal/tracing"
)

// PostgresMissionStore implements matching.MissionSource backed by PostgreSQL.
type PostgresMissionStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresMissionStore creates a new PostgresMissionStore.
func NewPostgresMissionStore(db *sql.DB, logger *slog.Logger) *PostgresMissionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresMissionStore{
		db:     db,
		logger: logger,
	}
}

const getMissionQuery = `
SELECT id, lat, lng, radius_km, required_skills, required_diplomas, starts_at, night_shift, status
FROM missions
WHERE id = $1`

// GetMission returns the mission with the given id, or (nil, nil) when no
// such mission exists.
func (s *PostgresMissionStore) GetMission(ctx context.Context, id string) (*matching.Mission, error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "missions", tracing.DBOperationQuery)
	mission, err := s.getMission(ctx, id)
	endSpan(err)
	return mission, err
}

func (s *PostgresMissionStore) getMission(ctx context.Context, id string) (*matching.Mission, error) {
	var (
		mission     matching.Mission
		radius      sql.NullFloat64
		rawSkills   []byte
		rawDiplomas []byte
	)

	err := s.db.QueryRowContext(ctx, getMissionQuery, id).Scan(
		&mission.ID,
		&mission.Location.Lat,
		&mission.Location.Lng,
		&radius,
		&rawSkills,
		&rawDiplomas,
		&mission.StartsAt,
		&mission.NightShift,
		&mission.Status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query mission %s: %w", id, err)
	}

	if radius.Valid {
		mission.RadiusKm = radius.Float64
	}

	if mission.RequiredSkills, err = decodeStringList(rawSkills); err != nil {
		return nil, fmt.Errorf("malformed required_skills for mission %s: %w", id, err)
	}
	if mission.RequiredDiplomas, err = decodeStringList(rawDiplomas); err != nil {
		return nil, fmt.Errorf("malformed required_diplomas for mission %s: %w", id, err)
	}

	return &mission, nil
}

// decodeStringList decodes a JSONB array of strings. A NULL column yields an
// empty list.
func decodeStringList(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	return list, nil
}
