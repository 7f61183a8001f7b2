package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/renforthq/renfort/internal/matching"
	"github.com/renforthq/renfort/internal/tracing"
)

// PostgresWorkerStore implements matching.WorkerSource backed by PostgreSQL.
type PostgresWorkerStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresWorkerStore creates a new PostgresWorkerStore.
func NewPostgresWorkerStore(db *sql.DB, logger *slog.Logger) *PostgresWorkerStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresWorkerStore{
		db:     db,
		logger: logger,
	}
}

const listVerifiedWorkersQuery = `
SELECT id, first_name, last_name, lat, lng, specialties, credentials,
       hourly_rate, average_rating, completed_jobs, availability
FROM workers
WHERE verified = true`

// ListVerifiedWorkers returns every verified worker profile. A row whose
// JSONB columns cannot be decoded is logged and skipped so one corrupt
// record never empties the candidate pool.
func (s *PostgresWorkerStore) ListVerifiedWorkers(ctx context.Context) ([]*matching.WorkerProfile, error) {
	ctx, endSpan := tracing.StartDBSpan(ctx, "workers", tracing.DBOperationQuery)
	workers, err := s.listVerifiedWorkers(ctx)
	endSpan(err)
	return workers, err
}

func (s *PostgresWorkerStore) listVerifiedWorkers(ctx context.Context) ([]*matching.WorkerProfile, error) {
	rows, err := s.db.QueryContext(ctx, listVerifiedWorkersQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query workers: %w", err)
	}
	defer rows.Close()

	var workers []*matching.WorkerProfile
	for rows.Next() {
		worker, err := s.scanWorker(rows)
		if err != nil {
			s.logger.Warn("skipping malformed worker row", "error", err)
			continue
		}
		workers = append(workers, worker)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workers: %w", err)
	}

	return workers, nil
}

func (s *PostgresWorkerStore) scanWorker(rows *sql.Rows) (*matching.WorkerProfile, error) {
	var (
		worker          matching.WorkerProfile
		lat, lng        sql.NullFloat64
		rawSpecialties  []byte
		rawCredentials  []byte
		rawAvailability []byte
	)

	err := rows.Scan(
		&worker.ID,
		&worker.FirstName,
		&worker.LastName,
		&lat,
		&lng,
		&rawSpecialties,
		&rawCredentials,
		&worker.HourlyRate,
		&worker.AverageRating,
		&worker.CompletedJobs,
		&rawAvailability,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan worker row: %w", err)
	}

	// A NULL coordinate leaves the location at its zero value, which the
	// engine treats as unknown.
	if lat.Valid && lng.Valid {
		worker.Location.Lat = lat.Float64
		worker.Location.Lng = lng.Float64
	}

	if worker.Specialties, err = decodeStringList(rawSpecialties); err != nil {
		return nil, fmt.Errorf("malformed specialties for worker %s: %w", worker.ID, err)
	}
	if worker.Credentials, err = decodeCredentials(rawCredentials); err != nil {
		return nil, fmt.Errorf("malformed credentials for worker %s: %w", worker.ID, err)
	}
	if worker.Availability, err = decodeSlots(rawAvailability); err != nil {
		return nil, fmt.Errorf("malformed availability for worker %s: %w", worker.ID, err)
	}

	return &worker, nil
}

// decodeCredentials decodes a JSONB array of credential records.
func decodeCredentials(raw []byte) ([]matching.Credential, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var creds []matching.Credential
	if err := json.Unmarshal(raw, &creds); err != nil {
		return nil, err
	}
	return creds, nil
}

// decodeSlots decodes a JSONB array of availability slots.
func decodeSlots(raw []byte) ([]matching.AvailabilitySlot, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var slots []matching.AvailabilitySlot
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}
