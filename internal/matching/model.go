// Package matching implements the candidate matching and ranking engine for
// relief missions. It combines geographic distance, fuzzy skill and credential
// matching, availability checks, and weighted scoring into an ordered,
// bounded list of candidates. The engine only reads mission and worker data;
// it never mutates the records it ranks.
package matching

import (
	"time"

	"github.com/renforthq/renfort/internal/geo"
)

// Mission represents a posted relief-staffing request. Read-only to the
// engine; missions are created and updated by the posting collaborator.
type Mission struct {
	ID               string    `json:"id"`
	Location         geo.Point `json:"location"`
	RadiusKm         float64   `json:"radius_km"` // 0 means "use the caller-supplied default"
	RequiredSkills   []string  `json:"required_skills"`
	RequiredDiplomas []string  `json:"required_diplomas"`
	StartsAt         time.Time `json:"starts_at"`
	NightShift       bool      `json:"night_shift"`
	Status           string    `json:"status"`
}

// Credential is a diploma or certification held by a worker. Only the name
// participates in matching; the remaining fields travel with the record for
// display purposes.
type Credential struct {
	Name         string `json:"name"`
	Issuer       string `json:"issuer,omitempty"`
	ObtainedYear int    `json:"obtained_year,omitempty"`
}

// AvailabilitySlot is a declared time window during which a worker can work.
// A slot is either recurring (Weekday set) or bound to a specific date
// (Date set). Times are local time-of-day.
type AvailabilitySlot struct {
	Weekday     *time.Weekday `json:"weekday,omitempty"`
	Date        *time.Time    `json:"date,omitempty"`
	StartHour   int           `json:"start_hour"`
	StartMinute int           `json:"start_minute"`
	EndHour     int           `json:"end_hour"`
	EndMinute   int           `json:"end_minute"`
	Active      bool          `json:"active"`
}

// WorkerProfile represents a verified on-demand worker eligible for ranking.
// Read-only to the engine.
type WorkerProfile struct {
	ID            string             `json:"id"`
	FirstName     string             `json:"first_name"`
	LastName      string             `json:"last_name"`
	Location      geo.Point          `json:"location"`
	Specialties   []string           `json:"specialties"`
	Credentials   []Credential       `json:"credentials"`
	HourlyRate    float64            `json:"hourly_rate"`
	AverageRating float64            `json:"average_rating"` // 0.0 to 5.0
	CompletedJobs int                `json:"completed_jobs"`
	Availability  []AvailabilitySlot `json:"availability"`
}

// CredentialNames extracts the credential names from richer credential
// records for fuzzy matching against a mission's required diplomas.
func CredentialNames(credentials []Credential) []string {
	if len(credentials) == 0 {
		return nil
	}
	names := make([]string, 0, len(credentials))
	for _, c := range credentials {
		names = append(names, c.Name)
	}
	return names
}

// CandidateMatch is the transient, computed result of scoring one worker
// against one mission. It exists only for the duration of a ranking call and
// is never persisted.
type CandidateMatch struct {
	Worker       *WorkerProfile `json:"worker"`
	DistanceKm   float64        `json:"distance_km"` // rounded to 0.1 km
	SkillRatio   float64        `json:"skill_ratio"`
	DiplomaRatio float64        `json:"diploma_ratio"`
	IsAvailable  bool           `json:"is_available"`
	Score        int            `json:"score"` // composite, always in [0, 100]
}

// RankingResult is the envelope returned by a full ranking call.
// TotalFound counts geo-eligible candidates before truncation.
type RankingResult struct {
	MissionID      string           `json:"mission_id"`
	SearchRadiusKm float64          `json:"search_radius_km"`
	TotalFound     int              `json:"total_found"`
	Matches        []CandidateMatch `json:"matches"`
}
