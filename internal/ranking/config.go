package ranking

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// Weights holds the component weights applied by CompositeScore.
// The weights are a deploy-time policy, not a learned model; they can be
// overridden by a calibration file without a code change.
type Weights struct {
	Distance     float64 `json:"distance"`     // Weight for distance decay (default: 0.20)
	Skill        float64 `json:"skill"`        // Weight for skill match ratio (default: 0.25)
	Diploma      float64 `json:"diploma"`      // Weight for credential match ratio (default: 0.25)
	Availability float64 `json:"availability"` // Weight for availability (default: 0.15)
	Rating       float64 `json:"rating"`       // Weight for average rating (default: 0.10)
	Experience   float64 `json:"experience"`   // Weight for completed-job count (default: 0.05)
}

// CalibrationConfig represents the JSON structure of the calibration file.
type CalibrationConfig struct {
	Version string  `json:"version"` // Config version for future compatibility
	Weights Weights `json:"weights"` // Weight overrides
}

// DefaultWeights returns the default scoring weight configuration.
//
// Credential compliance carries the highest combined weight (skill + diploma
// = 0.50) because it is the legally binding requirement when staffing a
// relief mission. Distance (0.20) and availability (0.15) follow since relief
// staffing is time and location critical. Rating (0.10) and experience (0.05)
// separate otherwise equivalent candidates.
func DefaultWeights() *Weights {
	return &Weights{
		Distance:     0.20,
		Skill:        0.25,
		Diploma:      0.25,
		Availability: 0.15,
		Rating:       0.10,
		Experience:   0.05,
	}
}

// LoadCalibration loads scoring weights from a JSON calibration file.
// If the path is empty the defaults are returned. On any read or parse error
// the defaults are returned together with the error so callers can degrade
// gracefully. Partial configurations are merged with defaults: only non-zero
// fields override.
func LoadCalibration(filePath string) (*Weights, error) {
	if filePath == "" {
		return DefaultWeights(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read scoring calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to read calibration file: %w", err)
	}

	var config CalibrationConfig
	if err := json.Unmarshal(data, &config); err != nil {
		slog.Warn("failed to parse scoring calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to parse calibration file: %w", err)
	}

	defaults := DefaultWeights()
	merged := MergeCalibration(defaults, &config.Weights)
	logCalibrationOverrides(defaults, merged)

	return merged, nil
}

// MergeCalibration merges override weights with base weights.
// Only non-zero values from the override are applied, so the calibration
// file may override a single weight.
func MergeCalibration(base *Weights, override *Weights) *Weights {
	if base == nil {
		base = DefaultWeights()
	}
	if override == nil {
		result := *base
		return &result
	}

	result := *base

	if override.Distance != 0 {
		result.Distance = override.Distance
	}
	if override.Skill != 0 {
		result.Skill = override.Skill
	}
	if override.Diploma != 0 {
		result.Diploma = override.Diploma
	}
	if override.Availability != 0 {
		result.Availability = override.Availability
	}
	if override.Rating != 0 {
		result.Rating = override.Rating
	}
	if override.Experience != 0 {
		result.Experience = override.Experience
	}

	return &result
}

// logCalibrationOverrides logs which weights were overridden from defaults.
func logCalibrationOverrides(defaults *Weights, loaded *Weights) {
	var overrides []string

	pairs := []struct {
		name     string
		def, cur float64
	}{
		{"distance", defaults.Distance, loaded.Distance},
		{"skill", defaults.Skill, loaded.Skill},
		{"diploma", defaults.Diploma, loaded.Diploma},
		{"availability", defaults.Availability, loaded.Availability},
		{"rating", defaults.Rating, loaded.Rating},
		{"experience", defaults.Experience, loaded.Experience},
	}
	for _, p := range pairs {
		if p.cur != p.def {
			overrides = append(overrides, fmt.Sprintf("%s: %.2f -> %.2f", p.name, p.def, p.cur))
		}
	}

	if len(overrides) > 0 {
		slog.Info("loaded scoring calibration with overrides",
			"overrides", overrides)
	} else {
		slog.Info("loaded scoring calibration (using all defaults)")
	}
}
