// Package ranking provides the weighted scoring components used to rank
// candidate workers against a relief mission, with calibration support.
package ranking

import "math"

// DistanceWeight computes the distance component score normalized to [0, 1].
// The score decays linearly from 1.0 at the mission location to 0.0 at the
// edge of the search radius.
//
// Parameters:
//   - distanceKm: great-circle distance from the mission in kilometers
//   - maxRadiusKm: the effective search radius in kilometers
//
// Returns max(0, 1 - distanceKm/maxRadiusKm). An unreachable (infinite)
// distance or a non-positive radius yields 0.
func DistanceWeight(distanceKm, maxRadiusKm float64) float64 {
	if maxRadiusKm <= 0 || math.IsInf(distanceKm, 1) || math.IsNaN(distanceKm) {
		return 0
	}
	if distanceKm < 0 {
		distanceKm = 0
	}

	score := 1.0 - distanceKm/maxRadiusKm
	if score < 0 {
		return 0
	}
	return score
}

// AvailabilityWeight computes the availability component score.
// Unavailable candidates keep partial credit rather than being excluded:
// availability data is declarative and often stale, so a mismatch lowers
// the ranking instead of hiding the candidate entirely.
func AvailabilityWeight(available bool) float64 {
	if available {
		return 1.0
	}
	return 0.3
}

// RatingWeight normalizes an average rating on the 0–5 scale to [0, 1].
// Out-of-range input is clamped.
func RatingWeight(avgRating float64) float64 {
	if avgRating <= 0 || math.IsNaN(avgRating) {
		return 0
	}
	if avgRating >= 5 {
		return 1.0
	}
	return avgRating / 5
}

// ExperienceWeight normalizes a completed-job count to [0, 1].
// Experience saturates at 50 completed missions; beyond that, more jobs do
// not increase the score.
func ExperienceWeight(completedJobs int) float64 {
	if completedJobs <= 0 {
		return 0
	}
	w := float64(completedJobs) / 50.0
	if w > 1 {
		return 1.0
	}
	return w
}

// CandidateParams holds the component scores for a single candidate.
// All fields except IsAvailable are expected to be in [0, 1].
type CandidateParams struct {
	Distance    float64 // Distance decay score [0, 1]
	Skill       float64 // Skill match ratio [0, 1]
	Diploma     float64 // Credential match ratio [0, 1]
	IsAvailable bool    // Whether the candidate can work the mission slot
	Rating      float64 // Normalized average rating [0, 1]
	Experience  float64 // Normalized completed-job count [0, 1]
}

// CompositeScore computes the final 0–100 integer ranking score for a
// candidate. Credential and skill compliance dominate the weighting because
// they are the binding requirements in relief staffing; distance and
// availability come next, and reputation/experience act as tie-breakers.
//
// Formula: round(100 * (distance*0.20 + skill*0.25 + diploma*0.25 +
// availability*0.15 + rating*0.10 + experience*0.05)), clamped to [0, 100].
func CompositeScore(params CandidateParams, weights *Weights) int {
	if weights == nil {
		weights = DefaultWeights()
	}

	sum := params.Distance*weights.Distance +
		params.Skill*weights.Skill +
		params.Diploma*weights.Diploma +
		AvailabilityWeight(params.IsAvailable)*weights.Availability +
		params.Rating*weights.Rating +
		params.Experience*weights.Experience

	score := int(math.Round(sum * 100))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
