// Package ranking provides the weighted scoring components used to rank
// candidate workers against a relief mission, with calibration support.
//
// Basic Usage:
//
//	// Load calibration (typically at startup)
//	weights, err := ranking.LoadCalibration("configs/scoring.calibration.json")
//	if err != nil {
//		log.Warn("using default weights", "error", err)
//	}
//
//	// Compute a candidate's composite score
//	params := ranking.CandidateParams{
//		Distance:    ranking.DistanceWeight(distanceKm, radiusKm),
//		Skill:       0.85, // From the skill matcher
//		Diploma:     1.0,  // From the credential matcher
//		IsAvailable: true,
//		Rating:      ranking.RatingWeight(worker.AverageRating),
//		Experience:  ranking.ExperienceWeight(worker.CompletedJobs),
//	}
//	score := ranking.CompositeScore(params, weights)
//
// Weight Functions:
//
// All weight functions return values in the [0, 1] range and are designed
// to be composable. Use them to compute individual scoring components
// before combining them with CompositeScore, which returns the final
// integer score clamped to [0, 100].
//
// Calibration:
//
// The calibration system allows deploy-time tuning of scoring weights via a
// JSON configuration file loaded at startup. This enables weight adjustments
// without code changes (but requires a redeploy or restart to pick up new
// configuration). See configs/scoring.calibration.json for the default
// configuration.
package ranking
