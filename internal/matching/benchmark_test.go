package matching

import (
	"context"
	"fmt"
	"testing"

	"github.com/renforthq/renfort/internal/geo"
)

// buildPool generates n workers scattered around the mission location with
// varying qualifications so benchmarks exercise the whole scoring path.
func buildPool(n int) []*WorkerProfile {
	specialties := [][]string{
		{"Infirmier"},
		{"Aide-soignant"},
		{"Infirmier de bloc opératoire"},
		{"Kinésithérapeute"},
	}

	pool := make([]*WorkerProfile, 0, n)
	for i := 0; i < n; i++ {
		pool = append(pool, &WorkerProfile{
			ID: fmt.Sprintf("w-%05d", i),
			Location: geo.Point{
				Lat: paris.Lat + float64(i%100)*0.004,
				Lng: paris.Lng + float64(i%50)*0.004,
			},
			Specialties:   specialties[i%len(specialties)],
			Credentials:   []Credential{{Name: "Diplôme d'État d'infirmier"}},
			AverageRating: float64(i%6) * 0.9,
			CompletedJobs: i % 80,
		})
	}
	return pool
}

func BenchmarkComputeCandidates(b *testing.B) {
	for _, size := range []int{100, 1000, 5000} {
		b.Run(fmt.Sprintf("pool_%d", size), func(b *testing.B) {
			mission := newTestMission()
			missions := NewInMemoryMissionSource()
			missions.Put(mission)

			p := NewPipeline(missions, &stubWorkerSource{workers: buildPool(size)},
				PipelineConfig{Logger: testLogger()})

			ctx := context.Background()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := p.ComputeCandidates(ctx, mission.ID, Options{}); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkMatchRatio(b *testing.B) {
	m := NewSubstringMatcher()
	required := []string{"infirmier", "aide-soignant", "urgentiste"}
	possessed := []string{"Infirmier diplômé d'État", "Aide-soignant de nuit", "Brancardier"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.MatchRatio(required, possessed)
	}
}
