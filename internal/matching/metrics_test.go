package matching

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewMetrics_Register(t *testing.T) {
	m := NewMetrics()
	if m == nil {
		t.Fatal("NewMetrics() returned nil")
	}

	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	// Double registration must fail.
	if err := m.Register(reg); err == nil {
		t.Error("expected error on duplicate registration")
	}
}

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *Metrics

	// None of these may panic when metrics are not configured.
	m.IncRequests(StatusSuccess)
	m.ObserveDuration(0.1)
	m.AddCandidatesEvaluated(3)
	m.IncCandidatesSkipped(SkipReasonMalformed)
	m.SetPoolSize(10)
}

func TestMetrics_PipelineRecordsOutcomes(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	mission := newTestMission()
	missions := NewInMemoryMissionSource()
	missions.Put(mission)

	lyon := fullMatchWorker("w-lyon")
	lyon.Location.Lat, lyon.Location.Lng = 45.7640, 4.8357
	pool := &stubWorkerSource{workers: []*WorkerProfile{
		fullMatchWorker("w-ok"),
		lyon,
		nil,
	}}

	p := NewPipeline(missions, pool, PipelineConfig{Logger: testLogger(), Metrics: m})

	if _, err := p.ComputeCandidates(context.Background(), mission.ID, Options{}); err != nil {
		t.Fatalf("ComputeCandidates() failed: %v", err)
	}
	if _, err := p.ComputeCandidates(context.Background(), "missing", Options{}); err == nil {
		t.Fatal("expected not-found error")
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() failed: %v", err)
	}

	byName := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}

	requests := byName[MetricRankRequestsTotal]
	if requests == nil {
		t.Fatalf("metric %s not found", MetricRankRequestsTotal)
	}
	statuses := make(map[string]float64)
	for _, metric := range requests.GetMetric() {
		for _, label := range metric.GetLabel() {
			if label.GetName() == "status" {
				statuses[label.GetValue()] = metric.GetCounter().GetValue()
			}
		}
	}
	if statuses[StatusSuccess] != 1 {
		t.Errorf("success count = %v, want 1", statuses[StatusSuccess])
	}
	if statuses[StatusNotFound] != 1 {
		t.Errorf("not_found count = %v, want 1", statuses[StatusNotFound])
	}

	skipped := byName[MetricRankCandidatesSkippedTotal]
	if skipped == nil {
		t.Fatalf("metric %s not found", MetricRankCandidatesSkippedTotal)
	}
	reasons := make(map[string]float64)
	for _, metric := range skipped.GetMetric() {
		for _, label := range metric.GetLabel() {
			if label.GetName() == "reason" {
				reasons[label.GetValue()] = metric.GetCounter().GetValue()
			}
		}
	}
	if reasons[SkipReasonMalformed] != 1 {
		t.Errorf("malformed skips = %v, want 1", reasons[SkipReasonMalformed])
	}
	if reasons[SkipReasonOutOfRadius] != 1 {
		t.Errorf("out_of_radius skips = %v, want 1", reasons[SkipReasonOutOfRadius])
	}

	if byName[MetricRankDuration] == nil {
		t.Errorf("metric %s not found", MetricRankDuration)
	}
	if byName[MetricRankPoolSize] == nil {
		t.Errorf("metric %s not found", MetricRankPoolSize)
	}
}
