package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// findMetricFamily は収集結果から指定名のメトリクスファミリーを探す。
func findMetricFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("%s metric not found", name)
	return nil
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	if c := NewCollector(reg); c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordSessionStarted_IncrementsCounter はセッション開始カウンタが増加することを検証する。
func TestRecordSessionStarted_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSessionStarted()
	c.RecordSessionStarted()

	mf := findMetricFamily(t, reg, "studytracker_sessions_started_total")
	if val := mf.GetMetric()[0].GetCounter().GetValue(); val != 2 {
		t.Errorf("sessions_started_total = %v, want 2", val)
	}
}

// TestRecordSessionStopped_ObservesDuration は終了カウンタとセッション長ヒストグラムを検証する。
func TestRecordSessionStopped_ObservesDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSessionStopped(90 * time.Minute)

	stopped := findMetricFamily(t, reg, "studytracker_sessions_stopped_total")
	if val := stopped.GetMetric()[0].GetCounter().GetValue(); val != 1 {
		t.Errorf("sessions_stopped_total = %v, want 1", val)
	}

	hist := findMetricFamily(t, reg, "studytracker_session_duration_seconds").GetMetric()[0].GetHistogram()
	if hist.GetSampleCount() != 1 {
		t.Errorf("sample count = %d, want 1", hist.GetSampleCount())
	}
	if hist.GetSampleSum() != 5400 {
		t.Errorf("sample sum = %v, want 5400", hist.GetSampleSum())
	}
}

// TestRecordRejected_LabelsByOperationAndKind は拒否理由がラベル付きで記録されることを検証する。
func TestRecordRejected_LabelsByOperationAndKind(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRejected("start", "conflict")
	c.RecordRejected("start", "conflict")
	c.RecordRejected("stop", "validation")

	mf := findMetricFamily(t, reg, "studytracker_lifecycle_rejected_total")
	if len(mf.GetMetric()) != 2 {
		t.Fatalf("expected 2 label sets, got %d", len(mf.GetMetric()))
	}

	for _, m := range mf.GetMetric() {
		labels := map[string]string{}
		for _, lp := range m.GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		if labels["operation"] == "start" && m.GetCounter().GetValue() != 2 {
			t.Errorf("start/conflict = %v, want 2", m.GetCounter().GetValue())
		}
	}
}

// TestRecordStatsQuery_ByWindow は集計ウィンドウ別にレイテンシが記録されることを検証する。
func TestRecordStatsQuery_ByWindow(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordStatsQuery("daily", 10*time.Millisecond)
	c.RecordStatsQuery("weekly", 20*time.Millisecond)

	mf := findMetricFamily(t, reg, "studytracker_stats_query_seconds")
	if len(mf.GetMetric()) != 2 {
		t.Errorf("expected 2 windows, got %d", len(mf.GetMetric()))
	}
}

// TestRecordHTTPStatus_LabelsByStatusCode はステータスコード別に記録されることを検証する。
func TestRecordHTTPStatus_LabelsByStatusCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(201)
	c.RecordHTTPStatus(409)
	c.RecordHTTPStatus(409)

	mf := findMetricFamily(t, reg, "studytracker_http_status_total")
	for _, m := range mf.GetMetric() {
		if m.GetLabel()[0].GetValue() == "409" && m.GetCounter().GetValue() != 2 {
			t.Errorf("409 count = %v, want 2", m.GetCounter().GetValue())
		}
	}
}

// TestNewCollector_DuplicateRegistrationPanics は同一レジストリへの二重登録がpanicすることを検証する。
func TestNewCollector_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	NewCollector(reg)
}
