package metrics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestOperationMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewOperationMetrics(reg)
	op := "create_record"
	metrics.ObserveDuration(op, 250*time.Millisecond)
	metrics.IncSuccess(op)
	metrics.IncFailure(op, "VALIDATION_ERROR")
	metrics.AddBackfilled("pawn_items", 3000)
	metrics.AddBackfilled("pawn_items", 12)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "pawnshop_operation_success_total", "operation", op); err != nil {
		t.Fatalf("fetch success: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "pawnshop_operation_failure_total", "code", "VALIDATION_ERROR"); err != nil {
		t.Fatalf("fetch failure: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "pawnshop_schema_backfill_rows_total", "table", "pawn_items"); err != nil {
		t.Fatalf("fetch backfill: %v", err)
	} else if got != 3012 {
		t.Fatalf("expected backfill=3012, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "pawnshop_operation_duration_seconds", "operation", op); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestObserveSplitsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewOperationMetrics(reg)

	metrics.Observe("delete_record", time.Now(), nil, "")
	metrics.Observe("delete_record", time.Now(), errors.New("gone"), "NOT_FOUND")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, _ := fetchCounterValue(mfs, "pawnshop_operation_success_total", "operation", "delete_record"); got != 1 {
		t.Fatalf("expected one success, got %f", got)
	}
	if got, _ := fetchCounterValue(mfs, "pawnshop_operation_failure_total", "code", "NOT_FOUND"); got != 1 {
		t.Fatalf("expected one failure, got %f", got)
	}
}

func TestNilRegistererDropsEverything(t *testing.T) {
	metrics := NewOperationMetrics(nil)
	metrics.Observe("noop", time.Now(), errors.New("x"), "INTERNAL_ERROR")
	metrics.AddBackfilled("pawn_records", 5)

	var nilMetrics *OperationMetrics
	nilMetrics.IncSuccess("noop")
}

func TestWriteText(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewOperationMetrics(reg)
	metrics.IncSuccess("export")

	var buf bytes.Buffer
	if err := WriteText(&buf, reg); err != nil {
		t.Fatalf("write text: %v", err)
	}
	if !strings.Contains(buf.String(), `pawnshop_operation_success_total{operation="export"} 1`) {
		t.Fatalf("unexpected exposition:\n%s", buf.String())
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
