package estimator

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestEstimateLocalEndpoints(t *testing.T) {
	idle, err := EstimateLocal(LocalAuditSample{CPUPercent: 0, RAMPercent: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idle.Watts != 5.0 {
		t.Errorf("expected 5.0W at idle, got %v", idle.Watts)
	}

	full, err := EstimateLocal(LocalAuditSample{CPUPercent: 100, RAMPercent: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if full.Watts != 60.0 {
		t.Errorf("expected 60.0W at full load, got %v", full.Watts)
	}
}

func TestEstimateLocalMonotonic(t *testing.T) {
	prev := -1.0
	for cpu := 0.0; cpu <= 100.0; cpu += 0.5 {
		report, err := EstimateLocal(LocalAuditSample{CPUPercent: cpu, RAMPercent: 10})
		if err != nil {
			t.Fatalf("cpu=%v: unexpected error: %v", cpu, err)
		}
		if report.Watts < prev {
			t.Fatalf("watts decreased at cpu=%v: %v < %v", cpu, report.Watts, prev)
		}
		if report.Watts < 5.0 || report.Watts > 60.0 {
			t.Fatalf("watts %v outside [5,60] at cpu=%v", report.Watts, cpu)
		}
		if report.CarbonGramsPerHour <= 0 {
			t.Fatalf("carbon not strictly positive at cpu=%v: %v", cpu, report.CarbonGramsPerHour)
		}
		prev = report.Watts
	}
}

func TestEstimateLocalCarbonFormula(t *testing.T) {
	for cpu := 0.0; cpu <= 100.0; cpu += 7.3 {
		report, err := EstimateLocal(LocalAuditSample{CPUPercent: cpu, RAMPercent: 0})
		if err != nil {
			t.Fatalf("cpu=%v: unexpected error: %v", cpu, err)
		}
		want := (report.Watts / 1000.0) * GridIntensity
		if report.CarbonGramsPerHour != want {
			t.Errorf("cpu=%v: carbon = %v, want %v", cpu, report.CarbonGramsPerHour, want)
		}
	}
}

func TestEstimateLocalCarbonBounds(t *testing.T) {
	idle, _ := EstimateLocal(LocalAuditSample{CPUPercent: 0})
	full, _ := EstimateLocal(LocalAuditSample{CPUPercent: 100})

	if math.Abs(idle.CarbonGramsPerHour-0.002375) > 1e-12 {
		t.Errorf("idle carbon = %v, want 0.002375", idle.CarbonGramsPerHour)
	}
	if math.Abs(full.CarbonGramsPerHour-0.0285) > 1e-12 {
		t.Errorf("full-load carbon = %v, want 0.0285", full.CarbonGramsPerHour)
	}
}

func TestEstimateLocalRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name   string
		sample LocalAuditSample
	}{
		{"cpu above range", LocalAuditSample{CPUPercent: 150, RAMPercent: 10}},
		{"cpu below range", LocalAuditSample{CPUPercent: -1, RAMPercent: 10}},
		{"ram above range", LocalAuditSample{CPUPercent: 10, RAMPercent: 101}},
		{"ram below range", LocalAuditSample{CPUPercent: 10, RAMPercent: -0.5}},
		{"cpu NaN", LocalAuditSample{CPUPercent: math.NaN(), RAMPercent: 10}},
		{"ram Inf", LocalAuditSample{CPUPercent: 10, RAMPercent: math.Inf(1)}},
	}

	for _, tc := range cases {
		_, err := EstimateLocal(tc.sample)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
}

func TestEstimateLocalIdempotent(t *testing.T) {
	sample := LocalAuditSample{CPUPercent: 37.5, RAMPercent: 62.1}

	first, err := EstimateLocal(sample)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := EstimateLocal(sample)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("identical input produced different reports: %+v vs %+v", first, second)
	}
}

func TestEstimateCloudTenDollars(t *testing.T) {
	report, err := EstimateCloud(CloudSpendSample{
		TotalCost:     decimal.NewFromFloat(10.00),
		CurrencyCode:  "USD",
		ItemCount:     42,
		BillingPeriod: "2026-08",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := report.EstimatedKWh.StringFixed(4); got != "100.0000" {
		t.Errorf("estimated kWh = %s, want 100.0000", got)
	}
	if got := report.EstimatedCarbonKg.StringFixed(6); got != "29.700000" {
		t.Errorf("estimated carbon = %s, want 29.700000", got)
	}
	if report.NoBillableUsage {
		t.Error("no-usage flag set for non-zero spend")
	}
}

func TestEstimateCloudZeroSpend(t *testing.T) {
	report, err := EstimateCloud(CloudSpendSample{
		TotalCost:     decimal.Zero,
		CurrencyCode:  "USD",
		BillingPeriod: "2026-08",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.NoBillableUsage {
		t.Error("expected no-usage flag for zero spend")
	}
	if got := report.EstimatedKWh.StringFixed(4); got != "0.0000" {
		t.Errorf("estimated kWh = %s, want 0.0000", got)
	}
	if got := report.EstimatedCarbonKg.StringFixed(6); got != "0.000000" {
		t.Errorf("estimated carbon = %s, want 0.000000", got)
	}
}

func TestEstimateCloudRejectsNegatives(t *testing.T) {
	_, err := EstimateCloud(CloudSpendSample{TotalCost: decimal.NewFromInt(-1)})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative cost: expected ErrInvalidInput, got %v", err)
	}

	_, err = EstimateCloud(CloudSpendSample{TotalCost: decimal.NewFromInt(1), ItemCount: -3})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative item count: expected ErrInvalidInput, got %v", err)
	}
}

func TestEstimateCloudScalesLinearly(t *testing.T) {
	base, err := EstimateCloud(CloudSpendSample{TotalCost: decimal.NewFromFloat(3.50), ItemCount: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doubled, err := EstimateCloud(CloudSpendSample{TotalCost: decimal.NewFromFloat(7.00), ItemCount: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !doubled.EstimatedKWh.Equal(base.EstimatedKWh.Mul(decimal.NewFromInt(2))) {
		t.Errorf("kWh did not double: %s vs %s", base.EstimatedKWh, doubled.EstimatedKWh)
	}
	if !doubled.EstimatedCarbonKg.Equal(base.EstimatedCarbonKg.Mul(decimal.NewFromInt(2))) {
		t.Errorf("carbon did not double: %s vs %s", base.EstimatedCarbonKg, doubled.EstimatedCarbonKg)
	}
}

func TestEstimateCloudIdempotent(t *testing.T) {
	sample := CloudSpendSample{
		TotalCost:     decimal.NewFromFloat(12.3456),
		CurrencyCode:  "EUR",
		ItemCount:     7,
		BillingPeriod: "2026-08",
	}

	first, err := EstimateCloud(sample)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := EstimateCloud(sample)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Render() != second.Render() {
		t.Error("identical input produced different rendered reports")
	}
}

func TestLocalReportRender(t *testing.T) {
	report, err := EstimateLocal(LocalAuditSample{CPUPercent: 50, RAMPercent: 75})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rendered := report.Render()
	for _, want := range []string{
		"Local Hardware Audit:",
		"CPU Usage: 50.0%",
		"RAM Usage: 75.0%",
		"Estimated Power Draw: 32.50W",
		"Carbon Footprint: 0.01544g CO2/hr",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("rendered report missing %q:\n%s", want, rendered)
		}
	}
}

func TestCloudReportRender(t *testing.T) {
	report, err := EstimateCloud(CloudSpendSample{
		TotalCost:     decimal.NewFromFloat(10.00),
		CurrencyCode:  "USD",
		ItemCount:     3,
		BillingPeriod: "2026-08",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rendered := report.Render()
	for _, want := range []string{
		"Azure Cloud Audit (2026-08):",
		"Usage Items: 3",
		"Total Spend: $10.0000 USD",
		"Estimated Energy: 100.0000 kWh",
		"Carbon Footprint: 29.700000 kg CO2",
		"Source: Azure Consumption API (live data)",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("rendered report missing %q:\n%s", want, rendered)
		}
	}
}

func TestCloudReportRenderZeroUsage(t *testing.T) {
	report, err := EstimateCloud(CloudSpendSample{BillingPeriod: "2026-08"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rendered := report.Render()
	if !strings.Contains(rendered, "no billable usage this month") {
		t.Errorf("zero-usage report missing flag:\n%s", rendered)
	}
	if !strings.Contains(rendered, "Carbon Footprint: 0.000000 kg CO2") {
		t.Errorf("zero-usage report missing zero carbon line:\n%s", rendered)
	}
}
