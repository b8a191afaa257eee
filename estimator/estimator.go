// Package estimator converts raw utilization and spend samples into carbon
// footprint estimates. It is the only piece of GreenSentry that computes
// anything itself - everything around it gathers samples or renders reports.
package estimator

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Local power model constants.
//
// BaseWatts/CPUCoefficient approximate an idle-to-load linear power curve for
// a reference machine class (5W idle, ~60W at full load).
// GridIntensity is grams of CO2 per watt-hour on an average US grid.
const (
	BaseWatts      = 5.0
	CPUCoefficient = 0.55
	GridIntensity  = 0.475
)

// Cloud spend conversion constants.
//
// CostPerKWh is a rough approximation (~$0.10/kWh for general Azure compute
// workloads) with no regional or workload adjustment - a known-low-fidelity
// estimate, kept as-is.
// AzureGridIntensityKg is kg CO2 per kWh from the Microsoft 2023
// Sustainability Report.
var (
	CostPerKWh           = decimal.NewFromFloat(0.10)
	AzureGridIntensityKg = decimal.NewFromFloat(0.297)
)

// ErrInvalidInput indicates an out-of-range or non-finite sample value.
var ErrInvalidInput = errors.New("invalid input")

// ErrUpstreamUnavailable indicates a collaborator (hardware probe, billing
// source, or audit model) could not supply data. The estimator never retries;
// retry policy belongs to the collaborator.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// LocalAuditSample is one reading from the hardware probe.
// Both fields are percentages in [0,100].
type LocalAuditSample struct {
	CPUPercent float64
	RAMPercent float64
}

// CloudSpendSample is an aggregated view of cloud spend for one billing
// period. CurrencyCode is informational only and never converted.
type CloudSpendSample struct {
	TotalCost     decimal.Decimal
	CurrencyCode  string
	ItemCount     int
	BillingPeriod string
}

// LocalAuditReport carries the computed local hardware estimate.
type LocalAuditReport struct {
	CPUPercent         float64
	RAMPercent         float64
	Watts              float64
	CarbonGramsPerHour float64
}

// CloudAuditReport carries the computed cloud spend estimate.
// NoBillableUsage is set when the period had zero spend.
type CloudAuditReport struct {
	BillingPeriod     string
	ItemCount         int
	TotalCost         decimal.Decimal
	CurrencyCode      string
	EstimatedKWh      decimal.Decimal
	EstimatedCarbonKg decimal.Decimal
	NoBillableUsage   bool
}

// EstimateLocal converts a CPU/RAM sample into estimated power draw and
// hourly carbon mass. For any cpu in [0,100] the result is strictly positive,
// watts is in [5.0, 60.0], and watts is monotonically non-decreasing in cpu.
func EstimateLocal(sample LocalAuditSample) (LocalAuditReport, error) {
	if err := validatePercent("cpu_percent", sample.CPUPercent); err != nil {
		return LocalAuditReport{}, err
	}
	if err := validatePercent("ram_percent", sample.RAMPercent); err != nil {
		return LocalAuditReport{}, err
	}

	watts := BaseWatts + sample.CPUPercent*CPUCoefficient
	carbon := (watts / 1000.0) * GridIntensity

	return LocalAuditReport{
		CPUPercent:         sample.CPUPercent,
		RAMPercent:         sample.RAMPercent,
		Watts:              watts,
		CarbonGramsPerHour: carbon,
	}, nil
}

// EstimateCloud converts a monetary spend sample into estimated energy
// consumption and carbon mass. Outputs scale linearly with TotalCost and are
// never negative. Zero spend yields zero outputs with the no-usage flag set.
func EstimateCloud(sample CloudSpendSample) (CloudAuditReport, error) {
	if sample.TotalCost.IsNegative() {
		return CloudAuditReport{}, fmt.Errorf("%w: total_cost %s is negative", ErrInvalidInput, sample.TotalCost)
	}
	if sample.ItemCount < 0 {
		return CloudAuditReport{}, fmt.Errorf("%w: item_count %d is negative", ErrInvalidInput, sample.ItemCount)
	}

	report := CloudAuditReport{
		BillingPeriod: sample.BillingPeriod,
		ItemCount:     sample.ItemCount,
		TotalCost:     sample.TotalCost,
		CurrencyCode:  sample.CurrencyCode,
	}

	if sample.TotalCost.IsZero() {
		report.NoBillableUsage = true
		report.EstimatedKWh = decimal.Zero
		report.EstimatedCarbonKg = decimal.Zero
		return report, nil
	}

	report.EstimatedKWh = sample.TotalCost.Div(CostPerKWh)
	report.EstimatedCarbonKg = report.EstimatedKWh.Mul(AzureGridIntensityKg)
	return report, nil
}

func validatePercent(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s is not a finite number", ErrInvalidInput, field)
	}
	if v < 0 || v > 100 {
		return fmt.Errorf("%w: %s %.2f outside [0,100]", ErrInvalidInput, field, v)
	}
	return nil
}
