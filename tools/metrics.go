package tools

import (
	"context"
	"encoding/json"

	"greensentry/estimator"
	"greensentry/probe"
)

// GreenMetricsInput has no parameters - the tool always audits the local
// machine as it is right now.
type GreenMetricsInput struct{}

// NewGreenMetricsTool builds the local hardware audit tool around a probe.
func NewGreenMetricsTool(p probe.Probe) Tool {
	return NewTool[GreenMetricsInput](
		"get_green_metrics",
		"Measures the current machine's CPU and RAM usage and calculates the estimated power draw in watts and carbon footprint in grams of CO2 per hour. Call this when the user asks about local machine energy use, CPU load, or carbon footprint of their computer.",
		func(ctx context.Context, input json.RawMessage) (string, error) {
			sample, err := p.Sample(ctx)
			if err != nil {
				return "", err
			}

			report, err := estimator.EstimateLocal(sample)
			if err != nil {
				return "", err
			}
			return report.Render(), nil
		},
	)
}
