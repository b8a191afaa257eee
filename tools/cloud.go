package tools

import (
	"context"
	"encoding/json"

	"greensentry/billing"
	"greensentry/estimator"
)

// CloudEstimateInput has no parameters - the billing period is always the
// current calendar month.
type CloudEstimateInput struct{}

// NewCloudEstimateTool builds the cloud carbon audit tool around a billing
// source.
func NewCloudEstimateTool(src billing.Source) Tool {
	return NewTool[CloudEstimateInput](
		"get_azure_carbon_estimate",
		"Queries the Azure Consumption API to get real cloud spending for the current month and estimates the carbon footprint of that cloud usage. Call this when the user asks about Azure cloud costs, cloud carbon footprint, or cloud energy usage.",
		func(ctx context.Context, input json.RawMessage) (string, error) {
			sample, err := src.CurrentMonthSpend(ctx)
			if err != nil {
				return "", err
			}

			report, err := estimator.EstimateCloud(sample)
			if err != nil {
				return "", err
			}
			return report.Render(), nil
		},
	)
}
