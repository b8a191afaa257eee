package estimator

import (
	"fmt"
	"strings"
)

// Render formats the local report as the fixed audit layout shown to the
// model and the user: watts to 2 decimal places, carbon to 5.
func (r LocalAuditReport) Render() string {
	var sb strings.Builder
	sb.WriteString("Local Hardware Audit:\n")
	fmt.Fprintf(&sb, "- CPU Usage: %.1f%%\n", r.CPUPercent)
	fmt.Fprintf(&sb, "- RAM Usage: %.1f%%\n", r.RAMPercent)
	fmt.Fprintf(&sb, "- Estimated Power Draw: %.2fW\n", r.Watts)
	fmt.Fprintf(&sb, "- Carbon Footprint: %.5fg CO2/hr", r.CarbonGramsPerHour)
	return sb.String()
}

// Render formats the cloud report: energy to 4 decimal places, carbon to 6.
// The zero-spend layout differs deliberately so the model can tell an idle
// subscription apart from a cheap one.
func (r CloudAuditReport) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Azure Cloud Audit (%s):\n", r.BillingPeriod)

	if r.NoBillableUsage {
		fmt.Fprintf(&sb, "- Usage Items Found: %d\n", r.ItemCount)
		sb.WriteString("- Total Spend: $0.00 (no billable usage this month)\n")
		sb.WriteString("- Carbon Footprint: 0.000000 kg CO2\n")
	} else {
		fmt.Fprintf(&sb, "- Usage Items: %d\n", r.ItemCount)
		fmt.Fprintf(&sb, "- Total Spend: $%s %s\n", r.TotalCost.StringFixed(4), r.CurrencyCode)
		fmt.Fprintf(&sb, "- Estimated Energy: %s kWh\n", r.EstimatedKWh.StringFixed(4))
		fmt.Fprintf(&sb, "- Carbon Footprint: %s kg CO2\n", r.EstimatedCarbonKg.StringFixed(6))
	}

	sb.WriteString("- Source: Azure Consumption API (live data)")
	return sb.String()
}
