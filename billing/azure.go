// Package billing aggregates cloud spend for carbon estimation.
// The Azure Consumption API is the live data source; tests feed fake pagers.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/consumption/armconsumption"
	"github.com/shopspring/decimal"

	"greensentry/estimator"
)

// Source supplies an aggregated spend sample for the current billing period
// (start of the calendar month through now).
type Source interface {
	CurrentMonthSpend(ctx context.Context) (estimator.CloudSpendSample, error)
}

// usagePager is the slice of armconsumption.UsageDetailsClient the
// aggregation needs. Tests substitute a fake built with runtime.NewPager.
type usagePager interface {
	NewListPager(scope string, options *armconsumption.UsageDetailsClientListOptions) *runtime.Pager[armconsumption.UsageDetailsClientListResponse]
}

// AzureConsumption reads usage details for a subscription and sums spend.
type AzureConsumption struct {
	subscriptionID string
	client         usagePager
	now            func() time.Time
}

// NewAzureConsumption authenticates with the default Azure credential chain
// and returns a source scoped to the given subscription.
func NewAzureConsumption(subscriptionID string) (*AzureConsumption, error) {
	if subscriptionID == "" {
		return nil, fmt.Errorf("%w: subscription ID is empty", estimator.ErrUpstreamUnavailable)
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: azure credential: %v", estimator.ErrUpstreamUnavailable, err)
	}

	client, err := armconsumption.NewUsageDetailsClient(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: consumption client: %v", estimator.ErrUpstreamUnavailable, err)
	}

	return &AzureConsumption{
		subscriptionID: subscriptionID,
		client:         client,
		now:            time.Now,
	}, nil
}

// CurrentMonthSpend sums cost across all usage detail pages for the current
// calendar month. Every usage item counts toward ItemCount even when its
// cost field is absent, matching how the Consumption API reports partial
// records.
func (a *AzureConsumption) CurrentMonthSpend(ctx context.Context) (estimator.CloudSpendSample, error) {
	now := a.now().UTC()
	period := now.Format("2006-01")
	scope := "/subscriptions/" + a.subscriptionID
	filter := fmt.Sprintf("properties/usageStart ge '%s-01'", period)

	pager := a.client.NewListPager(scope, &armconsumption.UsageDetailsClientListOptions{
		Filter: &filter,
	})

	total := decimal.Zero
	currency := "USD"
	itemCount := 0

	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return estimator.CloudSpendSample{}, fmt.Errorf("%w: azure query failed: %v", estimator.ErrUpstreamUnavailable, err)
		}
		for _, item := range page.Value {
			cost, cur := extractCost(item)
			total = total.Add(cost)
			if cur != "" {
				currency = cur
			}
			itemCount++
		}
	}

	return estimator.CloudSpendSample{
		TotalCost:     total,
		CurrencyCode:  currency,
		ItemCount:     itemCount,
		BillingPeriod: period,
	}, nil
}

// extractCost pulls cost and billing currency out of either usage detail
// shape. Legacy and modern records name the fields differently.
func extractCost(item armconsumption.UsageDetailClassification) (decimal.Decimal, string) {
	switch detail := item.(type) {
	case *armconsumption.LegacyUsageDetail:
		if detail.Properties == nil {
			return decimal.Zero, ""
		}
		cost := decimal.Zero
		if detail.Properties.Cost != nil {
			cost = decimal.NewFromFloat(*detail.Properties.Cost)
		}
		currency := ""
		if detail.Properties.BillingCurrency != nil {
			currency = *detail.Properties.BillingCurrency
		}
		return cost, currency

	case *armconsumption.ModernUsageDetail:
		if detail.Properties == nil {
			return decimal.Zero, ""
		}
		cost := decimal.Zero
		if detail.Properties.CostInBillingCurrency != nil {
			cost = decimal.NewFromFloat(*detail.Properties.CostInBillingCurrency)
		}
		currency := ""
		if detail.Properties.BillingCurrencyCode != nil {
			currency = *detail.Properties.BillingCurrencyCode
		}
		return cost, currency
	}
	return decimal.Zero, ""
}

// Unconfigured is the source used when no subscription ID is set. It keeps
// the cloud audit tool registered so the agent can explain what is missing
// instead of hiding the capability.
type Unconfigured struct{}

func (Unconfigured) CurrentMonthSpend(ctx context.Context) (estimator.CloudSpendSample, error) {
	return estimator.CloudSpendSample{}, fmt.Errorf("%w: AZURE_SUBSCRIPTION_ID not set in .env file", estimator.ErrUpstreamUnavailable)
}
