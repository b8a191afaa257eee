// Package auditor reviews code snippets for energy efficiency using a
// dedicated model deployment.
package auditor

import (
	"context"
	"fmt"

	"greensentry/estimator"
	"greensentry/provider"
)

// systemPrompt carries the few-shot examples the auditor deployment was
// fine-tuned on. When the fine-tuned model isn't available yet, this prompt
// teaches the base model to respond in exactly the same REFACTOR/WHY format.
const systemPrompt = `You are a Green Software SRE. Identify carbon-heavy code and provide a green refactor.

Always respond in this exact format:
REFACTOR: <the improved code>
WHY: <one sentence explaining the energy/carbon saving>

Examples:
---
User: Audit this code for energy efficiency: while True: print('Checking updates...')
REFACTOR: import time
while True:
    print('Checking updates...')
    time.sleep(60)
WHY: Adding a sleep timer prevents 100% CPU usage during idle loops.
---
User: Audit this code for energy efficiency: data = [i for i in range(1000000)]
for x in data: print(x)
REFACTOR: for x in range(1000000): print(x)
WHY: Using a generator/range instead of a full list saves significant RAM.
---
User: Audit this code for energy efficiency: import pandas as pd
df = pd.read_csv('huge_file.csv')
REFACTOR: import pandas as pd
for chunk in pd.read_csv('huge_file.csv', chunksize=1000): process(chunk)
WHY: Processing data in chunks prevents memory spikes and disk swapping.
---
User: Audit this code for energy efficiency: cursor.execute('SELECT * FROM global_users')
REFACTOR: cursor.execute('SELECT username FROM global_users WHERE user_id = ?', (uid,))
WHY: Selecting only necessary columns reduces data transfer energy (Network Carbon).
---
User: Audit this code for energy efficiency: for x in big_list:
    result = heavy_computation(x)
    process(result)
REFACTOR: import functools
@functools.lru_cache(maxsize=128)
def cached_heavy(x): return heavy_computation(x)

for x in big_list:
    process(cached_heavy(x))
WHY: Caching/Memoization prevents the CPU from repeating expensive calculations.
`

// Config selects the auditor's model explicitly: the fine-tuned deployment
// when available, the base model otherwise.
type Config struct {
	Model    string // fine-tuned auditor model; empty means not yet deployed
	Fallback string // base model used until fine-tuning lands
}

// Auditor sends code to the configured model and returns a green refactor.
// It owns the provider it is given and sets the resolved model on it.
type Auditor struct {
	prov  provider.Provider
	label string
}

// New resolves the model choice and binds it to the provider.
func New(prov provider.Provider, cfg Config) *Auditor {
	model := cfg.Model
	label := "fine-tuned auditor"
	if model == "" {
		model = cfg.Fallback
		label = "base model (fine-tuning pending)"
	}
	if model != "" {
		prov.SetModel(model)
	}

	return &Auditor{prov: prov, label: label}
}

// Label reports which model class answers audits, for display.
func (a *Auditor) Label() string {
	return a.label
}

// Audit reviews a code snippet and returns the labelled REFACTOR/WHY report.
// Failures wrap estimator.ErrUpstreamUnavailable; the auditor never retries.
func (a *Auditor) Audit(ctx context.Context, code string) (string, error) {
	messages := []provider.Message{{
		Role:    "user",
		Content: "Audit this code for energy efficiency: " + code,
	}}

	response, err := a.prov.Chat(ctx, systemPrompt, messages, nil)
	if err != nil {
		return "", fmt.Errorf("%w: code audit failed: %v", estimator.ErrUpstreamUnavailable, err)
	}

	return fmt.Sprintf("Green Code Audit [%s]:\n\n%s", a.label, response.Content), nil
}
