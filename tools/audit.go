package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// AuditCodeInput defines the parameters for the audit_code tool.
type AuditCodeInput struct {
	Code string `json:"code" jsonschema_description:"The code snippet to audit for energy efficiency."`
}

// AuditFunc reviews a code snippet and returns a green refactor report.
// The auditor package provides the production implementation.
type AuditFunc func(ctx context.Context, code string) (string, error)

// NewAuditCodeTool builds the green code review tool around an audit
// function.
func NewAuditCodeTool(audit AuditFunc) Tool {
	return NewTool[AuditCodeInput](
		"audit_code",
		"Audits a snippet of code for energy efficiency and returns a greener refactored version with an explanation. Call this when the user shares code and asks for a green refactor, energy audit, carbon review, or sustainability analysis of their code.",
		func(ctx context.Context, input json.RawMessage) (string, error) {
			var args AuditCodeInput
			if err := json.Unmarshal(input, &args); err != nil {
				return "", err
			}
			if args.Code == "" {
				return "", fmt.Errorf("code is required")
			}
			return audit(ctx, args.Code)
		},
	)
}
