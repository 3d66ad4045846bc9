// Package policy evaluates certificate expiry through OPA. Operators ship a
// rego bundle so the expiry rule can change without redeploying the service;
// when no bundle is configured the verification engine falls back to a plain
// date comparison.
package policy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/open-policy-agent/opa/rego"

	"certledger/internal/domain"
)

const defaultQuery = "data.certledger.policy.expired"

type expiryInput struct {
	CertificateID string `json:"certificate_id"`
	IssueDate     string `json:"issue_date"`
	ExpiryDate    string `json:"expiry_date"`
	Template      string `json:"template"`
	NowDate       string `json:"now_date"`
}

type Engine struct {
	query rego.PreparedEvalQuery
}

func NewEngineFromBundlePath(ctx context.Context, bundlePath string) (*Engine, error) {
	r := rego.New(
		rego.Query(defaultQuery),
		rego.StrictBuiltinErrors(true),
		rego.Load([]string{bundlePath}, nil),
	)
	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare expiry policy: %w", err)
	}
	return &Engine{query: prepared}, nil
}

// NewEngineFromModule compiles a single inline module. Used in tests.
func NewEngineFromModule(ctx context.Context, module string) (*Engine, error) {
	r := rego.New(
		rego.Query(defaultQuery),
		rego.StrictBuiltinErrors(true),
		rego.Module("expiry.rego", module),
	)
	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare expiry policy: %w", err)
	}
	return &Engine{query: prepared}, nil
}

func (e *Engine) Expired(ctx context.Context, cert domain.Certificate, now time.Time) (bool, error) {
	if e == nil {
		return false, errors.New("policy engine is nil")
	}
	input := expiryInput{
		CertificateID: cert.CertificateID,
		IssueDate:     cert.IssueDate,
		ExpiryDate:    cert.ExpiryDate,
		Template:      cert.Template,
		NowDate:       now.UTC().Format("2006-01-02"),
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, err
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, errors.New("empty policy result")
	}
	expired, ok := results[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("policy result is %T, want bool", results[0].Expressions[0].Value)
	}
	return expired, nil
}
