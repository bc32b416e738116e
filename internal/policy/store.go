package policy

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable wraps connectivity failures against the document
// store. It is the only policy-layer error class that should surface as a
// failure; lookup misses are ordinary return values.
var ErrStoreUnavailable = errors.New("policy: store unavailable")

// Span is the effective-date slice of a policy used for reporting.
type Span struct {
	PolicyNumber  string     `json:"policy_number"`
	EffectiveFrom *time.Time `json:"effective_from,omitempty"`
	EffectiveTo   *time.Time `json:"effective_to,omitempty"`
}

// Store is the narrow contract against the external policy document store.
type Store interface {
	// FindByNumber returns the policy with the exact stored number, or
	// (nil, nil) when absent.
	FindByNumber(ctx context.Context, number string) (*Policy, error)
	// ListNumbers returns every stored policy number in insertion order.
	ListNumbers(ctx context.Context) ([]string, error)
	// ListSpans returns the effective-date span of every stored policy.
	ListSpans(ctx context.Context) ([]Span, error)
	// InsertIfAbsent stores the policy unless one with the same number
	// already exists. It returns the stored policy and whether an insert
	// happened.
	InsertIfAbsent(ctx context.Context, p *Policy) (*Policy, bool, error)
	// Delete removes a policy by number, reporting whether it existed.
	Delete(ctx context.Context, number string) (bool, error)
}
