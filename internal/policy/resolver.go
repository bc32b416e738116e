package policy

import (
	"context"
	"strings"

	"github.com/nadine-ai/resubmission-copilot/internal/rejection"
	"github.com/nadine-ai/resubmission-copilot/pkg/logging"
)

// MatchResult is the three-way outcome of a resolution attempt:
//   - Policy and Detail set: full match.
//   - Policy set, Detail nil: policy found, no tier matched;
//     AvailableLevels carries the raw tier labels for the caller to show.
//   - all zero: no policy matched either identifier.
//
// None of these outcomes is an error.
type MatchResult struct {
	Policy          *Policy
	Detail          *CoverageDetail
	AvailableLevels []string
}

// Resolver locates the policy and coverage tier for a visit despite
// inconsistent identifiers across the source systems.
type Resolver struct {
	store  Store
	logger *logging.Logger
}

// NewResolver creates a resolver over the given policy store.
func NewResolver(store Store, logger *logging.Logger) *Resolver {
	if store == nil {
		panic("policy: resolver store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{store: store, logger: logger}
}

// Resolve finds the policy for either candidate identifier, then the
// coverage tier for tierLabel. Identifier matching tries exact equality
// first, then substring containment (stored numbers may carry a trailing
// suffix digit the visit record lacks). The secondary identifier is only
// consulted when the primary resolves nothing.
func (r *Resolver) Resolve(ctx context.Context, primaryID, secondaryID, tierLabel string) (MatchResult, error) {
	p, err := r.findByContainment(ctx, primaryID)
	if err != nil {
		return MatchResult{}, err
	}
	if p == nil && secondaryID != "" && secondaryID != primaryID {
		p, err = r.findByContainment(ctx, secondaryID)
		if err != nil {
			return MatchResult{}, err
		}
	}
	if p == nil {
		r.logger.Info("no policy found", "primary_id", primaryID, "secondary_id", secondaryID)
		return MatchResult{}, nil
	}

	detail, available := matchCoverageDetail(p, tierLabel)
	if detail == nil {
		r.logger.Info("no coverage tier matched",
			"policy_number", p.PolicyNumber,
			"tier_label", tierLabel,
			"available_levels", available,
		)
	}
	return MatchResult{Policy: p, Detail: detail, AvailableLevels: available}, nil
}

func (r *Resolver) findByContainment(ctx context.Context, input string) (*Policy, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	numbers, err := r.store.ListNumbers(ctx)
	if err != nil {
		return nil, err
	}

	for _, stored := range numbers {
		if stored == input {
			return r.store.FindByNumber(ctx, stored)
		}
	}
	// Substring fallback: the visit record may omit a trailing suffix
	// digit that the stored number carries. A shared prefix between two
	// stored numbers can still produce a false positive; first match wins.
	for _, stored := range numbers {
		if strings.Contains(stored, input) {
			return r.store.FindByNumber(ctx, stored)
		}
	}
	return nil, nil
}

// matchCoverageDetail picks the tier for the (raw) target label. A policy
// with a single tier matches unconditionally; its one detail is meaningful
// regardless of how the label was spelled upstream.
func matchCoverageDetail(p *Policy, tierLabel string) (*CoverageDetail, []string) {
	details := p.CoverageDetails
	if len(details) == 0 {
		return nil, nil
	}
	if len(details) == 1 {
		return &details[0], nil
	}

	target := rejection.NormalizeLabelForMatching(tierLabel)
	for i := range details {
		if rejection.NormalizeLabelForMatching(details[i].VIPLevel) == target {
			return &details[i], nil
		}
	}

	available := make([]string, 0, len(details))
	for i := range details {
		available = append(available, details[i].VIPLevel)
	}
	return nil, available
}
