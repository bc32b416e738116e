package policy

import (
	"context"
	"time"
)

// Summary partitions the stored policies by effective dates.
type Summary struct {
	Active  []Span `json:"active"`
	Expired []Span `json:"expired"`
	Undated []Span `json:"undated,omitempty"`
}

// Summarize reports which stored policies are active or expired as of the
// given date. Policies missing either effective date are listed separately
// so stale extractions are visible rather than silently dropped.
func Summarize(ctx context.Context, store Store, asOf time.Time) (*Summary, error) {
	spans, err := store.ListSpans(ctx)
	if err != nil {
		return nil, err
	}

	s := &Summary{}
	for _, span := range spans {
		switch {
		case span.EffectiveFrom == nil || span.EffectiveTo == nil:
			s.Undated = append(s.Undated, span)
		case span.EffectiveTo.Before(asOf):
			s.Expired = append(s.Expired, span)
		case !span.EffectiveFrom.After(asOf):
			s.Active = append(s.Active, span)
		}
	}
	return s, nil
}
