package policy

import (
	"context"
	"reflect"
	"testing"
)

func seedStore(t *testing.T, policies ...*Policy) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	for _, p := range policies {
		if _, _, err := store.InsertIfAbsent(context.Background(), p); err != nil {
			t.Fatalf("seed policy %s: %v", p.PolicyNumber, err)
		}
	}
	return store
}

func TestResolveSubstringContainment(t *testing.T) {
	store := seedStore(t, &Policy{
		PolicyNumber:    "514891001",
		CoverageDetails: []CoverageDetail{{VIPLevel: "VIP"}},
	})
	r := NewResolver(store, nil)

	res, err := r.Resolve(context.Background(), "51489100", "", "VIP")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Policy == nil || res.Policy.PolicyNumber != "514891001" {
		t.Fatalf("expected policy 514891001, got %+v", res.Policy)
	}
	if res.Detail == nil {
		t.Fatal("expected a coverage detail")
	}
}

func TestResolveExactMatchBeatsContainment(t *testing.T) {
	store := seedStore(t,
		&Policy{PolicyNumber: "5148910012", CoverageDetails: []CoverageDetail{{VIPLevel: "A"}}},
		&Policy{PolicyNumber: "514891001", CoverageDetails: []CoverageDetail{{VIPLevel: "B"}}},
	)
	r := NewResolver(store, nil)

	res, err := r.Resolve(context.Background(), "514891001", "", "B")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Policy.PolicyNumber != "514891001" {
		t.Errorf("exact stored number should win over an earlier containment match, got %s", res.Policy.PolicyNumber)
	}
}

func TestResolveSecondaryIdentifierFallback(t *testing.T) {
	store := seedStore(t, &Policy{
		PolicyNumber:    "509813003",
		CoverageDetails: []CoverageDetail{{VIPLevel: "VIP"}},
	})
	r := NewResolver(store, nil)

	res, err := r.Resolve(context.Background(), "999999", "509813003", "VIP")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Policy == nil {
		t.Fatal("secondary identifier should have resolved the policy")
	}
}

func TestResolveNoPolicy(t *testing.T) {
	r := NewResolver(seedStore(t), nil)

	res, err := r.Resolve(context.Background(), "123", "456", "VIP")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Policy != nil || res.Detail != nil || res.AvailableLevels != nil {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestResolveSingleTierUnconditional(t *testing.T) {
	store := seedStore(t, &Policy{
		PolicyNumber:    "467296001",
		CoverageDetails: []CoverageDetail{{VIPLevel: "VVIP", OverallAnnualLimit: "1,000,000 SR"}},
	})
	r := NewResolver(store, nil)

	res, err := r.Resolve(context.Background(), "467296001", "", "gold")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Detail == nil || res.Detail.VIPLevel != "VVIP" {
		t.Fatalf("single-tier policy must match regardless of requested label, got %+v", res.Detail)
	}
}

func TestResolveTierLabelVariants(t *testing.T) {
	store := seedStore(t, &Policy{
		PolicyNumber: "476608003",
		CoverageDetails: []CoverageDetail{
			{VIPLevel: "VIP"},
			{VIPLevel: "VIP+"},
		},
	})
	r := NewResolver(store, nil)

	res, err := r.Resolve(context.Background(), "476608003", "", "VIP +")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Detail == nil || res.Detail.VIPLevel != "VIP+" {
		t.Fatalf("expected VIP+ tier for label %q, got %+v", "VIP +", res.Detail)
	}
}

func TestResolveNoTierMatchReturnsRawLevels(t *testing.T) {
	store := seedStore(t, &Policy{
		PolicyNumber: "476608003",
		CoverageDetails: []CoverageDetail{
			{VIPLevel: "VIP"},
			{VIPLevel: "VIP+"},
		},
	})
	r := NewResolver(store, nil)

	res, err := r.Resolve(context.Background(), "476608003", "", "gold")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Policy == nil {
		t.Fatal("policy should still be returned when no tier matches")
	}
	if res.Detail != nil {
		t.Fatalf("expected no tier match, got %+v", res.Detail)
	}
	if want := []string{"VIP", "VIP+"}; !reflect.DeepEqual(res.AvailableLevels, want) {
		t.Errorf("AvailableLevels = %v, want %v", res.AvailableLevels, want)
	}
}

func TestResolveFirstNormalizedTierWins(t *testing.T) {
	store := seedStore(t, &Policy{
		PolicyNumber: "508521028",
		CoverageDetails: []CoverageDetail{
			{VIPLevel: "VIP +", OverallAnnualLimit: "first"},
			{VIPLevel: "vip+", OverallAnnualLimit: "second"},
		},
	})
	r := NewResolver(store, nil)

	res, err := r.Resolve(context.Background(), "508521028", "", "VIP+")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Detail == nil || res.Detail.OverallAnnualLimit != "first" {
		t.Fatalf("duplicate normalized labels must resolve to the first entry, got %+v", res.Detail)
	}
}
