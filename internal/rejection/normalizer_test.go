package rejection

import "testing"

func TestNormalizeReasonText(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   ReasonCategory
		wantOK bool
	}{
		{
			name:   "not indicated for diagnosis",
			raw:    "Not indicated for this diagnosis",
			want:   NotClinicallyJustified,
			wantOK: true,
		},
		{
			name:   "not justified with surrounding text",
			raw:    "The claimed service is NOT JUSTIFIED per clinical review",
			want:   NotClinicallyJustified,
			wantOK: true,
		},
		{
			name:   "no necessity",
			raw:    "there is no necessity for this lab test",
			want:   NotClinicallyJustified,
			wantOK: true,
		},
		{
			name:   "diagnosis inconsistent",
			raw:    "diagnosis inconsistent with submitted service",
			want:   NotClinicallyJustified,
			wantOK: true,
		},
		{
			name:   "therapeutic duplication",
			raw:    "Therapeutic Duplication with item 06285096001065",
			want:   TherapeuticDuplication,
			wantOK: true,
		},
		{
			name:   "age word boundary",
			raw:    "patient age 45 inconsistent",
			want:   InconsistentWithAge,
			wantOK: true,
		},
		{
			name:   "age inside another word does not match",
			raw:    "dosage adjustment required",
			wantOK: false,
		},
		{
			name:   "interactions",
			raw:    "Drug interactions with current medication",
			want:   SevereInteractions,
			wantOK: true,
		},
		{
			name:   "contradiction",
			raw:    "contradiction with prescribed therapy",
			want:   SevereInteractions,
			wantOK: true,
		},
		{
			name:   "code not found",
			raw:    "drug code not found in formulary",
			want:   DrugCodeNotFound,
			wantOK: true,
		},
		{
			name:   "wrong code",
			raw:    "submitted with wrong code",
			want:   DrugCodeNotFound,
			wantOK: true,
		},
		{
			name:   "not covered",
			raw:    "Service not covered under this plan",
			want:   NotCovered,
			wantOK: true,
		},
		{
			name:   "rule order beats specificity",
			raw:    "not justified for patient age",
			want:   NotClinicallyJustified,
			wantOK: true,
		},
		{
			name:   "unclassifiable",
			raw:    "pre-authorization number missing",
			wantOK: false,
		},
		{
			name:   "empty input",
			raw:    "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeReasonText(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("NormalizeReasonText(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if !tt.wantOK {
				if got != Unclassified {
					t.Fatalf("NormalizeReasonText(%q) = %q, want Unclassified", tt.raw, got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("NormalizeReasonText(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeLabelForMatching(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
	}{
		{"space before plus", "VIP +", "vip+"},
		{"ascii dash", "VIP-Gold", "vip gold"},
		{"en dash", "VIP – Gold", "VIPGold"},
		{"case only", "VVIP", "vvip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if NormalizeLabelForMatching(tt.a) != NormalizeLabelForMatching(tt.b) {
				t.Errorf("labels %q and %q should normalize equal (got %q vs %q)",
					tt.a, tt.b, NormalizeLabelForMatching(tt.a), NormalizeLabelForMatching(tt.b))
			}
		})
	}

	if NormalizeLabelForMatching("VIP") == NormalizeLabelForMatching("VIP+") {
		t.Error("distinct tiers must not normalize equal")
	}
}

func TestCategoryString(t *testing.T) {
	if Unclassified.String() != "unclassified" {
		t.Errorf("Unclassified.String() = %q", Unclassified.String())
	}
	if NotCovered.String() != "not_covered" {
		t.Errorf("NotCovered.String() = %q", NotCovered.String())
	}
}
