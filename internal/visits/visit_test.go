package visits

import (
	"strings"
	"testing"
)

func TestCleanContractLabel(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"network prefix", "1 - VIP+", "VIP+"},
		{"no dash", "VVIP", "VVIP"},
		{"only first dash splits", "2 - VIP - Gold", "VIP - Gold"},
		{"whitespace", "  Gold  ", "Gold"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanContractLabel(tt.raw); got != tt.want {
				t.Errorf("CleanContractLabel(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestPromptText(t *testing.T) {
	rows := []Row{
		{
			MedDept:       "Outpatient",
			SpecialtyName: "Psychiatry",
			DiagnoseName:  "Generalized anxiety disorder",
			ICD10Code:     "F41.1",
			ServiceName:   "Examination",
			Price:         "300",
		},
		{ServiceName: "Sertraline 50mg", Price: "85"},
	}

	text := PromptText(rows)
	for _, want := range []string{
		"Specialty: Psychiatry",
		"ICD10: F41.1",
		"- Examination (price: 300)",
		"- Sertraline 50mg (price: 85)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("PromptText missing %q:\n%s", want, text)
		}
	}

	if PromptText(nil) != "" {
		t.Error("empty visit should serialize to an empty string")
	}
}

func TestServiceText(t *testing.T) {
	r := Row{
		ServiceName:  "Examination",
		Price:        "300",
		StartDate:    "2025-03-14 09:30:00",
		DiagnoseName: "GAD",
		ICD10Code:    "F41.1",
	}
	text := r.ServiceText()
	if !strings.Contains(text, "Service: Examination") || !strings.Contains(text, "Diagnosis: GAD (F41.1)") {
		t.Errorf("unexpected service text:\n%s", text)
	}
}
