package policy

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCoverageDetailUnknownFieldsLandInExtra(t *testing.T) {
	raw := `{
		"vip_level": "VIP+",
		"overall_annual_limit": "1,000,000 SR",
		"obesity_surgery_bmi35": "15,000 SR (Nil deductible)"
	}`

	var d CoverageDetail
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.VIPLevel != "VIP+" {
		t.Errorf("VIPLevel = %q", d.VIPLevel)
	}
	if got := d.Extra["obesity_surgery_bmi35"]; got != "15,000 SR (Nil deductible)" {
		t.Errorf("Extra fallback = %q", got)
	}

	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), "obesity_surgery_bmi35") {
		t.Errorf("extra key missing from marshalled output: %s", out)
	}
}

func TestCoverageDetailPromptText(t *testing.T) {
	d := CoverageDetail{
		VIPLevel:            "VIP",
		OverallAnnualLimit:  "500,000 SR",
		SpecialInstructions: "RTA is covered",
		Extra:               map[string]string{"room_type": "Private"},
	}

	text := d.PromptText()
	for _, want := range []string{
		"overall_annual_limit: 500,000 SR",
		"special_instructions: RTA is covered",
		"room_type: Private",
		"vip_level: VIP",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("PromptText missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "dental_general") {
		t.Error("empty fields must be omitted from the prompt text")
	}

	// Keys come out sorted so the prompt is stable across runs.
	if strings.Index(text, "overall_annual_limit") > strings.Index(text, "special_instructions") {
		t.Error("prompt lines are not sorted")
	}
}
