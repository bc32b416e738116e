package visits

import (
	"fmt"
	"strings"
)

// Row is one rejected service line of a visit as the claims replica
// reports it. Column names follow the upstream schema; the two policy
// number columns disagree between source systems, so both are carried.
type Row struct {
	VisitID         string `json:"visit_id"`
	Contract        string `json:"contract"`
	ServiceName     string `json:"service_name"`
	Price           string `json:"price"`
	StartDate       string `json:"start_date"`
	MedDept         string `json:"med_dept"`
	SpecialtyName   string `json:"specialty_name"`
	DiagnoseName    string `json:"diagnose_name"`
	ICD10Code       string `json:"icd10_code"`
	RejectionReason string `json:"rejection_reason"`
	PolicyNumber    string `json:"contractor_client_policy_number"`
	PolicyNumber2   string `json:"contractor_client_policy_number2"`
}

// CleanContractLabel strips the network prefix from a raw contract label:
// "1 - VIP+" becomes "VIP+". Labels without a dash pass through trimmed.
func CleanContractLabel(raw string) string {
	before, after, found := strings.Cut(raw, "-")
	if found {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(before)
}

// TierLabel returns the cleaned contract label of the visit.
func TierLabel(rows []Row) string {
	if len(rows) == 0 {
		return ""
	}
	return CleanContractLabel(rows[0].Contract)
}

// PromptText serializes a visit for model grounding: one header line of
// visit context followed by a line per rejected service.
func PromptText(rows []Row) string {
	if len(rows) == 0 {
		return ""
	}

	var b strings.Builder
	first := rows[0]
	fmt.Fprintf(&b, "Department: %s | Specialty: %s | Diagnosis: %s | ICD10: %s\n",
		first.MedDept, first.SpecialtyName, first.DiagnoseName, first.ICD10Code)
	b.WriteString("Services:\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "- %s (price: %s)\n", row.ServiceName, row.Price)
	}
	return b.String()
}

// ServiceText serializes a single rejected service for the justification
// template. The rejection reason rides along for classification only; the
// template instructs the model not to quote it.
func (r Row) ServiceText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Service: %s\n", r.ServiceName)
	fmt.Fprintf(&b, "Price: %s\n", r.Price)
	fmt.Fprintf(&b, "Date: %s\n", r.StartDate)
	fmt.Fprintf(&b, "Specialty: %s\n", r.SpecialtyName)
	fmt.Fprintf(&b, "Diagnosis: %s (%s)\n", r.DiagnoseName, r.ICD10Code)
	return b.String()
}
