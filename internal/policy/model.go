package policy

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Policy is an extracted insurance policy document. It is written once by
// the loader and read-only for the conversational components; the document
// store owns it.
type Policy struct {
	PolicyNumber    string           `json:"policy_number"`
	CompanyName     string           `json:"company_name,omitempty"`
	PolicyHolder    string           `json:"policy_holder,omitempty"`
	EffectiveFrom   *time.Time       `json:"effective_from,omitempty"`
	EffectiveTo     *time.Time       `json:"effective_to,omitempty"`
	CoverageDetails []CoverageDetail `json:"coverage_details,omitempty"`
}

// CoverageDetail is one coverage tier ("VIP level") of a policy. Every
// field is an optional free-text value lifted from the policy document.
// Fields the extractor emits that the schema does not name land in Extra.
type CoverageDetail struct {
	VIPLevel                     string `json:"vip_level,omitempty"`
	OverallAnnualLimit           string `json:"overall_annual_limit,omitempty"`
	InpatientOutpatientTreatment string `json:"inpatient_outpatient_treatment,omitempty"`
	Accommodation                string `json:"accommodation,omitempty"`
	OutpatientDeductibleMPN      string `json:"outpatient_deductible_mpn,omitempty"`
	OutpatientDeductibleHosp     string `json:"outpatient_deductible_hospitals,omitempty"`
	OutpatientDeductiblePoly     string `json:"outpatient_deductible_polyclinic,omitempty"`
	BrandedMedicationDeductible  string `json:"branded_medication_deductible,omitempty"`
	GenericMedicationDeductible  string `json:"generic_medication_deductible,omitempty"`
	Network                      string `json:"network,omitempty"`
	STD                          string `json:"std,omitempty"`
	Menopausal                   string `json:"menopausal,omitempty"`
	PostMenopausal               string `json:"post_menopausal,omitempty"`
	PrematureBabiesTreatment     string `json:"premature_babies_treatment,omitempty"`
	Checkup                      string `json:"checkup,omitempty"`
	Vaccination                  string `json:"vaccination,omitempty"`
	OpticalFrame                 string `json:"optical_frame,omitempty"`
	BirthControl                 string `json:"birth_control,omitempty"`
	ObesitySurgeryBMIOver35      string `json:"obesity_surgery_bmi_over_35,omitempty"`
	ObesitySurgeryBMIOver40      string `json:"obesity_surgery_bmi_over_40,omitempty"`
	KidneyTransplant             string `json:"kidney_transplant,omitempty"`
	BoneMarrowTransplant         string `json:"bone_marrow_transplant,omitempty"`
	OrganTransplant              string `json:"organ_transplant,omitempty"`
	SeparatePlanLimit            string `json:"separate_plan_limit,omitempty"`
	NeonatalScreening            string `json:"neonatal_screening,omitempty"`
	Psychiatric                  string `json:"psychiatric,omitempty"`
	Dialysis                     string `json:"dialysis,omitempty"`
	HearingAidsAudiometry        string `json:"hearing_aids_audiometry,omitempty"`
	DentalGeneral                string `json:"dental_general,omitempty"`
	DentalCorrective             string `json:"dental_corrective,omitempty"`
	DentalEmergency              string `json:"dental_emergency,omitempty"`
	NeoNatalCare                 string `json:"neo_natal_care,omitempty"`
	Circumcision                 string `json:"circumcision,omitempty"`
	AcquiredHeartValvesDisease   string `json:"acquired_heart_valves_disease,omitempty"`
	NewbornDisabilityScreening   string `json:"newborn_disability_screening,omitempty"`
	Alzheimers                   string `json:"alzheimers,omitempty"`
	Congenital                   string `json:"congenital,omitempty"`
	Maternity                    string `json:"maternity,omitempty"`
	Optical                      string `json:"optical,omitempty"`
	Autism                       string `json:"autism,omitempty"`
	EarPiercing                  string `json:"ear_piercing,omitempty"`
	Screening                    string `json:"screening,omitempty"`
	DisabilityCases              string `json:"disability_cases,omitempty"`
	DonorOrganHarvesting         string `json:"donor_organ_harvesting,omitempty"`
	Physiotherapy                string `json:"physiotherapy,omitempty"`
	ApprovalPreauthNotes         string `json:"approval_preauthorization_notes,omitempty"`
	SpecialInstructions          string `json:"special_instructions,omitempty"`

	// Extra holds extractor output that has no named field above.
	Extra map[string]string `json:"-"`
}

// knownCoverageKeys maps json tag -> struct field index, built once from
// the struct tags so UnmarshalJSON can route unknown keys into Extra.
var knownCoverageKeys = func() map[string]int {
	keys := make(map[string]int)
	t := reflect.TypeOf(CoverageDetail{})
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		keys[name] = i
	}
	return keys
}()

type coverageDetailAlias CoverageDetail

// UnmarshalJSON decodes the named coverage fields and collects any
// remaining string-valued keys into Extra.
func (d *CoverageDetail) UnmarshalJSON(data []byte) error {
	var known coverageDetailAlias
	if err := json.Unmarshal(data, &known); err != nil {
		return fmt.Errorf("policy: decode coverage detail: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("policy: decode coverage detail keys: %w", err)
	}
	for key, val := range raw {
		if _, ok := knownCoverageKeys[key]; ok {
			continue
		}
		var s string
		if err := json.Unmarshal(val, &s); err != nil {
			// Non-string extras are kept verbatim.
			s = string(val)
		}
		if known.Extra == nil {
			known.Extra = make(map[string]string)
		}
		known.Extra[key] = s
	}

	*d = CoverageDetail(known)
	return nil
}

// MarshalJSON emits the named fields plus any Extra keys as one flat object.
func (d CoverageDetail) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(coverageDetailAlias(d))
	if err != nil {
		return nil, err
	}
	if len(d.Extra) == 0 {
		return data, nil
	}

	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, err
	}
	for key, val := range d.Extra {
		if _, ok := knownCoverageKeys[key]; ok {
			continue
		}
		flat[key] = val
	}
	return json.Marshal(flat)
}

// PromptText renders the detail as sorted "key: value" lines for grounding
// a model prompt. Empty fields are omitted.
func (d CoverageDetail) PromptText() string {
	fields := make(map[string]string, len(knownCoverageKeys)+len(d.Extra))

	v := reflect.ValueOf(coverageDetailAlias(d))
	for key, idx := range knownCoverageKeys {
		if val := v.Field(idx).String(); val != "" {
			fields[key] = val
		}
	}
	for key, val := range d.Extra {
		if val != "" {
			fields[key] = val
		}
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, "%s: %s\n", key, fields[key])
	}
	return b.String()
}
