// Package domain defines the claim record model, field coercion rules, and
// validation for the ClaimLens engine. It acts as the validation gate at
// pipeline entry points.
package domain

import "time"

// DateLayout is the calendar form claims carry in store metadata.
const DateLayout = "2006-01-02"

// RawDateLayout is the 8-digit form dates arrive in from the source workbook.
const RawDateLayout = "20060102"

// Gender tokens as stored in claim metadata.
const (
	GenderMale   = "M"
	GenderFemale = "F"
)

// Claim is a single insurance-claim record as ingested.
//
// All code-like fields stay strings even when numeric in the source, so that
// store-side metadata filters match on exact strings. Only amount_insured and
// patient_age are coerced to numeric types.
type Claim struct {
	DepartmentCode  string    `json:"department_code"`
	Category        string    `json:"category"`
	StaffID         string    `json:"staff_id"`
	Date            time.Time `json:"date"`
	AmountInsured   float64   `json:"amount_insured"`
	Status          string    `json:"claim_status"`
	TypeOfClaims    string    `json:"type_of_claims"`
	PatientGender   string    `json:"patient_gender"`
	PatientAge      int       `json:"patient_age"`
	Relationship    string    `json:"relationship"`
	MedicalProvider string    `json:"medical_provider"`
	Diagnosis       string    `json:"diagnosis"`
	MCDays          string    `json:"mc_days"`
	LongTermMedical string    `json:"long_term_medical"`
}

// Metadata returns the claim's fields as a flat payload map, coerced per the
// ingestion contract: amount as float, age as int, everything else strings.
func (c Claim) Metadata() map[string]any {
	return map[string]any{
		"department_code":   c.DepartmentCode,
		"category":          c.Category,
		"staff_id":          c.StaffID,
		"date":              c.Date.Format(DateLayout),
		"amount_insured":    c.AmountInsured,
		"claim_status":      c.Status,
		"type_of_claims":    c.TypeOfClaims,
		"patient_gender":    c.PatientGender,
		"patient_age":       c.PatientAge,
		"relationship":      c.Relationship,
		"medical_provider":  c.MedicalProvider,
		"diagnosis":         c.Diagnosis,
		"mc_days":           c.MCDays,
		"long_term_medical": c.LongTermMedical,
	}
}
