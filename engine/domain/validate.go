package domain

import (
	"fmt"
	"time"
)

// ParseClaimDate parses an 8-digit YYYYMMDD value into a calendar date.
func ParseClaimDate(raw string) (time.Time, error) {
	if len(raw) != 8 {
		return time.Time{}, NewValidationError("date", raw, ErrBadDate)
	}
	t, err := time.Parse(RawDateLayout, raw)
	if err != nil {
		return time.Time{}, NewValidationError("date", raw, ErrBadDate)
	}
	return t, nil
}

// ValidateClaim checks that a claim carries every required field with sane
// values. An invalid claim is fatal for the ingestion run.
func ValidateClaim(c Claim) error {
	required := []struct{ field, value string }{
		{"department_code", c.DepartmentCode},
		{"category", c.Category},
		{"staff_id", c.StaffID},
		{"claim_status", c.Status},
		{"type_of_claims", c.TypeOfClaims},
		{"medical_provider", c.MedicalProvider},
		{"diagnosis", c.Diagnosis},
	}
	for _, f := range required {
		if f.value == "" {
			return NewValidationError(f.field, "", ErrMissingField)
		}
	}
	if c.Date.IsZero() {
		return NewValidationError("date", "", ErrBadDate)
	}
	if c.AmountInsured < 0 {
		return NewValidationError("amount_insured", fmt.Sprintf("%v", c.AmountInsured), ErrNegativeAmount)
	}
	if c.PatientAge < 0 {
		return NewValidationError("patient_age", fmt.Sprintf("%d", c.PatientAge), ErrNegativeAge)
	}
	if c.PatientGender != GenderMale && c.PatientGender != GenderFemale {
		return NewValidationError("patient_gender", c.PatientGender, ErrInvalidGender)
	}
	return nil
}
