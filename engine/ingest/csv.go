package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ClaimLensAI/claimlens-mvp/engine/domain"
)

// Source workbook column headers. The CSV export keeps the original names.
const (
	colDepartment = "Department Code"
	colCategory   = "Category"
	colStaffID    = "StaffID"
	colDate       = "Date Incurred (YYYYMMDD)"
	colAmount     = "AmtInsured"
	colStatus     = "Claim Status"
	colType       = "TypeOfClaims"
	colGender     = "PatientGender"
	colAge        = "PatientAge"
	colRel        = "Rel"
	colProvider   = "MedicalProviders"
	colDiagnosis  = "Diagnosis"
	colMCDays     = "MCDays"
	colLongTerm   = "Long Term Medical"
)

var requiredColumns = []string{
	colDepartment, colCategory, colStaffID, colDate, colAmount, colStatus,
	colType, colGender, colAge, colRel, colProvider, colDiagnosis,
	colMCDays, colLongTerm,
}

// ReadClaims parses a CSV export of the claims workbook. Every row must
// supply every column; any unparsable field fails the whole read, matching
// the all-or-nothing reload contract.
func ReadClaims(r io.Reader) ([]domain.Claim, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("ingest: read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("ingest: missing column %q", col)
		}
	}

	var claims []domain.Claim
	for rowNum := 1; ; rowNum++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: row %d: %w", rowNum, err)
		}

		c, err := claimFromRecord(record, idx)
		if err != nil {
			return nil, fmt.Errorf("ingest: row %d: %w", rowNum, err)
		}
		claims = append(claims, c)
	}
	return claims, nil
}

func claimFromRecord(record []string, idx map[string]int) (domain.Claim, error) {
	field := func(col string) string {
		return strings.TrimSpace(record[idx[col]])
	}

	date, err := domain.ParseClaimDate(field(colDate))
	if err != nil {
		return domain.Claim{}, err
	}

	amount, err := strconv.ParseFloat(field(colAmount), 64)
	if err != nil {
		return domain.Claim{}, fmt.Errorf("amount %q: %w", field(colAmount), err)
	}

	age, err := strconv.Atoi(field(colAge))
	if err != nil {
		return domain.Claim{}, fmt.Errorf("age %q: %w", field(colAge), err)
	}

	return domain.Claim{
		DepartmentCode:  field(colDepartment),
		Category:        field(colCategory),
		StaffID:         field(colStaffID),
		Date:            date,
		AmountInsured:   amount,
		Status:          field(colStatus),
		TypeOfClaims:    field(colType),
		PatientGender:   strings.ToUpper(field(colGender)),
		PatientAge:      age,
		Relationship:    field(colRel),
		MedicalProvider: field(colProvider),
		Diagnosis:       field(colDiagnosis),
		MCDays:          field(colMCDays),
		LongTermMedical: field(colLongTerm),
	}, nil
}
