package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ClaimLensAI/claimlens-mvp/engine/domain"
)

// DocID returns the stable document id for a row ordinal.
func DocID(ordinal int) string {
	return fmt.Sprintf("claim_%d", ordinal)
}

// Description renders the claim as the natural-language description the
// embedder vectorizes. The wording and field order are deliberate: this text
// is the only signal semantic search sees, so it stays stable across runs.
func Description(c domain.Claim) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Claim from %s for a %d year old %s patient ",
		c.MedicalProvider, c.PatientAge, strings.ToLower(c.PatientGender))
	fmt.Fprintf(&b, "with diagnosis of %s. ", c.Diagnosis)
	fmt.Fprintf(&b, "Amount insured: %s, Status: %s, ", formatAmount(c.AmountInsured), c.Status)
	fmt.Fprintf(&b, "Type: %s, Date: %s", c.TypeOfClaims, c.Date.Format(domain.DateLayout))
	return b.String()
}

// formatAmount renders an amount with the fewest digits that round-trip.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
