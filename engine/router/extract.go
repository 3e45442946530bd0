package router

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ClaimLensAI/claimlens-mvp/engine/domain"
)

// Extractors operate on lowercased question text. Each returns its value
// plus whether the question actually contained one; a trigger word without
// an extractable value is how classification falls through.

var (
	statusPattern = regexp.MustCompile(`status ["']?([^"'.]+)["']?`)
	femalePattern = regexp.MustCompile(`\b(female|females|woman|women)\b`)
	malePattern   = regexp.MustCompile(`\b(male|males|man|men)\b`)
	yearPattern   = regexp.MustCompile(`\b(20\d{2})\b`)
)

// ExtractStatus pulls the status value following the word "status",
// stripping surrounding quotes and anything past a period. The stored
// statuses are uppercase so the match is uppercased too.
func ExtractStatus(q string) (string, bool) {
	m := statusPattern.FindStringSubmatch(q)
	if m == nil {
		return "", false
	}
	status := strings.ToUpper(strings.TrimSpace(m[1]))
	if status == "" {
		return "", false
	}
	return status, true
}

// ExtractGender maps gender words to the stored M/F codes. Female terms are
// checked first: "female" contains "male" as a substring, and with word
// boundaries alone a question like "female patients" must not count as male.
func ExtractGender(q string) (string, bool) {
	if femalePattern.MatchString(q) {
		return domain.GenderFemale, true
	}
	if malePattern.MatchString(q) {
		return domain.GenderMale, true
	}
	return "", false
}

// ExtractYear finds a four-digit year in the 2000s.
func ExtractYear(q string) (int, bool) {
	m := yearPattern.FindStringSubmatch(q)
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return year, true
}
