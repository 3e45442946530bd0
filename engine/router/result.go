package router

// Intent names, used as the "type" tag on API responses.
const (
	IntentStatusCount    = "status_count"
	IntentGenderCount    = "gender_count"
	IntentMonthlySummary = "monthly_amount_summary"
	IntentSemanticSearch = "semantic_search"
)

// Result is the tagged outcome of routing one question. It is constructed
// fresh per query and handed straight to the presenter.
type Result interface {
	Intent() string
}

// StatusCount counts claims with an exact status.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

func (StatusCount) Intent() string { return IntentStatusCount }

// GenderCount counts claims for one patient gender.
type GenderCount struct {
	Gender string `json:"gender"` // human label: "Male" or "Female"
	Count  int    `json:"count"`
}

func (GenderCount) Intent() string { return IntentGenderCount }

// MonthlyEntry is one month's summed insured amount.
type MonthlyEntry struct {
	Year          int     `json:"year"`
	Month         int     `json:"month"`
	AmountInsured float64 `json:"amount_insured"`
}

// MonthlySummary is the per-month amount breakdown for one year, ascending
// by month. Months with no claims are omitted; an empty year is an empty
// list, not an error.
type MonthlySummary struct {
	Year    int            `json:"year"`
	Entries []MonthlyEntry `json:"entries"`
}

func (MonthlySummary) Intent() string { return IntentMonthlySummary }

// Match is one semantic search hit.
type Match struct {
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
}

// SemanticMatches is the universal fallback result, in store-ranked order.
// The related fields carry graph context for the top hit when a graph is
// wired: other diagnoses seen at its provider, and other providers that
// have seen its diagnosis.
type SemanticMatches struct {
	Matches          []Match  `json:"results"`
	RelatedDiagnoses []string `json:"related_diagnoses,omitempty"`
	RelatedProviders []string `json:"related_providers,omitempty"`
}

func (SemanticMatches) Intent() string { return IntentSemanticSearch }
