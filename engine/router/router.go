// Package router interprets natural-language questions about the claims
// collection. Classification is an ordered rule table over trigger words:
// the first rule whose trigger fires gets to extract its parameters, and if
// extraction comes up empty the question drops to plain semantic search.
// Routing never fails for lack of a match; only infrastructure errors
// propagate.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ClaimLensAI/claimlens-mvp/engine/domain"
	"github.com/ClaimLensAI/claimlens-mvp/engine/semantic"
)

// Embedder turns query text into a vector in the collection's space.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher runs similarity search with optional exact metadata filters.
type Searcher interface {
	SearchFiltered(ctx context.Context, embedding []float32, topK int, filters map[string]string) ([]semantic.SearchResult, error)
}

// Enricher surfaces graph context for semantic hits. Optional.
type Enricher interface {
	RelatedDiagnoses(ctx context.Context, provider string) ([]string, error)
	ProvidersForDiagnosis(ctx context.Context, diagnosis string) ([]string, error)
}

// Options tune result sizes per intent.
type Options struct {
	// CountLimit caps how many hits count intents retrieve. It must sit
	// above the collection size for counts to be exact.
	CountLimit int
	// TopK is the semantic fallback's result size.
	TopK int
}

// DefaultOptions returns the stock limits.
func DefaultOptions() Options {
	return Options{CountLimit: 1000, TopK: 5}
}

type rule struct {
	intent  string
	trigger func(q string) bool
	run     func(ctx context.Context, q string) (Result, bool, error)
}

// Service routes questions to count, summary, or semantic handlers.
type Service struct {
	embed  Embedder
	search Searcher
	graph  Enricher
	opts   Options
	log    *slog.Logger
	rules  []rule
}

// New builds a Service. graph may be nil to skip enrichment.
func New(embed Embedder, search Searcher, graph Enricher, opts Options, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	if opts.CountLimit <= 0 {
		opts.CountLimit = DefaultOptions().CountLimit
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultOptions().TopK
	}
	s := &Service{embed: embed, search: search, graph: graph, opts: opts, log: log}
	s.rules = []rule{
		{
			intent:  IntentStatusCount,
			trigger: func(q string) bool { return strings.Contains(q, "status") },
			run:     s.statusCount,
		},
		{
			intent: IntentGenderCount,
			trigger: func(q string) bool {
				if strings.Contains(q, "gender") {
					return true
				}
				_, ok := ExtractGender(q)
				return ok
			},
			run: s.genderCount,
		},
		{
			intent: IntentMonthlySummary,
			trigger: func(q string) bool {
				return strings.Contains(q, "amount") || strings.Contains(q, "insured") || strings.Contains(q, "summary")
			},
			run: s.monthlySummary,
		},
	}
	return s
}

// Ask classifies and answers one question. The question is lowercased
// before matching, so triggers and extractors are case-insensitive.
func (s *Service) Ask(ctx context.Context, question string) (Result, error) {
	q := strings.ToLower(strings.TrimSpace(question))

	for _, r := range s.rules {
		if !r.trigger(q) {
			continue
		}
		res, ok, err := r.run(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.intent, err)
		}
		if ok {
			s.log.Debug("query routed", "intent", r.intent)
			return res, nil
		}
		// Trigger fired but no parameters: hand off to semantic search
		// rather than trying weaker rules on a question we half-understood.
		break
	}

	s.log.Debug("query routed", "intent", IntentSemanticSearch)
	return s.semanticSearch(ctx, q)
}

func (s *Service) statusCount(ctx context.Context, q string) (Result, bool, error) {
	status, ok := ExtractStatus(q)
	if !ok {
		return nil, false, nil
	}
	hits, err := s.countHits(ctx, "claims with status "+status, map[string]string{"claim_status": status})
	if err != nil {
		return nil, false, err
	}
	return StatusCount{Status: status, Count: hits}, true, nil
}

func (s *Service) genderCount(ctx context.Context, q string) (Result, bool, error) {
	gender, ok := ExtractGender(q)
	if !ok {
		return nil, false, nil
	}
	label := "Male"
	if gender == domain.GenderFemale {
		label = "Female"
	}
	hits, err := s.countHits(ctx, strings.ToLower(label)+" patients", map[string]string{"patient_gender": gender})
	if err != nil {
		return nil, false, err
	}
	return GenderCount{Gender: label, Count: hits}, true, nil
}

func (s *Service) monthlySummary(ctx context.Context, q string) (Result, bool, error) {
	year, ok := ExtractYear(q)
	if !ok {
		return nil, false, nil
	}
	emb, err := s.embed.Embed(ctx, fmt.Sprintf("claims from year %d", year))
	if err != nil {
		return nil, false, fmt.Errorf("embed query: %w", err)
	}
	// No store-side date filter: dates are full day strings, so the year
	// cut happens while bucketing.
	results, err := s.search.SearchFiltered(ctx, emb, s.opts.CountLimit, nil)
	if err != nil {
		return nil, false, fmt.Errorf("search: %w", err)
	}
	return MonthlySummary{Year: year, Entries: MonthlyTotals(results, year)}, true, nil
}

func (s *Service) semanticSearch(ctx context.Context, q string) (Result, error) {
	emb, err := s.embed.Embed(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := s.search.SearchFiltered(ctx, emb, s.opts.TopK, nil)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := SemanticMatches{Matches: make([]Match, 0, len(results))}
	for _, r := range results {
		out.Matches = append(out.Matches, Match{Description: r.Description, Metadata: r.Meta})
	}
	if s.graph != nil && len(results) > 0 {
		if provider := results[0].Meta["medical_provider"]; provider != "" {
			related, err := s.graph.RelatedDiagnoses(ctx, provider)
			if err != nil {
				s.log.Warn("graph enrichment failed", "provider", provider, "error", err)
			} else {
				out.RelatedDiagnoses = related
			}
		}
		if diagnosis := results[0].Meta["diagnosis"]; diagnosis != "" {
			providers, err := s.graph.ProvidersForDiagnosis(ctx, diagnosis)
			if err != nil {
				s.log.Warn("graph enrichment failed", "diagnosis", diagnosis, "error", err)
			} else {
				out.RelatedProviders = providers
			}
		}
	}
	return out, nil
}

func (s *Service) countHits(ctx context.Context, queryText string, filters map[string]string) (int, error) {
	emb, err := s.embed.Embed(ctx, queryText)
	if err != nil {
		return 0, fmt.Errorf("embed query: %w", err)
	}
	results, err := s.search.SearchFiltered(ctx, emb, s.opts.CountLimit, filters)
	if err != nil {
		return 0, fmt.Errorf("search: %w", err)
	}
	return len(results), nil
}
