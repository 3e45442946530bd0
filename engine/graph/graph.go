// Package graph maintains a small knowledge graph over claims in Neo4j:
// Provider and Diagnosis nodes linked by per-claim DIAGNOSED edges. The
// router uses it to surface related diagnoses next to semantic results.
package graph

import (
	"context"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/ClaimLensAI/claimlens-mvp/engine/domain"
)

// ClaimGraph provides graph operations over the claims graph.
type ClaimGraph struct {
	driver neo4j.DriverWithContext
}

// New creates a new ClaimGraph.
func New(driver neo4j.DriverWithContext) *ClaimGraph {
	return &ClaimGraph{driver: driver}
}

// SaveClaim merges the provider and diagnosis nodes for a claim and links
// them with a DIAGNOSED edge keyed by the claim id.
func (g *ClaimGraph) SaveClaim(ctx context.Context, claimID string, c domain.Claim) error {
	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := `MERGE (p:Provider {name: $provider})
		MERGE (d:Diagnosis {name: $diagnosis})
		MERGE (p)-[r:DIAGNOSED {claim_id: $id}]->(d)
		SET r.amount = $amount, r.date = $date, r.status = $status`
	_, err := sess.Run(ctx, cypher, map[string]any{
		"provider":  normalizeName(c.MedicalProvider),
		"diagnosis": normalizeName(c.Diagnosis),
		"id":        claimID,
		"amount":    c.AmountInsured,
		"date":      c.Date.Format(domain.DateLayout),
		"status":    c.Status,
	})
	return err
}

// RelatedDiagnoses returns the distinct diagnoses recorded for a provider.
func (g *ClaimGraph) RelatedDiagnoses(ctx context.Context, provider string) ([]string, error) {
	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := `MATCH (p:Provider {name: $provider})-[:DIAGNOSED]->(d:Diagnosis)
		RETURN DISTINCT d.name AS name ORDER BY name`
	result, err := sess.Run(ctx, cypher, map[string]any{"provider": normalizeName(provider)})
	if err != nil {
		return nil, err
	}
	return collectNames(ctx, result)
}

// ProvidersForDiagnosis returns the distinct providers that recorded a diagnosis.
func (g *ClaimGraph) ProvidersForDiagnosis(ctx context.Context, diagnosis string) ([]string, error) {
	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := `MATCH (p:Provider)-[:DIAGNOSED]->(d:Diagnosis {name: $diagnosis})
		RETURN DISTINCT p.name AS name ORDER BY name`
	result, err := sess.Run(ctx, cypher, map[string]any{"diagnosis": normalizeName(diagnosis)})
	if err != nil {
		return nil, err
	}
	return collectNames(ctx, result)
}

func collectNames(ctx context.Context, result neo4j.ResultWithContext) ([]string, error) {
	var names []string
	for result.Next(ctx) {
		if v, ok := result.Record().Get("name"); ok {
			if s, ok := v.(string); ok {
				names = append(names, s)
			}
		}
	}
	return names, result.Err()
}

// normalizeName canonicalizes node names so source-data casing differences
// don't split nodes.
func normalizeName(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}
