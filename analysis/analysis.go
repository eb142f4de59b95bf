// Package analysis produces an AI-assisted legal assessment of extracted
// facts: risk, key issues, suggested defenses, and next steps. A model
// failure never propagates; callers always get at least the deterministic
// fallback analysis.
package analysis

import (
	"context"
	"fmt"
	"log"
	"strings"

	"docketdraft-backend/ai"
	"docketdraft-backend/models"
)

// Generator builds legal analyses from structured facts
type Generator struct {
	client ai.Client
}

// NewGenerator creates an analysis generator
func NewGenerator(client ai.Client) *Generator {
	return &Generator{client: client}
}

const analysisPromptFmt = `You are an experienced civil litigation attorney analyzing an incoming legal document for the responding party.

CASE FACTS:
%s

Respond with ONLY a JSON object in exactly this shape:

{
  "summary": "2-4 sentence plain-language assessment of the case",
  "keyIssues": ["issue", ...],
  "suggestedDefenses": [
    {"type": "short_key", "title": "Defense Name", "description": "why it may apply", "strength": "high"|"medium"|"low", "legalBasis": "rule or doctrine"}
  ],
  "nextSteps": [
    {"action": "short action", "deadline": "YYYY-MM-DD" or null, "priority": "critical"|"high"|"medium", "description": "what to do"}
  ],
  "riskAssessment": {
    "overallRisk": "high"|"medium"|"low",
    "successProbability": "e.g. 40-60%%" or null,
    "factors": ["factor", ...]
  }
}

Base every statement on the facts above. Do not invent parties, dates, or amounts.`

// Generate returns a legal analysis for the facts. On any model failure it
// logs and returns the minimal fallback; the caller never blocks on this.
func (g *Generator) Generate(ctx context.Context, facts *models.StructuredFacts) *models.LegalAnalysis {
	if g.client == nil {
		return Fallback(facts)
	}

	prompt := fmt.Sprintf(analysisPromptFmt, summarizeFacts(facts))

	response, err := g.client.Generate(ctx, prompt, 0.3)
	if err != nil {
		log.Printf("Warning: analysis generation unavailable, using fallback: %v", err)
		return Fallback(facts)
	}

	result := &models.LegalAnalysis{}
	if err := ai.DecodeJSON(response, result); err != nil {
		log.Printf("Warning: analysis response unparseable, using fallback: %v", err)
		return Fallback(facts)
	}

	if result.RiskAssessment.OverallRisk == "" {
		result.RiskAssessment.OverallRisk = "unknown"
	}
	if result.KeyIssues == nil {
		result.KeyIssues = []string{}
	}
	if result.SuggestedDefenses == nil {
		result.SuggestedDefenses = []models.SuggestedDefense{}
	}
	if result.NextSteps == nil {
		result.NextSteps = []models.NextStep{}
	}

	return result
}

// summarizeFacts renders the fact record as prompt context lines
func summarizeFacts(facts *models.StructuredFacts) string {
	var b strings.Builder

	writeLine := func(label string, v *string) {
		if v != nil && *v != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, *v)
		}
	}

	fmt.Fprintf(&b, "Document Type: %s\n", facts.DocumentType)
	writeLine("Case Number", facts.CaseNumber)
	writeLine("Court", facts.Court)
	writeLine("Jurisdiction", facts.Jurisdiction)
	writeLine("Plaintiff", facts.Parties.Plaintiff)
	writeLine("Defendant", facts.Parties.Defendant)
	writeLine("Judge", facts.Judge)
	writeLine("Filing Date", facts.FilingDate)
	writeLine("Response Deadline", facts.ResponseDeadline)
	writeLine("Damage Amount", facts.DamageAmount)
	writeLine("Relief Sought", facts.ReliefSought)

	if len(facts.CausesOfAction) > 0 {
		fmt.Fprintf(&b, "Causes of Action: %s\n", strings.Join(facts.CausesOfAction, "; "))
	}
	if len(facts.KeyAllegations) > 0 {
		b.WriteString("Key Allegations:\n")
		for i, a := range facts.KeyAllegations {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, a)
		}
	}

	return b.String()
}

// Fallback is the deterministic minimal analysis used when the model call
// fails. It states that AI analysis is unavailable rather than guessing.
func Fallback(facts *models.StructuredFacts) *models.LegalAnalysis {
	subject := facts.DocumentType
	if facts.Parties.Plaintiff != nil && facts.Parties.Defendant != nil {
		subject = fmt.Sprintf("%s filed by %s against %s", facts.DocumentType, *facts.Parties.Plaintiff, *facts.Parties.Defendant)
	}

	summary := fmt.Sprintf("This document appears to be a %s. AI-assisted analysis is currently unavailable; review the extracted facts manually and consult counsel on deadlines.", subject)

	steps := []models.NextStep{
		{
			Action:      "Review extracted document facts",
			Priority:    "high",
			Description: "Verify the parties, case number, and deadlines extracted from the document.",
		},
	}
	if facts.ResponseDeadline != nil {
		steps = append(steps, models.NextStep{
			Action:      "Calendar the response deadline",
			Deadline:    facts.ResponseDeadline,
			Priority:    "critical",
			Description: "A response appears to be due; confirm the deadline under the applicable rules.",
		})
	}

	return &models.LegalAnalysis{
		Summary:           summary,
		KeyIssues:         []string{"AI analysis unavailable - manual review required"},
		SuggestedDefenses: []models.SuggestedDefense{},
		NextSteps:         steps,
		RiskAssessment: models.RiskAssessment{
			OverallRisk: "unknown",
			Factors:     []string{"Automated analysis could not be completed"},
		},
	}
}
