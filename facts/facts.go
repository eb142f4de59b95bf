// Package facts produces a normalized fact record from extracted document
// text. Two extraction strategies run and are merged: a model-backed pass
// and a deterministic pattern pass. Model values win when present; pattern
// values fill the gaps; a field missing from both stays nil.
package facts

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"docketdraft-backend/ai"
	"docketdraft-backend/classify"
	"docketdraft-backend/models"
)

// DefaultResponseDeadlineDays is the statutory-default answer deadline used
// when a civil pleading lacks an explicit one. Jurisdiction-dependent, so
// overridable via RESPONSE_DEADLINE_DAYS.
const DefaultResponseDeadlineDays = 30

// Service merges model-backed and pattern-backed extraction
type Service struct {
	model        *ModelExtractor
	pattern      *PatternExtractor
	deadlineDays int
}

// NewService creates a fact extraction service
func NewService(client ai.Client) *Service {
	return &Service{
		model:        NewModelExtractor(client),
		pattern:      &PatternExtractor{},
		deadlineDays: deadlineDaysFromEnv(),
	}
}

func deadlineDaysFromEnv() int {
	if v := os.Getenv("RESPONSE_DEADLINE_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			return days
		}
		log.Printf("Warning: invalid RESPONSE_DEADLINE_DAYS %q, using default %d", v, DefaultResponseDeadlineDays)
	}
	return DefaultResponseDeadlineDays
}

// Extract returns best-effort structured facts. It never fails for missing
// fields: if the model pass errors the result degrades to the pattern-only
// basic mode, which is always available.
func (s *Service) Extract(ctx context.Context, text string, docType string) *models.StructuredFacts {
	patternFacts := s.pattern.Extract(text, docType)

	modelFacts, err := s.model.Extract(ctx, text, docType)
	if err != nil {
		log.Printf("Warning: model extraction degraded to pattern-only mode: %v", err)
		s.applyBasicMode(text, docType, patternFacts)
		s.applyDeadlinePolicy(patternFacts, docType)
		return patternFacts
	}

	merged := merge(modelFacts, patternFacts)
	merged.DocumentType = docType
	s.applyDeadlinePolicy(merged, docType)
	return merged
}

// merge applies the precedence policy: model values win when non-nil,
// pattern values fill gaps, both-empty stays nil. Nothing is fabricated.
func merge(model, pattern *models.StructuredFacts) *models.StructuredFacts {
	out := *model

	out.CaseNumber = pickString(model.CaseNumber, pattern.CaseNumber)
	out.Court = pickString(model.Court, pattern.Court)
	out.Jurisdiction = pickString(model.Jurisdiction, pattern.Jurisdiction)
	out.Venue = pickString(model.Venue, pattern.Venue)
	out.Judge = pickString(model.Judge, pattern.Judge)
	out.FilingDate = pickString(model.FilingDate, pattern.FilingDate)
	out.ResponseDeadline = pickString(model.ResponseDeadline, pattern.ResponseDeadline)
	out.DamageAmount = pickString(model.DamageAmount, pattern.DamageAmount)
	out.ReliefSought = pickString(model.ReliefSought, pattern.ReliefSought)
	out.SubjectMatter = pickString(model.SubjectMatter, pattern.SubjectMatter)

	out.Parties.Plaintiff = pickString(model.Parties.Plaintiff, pattern.Parties.Plaintiff)
	out.Parties.Defendant = pickString(model.Parties.Defendant, pattern.Parties.Defendant)
	out.Parties.Petitioner = pickString(model.Parties.Petitioner, pattern.Parties.Petitioner)
	out.Parties.Respondent = pickString(model.Parties.Respondent, pattern.Parties.Respondent)

	if len(out.CausesOfAction) == 0 {
		out.CausesOfAction = pattern.CausesOfAction
	}
	if len(out.KeyAllegations) == 0 {
		out.KeyAllegations = pattern.KeyAllegations
	}
	if len(out.LegalRepresentatives) == 0 {
		out.LegalRepresentatives = pattern.LegalRepresentatives
	}

	return &out
}

func pickString(model, pattern *string) *string {
	if model != nil && strings.TrimSpace(*model) != "" {
		return model
	}
	if pattern != nil && strings.TrimSpace(*pattern) != "" {
		return pattern
	}
	return nil
}

// applyBasicMode supplements pattern output with type-aware defaults when
// the model pass is unavailable. Branches on the tag's coarse category to
// synthesize reliefSought / subjectMatter; jurisdiction defaults to "state"
// absent any federal signal.
func (s *Service) applyBasicMode(text string, docType string, facts *models.StructuredFacts) {
	category := classify.Category(docType)

	if facts.Jurisdiction == nil {
		j := "state"
		if strings.Contains(strings.ToLower(text), "united states") {
			j = "federal"
		}
		facts.Jurisdiction = &j
	}

	switch category {
	case classify.CategoryWarrant:
		if facts.SubjectMatter == nil {
			sm := "Search or seizure authorization"
			facts.SubjectMatter = &sm
		}
		if facts.ReliefSought == nil {
			rs := "Authorization to search premises or seize property"
			facts.ReliefSought = &rs
		}
	case classify.CategoryDiscovery:
		if facts.SubjectMatter == nil {
			sm := "Discovery request requiring written responses"
			facts.SubjectMatter = &sm
		}
		if facts.ReliefSought == nil {
			rs := "Production of documents or responses to discovery"
			facts.ReliefSought = &rs
		}
	case classify.CategoryJudgment:
		if facts.SubjectMatter == nil {
			sm := "Court order or judgment"
			facts.SubjectMatter = &sm
		}
		if facts.ReliefSought == nil && facts.DamageAmount != nil {
			rs := "Judgment in the amount of " + *facts.DamageAmount
			facts.ReliefSought = &rs
		}
	case classify.CategoryCivilPleading:
		if facts.ReliefSought == nil {
			rs := "Monetary damages and other relief as the court deems just"
			if facts.DamageAmount != nil {
				rs = "Damages of " + *facts.DamageAmount + " and other relief as the court deems just"
			}
			facts.ReliefSought = &rs
		}
		if facts.SubjectMatter == nil && len(facts.CausesOfAction) > 0 {
			sm := "Civil action for " + strings.Join(facts.CausesOfAction, ", ")
			facts.SubjectMatter = &sm
		}
	}
}

// applyDeadlinePolicy computes the statutory-default response deadline when
// a civil pleading has a filing date but no explicit deadline.
func (s *Service) applyDeadlinePolicy(facts *models.StructuredFacts, docType string) {
	if facts.ResponseDeadline != nil || facts.FilingDate == nil {
		return
	}
	if !classify.RequiresResponse(docType) {
		return
	}

	filed, ok := parseDate(*facts.FilingDate)
	if !ok {
		return
	}
	deadline := filed.AddDate(0, 0, s.deadlineDays).Format("2006-01-02")
	facts.ResponseDeadline = &deadline
}

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"January 2, 2006",
	"January 2 2006",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
