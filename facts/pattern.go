package facts

import (
	"regexp"
	"strings"

	"docketdraft-backend/models"
)

// PatternExtractor produces StructuredFacts from deterministic regular
// expressions targeting US case-caption conventions. It runs purely locally
// and never fails; fields it cannot find stay nil.
type PatternExtractor struct{}

var (
	reCaseNumber = regexp.MustCompile(`(?i)(?:case\s+no\.?|case\s+number|cause\s+no\.?|docket\s+no\.?)\s*:?\s*([A-Za-z0-9][A-Za-z0-9:./-]+)`)
	rePlaintiff  = regexp.MustCompile(`(?m)^\s*([A-Z][A-Z0-9 .,'&-]{2,60}?),?\s*\n?\s*(?:Plaintiffs?|Petitioners?)\b`)
	reDefendant  = regexp.MustCompile(`(?m)^\s*([A-Z][A-Z0-9 .,'&-]{2,60}?),?\s*\n?\s*(?:Defendants?|Respondents?)\b`)
	reVersus     = regexp.MustCompile(`(?m)^\s*([A-Z][A-Z0-9 .,'&-]{2,60}?),?\s*\n+\s*(?:v\.?s?\.?|versus)\s*\n+\s*([A-Z][A-Z0-9 .,'&-]{2,60}?),?\s*$`)
	reCourt      = regexp.MustCompile(`(?im)^\s*((?:IN THE\s+)?(?:UNITED STATES DISTRICT COURT|U\.S\. DISTRICT COURT|SUPERIOR COURT|DISTRICT COURT|CIRCUIT COURT|SUPREME COURT|MUNICIPAL COURT|COUNTY COURT|COURT OF APPEALS?|JUSTICE COURT|FAMILY COURT|PROBATE COURT)[^\n]*)$`)
	reJudge      = regexp.MustCompile(`(?i)(?:honorable|hon\.|judge)\s*:?\s+([A-Z][A-Za-z.' -]{2,40})`)
	reFilingDate = regexp.MustCompile(`(?i)(?:filed|dated)\s*(?:on)?\s*:?\s*((?:\d{1,2}[/-]\d{1,2}[/-]\d{2,4})|(?:(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}))`)
	reDamages    = regexp.MustCompile(`(?i)(?:damages?|amount|sum)[^\n$]{0,60}(\$[\d,]+(?:\.\d{2})?)`)
	reAnyAmount  = regexp.MustCompile(`\$[\d,]+(?:\.\d{2})?`)
	reCauseHdr   = regexp.MustCompile(`(?im)^\s*(?:(?:FIRST|SECOND|THIRD|FOURTH|FIFTH|SIXTH|SEVENTH|EIGHTH|NINTH|TENTH)\s+(?:CAUSE OF ACTION|CLAIM(?: FOR RELIEF)?)|COUNT\s+(?:[IVXL]+|ONE|TWO|THREE|FOUR|FIVE|SIX|SEVEN|EIGHT|NINE|TEN|\d+))\s*[-:. ]*\s*([^\n]*)$`)
	reNumberedPa = regexp.MustCompile(`(?m)^\s*(\d{1,3})\.\s+([A-Z][^\n]{20,400})`)
	reAttorney   = regexp.MustCompile(`(?i)([A-Z][A-Za-z.' -]{2,40}),?\s+(?:Esq\.?|Attorney\s+for\s+(Plaintiffs?|Defendants?))`)
)

// knownCauses are common causes of action matched by phrase when a pleading
// lacks explicit COUNT / CAUSE OF ACTION headers.
var knownCauses = []string{
	"breach of contract",
	"breach of fiduciary duty",
	"breach of warranty",
	"negligence per se",
	"gross negligence",
	"negligent misrepresentation",
	"negligence",
	"fraud",
	"fraudulent misrepresentation",
	"unjust enrichment",
	"conversion",
	"defamation",
	"intentional infliction of emotional distress",
	"negligent infliction of emotional distress",
	"tortious interference",
	"promissory estoppel",
	"quantum meruit",
	"trespass",
	"nuisance",
	"strict liability",
	"products liability",
	"wrongful termination",
	"discrimination",
	"retaliation",
	"civil conspiracy",
	"false imprisonment",
	"malicious prosecution",
	"premises liability",
}

// Extract runs all patterns over the text. Always returns a record.
func (p *PatternExtractor) Extract(text string, docType string) *models.StructuredFacts {
	facts := &models.StructuredFacts{DocumentType: docType}

	if m := reCaseNumber.FindStringSubmatch(text); m != nil {
		num := strings.TrimRight(strings.TrimSpace(m[1]), ".,;")
		facts.CaseNumber = &num
	}

	if m := reCourt.FindStringSubmatch(text); m != nil {
		court := normalizeSpace(m[1])
		facts.Court = &court
		facts.Jurisdiction = jurisdictionFor(court)
	}

	p.extractParties(text, facts)

	if m := reJudge.FindStringSubmatch(text); m != nil {
		judge := strings.TrimSpace(m[1])
		facts.Judge = &judge
	}

	if m := reFilingDate.FindStringSubmatch(text); m != nil {
		date := strings.TrimSpace(m[1])
		facts.FilingDate = &date
	}

	if m := reDamages.FindStringSubmatch(text); m != nil {
		amount := m[1]
		facts.DamageAmount = &amount
	} else if m := reAnyAmount.FindString(text); m != "" {
		facts.DamageAmount = &m
	}

	facts.CausesOfAction = ExtractCauses(text)
	facts.KeyAllegations = extractAllegations(text)

	if reps := extractRepresentatives(text); len(reps) > 0 {
		facts.LegalRepresentatives = reps
	}

	return facts
}

func (p *PatternExtractor) extractParties(text string, facts *models.StructuredFacts) {
	if m := rePlaintiff.FindStringSubmatch(text); m != nil {
		name := normalizeSpace(m[1])
		facts.Parties.Plaintiff = &name
	}
	if m := reDefendant.FindStringSubmatch(text); m != nil {
		name := normalizeSpace(m[1])
		facts.Parties.Defendant = &name
	}

	// Fall back to the "X v. Y" caption when the party labels are absent
	if facts.Parties.Plaintiff == nil || facts.Parties.Defendant == nil {
		if m := reVersus.FindStringSubmatch(text); m != nil {
			if facts.Parties.Plaintiff == nil {
				name := normalizeSpace(m[1])
				facts.Parties.Plaintiff = &name
			}
			if facts.Parties.Defendant == nil {
				name := normalizeSpace(m[2])
				facts.Parties.Defendant = &name
			}
		}
	}
}

// ExtractCauses finds causes of action, preferring explicit COUNT / CAUSE OF
// ACTION headers and falling back to known cause phrases in document order.
func ExtractCauses(text string) []string {
	var causes []string
	seen := make(map[string]bool)

	for _, m := range reCauseHdr.FindAllStringSubmatch(text, -1) {
		title := normalizeSpace(m[1])
		if title == "" {
			continue
		}
		key := strings.ToLower(title)
		if !seen[key] {
			seen[key] = true
			causes = append(causes, title)
		}
	}

	if len(causes) > 0 {
		return causes
	}

	lower := strings.ToLower(text)
	type hit struct {
		pos   int
		cause string
	}
	var hits []hit
	for _, cause := range knownCauses {
		idx := strings.Index(lower, cause)
		if idx < 0 || seen[cause] {
			continue
		}
		seen[cause] = true
		hits = append(hits, hit{pos: idx, cause: cause})
	}
	// Preserve document order, not list order
	for i := 0; i < len(hits); i++ {
		for j := i + 1; j < len(hits); j++ {
			if hits[j].pos < hits[i].pos {
				hits[i], hits[j] = hits[j], hits[i]
			}
		}
	}
	for _, h := range hits {
		causes = append(causes, h.cause)
	}

	return causes
}

// extractAllegations pulls numbered factual paragraphs, capped to keep the
// record bounded for long pleadings.
func extractAllegations(text string) []string {
	const maxAllegations = 25

	var allegations []string
	for _, m := range reNumberedPa.FindAllStringSubmatch(text, -1) {
		allegations = append(allegations, normalizeSpace(m[2]))
		if len(allegations) >= maxAllegations {
			break
		}
	}
	return allegations
}

func extractRepresentatives(text string) map[string]string {
	reps := make(map[string]string)
	for _, m := range reAttorney.FindAllStringSubmatch(text, -1) {
		name := normalizeSpace(m[1])
		role := strings.ToLower(normalizeSpace(m[2]))
		switch {
		case strings.HasPrefix(role, "plaintiff"):
			reps["plaintiff"] = name
		case strings.HasPrefix(role, "defendant"):
			reps["defendant"] = name
		default:
			if _, ok := reps["counsel"]; !ok {
				reps["counsel"] = name
			}
		}
	}
	if len(reps) == 0 {
		return nil
	}
	return reps
}

func jurisdictionFor(court string) *string {
	lower := strings.ToLower(court)
	var j string
	switch {
	case strings.Contains(lower, "united states") || strings.Contains(lower, "u.s. district"):
		j = "federal"
	case strings.Contains(lower, "municipal") || strings.Contains(lower, "justice court"):
		j = "local"
	default:
		j = "state"
	}
	return &j
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
