package classify

import "strings"

// Coarse categories used by the fallback fact extractor and by the
// response-deadline policy.
const (
	CategoryCivilPleading  = "civil_pleading"
	CategoryMotion         = "motion"
	CategoryDiscovery      = "discovery"
	CategoryAffidavit      = "affidavit"
	CategoryBrief          = "brief"
	CategoryJudgment       = "judgment"
	CategoryWarrant        = "warrant"
	CategoryCriminal       = "criminal"
	CategoryAppellate      = "appellate"
	CategoryTrial          = "trial"
	CategoryAdministrative = "administrative"
	CategorySpecialized    = "specialized"
	CategoryOther          = "other"
)

var tagCategories = map[string]string{
	"complaint":             CategoryCivilPleading,
	"amended_complaint":     CategoryCivilPleading,
	"third_party_complaint": CategoryCivilPleading,
	"counterclaim":          CategoryCivilPleading,
	"crossclaim":            CategoryCivilPleading,
	"answer":                CategoryCivilPleading,
	"reply":                 CategoryCivilPleading,
	"petition":              CategoryCivilPleading,
	"summons":               CategoryCivilPleading,

	"interrogatories":       CategoryDiscovery,
	"request_production":    CategoryDiscovery,
	"request_admission":     CategoryDiscovery,
	"deposition_notice":     CategoryDiscovery,
	"deposition_transcript": CategoryDiscovery,
	"subpoena":              CategoryDiscovery,
	"subpoena_duces_tecum":  CategoryDiscovery,
	"discovery_response":    CategoryDiscovery,
	"expert_disclosure":     CategoryDiscovery,
	"initial_disclosures":   CategoryDiscovery,

	"affidavit":         CategoryAffidavit,
	"affidavit_service": CategoryAffidavit,
	"affidavit_support": CategoryAffidavit,
	"declaration":       CategoryAffidavit,

	"brief":            CategoryBrief,
	"brief_support":    CategoryBrief,
	"brief_opposition": CategoryBrief,
	"amicus_brief":     CategoryBrief,
	"trial_brief":      CategoryBrief,

	"temporary_restraining_order": CategoryJudgment,
	"preliminary_injunction":      CategoryJudgment,
	"default_judgment":            CategoryJudgment,
	"summary_judgment_order":      CategoryJudgment,
	"consent_decree":              CategoryJudgment,
	"final_judgment":              CategoryJudgment,
	"scheduling_order":            CategoryJudgment,
	"protective_order":            CategoryJudgment,
	"order_show_cause":            CategoryJudgment,
	"court_order":                 CategoryJudgment,
	"judgment":                    CategoryJudgment,

	"search_warrant": CategoryWarrant,
	"arrest_warrant": CategoryWarrant,
	"bench_warrant":  CategoryWarrant,
	"warrant":        CategoryWarrant,

	"indictment":            CategoryCriminal,
	"criminal_information":  CategoryCriminal,
	"criminal_complaint":    CategoryCriminal,
	"plea_agreement":        CategoryCriminal,
	"sentencing_memorandum": CategoryCriminal,
	"probation_order":       CategoryCriminal,

	"notice_of_appeal":    CategoryAppellate,
	"appellate_brief":     CategoryAppellate,
	"petition_certiorari": CategoryAppellate,
	"petition_habeas":     CategoryAppellate,
	"petition_mandamus":   CategoryAppellate,
	"appellate_opinion":   CategoryAppellate,

	"jury_instructions":  CategoryTrial,
	"verdict_form":       CategoryTrial,
	"witness_list":       CategoryTrial,
	"exhibit_list":       CategoryTrial,
	"pretrial_statement": CategoryTrial,
	"trial_transcript":   CategoryTrial,

	"administrative_complaint": CategoryAdministrative,
	"administrative_order":     CategoryAdministrative,
	"notice_of_hearing":        CategoryAdministrative,
	"cease_and_desist":         CategoryAdministrative,
	"administrative_appeal":    CategoryAdministrative,
}

// Category maps a document-type tag to its coarse category. Motion subtypes
// share the "motion_" prefix; anything unmapped is specialized or other.
func Category(tag string) string {
	if cat, ok := tagCategories[tag]; ok {
		return cat
	}
	if tag == "motion" || strings.HasPrefix(tag, "motion_") {
		return CategoryMotion
	}
	if tag == TagOther {
		return CategoryOther
	}
	return CategorySpecialized
}

// RequiresResponse reports whether a civil responsive pleading deadline
// applies to documents of this tag.
func RequiresResponse(tag string) bool {
	switch Category(tag) {
	case CategoryCivilPleading:
		return tag != "answer" && tag != "reply"
	default:
		return false
	}
}
