// Package classify maps extracted document text to a legal document-type tag
// using an ordered decision list. Rule order encodes precedence: the first
// matching rule wins, so specific phrases must appear before their generic
// catch-alls (e.g. "motion for summary judgment" before "motion to").
package classify

import "strings"

// TagOther is the terminal fallback tag
const TagOther = "other"

// Rule pairs a document-type tag with the phrases that identify it.
// A rule matches when any phrase appears in the lowercased text.
type Rule struct {
	Tag     string
	Phrases []string
}

// Rules is the authoritative ordered taxonomy, grouped by legal category:
// pleadings, motions, discovery, affidavits/declarations, briefs,
// orders/judgments, criminal, appellate, trial, administrative, specialized.
// Do not reorder: classification outcomes depend on this priority order.
var Rules = []Rule{
	// Pleadings
	{Tag: "amended_complaint", Phrases: []string{"amended complaint"}},
	{Tag: "third_party_complaint", Phrases: []string{"third-party complaint", "third party complaint"}},
	{Tag: "counterclaim", Phrases: []string{"counterclaim"}},
	{Tag: "crossclaim", Phrases: []string{"crossclaim", "cross-claim"}},
	{Tag: "answer", Phrases: []string{"answer to complaint", "answer and affirmative defenses", "defendant's answer", "answer of defendant"}},
	{Tag: "reply", Phrases: []string{"reply to counterclaim", "reply to answer"}},
	{Tag: "petition", Phrases: []string{"verified petition", "petition for dissolution", "petition for divorce", "petition for custody"}},
	{Tag: "complaint", Phrases: []string{"complaint for", "complaint against", "plaintiff alleges", "comes now the plaintiff", "civil complaint", "complaint"}},

	// Motions (specific before generic)
	{Tag: "motion_summary_judgment", Phrases: []string{"motion for summary judgment", "motion for partial summary judgment"}},
	{Tag: "motion_dismiss", Phrases: []string{"motion to dismiss"}},
	{Tag: "motion_compel", Phrases: []string{"motion to compel"}},
	{Tag: "motion_strike", Phrases: []string{"motion to strike"}},
	{Tag: "motion_suppress", Phrases: []string{"motion to suppress"}},
	{Tag: "motion_limine", Phrases: []string{"motion in limine"}},
	{Tag: "motion_default_judgment", Phrases: []string{"motion for default judgment"}},
	{Tag: "motion_reconsideration", Phrases: []string{"motion for reconsideration", "motion to reconsider"}},
	{Tag: "motion_continuance", Phrases: []string{"motion for continuance", "motion to continue"}},
	{Tag: "motion_protective_order", Phrases: []string{"motion for protective order"}},
	{Tag: "motion_sanctions", Phrases: []string{"motion for sanctions"}},
	{Tag: "motion_change_venue", Phrases: []string{"motion for change of venue", "motion to transfer venue"}},
	{Tag: "motion_judgment_pleadings", Phrases: []string{"motion for judgment on the pleadings"}},
	{Tag: "motion_new_trial", Phrases: []string{"motion for new trial"}},
	{Tag: "motion_preliminary_injunction", Phrases: []string{"motion for preliminary injunction", "motion for temporary restraining order"}},
	{Tag: "motion", Phrases: []string{"motion to", "motion for", "notice of motion"}},

	// Discovery
	{Tag: "interrogatories", Phrases: []string{"interrogatories"}},
	{Tag: "request_production", Phrases: []string{"request for production", "requests for production"}},
	{Tag: "request_admission", Phrases: []string{"request for admission", "requests for admission"}},
	{Tag: "deposition_notice", Phrases: []string{"notice of deposition", "deposition notice"}},
	{Tag: "deposition_transcript", Phrases: []string{"deposition transcript", "deposition of", "videotaped deposition"}},
	{Tag: "subpoena_duces_tecum", Phrases: []string{"subpoena duces tecum"}},
	{Tag: "subpoena", Phrases: []string{"subpoena"}},
	{Tag: "discovery_response", Phrases: []string{"responses to interrogatories", "response to request for production", "discovery responses"}},
	{Tag: "expert_disclosure", Phrases: []string{"expert disclosure", "expert witness disclosure"}},
	{Tag: "initial_disclosures", Phrases: []string{"initial disclosures"}},

	// Affidavits / declarations
	{Tag: "affidavit_service", Phrases: []string{"affidavit of service", "proof of service"}},
	{Tag: "affidavit_support", Phrases: []string{"affidavit in support"}},
	{Tag: "affidavit", Phrases: []string{"affidavit of", "being duly sworn", "affidavit"}},
	{Tag: "declaration", Phrases: []string{"declaration of", "declare under penalty of perjury", "declaration in support"}},

	// Briefs / memoranda
	{Tag: "brief_opposition", Phrases: []string{"brief in opposition", "memorandum in opposition", "opposition to motion"}},
	{Tag: "brief_support", Phrases: []string{"brief in support", "memorandum in support", "memorandum of law in support"}},
	{Tag: "amicus_brief", Phrases: []string{"amicus curiae", "amicus brief"}},
	{Tag: "trial_brief", Phrases: []string{"trial brief", "pretrial brief"}},
	{Tag: "brief", Phrases: []string{"memorandum of law", "legal brief"}},

	// Orders / judgments
	{Tag: "temporary_restraining_order", Phrases: []string{"temporary restraining order"}},
	{Tag: "preliminary_injunction", Phrases: []string{"preliminary injunction is granted", "order granting preliminary injunction"}},
	{Tag: "default_judgment", Phrases: []string{"default judgment"}},
	{Tag: "summary_judgment_order", Phrases: []string{"order granting summary judgment", "order denying summary judgment"}},
	{Tag: "consent_decree", Phrases: []string{"consent decree", "consent judgment"}},
	{Tag: "final_judgment", Phrases: []string{"final judgment", "judgment is hereby entered"}},
	{Tag: "scheduling_order", Phrases: []string{"scheduling order", "case management order"}},
	{Tag: "protective_order", Phrases: []string{"protective order"}},
	{Tag: "order_show_cause", Phrases: []string{"order to show cause"}},
	{Tag: "court_order", Phrases: []string{"it is hereby ordered", "it is so ordered", "order of the court"}},
	{Tag: "judgment", Phrases: []string{"judgment against", "judgment in favor"}},

	// Criminal (specific before generic)
	{Tag: "search_warrant", Phrases: []string{"search warrant"}},
	{Tag: "arrest_warrant", Phrases: []string{"arrest warrant", "warrant for arrest", "warrant of arrest"}},
	{Tag: "bench_warrant", Phrases: []string{"bench warrant"}},
	{Tag: "warrant", Phrases: []string{"warrant"}},
	{Tag: "indictment", Phrases: []string{"indictment", "grand jury charges", "true bill"}},
	{Tag: "criminal_information", Phrases: []string{"criminal information", "information charging"}},
	{Tag: "criminal_complaint", Phrases: []string{"criminal complaint"}},
	{Tag: "plea_agreement", Phrases: []string{"plea agreement", "plea bargain"}},
	{Tag: "sentencing_memorandum", Phrases: []string{"sentencing memorandum"}},
	{Tag: "probation_order", Phrases: []string{"probation order", "terms of probation"}},

	// Appellate
	{Tag: "notice_of_appeal", Phrases: []string{"notice of appeal"}},
	{Tag: "appellate_brief", Phrases: []string{"brief of appellant", "brief of appellee", "appellant's brief", "appellee's brief"}},
	{Tag: "petition_certiorari", Phrases: []string{"petition for writ of certiorari", "petition for certiorari"}},
	{Tag: "petition_habeas", Phrases: []string{"writ of habeas corpus", "habeas petition"}},
	{Tag: "petition_mandamus", Phrases: []string{"writ of mandamus"}},
	{Tag: "appellate_opinion", Phrases: []string{"opinion of the court", "we affirm", "we reverse", "reversed and remanded"}},

	// Trial documents
	{Tag: "jury_instructions", Phrases: []string{"jury instructions", "instructions to the jury", "proposed jury instructions"}},
	{Tag: "verdict_form", Phrases: []string{"verdict form", "we the jury", "special verdict"}},
	{Tag: "witness_list", Phrases: []string{"witness list"}},
	{Tag: "exhibit_list", Phrases: []string{"exhibit list"}},
	{Tag: "pretrial_statement", Phrases: []string{"pretrial statement", "joint pretrial statement"}},
	{Tag: "trial_transcript", Phrases: []string{"trial transcript", "transcript of proceedings"}},

	// Administrative
	{Tag: "administrative_complaint", Phrases: []string{"administrative complaint", "charge of discrimination"}},
	{Tag: "administrative_order", Phrases: []string{"administrative order", "agency decision"}},
	{Tag: "notice_of_hearing", Phrases: []string{"notice of hearing", "notice of administrative hearing"}},
	{Tag: "cease_and_desist", Phrases: []string{"cease and desist"}},
	{Tag: "administrative_appeal", Phrases: []string{"administrative appeal", "appeal of agency"}},

	// Specialized
	{Tag: "demand_letter", Phrases: []string{"demand letter", "demand for payment", "this letter serves as formal demand"}},
	{Tag: "settlement_agreement", Phrases: []string{"settlement agreement", "release of all claims"}},
	{Tag: "lien_notice", Phrases: []string{"notice of lien", "mechanic's lien", "mechanics lien"}},
	{Tag: "garnishment", Phrases: []string{"writ of garnishment", "garnishment"}},
	{Tag: "eviction_notice", Phrases: []string{"notice to quit", "unlawful detainer", "eviction notice", "notice to vacate"}},
	{Tag: "summons", Phrases: []string{"summons", "you are hereby summoned"}},
	{Tag: "lis_pendens", Phrases: []string{"lis pendens", "notice of pendency"}},
	{Tag: "stipulation", Phrases: []string{"stipulation", "it is hereby stipulated"}},
	{Tag: "power_of_attorney", Phrases: []string{"power of attorney"}},
	{Tag: "last_will", Phrases: []string{"last will and testament"}},
	{Tag: "contract", Phrases: []string{"this agreement is entered into", "terms and conditions", "in witness whereof"}},
}

// Classify maps extracted text to a document-type tag. Pure and
// deterministic: identical text always yields the identical tag.
func Classify(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range Rules {
		for _, phrase := range rule.Phrases {
			if strings.Contains(lower, phrase) {
				return rule.Tag
			}
		}
	}
	return TagOther
}
