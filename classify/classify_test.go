package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBasicTags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "complaint",
			text: "COMPLAINT FOR DAMAGES\nComes now the Plaintiff and alleges as follows",
			want: "complaint",
		},
		{
			name: "amended complaint beats complaint",
			text: "FIRST AMENDED COMPLAINT for breach of contract",
			want: "amended_complaint",
		},
		{
			name: "answer",
			text: "DEFENDANT'S ANSWER AND AFFIRMATIVE DEFENSES",
			want: "answer",
		},
		{
			name: "interrogatories",
			text: "PLAINTIFF'S FIRST SET OF INTERROGATORIES TO DEFENDANT",
			want: "interrogatories",
		},
		{
			name: "indictment",
			text: "THE GRAND JURY CHARGES that the defendant did knowingly",
			want: "indictment",
		},
		{
			name: "notice of appeal",
			text: "NOTICE OF APPEAL to the Court of Appeals",
			want: "notice_of_appeal",
		},
		{
			name: "unrecognized text",
			text: "grocery list: milk, eggs, bread",
			want: TagOther,
		},
		{
			name: "empty text",
			text: "",
			want: TagOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestClassifyPrecedence(t *testing.T) {
	// Specific rules must win over their generic catch-alls even when both
	// phrase sets are present in the text.
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "motion to dismiss beats generic motion",
			text: "MOTION TO DISMISS\nDefendant moves this motion to the court",
			want: "motion_dismiss",
		},
		{
			name: "summary judgment motion beats generic motion",
			text: "NOTICE OF MOTION AND MOTION FOR SUMMARY JUDGMENT",
			want: "motion_summary_judgment",
		},
		{
			name: "search warrant beats warrant",
			text: "SEARCH WARRANT\nA warrant is hereby issued for the premises",
			want: "search_warrant",
		},
		{
			name: "arrest warrant beats warrant",
			text: "WARRANT FOR ARREST of John Doe",
			want: "arrest_warrant",
		},
		{
			name: "subpoena duces tecum beats subpoena",
			text: "SUBPOENA DUCES TECUM\nThis subpoena commands production of records",
			want: "subpoena_duces_tecum",
		},
		{
			name: "affidavit of service beats affidavit",
			text: "AFFIDAVIT OF SERVICE\nbeing duly sworn, deposes and says",
			want: "affidavit_service",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	text := "MOTION TO COMPEL responses to interrogatories and notice of motion"
	first := Classify(text)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Classify(text))
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	assert.Equal(t, Classify("motion to dismiss"), Classify("MOTION TO DISMISS"))
}

func TestRulesSpecificBeforeGeneric(t *testing.T) {
	// Structural check on rule order: generic catch-alls must come after
	// every rule whose tag they prefix.
	index := make(map[string]int, len(Rules))
	for i, rule := range Rules {
		index[rule.Tag] = i
	}

	generics := []string{"motion", "warrant", "subpoena", "affidavit", "complaint", "brief"}
	for _, generic := range generics {
		gi, ok := index[generic]
		if !ok {
			continue
		}
		for tag, i := range index {
			if tag != generic && strings.HasPrefix(tag, generic+"_") {
				assert.Less(t, i, gi, "rule %q must precede generic %q", tag, generic)
			}
		}
	}
}

func TestCategory(t *testing.T) {
	assert.Equal(t, CategoryCivilPleading, Category("complaint"))
	assert.Equal(t, CategoryCivilPleading, Category("answer"))
	assert.Equal(t, CategoryMotion, Category("motion"))
	assert.Equal(t, CategoryMotion, Category("motion_summary_judgment"))
	assert.Equal(t, CategoryDiscovery, Category("interrogatories"))
	assert.Equal(t, CategoryWarrant, Category("search_warrant"))
	assert.Equal(t, CategoryJudgment, Category("final_judgment"))
	assert.Equal(t, CategoryOther, Category(TagOther))
	assert.Equal(t, CategorySpecialized, Category("demand_letter"))
}

func TestRequiresResponse(t *testing.T) {
	assert.True(t, RequiresResponse("complaint"))
	assert.True(t, RequiresResponse("amended_complaint"))
	assert.True(t, RequiresResponse("counterclaim"))

	// A party's own responsive pleadings carry no answer deadline
	assert.False(t, RequiresResponse("answer"))
	assert.False(t, RequiresResponse("reply"))

	assert.False(t, RequiresResponse("motion_dismiss"))
	assert.False(t, RequiresResponse("search_warrant"))
	assert.False(t, RequiresResponse(TagOther))
}

func TestEveryRuleHasCategory(t *testing.T) {
	for _, rule := range Rules {
		cat := Category(rule.Tag)
		assert.NotEmpty(t, cat, "tag %q has no category", rule.Tag)
	}
}
