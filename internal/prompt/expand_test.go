package prompt

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"

	"docsai/internal/model"
)

func TestExpand(t *testing.T) {
	docs := []model.Document{
		{ID: "1", Title: "Spec", Content: "the plan body"},
		{ID: "2", Title: "Spec2", Content: "second"},
		{ID: "3", Title: "Notes.md", Content: "n"},
	}
	r := FromDocuments(docs)

	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{
			name:   "single mention",
			prompt: "Summarize @Spec please",
			want:   "Summarize Content of \"Spec\":\nthe plan body\n please",
		},
		{
			name:   "prefix title matched as whole token",
			prompt: "Compare @Spec2",
			want:   "Compare Content of \"Spec2\":\nsecond\n",
		},
		{
			name:   "repeated mention replaced everywhere",
			prompt: "@Spec and @Spec",
			want:   "Content of \"Spec\":\nthe plan body\n and Content of \"Spec\":\nthe plan body\n",
		},
		{
			name:   "unknown mention passes through",
			prompt: "Ask @Nobody about @Spec",
			want:   "Ask @Nobody about Content of \"Spec\":\nthe plan body\n",
		},
		{
			name:   "adjacent mentions split on @",
			prompt: "@Spec@Spec2",
			want:   "Content of \"Spec\":\nthe plan body\nContent of \"Spec2\":\nsecond\n",
		},
		{
			name:   "punctuation is part of the token",
			prompt: "Read @Spec, then stop",
			want:   "Read @Spec, then stop",
		},
		{
			name:   "dotted title",
			prompt: "see @Notes.md",
			want:   "see Content of \"Notes.md\":\nn\n",
		},
		{
			name:   "lone at sign",
			prompt: "email me @ home",
			want:   "email me @ home",
		},
		{
			name:   "vertical tab ends token",
			prompt: "Summarize @Spec\vplease",
			want:   "Summarize Content of \"Spec\":\nthe plan body\n\vplease",
		},
		{
			name:   "no-break space ends token",
			prompt: "Summarize @Spec\u00a0please",
			want:   "Summarize Content of \"Spec\":\nthe plan body\n\u00a0please",
		},
		{
			name:   "em space ends token",
			prompt: "Summarize @Spec\u2003please",
			want:   "Summarize Content of \"Spec\":\nthe plan body\n\u2003please",
		},
		{
			name:   "ideographic space ends token",
			prompt: "Summarize @Spec\u3000please",
			want:   "Summarize Content of \"Spec\":\nthe plan body\n\u3000please",
		},
		{
			name:   "next line ends token",
			prompt: "@Spec\u0085done",
			want:   "Content of \"Spec\":\nthe plan body\n\u0085done",
		},
		{
			name:   "non-space unicode stays in token",
			prompt: "@Spec\u00e9",
			want:   "@Spec\u00e9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expand(tt.prompt, r))
		})
	}
}

func TestExpand_NoMatchesIsIdentity(t *testing.T) {
	r := FromDocuments([]model.Document{{ID: "1", Title: "Spec", Content: "x"}})

	for _, p := range []string{"", "plain text", "@missing @also-missing", "a@b"} {
		once := Expand(p, r)
		assert.Equal(t, p, once)
		assert.Equal(t, once, Expand(once, r))
	}
}

func TestExpand_InlinedContentNotRescanned(t *testing.T) {
	r := FromDocuments([]model.Document{
		{ID: "1", Title: "A", Content: "mentions @B"},
		{ID: "2", Title: "B", Content: "b body"},
	})

	assert.Equal(t, "Content of \"A\":\nmentions @B\n", Expand("@A", r))
}

func TestFromDocuments_FirstTitleWins(t *testing.T) {
	r := FromDocuments([]model.Document{
		{ID: "1", Title: "Dup", Content: "first"},
		{ID: "2", Title: "Dup", Content: "second"},
	})

	content, ok := r.Resolve("Dup")
	assert.True(t, ok)
	assert.Equal(t, "first", content)
}

func TestMentions(t *testing.T) {
	assert.Equal(t, []string{"@Spec", "@Other"}, Mentions("@Spec vs @Other and @Spec again"))
	assert.Nil(t, Mentions("nothing here"))
	assert.Equal(t, []string{"@Spec", "@Other"}, Mentions("@Spec\u00a0and\u2003@Other"))
}

func TestMentionPattern_MatchesUnicodeSpace(t *testing.T) {
	for r := rune(0); r <= 0x3000; r++ {
		if r == '@' {
			continue
		}
		tok := mentionPattern.FindString("@a" + string(r) + "b")
		if unicode.IsSpace(r) {
			assert.Equal(t, "@a", tok, "rune %U", r)
		} else {
			assert.Equal(t, "@a"+string(r)+"b", tok, "rune %U", r)
		}
	}
}
