package aiassist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vovarama1992/egw-aiassist/internal/ai"
)

var testInstalled = map[string]string{
	"en": "English",
	"de": "German",
	"fr": "French",
	"it": "Italian",
	"es": "Spanish",
}

func translationIDs(c *Catalog) []string {
	var ids []string
	for _, p := range c.List() {
		if IsTranslationPrompt(p.ID) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func TestBuildCatalogStaticPrompts(t *testing.T) {
	c := BuildCatalog("en", nil, testInstalled)

	for _, id := range []string{
		"aiassist.summarize", "aiassist.formal", "aiassist.casual", "aiassist.grammar", "aiassist.concise",
		"aiassist.generate_reply", "aiassist.meeting_followup", "aiassist.thank_you", "aiassist.generate_subject",
	} {
		p, err := c.Lookup(id)
		require.NoError(t, err, id)
		assert.NotEmpty(t, p.Instruction)
		assert.NotEmpty(t, p.Label)
	}
}

func TestBuildCatalogDefaultLanguages(t *testing.T) {
	c := BuildCatalog("es", nil, testInstalled)

	assert.Equal(t, []string{
		"aiassist.translate-es",
		"aiassist.translate-en",
		"aiassist.translate-de",
		"aiassist.translate-fr",
		"aiassist.translate-it",
	}, translationIDs(c))

	p, err := c.Lookup("aiassist.translate-fr")
	require.NoError(t, err)
	assert.Contains(t, p.Instruction, "French")
	assert.Equal(t, "Translate to French", p.Label)
}

func TestBuildCatalogPreferredLanguages(t *testing.T) {
	c := BuildCatalog("de", []string{"FR", " es ", "xx", "fr"}, testInstalled)

	assert.Equal(t, []string{
		"aiassist.translate-fr",
		"aiassist.translate-es",
		"aiassist.translate-de",
	}, translationIDs(c))

	_, err := c.Lookup("aiassist.translate-xx")
	assert.Error(t, err)
	_, err = c.Lookup("aiassist.translate-en")
	assert.Error(t, err)
}

func TestBuildCatalogDropsUninstalled(t *testing.T) {
	c := BuildCatalog("ja", nil, map[string]string{"de": "German"})
	assert.Equal(t, []string{"aiassist.translate-de"}, translationIDs(c))
}

func TestLookupUnknownEscapesID(t *testing.T) {
	c := BuildCatalog("en", nil, testInstalled)

	for _, id := range []string{
		`<script>alert("x")</script>`,
		`aiassist.x"><img src=x onerror=alert(1)>`,
		"aiassist.unknown",
	} {
		_, err := c.Lookup(id)
		require.Error(t, err)
		assert.Equal(t, ai.KindValidation, ai.KindOf(err))

		msg := ai.UserMessage(err)
		echoed := strings.TrimPrefix(msg, "Unknown prompt: ")
		assert.NotContains(t, echoed, "<")
		assert.NotContains(t, echoed, ">")
		assert.NotContains(t, echoed, `"`)
	}
}
