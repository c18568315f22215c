package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = "<!DOCTYPE html>\n<html>\n<body>hi</body>\n</html>"

func TestExtract_FencedHTMLWithProse(t *testing.T) {
	raw := "Here is your app:\n```html\n" + sampleDoc + "\n```\nEnjoy!"

	art := Extract(raw, false)
	require.True(t, art.HasCode)
	assert.Equal(t, sampleDoc+"\n", art.Code)
	assert.Contains(t, art.Narrative, "Here is your app:")
	assert.Contains(t, art.Narrative, "Enjoy!")
	assert.NotContains(t, art.Narrative, "```")
	assert.NotContains(t, art.Narrative, "<!DOCTYPE html>")
}

func TestExtract_FencedHTMLOnly(t *testing.T) {
	raw := "```html\n" + sampleDoc + "\n```"

	art := Extract(raw, false)
	require.True(t, art.HasCode)
	assert.Equal(t, ConfirmationMessage, art.Narrative)
}

func TestExtract_UntaggedFence(t *testing.T) {
	raw := "Result:\n```\n" + sampleDoc + "\n```"

	art := Extract(raw, false)
	require.True(t, art.HasCode)
	assert.Equal(t, sampleDoc+"\n", art.Code)
	assert.Equal(t, "Result:", art.Narrative)
}

func TestExtract_TaggedFenceWinsOverUntagged(t *testing.T) {
	// Both patterns could match; the explicitly tagged fence has priority.
	raw := "```html\n<!DOCTYPE html><html></html>\n```"

	art := Extract(raw, false)
	require.True(t, art.HasCode)
	assert.Equal(t, "<!DOCTYPE html><html></html>\n", art.Code)
}

func TestExtract_BareDocumentFallback(t *testing.T) {
	art := Extract(sampleDoc, false)
	require.True(t, art.HasCode)
	assert.Equal(t, sampleDoc, art.Code)
	assert.Equal(t, ConfirmationMessage, art.Narrative)
}

func TestExtract_BareDocumentCaseInsensitive(t *testing.T) {
	raw := "<!doctype HTML>\n<HTML><body></body></HTML>"

	art := Extract(raw, false)
	require.True(t, art.HasCode)
	assert.Equal(t, raw, art.Code)
}

func TestExtract_NoMatchPassesThrough(t *testing.T) {
	raw := "I could not generate the application, please clarify the request."

	art := Extract(raw, false)
	assert.False(t, art.HasCode)
	assert.Empty(t, art.Code)
	assert.Equal(t, raw, art.Narrative)
}

func TestExtract_PlanModeShortCircuits(t *testing.T) {
	// Even code-looking plan output is passed through verbatim.
	raw := "# Plan\n```html\n<!DOCTYPE html><html></html>\n```"

	art := Extract(raw, true)
	assert.False(t, art.HasCode)
	assert.Equal(t, raw, art.Narrative)
}

func TestExtract_ExcisesMatchedSpanExactlyOnce(t *testing.T) {
	block := "```html\n<!DOCTYPE html><html></html>\n```"
	raw := "first\n" + block + "\nsecond\n" + block

	art := Extract(raw, false)
	require.True(t, art.HasCode)
	// Only the first occurrence is removed from the narrative.
	assert.Equal(t, 1, strings.Count(art.Narrative, block))
}
