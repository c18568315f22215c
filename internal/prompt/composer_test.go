package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose_PlanModeNeverAsksForCode(t *testing.T) {
	out := Compose(Request{
		Prompt:   "a snake game",
		Mode:     ModeGameEngine,
		PlanMode: true,
	})

	assert.Contains(t, out, "Principal Architect")
	assert.Contains(t, out, `"a snake game"`)
	assert.Contains(t, out, "Risk Assessment")
	assert.Contains(t, out, "Do NOT generate HTML code yet")
	// The code-bearing skeleton must never leak into plan prompts.
	assert.NotContains(t, out, "```html")
	assert.NotContains(t, out, "<!DOCTYPE html>")
}

func TestCompose_ArtifactModeIncludesPriorCodeVerbatim(t *testing.T) {
	prior := "<!DOCTYPE html>\n<html><body>existing app</body></html>"
	out := Compose(Request{
		Prompt:           "add a scoreboard",
		Mode:             ModeWebArchitect,
		PreviousArtifact: prior,
	})

	assert.Contains(t, out, prior)
	assert.Contains(t, out, fmt.Sprintf("Previous Code Length: %d chars", len(prior)))
	assert.NotContains(t, out, StartFreshMarker)
}

func TestCompose_ArtifactModeStartFreshMarker(t *testing.T) {
	out := Compose(Request{
		Prompt: "build a dashboard",
		Mode:   ModeAppForge,
	})

	assert.Contains(t, out, StartFreshMarker)
	assert.Contains(t, out, "Previous Code Length: 0 chars")
}

func TestCompose_ArtifactModeCarriesModePersona(t *testing.T) {
	for _, mode := range AllModes() {
		out := Compose(Request{Prompt: "anything", Mode: mode})
		cfg := ConfigFor(mode)
		assert.Contains(t, out, cfg.Label, "mode %s label missing", mode)
		assert.Contains(t, out, cfg.Prefix, "mode %s prefix missing", mode)
	}
}

func TestCompose_HistorySerialization(t *testing.T) {
	out := Compose(Request{
		Prompt: "continue",
		Mode:   ModeWebArchitect,
		History: []HistoryEntry{
			{Role: "user", Text: "make a timer"},
			{Role: "assistant", Text: "done"},
		},
	})

	idxUser := strings.Index(out, "USER: make a timer")
	idxAssistant := strings.Index(out, "ASSISTANT: done")
	require.Greater(t, idxUser, -1)
	require.Greater(t, idxAssistant, -1)
	assert.Less(t, idxUser, idxAssistant, "history order must be preserved")
}

func TestSerializeHistory_Empty(t *testing.T) {
	assert.Equal(t, "", SerializeHistory(nil))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("GAME_ENGINE")
	require.NoError(t, err)
	assert.Equal(t, ModeGameEngine, m)

	_, err = ParseMode("TIME_TRAVEL")
	assert.Error(t, err)
}

func TestConfigFor_UnknownFallsBackToWebArchitect(t *testing.T) {
	cfg := ConfigFor(Mode("BOGUS"))
	assert.Equal(t, "Web Architect", cfg.Label)
}
