// Package extract parses raw model output into a structured artifact plus
// cleaned narrative text. Extraction is an ordered chain of independent
// matcher strategies; the first match wins.
package extract

import (
	"regexp"
	"strings"

	"locobot/internal/logging"
)

// ConfirmationMessage replaces an otherwise-empty narrative once an artifact
// was extracted.
const ConfirmationMessage = "Code generated successfully. Preview updated."

// Artifact is the structured result of one extraction.
type Artifact struct {
	Code      string
	HasCode   bool
	Narrative string
}

// strategy is one pattern rule in the chain. codeGroup selects which capture
// group holds the artifact body (0 = the whole match).
type strategy struct {
	name      string
	re        *regexp.Regexp
	codeGroup int
}

// Strategies in priority order: explicitly tagged html fence, untagged
// fence, then a bare document for models that forget fencing entirely.
var strategies = []strategy{
	{name: "fenced_html", re: regexp.MustCompile("(?s)```html\n(.*?)```"), codeGroup: 1},
	{name: "fenced_bare", re: regexp.MustCompile("(?s)```\n(.*?)```"), codeGroup: 1},
	{name: "bare_document", re: regexp.MustCompile(`(?is)<!DOCTYPE html>.*?</html>`), codeGroup: 0},
}

// Extract applies the strategy chain to raw model output. Plan mode
// short-circuits: plans are never code-bearing, so the raw text passes
// through verbatim.
func Extract(raw string, planMode bool) Artifact {
	if planMode {
		return Artifact{Narrative: raw}
	}

	for _, s := range strategies {
		match := s.re.FindStringSubmatch(raw)
		if match == nil {
			continue
		}

		code := match[s.codeGroup]
		// Excise the matched span (delimiters included) exactly once.
		narrative := strings.TrimSpace(strings.Replace(raw, match[0], "", 1))
		if narrative == "" {
			narrative = ConfirmationMessage
		}

		logging.Extract("Artifact extracted via %s strategy: code_len=%d narrative_len=%d", s.name, len(code), len(narrative))
		return Artifact{Code: code, HasCode: true, Narrative: narrative}
	}

	// No artifact pattern found: not an error, just a plain narrative
	// response.
	logging.ExtractDebug("No artifact pattern matched: raw_len=%d", len(raw))
	return Artifact{Narrative: raw}
}
