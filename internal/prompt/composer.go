// Package prompt builds the instruction text sent to the model. Composition
// is pure: the same request always yields the same prompt.
package prompt

import (
	"fmt"
	"strings"

	"locobot/internal/logging"
)

// HistoryEntry is one prior conversation message supplied as context.
type HistoryEntry struct {
	Role string // user, assistant, system
	Text string
}

// Request carries everything needed to compose one generation prompt.
// Immutable once constructed; created per user submission.
type Request struct {
	Prompt           string
	Mode             Mode
	History          []HistoryEntry
	PreviousArtifact string
	PlanMode         bool
}

// StartFreshMarker is folded into the artifact template when no previous
// artifact exists.
const StartFreshMarker = "No previous code. Start fresh."

const planTemplate = `You are LOCOBOT's Principal Architect.

GOAL: Generate a detailed, step-by-step implementation plan for: %q.

OUTPUT FORMAT: Markdown.

STRUCTURE:
1. **Executive Summary**: High-level approach.
2. **Architecture**: Tech stack, components, state management.
3. **Step-by-Step Plan**:
   - Phase 1: Core Setup
   - Phase 2: Logic Implementation
   - Phase 3: UI/UX Polish
4. **Risk Assessment**: Potential bugs or edge cases.

Do NOT generate HTML code yet. Focus on the roadmap.`

const artifactRules = `You are LOCOBOT, an elite Senior Frontend Engineer and Game Developer.

GOAL:
Create or Modify a single-file HTML application based on: %q

CRITICAL RULES:
1. OUTPUT: Return ONLY a valid HTML string starting with ` + "```html" + ` and ending with ` + "```" + `. Do NOT write explanations before or after the code.
2. ARCHITECTURE: Single-file React application using ES Modules and Babel Standalone.
3. STYLE: Use Tailwind CSS via CDN.
4. ROBUSTNESS:
   - Destructure all React hooks (useState, useEffect, etc) from 'React'.
   - Handle all errors gracefully.
   - Use 'lucide-react' for icons.

FOR GAMES:
- Use HTML5 Canvas API (<canvas>) or SVG.
- Implement 'requestAnimationFrame' loop.
- Handle Keyboard/Mouse events properly.
- CLEANUP event listeners in useEffect!

BOILERPLATE (Use exactly this structure to prevent Runtime Errors):
` + boilerplateSkeleton

const boilerplateSkeleton = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <script src="https://cdn.tailwindcss.com"></script>
  <link href="https://fonts.googleapis.com/css2?family=Inter:wght@300;400;500;600;700&display=swap" rel="stylesheet">

  <!-- IMPORT MAP to fix React Version Conflicts -->
  <script type="importmap">
  {
    "imports": {
      "react": "https://esm.sh/react@18.2.0",
      "react-dom/client": "https://esm.sh/react-dom@18.2.0/client",
      "lucide-react": "https://esm.sh/lucide-react@0.263.0?deps=react@18.2.0"
    }
  }
  </script>

  <script>
    window.onerror = function(msg, url, line, col, error) {
      document.body.innerHTML = '<div style="color:#ff5555; background:#1a0000; padding:20px; font-family:monospace; border-left: 4px solid red;"><h3>Runtime Error</h3><p>'+msg+'</p><p>Line: '+line+'</p></div>';
    };
  </script>
  <script src="https://unpkg.com/@babel/standalone/babel.min.js"></script>
  <style>
    body { font-family: 'Inter', sans-serif; background: #0f0f0f; color: #fff; overflow: hidden; }
    ::-webkit-scrollbar { width: 6px; height: 6px; }
    ::-webkit-scrollbar-track { background: #1a1a1a; }
    ::-webkit-scrollbar-thumb { background: #333; border-radius: 3px; }
  </style>
</head>
<body>
  <div id="root" class="h-screen w-screen"></div>

  <script type="text/babel" data-type="module">
    import React, { useState, useEffect, useRef, useMemo, useCallback } from 'react';
    import { createRoot } from 'react-dom/client';
    import * as Lucide from 'lucide-react';

    // Error Boundary
    class ErrorBoundary extends React.Component {
      constructor(props) { super(props); this.state = { hasError: false, error: null }; }
      static getDerivedStateFromError(error) { return { hasError: true, error }; }
      render() {
        if (this.state.hasError) {
          return <div className="p-4 text-red-400 bg-red-900/20 border border-red-500/50 rounded m-4">
            <h2 className="font-bold mb-2">System Critical Error</h2>
            <pre className="text-xs whitespace-pre-wrap">{this.state.error.toString()}</pre>
          </div>;
        }
        return this.props.children;
      }
    }

    const App = () => {
      // ... GENERATED CODE GOES HERE ...
      // If using Lucide icons, use Lucide.IconName (e.g., <Lucide.Home />)

      return (
         <div className="flex items-center justify-center h-full text-white">App Loading...</div>
      );
    };

    const root = createRoot(document.getElementById('root'));
    root.render(<ErrorBoundary><App /></ErrorBoundary>);
  </script>
</body>
</html>`

// Compose builds the full prompt for a request. Plan mode and artifact mode
// use mutually exclusive templates.
func Compose(req Request) string {
	if req.PlanMode {
		logging.PromptDebug("Composing plan prompt: prompt_len=%d", len(req.Prompt))
		return fmt.Sprintf(planTemplate, req.Prompt)
	}

	cfg := ConfigFor(req.Mode)

	var b strings.Builder
	fmt.Fprintf(&b, artifactRules, req.Prompt)
	b.WriteString("\n\nCONTEXT:\n")
	fmt.Fprintf(&b, "Persona: %s\n", cfg.Prefix)
	fmt.Fprintf(&b, "Mode: %s\n", cfg.Label)
	fmt.Fprintf(&b, "Previous Code Length: %d chars\n", len(req.PreviousArtifact))

	if history := SerializeHistory(req.History); history != "" {
		b.WriteString("\nCONVERSATION_HISTORY:\n")
		b.WriteString(history)
		b.WriteString("\n")
	}

	b.WriteString("\nPREVIOUS_CODE_CONTEXT (Modify this if provided):\n")
	if req.PreviousArtifact != "" {
		b.WriteString(req.PreviousArtifact)
	} else {
		b.WriteString(StartFreshMarker)
	}
	b.WriteString("\n\nGenerate the full, valid HTML file now. Do not include markdown plans.")

	out := b.String()
	logging.PromptDebug("Composed artifact prompt: mode=%s prompt_len=%d total_len=%d", req.Mode, len(req.Prompt), len(out))
	return out
}

// SerializeHistory renders prior messages as ordered "ROLE: text" lines.
func SerializeHistory(history []HistoryEntry) string {
	if len(history) == 0 {
		return ""
	}
	lines := make([]string, 0, len(history))
	for _, h := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(h.Role), h.Text))
	}
	return strings.Join(lines, "\n")
}
