package prompt

import "fmt"

// Mode is the closed set of creator operating modes. The mode selects the
// persona prefix and label folded into the artifact template.
type Mode string

const (
	ModeWebArchitect     Mode = "WEB_ARCHITECT"
	ModeGameEngine       Mode = "GAME_ENGINE"
	ModeAppForge         Mode = "APP_FORGE"
	ModeNeuralAutomation Mode = "NEURAL_AUTOMATION"
	ModeOmniMentor       Mode = "OMNI_MENTOR"
)

// ModeConfig describes one creator mode.
type ModeConfig struct {
	Label       string
	Description string
	Prefix      string
}

var modeConfigs = map[Mode]ModeConfig{
	ModeWebArchitect: {
		Label:       "Web Architect",
		Description: "Production-grade React systems.",
		Prefix:      "Act as a Senior Frontend Architect. Generate production-ready React/Next.js code.",
	},
	ModeGameEngine: {
		Label:       "Game Engine",
		Description: "AAA-grade physics, asset management & high-fidelity gameplay.",
		Prefix:      "Act as a Lead Game Developer. Provide high-performance game logic with robust physics and asset management.",
	},
	ModeAppForge: {
		Label:       "App Forge",
		Description: "Elite cross-platform application systems.",
		Prefix:      "Act as a Mobile Lead Architect. Generate high-fidelity cross-platform application code.",
	},
	ModeNeuralAutomation: {
		Label:       "Neural Auto",
		Description: "Autonomous system control & optimization bots.",
		Prefix:      "Act as an Automation Engineer. Write robust scripts for system-level automation.",
	},
	ModeOmniMentor: {
		Label:       "Omni Mentor",
		Description: "Advanced technical architectural breakdown.",
		Prefix:      "Act as a Tech Mentor. Explain complex architectural patterns and provide detailed examples.",
	},
}

// AllModes returns the modes in display order.
func AllModes() []Mode {
	return []Mode{ModeWebArchitect, ModeGameEngine, ModeAppForge, ModeNeuralAutomation, ModeOmniMentor}
}

// ConfigFor returns the configuration for a mode. Unknown modes fall back to
// Web Architect so a stale persisted mode never breaks composition.
func ConfigFor(m Mode) ModeConfig {
	if cfg, ok := modeConfigs[m]; ok {
		return cfg
	}
	return modeConfigs[ModeWebArchitect]
}

// ParseMode resolves a user-supplied mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeWebArchitect, ModeGameEngine, ModeAppForge, ModeNeuralAutomation, ModeOmniMentor:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// InitialGreeting is shown when a new chat session starts.
const InitialGreeting = "I am LOCOBOT. The neural core is synced to 2045 standards. What outstanding architecture shall we deploy today?"
