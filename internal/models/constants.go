package models

import "intervai/server/internal/utils"

type Mode string

type Level string

type Role string

const (
	ModeTechnical Mode = "technical"
	ModeCore      Mode = "core"
	ModeHR        Mode = "hr"
	ModeRapid     Mode = "rapid"
)

const (
	LevelEasy   Level = "easy"
	LevelMedium Level = "medium"
	LevelHard   Level = "hard"
)

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// reserved user content that asks the interviewer for the final evaluation
const TerminationSentinel = "END_INTERVIEW"

// contains all supported interview modes (in lowercase)
var ValidModes = map[Mode]bool{
	ModeTechnical: true,
	ModeCore:      true,
	ModeHR:        true,
	ModeRapid:     true,
}

// contains all supported difficulty levels (in lowercase)
var ValidLevels = map[Level]bool{
	LevelEasy:   true,
	LevelMedium: true,
	LevelHard:   true,
}

func ModesList() []string {
	return []string{"technical", "core", "hr", "rapid"}
}

func LevelsList() []string {
	return []string{"easy", "medium", "hard"}
}

// ParseMode normalizes a raw mode string and reports whether it is supported.
func ParseMode(raw string) (Mode, bool) {
	mode := Mode(utils.Normalize(raw))
	return mode, ValidModes[mode]
}

// ParseLevel normalizes a raw level string and reports whether it is supported.
func ParseLevel(raw string) (Level, bool) {
	level := Level(utils.Normalize(raw))
	return level, ValidLevels[level]
}
