// Package profile defines learner profiles and the strategy selection
// that drives content personalization.
//
// A profile is owned by the external store; orchestrators only read it.
// Strategy selection is a total, deterministic function of the profile:
// every profile value maps to exactly one strategy, with first-match-wins
// priority and a mandatory default branch.
package profile

import (
	"fmt"

	"golang.org/x/text/language"
)

// SkillLevel describes the learner's self-reported proficiency.
type SkillLevel string

// Skill levels. The empty value means "not set" and selects the
// default strategy.
const (
	SkillLevelUnset        SkillLevel = ""
	SkillLevelBeginner     SkillLevel = "beginner"
	SkillLevelIntermediate SkillLevel = "intermediate"
	SkillLevelAdvanced     SkillLevel = "advanced"
)

// Valid reports whether the level is one of the known enum values.
func (s SkillLevel) Valid() bool {
	switch s {
	case SkillLevelUnset, SkillLevelBeginner, SkillLevelIntermediate, SkillLevelAdvanced:
		return true
	}
	return false
}

// Background describes the learner's technical background.
type Background string

// Backgrounds.
const (
	BackgroundUnset    Background = ""
	BackgroundSoftware Background = "software"
	BackgroundHardware Background = "hardware"
	BackgroundBoth     Background = "both"
	BackgroundNeither  Background = "neither"
)

// Valid reports whether the background is a known enum value.
func (b Background) Valid() bool {
	switch b {
	case BackgroundUnset, BackgroundSoftware, BackgroundHardware, BackgroundBoth, BackgroundNeither:
		return true
	}
	return false
}

// Language is the learner's preferred content language (BCP-47 base).
type Language string

// Supported languages.
const (
	LanguageEnglish Language = "en"
	LanguageUrdu    Language = "ur"
)

// Valid reports whether the language is supported. Values are also
// required to parse as BCP-47 tags.
func (l Language) Valid() bool {
	if l != LanguageEnglish && l != LanguageUrdu {
		return false
	}
	_, err := language.Parse(string(l))
	return err == nil
}

// Profile holds the persisted learner attributes used for strategy
// selection. Wire format is snake_case (external store convention).
type Profile struct {
	UserID             string     `json:"user_id,omitempty"`
	SkillLevel         SkillLevel `json:"skill_level"`
	Background         Background `json:"background"`
	LanguagePreference Language   `json:"language_preference"`
	LearningGoals      []string   `json:"learning_goals"`
}

// Validate checks enum fields. An entirely zero Profile is valid and
// selects the default strategy.
func (p Profile) Validate() error {
	if !p.SkillLevel.Valid() {
		return fmt.Errorf("invalid skill_level %q", p.SkillLevel)
	}
	if !p.Background.Valid() {
		return fmt.Errorf("invalid background %q", p.Background)
	}
	if p.LanguagePreference != "" && !p.LanguagePreference.Valid() {
		return fmt.Errorf("invalid language_preference %q", p.LanguagePreference)
	}
	return nil
}

// IsBeginner reports whether the learner should receive simplified content.
func (p Profile) IsBeginner() bool {
	return p.SkillLevel == SkillLevelBeginner
}

// IsHardwareFocused reports whether the learner has a strong hardware
// orientation. "both" counts: such learners asked for hardware context
// in addition to software depth.
func (p Profile) IsHardwareFocused() bool {
	return p.Background == BackgroundHardware || p.Background == BackgroundBoth
}

// IsAdvanced reports whether the learner should receive enriched
// technical depth.
func (p Profile) IsAdvanced() bool {
	return p.SkillLevel == SkillLevelAdvanced
}

// Strategy is the named orchestration branch chosen for a profile.
type Strategy string

// Strategies, in priority order.
const (
	StrategyBeginner        Strategy = "beginner"
	StrategyHardwareFocused Strategy = "hardware_focused"
	StrategyAdvanced        Strategy = "advanced"
	StrategyDefault         Strategy = "default"
)

// SelectStrategy maps a profile to its strategy. First match wins;
// branches are mutually exclusive by construction and the default
// branch makes the function total — there is no unreachable profile.
func SelectStrategy(p Profile) Strategy {
	switch {
	case p.IsBeginner():
		return StrategyBeginner
	case p.IsHardwareFocused():
		return StrategyHardwareFocused
	case p.IsAdvanced():
		return StrategyAdvanced
	default:
		return StrategyDefault
	}
}
