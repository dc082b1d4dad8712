// File path: internal/model/preferences.go
package model

import (
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Tone adjusts the voice requested from the insight provider.
type Tone string

const (
	ToneWarm    Tone = "warm"
	ToneNeutral Tone = "neutral"
	ToneDirect  Tone = "direct"
)

// Preferences carries optional teacher-supplied guidance. It is read-only
// input to prompt construction and fallback synthesis; a nil *Preferences
// degrades to built-in defaults everywhere.
type Preferences struct {
	ClassGoals          []string `json:"classGoals,omitempty" yaml:"class_goals"`
	FocusAreas          []string `json:"focusAreas,omitempty" yaml:"focus_areas"`
	PreferredStrategies []string `json:"preferredStrategies,omitempty" yaml:"preferred_strategies"`
	Tone                Tone     `json:"tone,omitempty" yaml:"tone"`
	TeacherNotes        string   `json:"teacherNotes,omitempty" yaml:"teacher_notes"`
}

// LoadPreferences reads a YAML preferences file. A missing path returns
// nil preferences rather than an error so callers can treat the file as
// optional.
func LoadPreferences(path string) (*Preferences, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	data, err := os.ReadFile(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read preferences: %w", err)
	}
	var prefs Preferences
	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("parse preferences: %w", err)
	}
	prefs.normalize()
	return &prefs, nil
}

func (p *Preferences) normalize() {
	if p == nil {
		return
	}
	p.ClassGoals = trimNonEmpty(p.ClassGoals)
	p.FocusAreas = trimNonEmpty(p.FocusAreas)
	p.PreferredStrategies = trimNonEmpty(p.PreferredStrategies)
	p.TeacherNotes = strings.TrimSpace(p.TeacherNotes)
	switch p.Tone {
	case ToneWarm, ToneNeutral, ToneDirect:
	default:
		p.Tone = ToneWarm
	}
}

// ClassGoal returns the first non-blank class goal, if any.
func (p *Preferences) ClassGoal() (string, bool) {
	if p == nil {
		return "", false
	}
	for _, goal := range p.ClassGoals {
		if trimmed := strings.TrimSpace(goal); trimmed != "" {
			return trimmed, true
		}
	}
	return "", false
}

// Strategies returns the preferred strategies, or nil when unset.
func (p *Preferences) Strategies() []string {
	if p == nil {
		return nil
	}
	return p.PreferredStrategies
}

func trimNonEmpty(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
