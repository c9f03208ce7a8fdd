package model

import (
	"errors"
	"strings"
)

// Importance is the three-level priority of a task.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
)

// ErrInvalidImportance is returned when an importance label is not recognised.
var ErrInvalidImportance = errors.New("invalid importance")

// Importances lists every level from most to least important.
var Importances = []Importance{ImportanceHigh, ImportanceMedium, ImportanceLow}

// Rank orders importance for sorting: high first.
func (i Importance) Rank() int {
	switch i {
	case ImportanceHigh:
		return 0
	case ImportanceMedium:
		return 1
	case ImportanceLow:
		return 2
	}
	return len(Importances)
}

// Valid reports whether i is one of the three known levels.
func (i Importance) Valid() bool {
	return i == ImportanceLow || i == ImportanceMedium || i == ImportanceHigh
}

// Label returns the stored label for the level (Baja, Media, Alta).
func (i Importance) Label() string {
	switch i {
	case ImportanceHigh:
		return "Alta"
	case ImportanceMedium:
		return "Media"
	case ImportanceLow:
		return "Baja"
	}
	return ""
}

// ParseImportance accepts the English names and the stored labels, with or
// without a leading emoji marker ("🔴 Alta").
func ParseImportance(s string) (Importance, error) {
	s = strings.TrimSpace(s)
	if idx := strings.LastIndex(s, " "); idx >= 0 {
		s = s[idx+1:]
	}
	switch strings.ToLower(s) {
	case "high", "alta":
		return ImportanceHigh, nil
	case "medium", "media":
		return ImportanceMedium, nil
	case "low", "baja":
		return ImportanceLow, nil
	}
	return "", ErrInvalidImportance
}
