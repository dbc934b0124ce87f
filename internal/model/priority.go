package model

import (
	"fmt"
	"strings"
)

// Priority is the urgency of a task. Lower values are more urgent.
type Priority int

const (
	VeryImportant Priority = iota
	Important
	Normal
	LessImportant
	NotImportant
)

var priorityNames = [...]string{
	VeryImportant: "VeryImportant",
	Important:     "Important",
	Normal:        "Normal",
	LessImportant: "LessImportant",
	NotImportant:  "NotImportant",
}

var priorityLabels = [...]string{
	VeryImportant: "Very important",
	Important:     "Important",
	Normal:        "Normal",
	LessImportant: "Less important",
	NotImportant:  "Not important",
}

// Priorities returns every level in declaration order.
func Priorities() []Priority {
	return []Priority{VeryImportant, Important, Normal, LessImportant, NotImportant}
}

func (p Priority) Valid() bool {
	return p >= VeryImportant && p <= NotImportant
}

func (p Priority) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Priority(%d)", int(p))
	}
	return priorityNames[p]
}

// Label is the human readable form shown in lists and forms.
func (p Priority) Label() string {
	if !p.Valid() {
		return p.String()
	}
	return priorityLabels[p]
}

// ParsePriority accepts the canonical name ("LessImportant"), the legacy
// underscore form ("Less_important") and the label ("Less important"),
// ignoring case.
func ParsePriority(value string) (Priority, error) {
	key := priorityKey(value)
	if key == "" {
		return 0, fmt.Errorf("empty priority")
	}
	for _, p := range Priorities() {
		if priorityKey(priorityNames[p]) == key {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown priority %q", value)
}

func priorityKey(value string) string {
	value = strings.TrimSpace(value)
	value = strings.NewReplacer("_", "", " ", "").Replace(value)
	return strings.ToLower(value)
}

func (p Priority) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid priority %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
