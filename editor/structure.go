package editor

import (
	"fmt"
	"strings"
)

type PropertyType string

const (
	TypeLabel          PropertyType = "label"
	TypeText           PropertyType = "text"
	TypeURL            PropertyType = "url"
	TypeInteger        PropertyType = "integer"
	TypeEnum           PropertyType = "enum"
	TypeStoredPassword PropertyType = "storedPassword"
)

// PasswordMask is shown instead of stored passwords. Sending it back keeps the stored value.
const PasswordMask = "********"

// Property describes one editable field of an object, keyed by its json name.
type Property struct {
	Property    string            `json:"property"`
	Type        PropertyType      `json:"type"`
	Label       string            `json:"label"`
	Description string            `json:"description,omitempty"`
	Required    bool              `json:"required,omitempty"`
	MaxLength   int               `json:"maxLength,omitempty"`
	Values      map[string]string `json:"values,omitempty"`
}

type ObjectStructure []Property

// Validate checks the values an admin submitted. Labels are read-only and not checked.
func (s ObjectStructure) Validate(values map[string]any) error {
	var problems []string
	for _, p := range s {
		if p.Type == TypeLabel {
			continue
		}
		v, present := values[p.Property]
		str, isString := v.(string)
		if p.Required && (!present || v == nil || (isString && strings.TrimSpace(str) == "")) {
			problems = append(problems, p.Label+" is required")
			continue
		}
		if !isString || str == "" {
			continue
		}
		if p.MaxLength > 0 && len(str) > p.MaxLength {
			problems = append(problems, fmt.Sprintf("%s must be at most %d characters", p.Label, p.MaxLength))
		}
		if p.Type == TypeEnum {
			if _, ok := p.Values[str]; !ok {
				problems = append(problems, p.Label+" has an invalid value")
			}
		}
		if p.Type == TypeURL && !strings.HasPrefix(str, "http://") && !strings.HasPrefix(str, "https://") {
			problems = append(problems, p.Label+" must be an http or https URL")
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func (s ObjectStructure) ofType(t PropertyType) []string {
	var names []string
	for _, p := range s {
		if p.Type == t {
			names = append(names, p.Property)
		}
	}
	return names
}

type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}
