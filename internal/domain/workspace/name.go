package workspace

import (
	"fmt"
	"regexp"
	"strings"
)

// Name length bounds.
const (
	minNameLen = 2
	maxNameLen = 40
)

// namePattern accepts lowercase letters, digits, and single interior hyphens.
// The name must start with a letter and must not end with a hyphen.
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// ValidateName checks that a workspace name satisfies the naming rules:
// 2-40 characters, lowercase letters/digits/hyphens, starting with a letter,
// with no leading, trailing, or doubled hyphens.
func ValidateName(name string) error {
	if len(name) < minNameLen || len(name) > maxNameLen {
		return fmt.Errorf("must be %d-%d characters, got %d", minNameLen, maxNameLen, len(name))
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("must match %s", namePattern.String())
	}
	return nil
}

// ParseName normalizes raw input (trim, lowercase) and validates the result.
// Returns the normalized name or a validation failure.
func ParseName(raw string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}
