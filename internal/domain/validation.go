package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	userNameRe = regexp.MustCompile(`^[a-z0-9_]+$`)
	// Shared by tags, agents and standing orders.
	simpleNameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// SanitizeUserName trims and validates a user name.
func SanitizeUserName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if !userNameRe.MatchString(name) {
		return "", fmt.Errorf("%w: username can only contain lowercase letters, numbers and underscore", ErrValidation)
	}
	return name, nil
}

// SanitizeTagName trims and validates a tag name.
func SanitizeTagName(name string) (string, error) {
	return sanitizeSimpleName(name, "tag")
}

// SanitizeAgentName trims and validates an agent name.
func SanitizeAgentName(name string) (string, error) {
	return sanitizeSimpleName(name, "agent")
}

// SanitizeOrderName trims and validates a standing order name.
func SanitizeOrderName(name string) (string, error) {
	return sanitizeSimpleName(name, "order")
}

func sanitizeSimpleName(name, kind string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: %s name must not be empty", ErrValidation, kind)
	}
	if !simpleNameRe.MatchString(name) {
		return "", fmt.Errorf("%w: %s name can only contain letters, numbers, dash and underscore", ErrValidation, kind)
	}
	return name, nil
}
