package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingConfig   = errors.New("missing configuration")
	ErrInvalidResponse = errors.New("invalid response")
)

// MissingConfigError names the stage that cannot run and the absent settings.
type MissingConfigError struct {
	Stage string
	Keys  []string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Stage, ErrMissingConfig.Error(), strings.Join(e.Keys, ", "))
}

func (e *MissingConfigError) Unwrap() error {
	return ErrMissingConfig
}

// NewMissingConfig returns nil when no keys are missing.
func NewMissingConfig(stage string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return &MissingConfigError{Stage: stage, Keys: keys}
}
