package network

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateProfile   = errors.New("duplicate profile")
	ErrMissingCredentials = errors.New("wireless network credentials not given")
	ErrNotFound           = errors.New("not found")
)

// DuplicateProfileError is returned when a profile for SSID already exists
// and replacement was not requested.
type DuplicateProfileError struct {
	SSID string
}

func (e *DuplicateProfileError) Error() string {
	return fmt.Sprintf("network configuration for %q already exists, use force to replace it", e.SSID)
}

func (e *DuplicateProfileError) Unwrap() error {
	return ErrDuplicateProfile
}
