package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// SSIDs are limited to 32 octets, not characters.
	if err := validate.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= n
	}); err != nil {
		panic(err)
	}
}

type networkInput struct {
	SSID string `validate:"required,maxbytes=32"`
	// WPA passphrases are 8 to 63 characters.
	Password string `validate:"omitempty,min=8,max=63"`
	Address  string `validate:"omitempty,ipv4"`
	Gateway  string `validate:"omitempty,ipv4"`
	DNS      string `validate:"omitempty,ipv4"`
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", e.Param())
	case "maxbytes":
		return fmt.Sprintf("must be at most %s bytes", e.Param())
	case "ipv4":
		return "must be an IPv4 address"
	default:
		return fmt.Sprintf("failed %s validation", e.Tag())
	}
}

// validateInput checks v against its validate tags and reports every failing
// field in one error.
func validateInput(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s %s", strings.ToLower(e.Field()), validationMessage(e)))
	}
	return fmt.Errorf("invalid input: %s", strings.Join(msgs, "; "))
}
