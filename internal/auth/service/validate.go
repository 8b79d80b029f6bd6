package service

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goserg/rolegate/internal/auth/users"
	"golang.org/x/text/unicode/norm"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// normalizeCredentials trims the username and folds it to NFC so that
// visually identical names map to one account. The password is left as is.
func normalizeCredentials(c users.Credentials) users.Credentials {
	c.Username = norm.NFC.String(strings.TrimSpace(c.Username))
	return c
}

func validateCredentials(c users.Credentials) error {
	if err := getValidator().Struct(c); err != nil {
		return &ValidationError{Reason: reasonInvalidCredentials, Err: err}
	}
	return nil
}
