package signals

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/spendsense/internal/models"
)

// InputValidator checks account and transaction records before computation
type InputValidator struct {
	validate *validator.Validate
}

// NewInputValidator creates a new input validator
func NewInputValidator() *InputValidator {
	return &InputValidator{validate: validator.New()}
}

// Validate returns ErrInvalidInput describing every malformed record.
// Records are never coerced; the caller must fix the data.
func (v *InputValidator) Validate(accounts []models.Account, transactions []models.Transaction) error {
	var problems []string

	for i := range accounts {
		if err := v.validate.Struct(accounts[i]); err != nil {
			problems = append(problems, describe(fmt.Sprintf("accounts[%d]", i), err)...)
		}
	}
	for i := range transactions {
		if err := v.validate.Struct(transactions[i]); err != nil {
			problems = append(problems, describe(fmt.Sprintf("transactions[%d]", i), err)...)
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
}

// describe flattens validator errors into "path.Field failed 'tag'" strings
func describe(path string, err error) []string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []string{path + ": " + err.Error()}
	}
	out := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		out = append(out, fmt.Sprintf("%s.%s failed '%s'", path, fe.Field(), fe.Tag()))
	}
	return out
}
