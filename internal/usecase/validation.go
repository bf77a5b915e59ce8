package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

var (
	blogURLPattern = regexp.MustCompile(`^(https?://)?([\w-]+(\.[\w-]+)+)/?$`)
	nonDigit       = regexp.MustCompile(`\D`)
	phoneFull      = regexp.MustCompile(`^(\d{2})(\d{5})(\d{0,4})$`)
	phonePartial   = regexp.MustCompile(`^(\d{2})(\d{0,5})$`)
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ValidateStartDiagnosticInput(input StartDiagnosticInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.URL) == "" {
		errors = append(errors, ValidationError{"url", "is required"})
	} else if !IsValidBlogURL(input.URL) {
		errors = append(errors, ValidationError{"url", "must be a valid WordPress blog URL"})
	}

	if strings.TrimSpace(input.Nome) == "" {
		errors = append(errors, ValidationError{"nome", "is required"})
	} else if len(input.Nome) > 200 {
		errors = append(errors, ValidationError{"nome", "must not exceed 200 characters"})
	}

	if strings.TrimSpace(input.Email) == "" {
		errors = append(errors, ValidationError{"email", "is required"})
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		errors = append(errors, ValidationError{"email", "is invalid"})
	}

	if strings.TrimSpace(input.Telefone) == "" {
		errors = append(errors, ValidationError{"telefone", "is required"})
	} else if !isValidPhoneNumber(input.Telefone) {
		errors = append(errors, ValidationError{"telefone", "must be a valid phone number"})
	}

	return errors
}

// IsValidBlogURL aceita domínio com ou sem esquema, sem caminho.
func IsValidBlogURL(url string) bool {
	return blogURLPattern.MatchString(strings.TrimSpace(url))
}

// FormatPhone aplica a máscara (DD) DDDDD-DDDD, cortando em 11 dígitos.
func FormatPhone(value string) string {
	digits := nonDigit.ReplaceAllString(value, "")
	if len(digits) > 11 {
		digits = digits[:11]
	}

	switch {
	case digits == "":
		return ""
	case len(digits) > 6:
		return phoneFull.ReplaceAllString(digits, "($1) $2-$3")
	case len(digits) > 2:
		return phonePartial.ReplaceAllString(digits, "($1) $2")
	default:
		return "(" + digits
	}
}

func isValidPhoneNumber(phone string) bool {
	cleaned := nonDigit.ReplaceAllString(phone, "")
	return len(cleaned) >= 10 && len(cleaned) <= 11
}

func validationMessage(errs []ValidationError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field+" ("+e.Message+")")
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
