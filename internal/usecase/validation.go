package usecase

import (
	"net/mail"
	"strings"

	"github.com/xavierca1/imob-crm/internal/entity"
)

type CaptureLeadInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	PropertyID string `json:"property_id"`
	Message    string `json:"message"`
}

func ValidateCaptureLeadInput(input CaptureLeadInput) []*entity.ValidationError {
	var errors []*entity.ValidationError

	name := strings.TrimSpace(input.Name)
	if name == "" {
		errors = append(errors, &entity.ValidationError{Field: "name", Message: "is required"})
	} else if len(name) < 2 {
		errors = append(errors, &entity.ValidationError{Field: "name", Message: "must have at least 2 characters"})
	} else if len(name) > 200 {
		errors = append(errors, &entity.ValidationError{Field: "name", Message: "must not exceed 200 characters"})
	}

	email := strings.TrimSpace(input.Email)
	phone := strings.TrimSpace(input.Phone)
	if email == "" && phone == "" {
		errors = append(errors, &entity.ValidationError{Field: "contact", Message: "email or phone is required"})
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			errors = append(errors, &entity.ValidationError{Field: "email", Message: "is invalid"})
		}
	}
	if phone != "" && !isValidPhoneNumber(phone) {
		errors = append(errors, &entity.ValidationError{Field: "phone", Message: "must be a valid phone number"})
	}

	if len(input.Message) > 2000 {
		errors = append(errors, &entity.ValidationError{Field: "message", Message: "must not exceed 2000 characters"})
	}

	return errors
}

// isValidPhoneNumber aceita DDD + número (10 ou 11 dígitos), com ou sem DDI 55.
func isValidPhoneNumber(phone string) bool {
	cleaned := NormalizePhone(phone)
	if len(cleaned) == 12 || len(cleaned) == 13 {
		return strings.HasPrefix(cleaned, "55")
	}
	return len(cleaned) >= 10 && len(cleaned) <= 11
}

// joinValidation junta a lista num único ValidationError.
func joinValidation(errs []*entity.ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	fields := make([]string, 0, len(errs))
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
		msgs = append(msgs, e.Field+" ("+e.Message+")")
	}
	return &entity.ValidationError{
		Field:   strings.Join(fields, ","),
		Message: "validation failed: " + strings.Join(msgs, ", "),
	}
}
