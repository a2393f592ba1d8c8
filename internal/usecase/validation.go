package usecase

import (
	"fmt"
	"strings"

	"github.com/leadpulse/leadpulse/internal/entity"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AddLeadInput is the caller-facing shape for creating a lead. Status
// and timestamps are not accepted: every lead starts as "new".
type AddLeadInput struct {
	Name       string          `json:"name"`
	ProfileURL string          `json:"profileUrl"`
	Platform   entity.Platform `json:"platform"`
	Category   entity.Category `json:"category"`
	Notes      string          `json:"notes"`
}

func ValidateAddLeadInput(input AddLeadInput) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errs = append(errs, ValidationError{"name", "is required"})
	} else if len(input.Name) > 200 {
		errs = append(errs, ValidationError{"name", "must not exceed 200 characters"})
	}

	if input.Platform == "" {
		errs = append(errs, ValidationError{"platform", "is required"})
	} else if !input.Platform.IsValid() {
		errs = append(errs, ValidationError{"platform", "must be one of Twitter, Instagram, Facebook, LinkedIn, Other"})
	}

	if input.Category == "" {
		errs = append(errs, ValidationError{"category", "is required"})
	} else if !input.Category.IsValid() {
		errs = append(errs, ValidationError{"category", "is not a known lead niche"})
	}

	return errs
}

type AddTemplateInput struct {
	Name    string              `json:"name"`
	Type    entity.TemplateType `json:"type"`
	Content string              `json:"content"`
}

func ValidateAddTemplateInput(input AddTemplateInput) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errs = append(errs, ValidationError{"name", "is required"})
	}
	if !input.Type.IsValid() {
		errs = append(errs, ValidationError{"type", "must be dm or followup"})
	}
	if strings.TrimSpace(input.Content) == "" {
		errs = append(errs, ValidationError{"content", "is required"})
	}

	return errs
}

func validationDomainError(errs []ValidationError) *DomainError {
	msg := "validation failed: "
	for _, e := range errs {
		msg += e.Field + " (" + e.Message + "), "
	}
	return &DomainError{Code: "VALIDATION_ERROR", Message: strings.TrimSuffix(msg, ", ")}
}
