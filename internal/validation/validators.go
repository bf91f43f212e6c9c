package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/bra3n/bra3n/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but log if they do
	if err := Validate.RegisterValidation("plan_type", validatePlanType); err != nil {
		panic(fmt.Sprintf("failed to register plan_type validator: %v", err))
	}
	if err := Validate.RegisterValidation("ai_model", validateAIModel); err != nil {
		panic(fmt.Sprintf("failed to register ai_model validator: %v", err))
	}
	if err := Validate.RegisterValidation("connection_provider", validateConnectionProvider); err != nil {
		panic(fmt.Sprintf("failed to register connection_provider validator: %v", err))
	}
}

// validatePlanType validates that a string is a valid PlanType enum value
func validatePlanType(fl validator.FieldLevel) bool {
	switch models.PlanType(fl.Field().String()) {
	case models.PlanTypeStarter, models.PlanTypePro:
		return true
	default:
		return false
	}
}

// validateAIModel validates that a string is a valid AIModel enum value
func validateAIModel(fl validator.FieldLevel) bool {
	switch models.AIModel(fl.Field().String()) {
	case models.AIModelClaude, models.AIModelOpenAI:
		return true
	default:
		return false
	}
}

// validateConnectionProvider validates that a string is a supported integration provider
func validateConnectionProvider(fl validator.FieldLevel) bool {
	return models.ValidConnectionProvider(fl.Field().String())
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateAIModel validates an AIModel string value
func ValidateAIModel(value string) error {
	switch models.AIModel(value) {
	case models.AIModelClaude, models.AIModelOpenAI:
		return nil
	default:
		return fmt.Errorf("invalid ai_model: %s (must be 'claude' or 'openai')", value)
	}
}

// ValidateConnectionProvider validates an integration provider string value
func ValidateConnectionProvider(value string) error {
	if !models.ValidConnectionProvider(value) {
		return fmt.Errorf("invalid provider: %s (must be 'notion' or 'google_drive')", value)
	}
	return nil
}
