package validation

import "testing"

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "trims whitespace", input: "  hello  ", expected: "hello"},
		{name: "keeps newlines and tabs", input: "line1\n\tline2", expected: "line1\n\tline2"},
		{name: "strips control characters", input: "he\x00llo\x07", expected: "hello"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeText(tt.input); got != tt.expected {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidateAIModel(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"claude", "openai"} {
		if err := ValidateAIModel(valid); err != nil {
			t.Errorf("expected %q to be valid: %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "gpt", "Claude"} {
		if err := ValidateAIModel(invalid); err == nil {
			t.Errorf("expected %q to be rejected", invalid)
		}
	}
}

func TestValidateConnectionProvider(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"notion", "google_drive"} {
		if err := ValidateConnectionProvider(valid); err != nil {
			t.Errorf("expected %q to be valid: %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "dropbox", "Notion"} {
		if err := ValidateConnectionProvider(invalid); err == nil {
			t.Errorf("expected %q to be rejected", invalid)
		}
	}
}

func TestStructValidationTags(t *testing.T) {
	t.Parallel()

	type payload struct {
		Plan     string `validate:"required,plan_type"`
		Model    string `validate:"required,ai_model"`
		Provider string `validate:"required,connection_provider"`
	}

	valid := payload{Plan: "pro", Model: "claude", Provider: "notion"}
	if err := Validate.Struct(valid); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}

	invalid := payload{Plan: "enterprise", Model: "claude", Provider: "notion"}
	if err := Validate.Struct(invalid); err == nil {
		t.Fatal("expected unknown plan to be rejected")
	}
}
