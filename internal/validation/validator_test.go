package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taskdeck/internal/config"
)

func TestValidator_Strings(t *testing.T) {
	v := NewValidator()

	assert.True(t, v.IsNonEmptyString(" a "))
	assert.False(t, v.IsNonEmptyString(" \t "))
	assert.True(t, v.IsValidStringLength("  héllo  ", 5, 5))
	assert.False(t, v.IsValidStringLength("toolong", 1, 3))
	assert.True(t, v.HasControlCharacters("a\nb"))
	assert.False(t, v.HasControlCharacters("plain text!"))
	assert.Equal(t, "x", v.TrimAndValidateString("  x "))
}

func TestValidator_IsHexColor(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"#6366f1", true},
		{"#FFF", true},
		{"6366f1", false},
		{"#12345", false},
		{"#ggg", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewValidator().IsHexColor(tt.input))
		})
	}
}

func TestValidator_IDsAndDays(t *testing.T) {
	v := NewValidator()
	assert.True(t, v.IsValidID("0b6f7c4e-4f8a-4d2c-9d55-2f1f6f2b3a10"))
	assert.False(t, v.IsValidID("42"))
	assert.True(t, v.IsValidDayKey("2026-01-11"))
	assert.False(t, v.IsValidDayKey("2026-13-01"))
}

func TestValidator_ConfiguredLimits(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Validation.TitleMaxLength = 5
	cfg.Validation.NameMaxLength = 3
	v := NewValidatorWithConfig(cfg)

	assert.Equal(t, 5, v.titleMaxLength())
	assert.Equal(t, 3, v.nameMaxLength())
	assert.Equal(t, 255, NewValidator().titleMaxLength())
}
