package validation

import "taskdeck/internal/domain"

// ProjectValidator validates project input
type ProjectValidator struct {
	validator *Validator
}

// NewProjectValidator creates a new project validator
func NewProjectValidator() *ProjectValidator {
	return &ProjectValidator{validator: NewValidator()}
}

// NewProjectValidatorWithValidator shares a configured validator
func NewProjectValidatorWithValidator(v *Validator) *ProjectValidator {
	return &ProjectValidator{validator: v}
}

// ValidateName validates a project name
func (pv *ProjectValidator) ValidateName(name string) error {
	validationError := NewValidationError()

	trimmed := pv.validator.TrimAndValidateString(name)
	if !pv.validator.IsNonEmptyString(trimmed) {
		validationError.AddRequiredError("name")
		return validationError
	}
	maxLen := pv.validator.nameMaxLength()
	if !pv.validator.IsValidStringLength(trimmed, 1, maxLen) {
		validationError.AddInvalidLengthError("name", trimmed, 1, maxLen)
	}
	if pv.validator.HasControlCharacters(trimmed) {
		validationError.AddInvalidCharacterError("name", trimmed)
	}
	return validationError.result()
}

// ValidateColor accepts an empty color (default applies) or a hex color
func (pv *ProjectValidator) ValidateColor(color string) error {
	if color == "" || pv.validator.IsHexColor(color) {
		return nil
	}
	validationError := NewValidationError()
	validationError.AddInvalidFormatError("color", color, "#rgb or #rrggbb")
	return validationError
}

// ValidateProjectForCreation validates name and color together
func (pv *ProjectValidator) ValidateProjectForCreation(name, color string) error {
	validationError := NewValidationError()
	validationError.merge(pv.ValidateName(name))
	validationError.merge(pv.ValidateColor(color))
	return validationError.result()
}

// ValidateProject validates a complete domain.Project
func (pv *ProjectValidator) ValidateProject(p domain.Project) error {
	validationError := NewValidationError()
	if !pv.validator.IsNonEmptyString(p.ID) {
		validationError.AddRequiredError("id")
	}
	validationError.merge(pv.ValidateProjectForCreation(p.Name, p.Color))
	return validationError.result()
}
