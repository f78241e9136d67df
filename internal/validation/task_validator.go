package validation

import (
	"taskdeck/internal/domain"
)

// TaskValidator provides validation for Task-related operations
type TaskValidator struct {
	validator *Validator
}

// NewTaskValidator creates a new task validator
func NewTaskValidator() *TaskValidator {
	return &TaskValidator{
		validator: NewValidator(),
	}
}

// NewTaskValidatorWithValidator shares a configured validator
func NewTaskValidatorWithValidator(v *Validator) *TaskValidator {
	return &TaskValidator{validator: v}
}

// ValidateTitle validates a task or subtask title
func (tv *TaskValidator) ValidateTitle(field, title string) error {
	validationError := NewValidationError()

	trimmed := tv.validator.TrimAndValidateString(title)
	if !tv.validator.IsNonEmptyString(trimmed) {
		validationError.AddRequiredError(field)
		return validationError
	}

	maxLen := tv.validator.titleMaxLength()
	if !tv.validator.IsValidStringLength(trimmed, 1, maxLen) {
		validationError.AddInvalidLengthError(field, trimmed, 1, maxLen)
	}
	if tv.validator.HasControlCharacters(trimmed) {
		validationError.AddInvalidCharacterError(field, trimmed)
	}

	return validationError.result()
}

// ValidatePriority accepts low, medium and high.
func (tv *TaskValidator) ValidatePriority(p domain.Priority) error {
	if p.IsValid() {
		return nil
	}
	validationError := NewValidationError()
	validationError.AddInvalidValueError("priority", p, "must be one of low, medium, high")
	return validationError
}

// ValidateStatus accepts todo, in-progress and done.
func (tv *TaskValidator) ValidateStatus(s domain.TaskStatus) error {
	if s.IsValid() {
		return nil
	}
	validationError := NewValidationError()
	validationError.AddInvalidValueError("status", s, "must be one of todo, in-progress, done")
	return validationError
}

// ValidateTaskForCreation validates the user-supplied fields of a new task
func (tv *TaskValidator) ValidateTaskForCreation(title string, priority domain.Priority) error {
	validationError := NewValidationError()
	validationError.merge(tv.ValidateTitle("title", title))
	if priority != "" {
		validationError.merge(tv.ValidatePriority(priority))
	}
	return validationError.result()
}

// ValidateTask validates a complete domain.Task
func (tv *TaskValidator) ValidateTask(task domain.Task) error {
	validationError := NewValidationError()

	if !tv.validator.IsNonEmptyString(task.ID) {
		validationError.AddRequiredError("id")
	}
	validationError.merge(tv.ValidateTitle("title", task.Title))
	validationError.merge(tv.ValidatePriority(task.Priority))
	validationError.merge(tv.ValidateStatus(task.Status))

	for day, ms := range task.TimeSpentPerDay {
		if !tv.validator.IsValidDayKey(day) {
			validationError.AddInvalidFormatError("timeSpentPerDay", day, "YYYY-MM-DD")
		}
		if ms < 0 {
			validationError.AddInvalidValueError("timeSpentPerDay", ms, "must not be negative")
		}
	}
	if task.TotalTimeSpent < 0 {
		validationError.AddInvalidValueError("totalTimeSpent", task.TotalTimeSpent, "must not be negative")
	}

	return validationError.result()
}

// ValidateTimeAmount validates a manual time entry of h:m:s
func (tv *TaskValidator) ValidateTimeAmount(hours, minutes, seconds int64) error {
	validationError := NewValidationError()
	if hours < 0 || minutes < 0 || seconds < 0 {
		validationError.AddInvalidValueError("time", []int64{hours, minutes, seconds}, "parts must not be negative")
	}
	return validationError.result()
}

// GetValidTitle returns a cleaned title if valid
func (tv *TaskValidator) GetValidTitle(title string) (string, error) {
	if err := tv.ValidateTitle("title", title); err != nil {
		return "", err
	}
	return tv.validator.TrimAndValidateString(title), nil
}
