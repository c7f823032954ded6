package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
)

var ErrUnknownRule = errors.New("validation: unknown rule")

type Violations struct {
	Errors map[string][]error
}

func (violations Violations) MarshalJSON() ([]byte, error) {
	errors := make(map[string][]string)
	for fieldName, fieldErrors := range violations.Errors {
		errors[fieldName] = make([]string, len(fieldErrors))
		for index, fieldError := range fieldErrors {
			errors[fieldName][index] = fieldError.Error()
		}
	}

	return json.Marshal(map[string]map[string][]string{
		"errors": errors,
	})
}

func (violations Violations) IsEmpty() bool {
	return len(violations.Errors) == 0
}

// Error lists every violation as "field: message", sorted by field.
func (violations Violations) Error() string {
	fieldNames := make([]string, 0, len(violations.Errors))
	for fieldName := range violations.Errors {
		fieldNames = append(fieldNames, fieldName)
	}
	sort.Strings(fieldNames)

	var sb strings.Builder
	for _, fieldName := range fieldNames {
		for _, fieldError := range violations.Errors[fieldName] {
			if sb.Len() > 0 {
				sb.WriteString("; ")
			}
			sb.WriteString(fieldName)
			sb.WriteString(": ")
			sb.WriteString(fieldError.Error())
		}
	}
	return sb.String()
}

// Err returns nil when nothing was violated.
func (violations Violations) Err() error {
	if violations.IsEmpty() {
		return nil
	}
	return violations
}

// ValidateMap checks every field that has rules. A missing field counts as
// empty, so only "required" reports it; the other rules skip empty values.
func ValidateMap(data map[string]string, rules map[string][]string) Violations {
	var violations Violations
	violations.Errors = make(map[string][]error)

	for attributeName, attributeRules := range rules {
		attributeValue := data[attributeName]

		var errorCollection []error
		for _, attributeRule := range attributeRules {
			if err := validate(attributeRule, attributeName, attributeValue); err != nil {
				errorCollection = append(errorCollection, err)
			}
		}

		if len(errorCollection) != 0 {
			violations.Errors[attributeName] = errorCollection
		}
	}

	return violations
}

func validate(rule string, name string, value string) error {
	ruleName, argument, _ := strings.Cut(rule, ":")

	if ruleName == "required" {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}

	if value == "" {
		return nil
	}

	switch ruleName {
	case "integer":
		{
			if !ValidateInteger(value) {
				return fmt.Errorf("%s must be an integer", name)
			}
		}
	case "boolean":
		{
			if !ValidateBoolean(value) {
				return fmt.Errorf("%s must be a boolean", name)
			}
		}
	case "min":
		{
			size, err := strconv.Atoi(argument)
			if err != nil {
				return fmt.Errorf("%w :: %s", ErrUnknownRule, rule)
			}
			if !ValidateGreaterThenOrEqual(value, size) {
				return fmt.Errorf("%s must be at least %d", name, size)
			}
		}
	case "max":
		{
			size, err := strconv.Atoi(argument)
			if err != nil {
				return fmt.Errorf("%w :: %s", ErrUnknownRule, rule)
			}
			if !ValidateLesserThenOrEqual(value, size) {
				return fmt.Errorf("%s must be at most %d", name, size)
			}
		}
	case "oneof":
		{
			options := strings.Split(argument, "|")
			if !slices.Contains(options, value) {
				return fmt.Errorf("%s must be one of %s", name, strings.Join(options, ", "))
			}
		}
	default:
		{
			return fmt.Errorf("%w :: %s", ErrUnknownRule, rule)
		}
	}

	return nil
}

// Numberic operations
func ValidateInteger(value string) bool {
	_, err := strconv.Atoi(value)
	return err == nil
}

func ValidateGreaterThenOrEqual(value string, size int) bool {
	valueAsInt, err := strconv.Atoi(value)
	if err != nil {
		return false
	}

	return valueAsInt >= size
}

func ValidateLesserThenOrEqual(value string, size int) bool {
	valueAsInt, err := strconv.Atoi(value)
	if err != nil {
		return false
	}

	return valueAsInt <= size
}

// Boolean operations
func ValidateBoolean(value string) bool {
	return ValidateTrue(value) || ValidateFalse(value)
}

func ValidateTrue(value string) bool {
	return value == "1" || value == "true"
}

func ValidateFalse(value string) bool {
	return value == "0" || value == "false"
}
