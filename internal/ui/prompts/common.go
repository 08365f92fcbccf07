package prompts

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
)

// PromptInput prompts for a free-text value with optional validation.
func PromptInput(message, helpText, initial string, validator func(string) error) (string, error) {
	value := initial

	input := huh.NewInput().
		Title(message).
		Description(helpText).
		Value(&value)

	if validator != nil {
		input.Validate(validator)
	}

	err := input.Run()
	return strings.TrimSpace(value), err
}

// PromptSelect prompts for a single choice.
func PromptSelect(message string, options []string, defaultValue string) (string, error) {
	var opts []huh.Option[string]
	for _, o := range options {
		opts = append(opts, huh.NewOption(o, o))
	}

	selected := defaultValue

	err := huh.NewSelect[string]().
		Title(message).
		Options(opts...).
		Value(&selected).
		Height(12).
		Run()

	return selected, err
}

// PromptConfirm prompts for yes/no confirmation.
func PromptConfirm(message string, defaultValue bool) (bool, error) {
	confirm := defaultValue

	err := huh.NewConfirm().
		Title(message).
		Value(&confirm).
		Affirmative("Yes").
		Negative("No").
		Run()

	return confirm, err
}

// PromptDate prompts for a date, accepting YYYY-MM-DD.
func PromptDate(message, defaultDate, helpText string) (string, error) {
	return PromptInput(message, helpText, defaultDate, func(s string) error {
		s = strings.TrimSpace(s)
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return fmt.Errorf("invalid date, use YYYY-MM-DD")
		}
		return nil
	})
}
