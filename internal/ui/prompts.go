package ui

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/zoro11031/wg-provision/internal/common"
)

// ErrNonInteractive is returned by prompts when the UI may not ask.
var ErrNonInteractive = errors.New("input required but running non-interactively")

// PromptYesNo prompts the user for a yes/no answer
func (u *UI) PromptYesNo(prompt string, defaultYes bool) (bool, error) {
	if u.nonInteractive {
		return false, fmt.Errorf("%w: %s", ErrNonInteractive, prompt)
	}

	var result bool
	p := &survey.Confirm{
		Message: prompt,
		Default: defaultYes,
	}

	err := survey.AskOne(p, &result)
	return result, err
}

// PromptInput prompts the user for text input. In non-interactive mode the
// default is returned.
func (u *UI) PromptInput(prompt, defaultValue string) (string, error) {
	if u.nonInteractive {
		return defaultValue, nil
	}

	var result string
	p := &survey.Input{
		Message: prompt,
		Default: defaultValue,
	}

	err := survey.AskOne(p, &result)
	return result, err
}

// PromptSelect prompts the user to select from a list
func (u *UI) PromptSelect(prompt string, options []string) (int, error) {
	if u.nonInteractive {
		return -1, fmt.Errorf("%w: %s", ErrNonInteractive, prompt)
	}

	var selected string
	p := &survey.Select{
		Message: prompt,
		Options: options,
	}

	if err := survey.AskOne(p, &selected); err != nil {
		return -1, err
	}

	for i, opt := range options {
		if opt == selected {
			return i, nil
		}
	}

	return -1, fmt.Errorf("selected option not found")
}

// PromptClientName asks for a client name and re-prompts until it is valid.
func (u *UI) PromptClientName(prompt string) (string, error) {
	if u.nonInteractive {
		return "", fmt.Errorf("%w: %s", ErrNonInteractive, prompt)
	}

	var result string
	p := &survey.Input{
		Message: prompt,
	}

	err := survey.AskOne(p, &result, survey.WithValidator(clientNameValidator))
	return result, err
}

func clientNameValidator(ans interface{}) error {
	s, ok := ans.(string)
	if !ok {
		return fmt.Errorf("expected a string answer")
	}
	return common.ValidateClientName(s)
}
