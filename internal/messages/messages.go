// Package messages formats user-visible status text.
package messages

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	errConfigLoad = "Failed to load configuration: %v"
	errValidation = "Configuration is invalid:\n%s"
)

// FormatConfigLoadError wraps a configuration load failure.
func FormatConfigLoadError(err error) string {
	return fmt.Sprintf(errConfigLoad, err)
}

// FormatValidationErrors renders a numbered list of validation failures.
func FormatValidationErrors(errs []error) string {
	var sb strings.Builder
	for i, err := range errs {
		sb.WriteString(fmt.Sprintf("%d. %v\n", i+1, err))
	}
	return fmt.Sprintf(errValidation, strings.TrimRight(sb.String(), "\n"))
}

var reasoningTagRe = regexp.MustCompile(`(?s)<(think|thinking|reasoning)>.*?</(think|thinking|reasoning)>`)

// CleanContent strips model reasoning tags and trims whitespace from a
// completion before it is sent to a channel.
func CleanContent(content string) string {
	cleaned := reasoningTagRe.ReplaceAllString(content, "")
	return strings.TrimSpace(cleaned)
}
