package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// style is an ANSI SGR sequence.
type style string

const (
	styleError style = "\033[1;31m"
	styleTitle style = "\033[1m"
	stylePath  style = "\033[36m"
	styleDim   style = "\033[90m"

	styleReset = "\033[0m"
)

var colorEnabled = true

// DisableColors turns off ANSI styling in Format.
func DisableColors() { colorEnabled = false }

// EnableColors turns ANSI styling back on.
func EnableColors() { colorEnabled = true }

func (s style) paint(text string) string {
	if !colorEnabled || text == "" {
		return text
	}
	return string(s) + text + styleReset
}

// Format renders the error for a terminal:
//
//	error[E121]: Invalid configuration value
//	  --> snapfx.yaml:3:13
//	  | A configuration value is out of range or malformed.
//	  = hint: demo.interval must be a duration such as 1s
//	  = cause: time: invalid duration "soon"
func (e *Error) Format() string {
	var b strings.Builder

	head := "error"
	if e.Code != "" {
		head += "[" + e.Code + "]"
	}
	fmt.Fprintf(&b, "%s: %s\n", styleError.paint(head), styleTitle.paint(e.Message))

	if e.Location != nil {
		fmt.Fprintf(&b, "  %s %s\n", styleDim.paint("-->"), stylePath.paint(e.Location.String()))
	}
	for _, line := range wrapText(e.Detail, 72) {
		fmt.Fprintf(&b, "  %s %s\n", styleDim.paint("|"), line)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s %s\n", styleDim.paint("= hint:"), e.Suggestion)
	}
	if e.Wrapped != nil {
		fmt.Fprintf(&b, "  %s %s\n", styleDim.paint("= cause:"), e.Wrapped)
	}
	return b.String()
}

// FormatCompact returns "file:line: CODE: message", leaving out the parts
// that are not set.
func (e *Error) FormatCompact() string {
	parts := make([]string, 0, 3)
	if e.Location != nil {
		parts = append(parts, e.Location.String())
	}
	if e.Code != "" {
		parts = append(parts, e.Code)
	}
	return strings.Join(append(parts, e.Message), ": ")
}

type jsonError struct {
	Code       string    `json:"code,omitempty"`
	Category   Category  `json:"category"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	Location   *Location `json:"location,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
	Cause      string    `json:"cause,omitempty"`
}

// FormatJSON returns the error as a JSON object.
func (e *Error) FormatJSON() string {
	je := jsonError{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Location:   e.Location,
		Suggestion: e.Suggestion,
	}
	if e.Wrapped != nil {
		je.Cause = e.Wrapped.Error()
	}
	data, err := json.Marshal(je)
	if err != nil {
		return fmt.Sprintf(`{"message":%q}`, e.Message)
	}
	return string(data)
}

// wrapText splits text into lines of at most width bytes. A single word
// longer than width gets a line of its own.
func wrapText(text string, width int) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) > width:
			lines = append(lines, line)
			line = word
		default:
			line += " " + word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// Fprint writes err to w, formatted when it is an *Error. Runtime errors
// are given their code first.
func Fprint(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprint(w, FromRuntime(err).Format())
}
