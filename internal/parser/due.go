// Package parser turns natural-language CLI input into typed values.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

// relativeRegex matches relative expressions like "+5m", "+1h", "+2d".
var relativeRegex = regexp.MustCompile(`^\+(\d+)([smhdw])$`)

// ParseDue parses a natural-language due date.
// Supported forms:
//   - "+5m", "+1h", "+2d", "+1w" (relative)
//   - "tomorrow 2pm", "friday" (natural language)
//   - "2026-01-15 14:00" (ISO format)
func ParseDue(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("due date is empty")
	}

	if match := relativeRegex.FindStringSubmatch(input); match != nil {
		return parseRelative(match[1], match[2])
	}

	cfg := &dateparser.Configuration{
		CurrentTime: time.Now(),
	}
	result, err := dateparser.Parse(cfg, input)
	if err != nil {
		return time.Time{}, fmt.Errorf("could not parse due date %q", input)
	}
	return result.Time, nil
}

func parseRelative(numStr, unit string) (time.Time, error) {
	num, _ := strconv.Atoi(numStr)
	if num <= 0 {
		return time.Time{}, fmt.Errorf("invalid duration: must be positive")
	}

	var d time.Duration
	switch unit {
	case "s":
		d = time.Duration(num) * time.Second
	case "m":
		d = time.Duration(num) * time.Minute
	case "h":
		d = time.Duration(num) * time.Hour
	case "d":
		d = time.Duration(num) * 24 * time.Hour
	case "w":
		d = time.Duration(num) * 7 * 24 * time.Hour
	default:
		return time.Time{}, fmt.Errorf("unknown duration unit %q", unit)
	}
	return time.Now().Add(d), nil
}
