package logging

import (
	"errors"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// Logging level. Higher values indicate more verbosity.
type Level int

const (
	Fatal Level = iota - 2
	Error
	High
	Medium
	Low

	// Allow numeric logging levels up to 9.
	MaxLevel Level = 9
)

// Default level can be changed by environment variable.
var defaultLevel = Medium

func parseLevel(s string) (level Level, err error) {
	// First check for well-known level names or abbreviations.
	switch strings.ToUpper(s) {
	case "F", "FATAL":
		return Fatal, nil
	case "E", "ERROR":
		return Error, nil
	case "H", "HIGH":
		return High, nil
	case "M", "MED", "MEDIUM":
		return Medium, nil
	case "L", "LOW":
		return Low, nil
	case "T", "TRACE":
		return MaxLevel, nil
	}

	// Otherwise expect an explicit numeric level.
	if n, ierr := strconv.Atoi(s); ierr != nil {
		err = errors.New("Invalid logging level: " + s)
	} else {
		level = Level(n)
		if level < Fatal || level > MaxLevel {
			err = errors.New("Numeric level out of range: " + s)
		}
	}
	return
}

// ParseLevel is the exported form of parseLevel, for command line flags.
func ParseLevel(s string) (Level, error) {
	return parseLevel(s)
}

func (l Level) String() string {
	switch l {
	case Fatal:
		return "FATAL"
	case Error:
		return "ERROR"
	case High:
		return "HIGH"
	case Medium:
		return "MEDIUM"
	case Low:
		return "LOW"
	default:
		return strconv.Itoa(int(l))
	}
}

func (l Level) color() *color.Color {
	if l > Low {
		return levelColors[len(levelColors)-1]
	}
	return levelColors[l-Fatal]
}

// SetColor forces level colours on or off, regardless of whether the output
// is a terminal.
func SetColor(on bool) {
	for _, c := range levelColors {
		if on {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}

// Indexed from Fatal upward; the last entry covers numeric trace levels.
var levelColors = []*color.Color{
	color.New(color.FgHiMagenta, color.Bold),
	color.New(color.FgHiRed, color.Bold),
	color.New(color.FgHiCyan, color.Bold),
	color.New(color.FgHiYellow, color.Bold),
	color.New(color.FgHiWhite),
	color.New(color.FgGreen),
}
