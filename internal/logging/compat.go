package logging

import (
	"fmt"
	"os"
)

// exit is swapped out in tests.
var exit = os.Exit

// Fatal logs at FATAL severity and terminates the process with status 1. Only
// meant for main packages; libraries return errors instead.
func (log *Logger) Fatal(format string, a ...interface{}) {
	log.Log(Fatal, 1, format, a...)
	exit(1)
}

// These are meant purely to ease migrations away from the standard 'log' package.
// Prefer the explicitly leveled API, e.g. log.Error().

func (log *Logger) Fatalln(v ...interface{}) {
	log.Log(Fatal, 1, "%s", fmt.Sprintln(v...))
	exit(1)
}

func (log *Logger) Print(v ...interface{}) {
	log.Log(Medium, 1, "%s", fmt.Sprint(v...))
}

func (log *Logger) Printf(format string, v ...interface{}) {
	log.Log(Medium, 1, format, v...)
}

func (log *Logger) Println(v ...interface{}) {
	log.Log(Medium, 1, "%s", fmt.Sprintln(v...))
}
