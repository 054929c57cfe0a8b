package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

const envVar = "LOGLEVEL"

type tagLevel struct {
	tag   string
	level Level
}

var (
	tagLevels  []tagLevel
	tagLevelMu sync.RWMutex

	// Tagged loggers handed out so far, re-levelled by Configure.
	derived []*Logger
)

func init() {
	if err := Configure(os.Getenv(envVar)); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid %s: %s\n", envVar, err)
	}
}

// Configure parses comma-separated "tag=level" directives. A directive without
// "tag=" sets the default level. Loggers already derived with WithTag pick up
// the new levels.
func Configure(directives string) error {
	tagLevelMu.Lock()
	defer tagLevelMu.Unlock()

	var firstErr error
	for _, d := range strings.Split(directives, ",") {
		if d == "" {
			continue
		}
		v := strings.SplitN(d, "=", 2)
		level, err := parseLevel(v[len(v)-1])
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("directive '%s': %v", d, err)
			}
			continue
		}
		if len(v) == 1 {
			defaultLevel = level
			DefaultLogger.SetLevel(level)
		} else {
			setTagLevel(v[0], level)
		}
	}
	for _, l := range derived {
		l.SetLevel(lookupLevel(l.Tag, defaultLevel))
	}
	return firstErr
}

// A later directive for the same tag replaces the earlier one.
func setTagLevel(tag string, level Level) {
	for i := range tagLevels {
		if tagLevels[i].tag == tag {
			tagLevels[i].level = level
			return
		}
	}
	tagLevels = append(tagLevels, tagLevel{tag, level})
}

func register(l *Logger) {
	tagLevelMu.Lock()
	derived = append(derived, l)
	tagLevelMu.Unlock()
}

func determineLevel(tag string, fallback Level) Level {
	tagLevelMu.RLock()
	defer tagLevelMu.RUnlock()
	return lookupLevel(tag, fallback)
}

func lookupLevel(tag string, fallback Level) Level {
	for _, e := range tagLevels {
		if e.tag == tag {
			return e.level
		}
	}
	return fallback
}
