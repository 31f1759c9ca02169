package livelog

import (
	"strconv"
	"strings"
)

// Level follows npm logging levels: lower rank means more severe.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelHTTP
	LevelVerbose
	LevelDebug
	LevelSilly
)

// DefaultLevel is used when no level environment variable is set.
const DefaultLevel = LevelInfo

var levelNames = [...]string{
	LevelError:   "error",
	LevelWarn:    "warn",
	LevelInfo:    "info",
	LevelHTTP:    "http",
	LevelVerbose: "verbose",
	LevelDebug:   "debug",
	LevelSilly:   "silly",
}

// Levels returns all levels from most severe to most verbose.
func Levels() []Level {
	return []Level{LevelError, LevelWarn, LevelInfo, LevelHTTP, LevelVerbose, LevelDebug, LevelSilly}
}

// LevelNames returns level names in rank order.
func LevelNames() []string {
	out := make([]string, len(levelNames))
	copy(out, levelNames[:])
	return out
}

func (l Level) Valid() bool { return l >= LevelError && l <= LevelSilly }

// Rank is the numeric npm value written as level_value.
func (l Level) Rank() int { return int(l) }

func (l Level) String() string {
	if !l.Valid() {
		return "level(" + strconv.Itoa(int(l)) + ")"
	}
	return levelNames[l]
}

// ParseLevel resolves a level name. Matching ignores case and surrounding spaces.
func ParseLevel(name string) (Level, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, ln := range levelNames {
		if ln == n {
			return Level(i), nil
		}
	}
	return 0, &InvalidLevelError{Name: name, Valid: LevelNames()}
}

// IsAtLeastAsVerbose reports whether a message at level passes threshold.
func IsAtLeastAsVerbose(level, threshold Level) bool {
	return level.Rank() <= threshold.Rank()
}

// MostVerbose returns the level with the highest rank. With no levels it
// returns DefaultLevel.
func MostVerbose(levels ...Level) Level {
	if len(levels) == 0 {
		return DefaultLevel
	}
	out := levels[0]
	for _, l := range levels[1:] {
		if l.Rank() > out.Rank() {
			out = l
		}
	}
	return out
}
