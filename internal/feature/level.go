// internal/feature/level.go
package feature

import "fmt"

// Level is the depth of a node in the feature hierarchy.
type Level uint8

const (
	LevelInvalid Level = iota
	LevelContext
	LevelAlign
	LevelBlock
	LevelFeatureSet
	LevelFeature
)

var levelNames = [...]string{
	LevelInvalid:    "invalid",
	LevelContext:    "context",
	LevelAlign:      "align",
	LevelBlock:      "block",
	LevelFeatureSet: "featureset",
	LevelFeature:    "feature",
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("level(%d)", l)
}

// Valid reports whether l names one of the five real levels.
func (l Level) Valid() bool { return l >= LevelContext && l <= LevelFeature }

// ParseLevel is the inverse of Level.String.
func ParseLevel(s string) (Level, error) {
	for i, n := range levelNames {
		if i > 0 && n == s {
			return Level(i), nil
		}
	}
	return LevelInvalid, fmt.Errorf("%w: unknown level %q", ErrArgument, s)
}
