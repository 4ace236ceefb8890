// Package gesture provides trained gesture definitions and per-body gesture sources.
package gesture

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when a gesture kind string is not recognised.
var ErrUnknownKind = errors.New("unknown gesture kind")

// Kind represents how a gesture reports its result.
type Kind string

const (
	// KindDiscrete gestures report a detected flag and a confidence in [0,1].
	KindDiscrete Kind = "discrete"
	// KindContinuous gestures report a progress scalar in [0,1].
	KindContinuous Kind = "continuous"
)

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindDiscrete, KindContinuous:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Definition describes a trained gesture.
type Definition struct {
	Name string `json:"name" yaml:"name"`
	Kind Kind   `json:"kind" yaml:"kind"`
}

// Database is the immutable list of gestures loaded at startup.
type Database struct {
	defs   []Definition
	byName map[string]int
}

// Loader reads gesture definitions from a vendor database file.
type Loader interface {
	LoadGestureDatabase(path string) ([]Definition, error)
}

// Load reads the database at path through the given loader.
func Load(l Loader, path string) (*Database, error) {
	defs, err := l.LoadGestureDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("load gesture database %s: %w", path, err)
	}
	return NewDatabase(defs)
}

// NewDatabase validates defs and returns a Database holding a copy of them.
// Names must be unique and non-empty.
func NewDatabase(defs []Definition) (*Database, error) {
	db := &Database{
		defs:   make([]Definition, len(defs)),
		byName: make(map[string]int, len(defs)),
	}

	for i, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("gesture %d has no name", i)
		}
		if _, err := ParseKind(string(d.Kind)); err != nil {
			return nil, fmt.Errorf("gesture %s: %w", d.Name, err)
		}
		if _, dup := db.byName[d.Name]; dup {
			return nil, fmt.Errorf("duplicate gesture name %q", d.Name)
		}
		db.defs[i] = d
		db.byName[d.Name] = i
	}

	return db, nil
}

// Definitions returns a copy of the loaded definitions in database order.
func (db *Database) Definitions() []Definition {
	out := make([]Definition, len(db.defs))
	copy(out, db.defs)
	return out
}

// Lookup returns the definition with the given name.
func (db *Database) Lookup(name string) (Definition, bool) {
	i, ok := db.byName[name]
	if !ok {
		return Definition{}, false
	}
	return db.defs[i], true
}

// Len returns the number of definitions.
func (db *Database) Len() int {
	return len(db.defs)
}
