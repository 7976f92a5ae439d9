package workout

import (
	_ "embed"
	"fmt"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed library.toml
var libraryTOML string

// DefaultTips replace the empty tip list of a generated item.
//
//nolint:gochecknoglobals // static content.
var DefaultTips = []string{
	"Breathe while controlling the movement",
	"Keep your core engaged",
	"Avoid jerky movements",
}

// CustomTips are shown for user added exercises and for replacements without tips.
//
//nolint:gochecknoglobals // static content.
var CustomTips = []string{
	"Keep your core tight",
	"Breathe in a controlled way",
}

// Library is an immutable set of exercises.
type Library struct {
	exercises []Exercise
}

// NewLibrary creates a library from exercises. Names must be unique.
func NewLibrary(exercises []Exercise) (*Library, error) {
	seen := make(map[string]struct{}, len(exercises))
	for _, e := range exercises {
		if e.Name == "" {
			return nil, fmt.Errorf("%w: exercise without name", ErrInvalidInput)
		}
		if _, ok := seen[e.Name]; ok {
			return nil, fmt.Errorf("%w: duplicate exercise %q", ErrInvalidInput, e.Name)
		}
		seen[e.Name] = struct{}{}
	}
	return &Library{exercises: slices.Clone(exercises)}, nil
}

// ParseLibrary decodes a library in the TOML format of the embedded library.
func ParseLibrary(data string) (*Library, error) {
	var doc struct {
		Exercise []Exercise `toml:"exercise"`
	}
	if _, err := toml.Decode(data, &doc); err != nil {
		return nil, fmt.Errorf("decode exercise library: %w", err)
	}
	return NewLibrary(doc.Exercise)
}

//nolint:gochecknoglobals // the embedded library is parsed once.
var defaultLibrary = sync.OnceValue(func() *Library {
	lib, err := ParseLibrary(libraryTOML)
	if err != nil {
		panic(err)
	}
	return lib
})

// DefaultLibrary returns the library compiled into the binary.
func DefaultLibrary() *Library {
	return defaultLibrary()
}

// All returns every exercise in library order.
func (l *Library) All() []Exercise {
	return slices.Clone(l.exercises)
}

// Tagged returns the exercises suited for goal in library order.
func (l *Library) Tagged(goal Goal) []Exercise {
	var out []Exercise
	for _, e := range l.exercises {
		if e.HasTag(goal) {
			out = append(out, e)
		}
	}
	return out
}

// Find returns the exercise called name.
func (l *Library) Find(name string) (Exercise, bool) {
	for _, e := range l.exercises {
		if e.Name == name {
			return e, true
		}
	}
	return Exercise{}, false //nolint:exhaustruct // zero value.
}
