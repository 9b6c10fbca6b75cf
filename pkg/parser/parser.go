package parser

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Record is one access log line split into its fields.
// Timestamp is kept as written in the log; see NormalizeTime.
type Record struct {
	Client    string
	Timestamp string
	Request   string
	Status    int
	Size      string
	Referer   string
	UserAgent string
}

type Parser interface {
	Parse(line []byte) (Record, error)
}

type ParserFunc func(line []byte) (Record, error)

func (f ParserFunc) Parse(line []byte) (Record, error) {
	return f(line)
}

type NewFunc func() (Parser, error)

type ParserMeta struct {
	Name        string
	Description string
	Hidden      bool
	F           NewFunc
}

var (
	ErrNoMatch      = errors.New("line does not match log format")
	ErrBadTimestamp = errors.New("invalid timestamp")

	registry = make(map[string]ParserMeta)
)

func RegisterParser(meta ParserMeta) {
	registry[meta.Name] = meta
}

func GetParser(name string) (Parser, error) {
	meta, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown parser %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return meta.F()
}

func All() []ParserMeta {
	parsers := make([]ParserMeta, 0, len(registry))
	for _, p := range registry {
		parsers = append(parsers, p)
	}
	return parsers
}

// Names returns the sorted names of all visible parsers.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name, p := range registry {
		if !p.Hidden {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
