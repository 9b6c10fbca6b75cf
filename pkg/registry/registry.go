// Package registry reads the user/domain mapping of a shared hosting
// server (cPanel's /etc/userdatadomains).
//
// Each line looks like
//
//	example.com: bob==root==main==example.com==/home/bob/public_html==...
//
// Only the leading "domain: user" pair is used.
package registry

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/taoky/hourlog/pkg/fileiter"
)

const DefaultPath = "/etc/userdatadomains"

type Entry struct {
	Domain string `json:"domain" yaml:"domain"`
	User   string `json:"user" yaml:"user"`
}

// Registry keeps entries in the order their domain first appeared.
type Registry struct {
	entries []Entry
	index   map[string]int

	// Skipped counts malformed lines.
	Skipped int
}

func New() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Add inserts e, replacing the user of an existing domain in place.
func (r *Registry) Add(e Entry) {
	if i, ok := r.index[e.Domain]; ok {
		r.entries[i] = e
		return
	}
	r.index[e.Domain] = len(r.entries)
	r.entries = append(r.entries, e)
}

func (r *Registry) Lookup(domain string) (Entry, bool) {
	i, ok := r.index[domain]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

func (r *Registry) Entries() []Entry {
	return r.entries
}

func (r *Registry) Len() int {
	return len(r.entries)
}

// ParseLine extracts the entry from one registry line.
func ParseLine(line string) (Entry, bool) {
	head, _, ok := strings.Cut(strings.TrimSpace(line), "==")
	if !ok {
		return Entry{}, false
	}
	parts := strings.Split(head, ":")
	if len(parts) != 2 {
		return Entry{}, false
	}
	e := Entry{
		Domain: strings.TrimSpace(parts[0]),
		User:   strings.TrimSpace(parts[1]),
	}
	if e.Domain == "" || e.User == "" {
		return Entry{}, false
	}
	return e, true
}

func Parse(r io.Reader) (*Registry, error) {
	reg := New()
	iter := fileiter.NewWithReader(r)
	for {
		line, err := iter.Next()
		if errors.Is(err, fileiter.ErrLineTooLong) {
			reg.Skipped++
			continue
		}
		if err != nil {
			return nil, err
		}
		if line == nil {
			return reg, nil
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		e, ok := ParseLine(string(line))
		if !ok {
			reg.Skipped++
			continue
		}
		reg.Add(e)
	}
}

func Load(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open domain registry: %w", err)
	}
	defer f.Close()
	reg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read domain registry %s: %w", path, err)
	}
	return reg, nil
}
