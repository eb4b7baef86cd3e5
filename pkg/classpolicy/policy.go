// Package classpolicy loads and hot-reloads the drug-class block-list
// consulted by the label-warning standardizer's rejection rule (§4.4, §9
// Open Question (a)). The block-list is kept as configurable policy rather
// than hard-coded, and can be sourced from a local YAML file or a
// git-distributed one.
package classpolicy

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Doc is the on-disk shape of a class policy file: a map of class name to
// its member drug names (canonical spellings).
type Doc struct {
	Classes map[string][]string `yaml:"classes"`
}

// DefaultDoc returns the built-in NSAID block-list used when no policy file
// is configured, matching the source's hard-coded list.
func DefaultDoc() Doc {
	return Doc{
		Classes: map[string][]string{
			"nsaid": {
				"ibuprofen", "naproxen", "diclofenac", "celecoxib",
				"indomethacin", "ketorolac", "meloxicam", "piroxicam",
				"aspirin",
			},
		},
	}
}

// Policy is a hot-swappable, read-optimized view of the current class
// policy document. It is safe for concurrent use.
type Policy struct {
	current atomic.Pointer[classIndex]
}

type classIndex struct {
	classOf map[string]string // drug -> class name
	classes map[string][]string
}

// New creates a Policy seeded with doc.
func New(doc Doc) *Policy {
	p := &Policy{}
	p.set(doc)
	return p
}

func (p *Policy) set(doc Doc) {
	idx := &classIndex{
		classOf: make(map[string]string),
		classes: doc.Classes,
	}
	for class, members := range doc.Classes {
		for _, m := range members {
			idx.classOf[strings.ToLower(strings.TrimSpace(m))] = class
		}
	}
	p.current.Store(idx)
}

// Reload atomically swaps in a new document.
func (p *Policy) Reload(doc Doc) { p.set(doc) }

// ClassOf returns the drug class a canonical name belongs to, and whether
// it belongs to a known class at all.
func (p *Policy) ClassOf(canonicalName string) (string, bool) {
	idx := p.current.Load()
	class, ok := idx.classOf[canonicalName]
	return class, ok
}

// IsDifferentClassMember reports whether other is a well-known member of
// queried's class but is not itself queried — the rejection signal used by
// the label-warning standardizer. The class table is consulted only for
// rejection, never to infer an interaction.
func (p *Policy) IsDifferentClassMember(queried, other string) bool {
	if queried == other {
		return false
	}
	qClass, ok := p.ClassOf(queried)
	if !ok {
		return false
	}
	oClass, ok := p.ClassOf(other)
	return ok && oClass == qClass
}

// LoadFile reads a class policy document from a YAML file.
func LoadFile(path string) (Doc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Doc{}, fmt.Errorf("read class policy file %q: %w", path, err)
	}
	var doc Doc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Doc{}, fmt.Errorf("parse class policy file %q: %w", path, err)
	}
	return doc, nil
}
