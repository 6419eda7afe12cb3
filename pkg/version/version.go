// Package version provides totally ordered version schemes with a textual form.
//
// A Scheme knows how to order its versions, how to parse and render them and which
// version is current. Documents carry the rendered form in a version attribute.
package version

import (
	"cmp"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/mod/semver"
)

// ErrUnknownVersion is returned when text does not name a version of the scheme.
var ErrUnknownVersion = errors.New("unknown version")

// Scheme orders, parses and renders versions of type V.
type Scheme[V any] interface {
	Compare(a, b V) int
	Parse(text string) (V, error)
	Format(v V) string
	Current() V
}

// Symbol is a named version of an Enum. Symbols of one Enum compare by declaration order.
type Symbol struct {
	name string
	ord  int
}

func (s Symbol) String() string { return s.name }

// Ordinal returns the declaration position of the symbol.
func (s Symbol) Ordinal() int { return s.ord }

// Enum is a closed, ordered list of symbolic versions. The last symbol is current.
type Enum struct {
	symbols []Symbol
	byName  map[string]Symbol
}

// NewEnum declares the versions in ascending order.
func NewEnum(names ...string) (*Enum, error) {
	if len(names) == 0 {
		return nil, errors.New("enum needs at least one version")
	}
	e := &Enum{byName: make(map[string]Symbol, len(names))}
	for i, n := range names {
		if n == "" {
			return nil, fmt.Errorf("enum version %d has no name", i)
		}
		if _, dup := e.byName[n]; dup {
			return nil, fmt.Errorf("duplicate enum version %q", n)
		}
		s := Symbol{name: n, ord: i}
		e.symbols = append(e.symbols, s)
		e.byName[n] = s
	}
	return e, nil
}

// MustEnum is like NewEnum but panics on error. Meant for package level declarations.
func MustEnum(names ...string) *Enum {
	e, err := NewEnum(names...)
	if err != nil {
		panic(err)
	}
	return e
}

// Symbols returns all versions in ascending order.
func (e *Enum) Symbols() []Symbol {
	out := make([]Symbol, len(e.symbols))
	copy(out, e.symbols)
	return out
}

// Must returns the named symbol and panics if it is not declared.
func (e *Enum) Must(name string) Symbol {
	s, err := e.Parse(name)
	if err != nil {
		panic(err)
	}
	return s
}

func (e *Enum) Compare(a, b Symbol) int { return cmp.Compare(a.ord, b.ord) }
func (e *Enum) Format(v Symbol) string  { return v.name }
func (e *Enum) Current() Symbol         { return e.symbols[len(e.symbols)-1] }

func (e *Enum) Parse(text string) (Symbol, error) {
	s, ok := e.byName[text]
	if !ok {
		return Symbol{}, fmt.Errorf("%w: %q", ErrUnknownVersion, text)
	}
	return s, nil
}

// Semver orders semantic versions. Text with or without the leading "v" is accepted; the
// canonical form always carries it.
type Semver struct {
	current string
}

// NewSemver returns a semver scheme whose current version is current.
func NewSemver(current string) (*Semver, error) {
	s := &Semver{}
	c, err := s.Parse(current)
	if err != nil {
		return nil, err
	}
	s.current = c
	return s, nil
}

func (s *Semver) Compare(a, b string) int { return semver.Compare(a, b) }
func (s *Semver) Format(v string) string  { return v }
func (s *Semver) Current() string         { return s.current }

func (s *Semver) Parse(text string) (string, error) {
	v := text
	if len(v) > 0 && v[0] != 'v' {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("%w: %q is not a semantic version", ErrUnknownVersion, text)
	}
	return semver.Canonical(v), nil
}

// Integer orders int64 versions numerically.
type Integer struct {
	current int64
}

func NewInteger(current int64) *Integer { return &Integer{current: current} }

func (i *Integer) Compare(a, b int64) int { return cmp.Compare(a, b) }
func (i *Integer) Format(v int64) string  { return strconv.FormatInt(v, 10) }
func (i *Integer) Current() int64         { return i.current }

func (i *Integer) Parse(text string) (int64, error) {
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrUnknownVersion, text)
	}
	return v, nil
}

// Lexical orders plain strings byte-wise. Any non-empty text is a version.
type Lexical struct {
	current string
}

func NewLexical(current string) *Lexical { return &Lexical{current: current} }

func (l *Lexical) Compare(a, b string) int { return cmp.Compare(a, b) }
func (l *Lexical) Format(v string) string  { return v }
func (l *Lexical) Current() string         { return l.current }

func (l *Lexical) Parse(text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("%w: empty version", ErrUnknownVersion)
	}
	return text, nil
}
