// Package promptsource defines the PromptSource capability: dot-path lookup
// of named prompt templates with {var} substitution and @path recursive
// references (§6.3). Grounded on the placeholder-substitution style used by
// intelligencedev-manifold's playground worker (renderTemplate), generalized
// from flat {{key}} replacement to dotted lookup paths and self-references.
package promptsource

import (
	"context"
	"fmt"
	"strings"
)

// MaxRefDepth bounds @path recursive resolution (§6.3); resolution beyond
// this depth is treated as a circular reference.
const MaxRefDepth = 10

// Source resolves a dot-path prompt name to its rendered text, substituting
// vars and following @path references up to MaxRefDepth deep.
type Source interface {
	Get(ctx context.Context, path string, vars map[string]string) (string, error)
}

// Static is an in-memory Source backed by a flat dot-path -> template map,
// the shape a config file or embedded asset bundle loads into.
type Static struct {
	templates map[string]string
}

// NewStatic builds a Static source from a dot-path -> template map. The map
// is retained, not copied; callers should not mutate it afterwards.
func NewStatic(templates map[string]string) *Static {
	return &Static{templates: templates}
}

// Get resolves path, substituting vars and following @path references.
func (s *Static) Get(_ context.Context, path string, vars map[string]string) (string, error) {
	return s.resolve(path, vars, 0)
}

func (s *Static) resolve(path string, vars map[string]string, depth int) (string, error) {
	if depth > MaxRefDepth {
		return "", fmt.Errorf("promptsource: %q exceeds max reference depth %d (circular reference?)", path, depth)
	}
	tmpl, ok := s.templates[path]
	if !ok {
		return "", fmt.Errorf("promptsource: no template at %q", path)
	}
	return s.render(tmpl, vars, depth)
}

func (s *Static) render(tmpl string, vars map[string]string, depth int) (string, error) {
	var b strings.Builder
	i := 0
	for i < len(tmpl) {
		switch {
		case tmpl[i] == '@':
			if ref, n := scanRef(tmpl[i+1:]); n > 0 {
				resolved, err := s.resolve(ref, vars, depth+1)
				if err != nil {
					return "", err
				}
				b.WriteString(resolved)
				i += 1 + n
				continue
			}
		case tmpl[i] == '{':
			if name, n, ok := scanVar(tmpl[i+1:]); ok {
				if v, present := vars[name]; present {
					b.WriteString(v)
					i += 1 + n
					continue
				}
			}
		}
		b.WriteByte(tmpl[i])
		i++
	}
	return b.String(), nil
}

// scanRef reads a dotted reference path (letters, digits, '.', '_', '-')
// immediately following an '@', returning the path and the number of bytes
// consumed from s (the byte after '@').
func scanRef(s string) (ref string, consumed int) {
	n := 0
	for n < len(s) && isRefRune(s[n]) {
		n++
	}
	return s[:n], n
}

func isRefRune(b byte) bool {
	return b == '.' || b == '_' || b == '-' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// scanVar reads a {name} placeholder body immediately following the opening
// '{'; the closing '}' must be present. consumed counts bytes from s (the
// byte after the opening '{') through the closing '}', inclusive.
func scanVar(s string) (name string, consumed int, ok bool) {
	end := strings.IndexByte(s, '}')
	if end < 0 {
		return "", 0, false
	}
	name = s[:end]
	if name == "" || strings.ContainsAny(name, "{@") {
		return "", 0, false
	}
	return name, end + 1, true
}
