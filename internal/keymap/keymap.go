// Package keymap resolves keyboard bindings: embedded defaults merged
// with user overrides persisted in the keys namespace.
package keymap

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Bindings maps action names to the chords that trigger them.
type Bindings map[string][]string

// Defaults returns the embedded binding set. The embedded file is
// trusted; a parse failure here is a build defect, hence the panic.
func Defaults() Bindings {
	var b Bindings
	if err := yaml.Unmarshal(defaultsYAML, &b); err != nil {
		panic(fmt.Sprintf("keymap: embedded defaults invalid: %v", err))
	}
	return b
}

// Merge overlays user overrides onto the defaults. An action present in
// overrides replaces the default chords wholesale; unknown actions are
// carried through so forward-compatible overrides survive.
func Merge(defaults Bindings, overrides map[string][]string) Bindings {
	merged := make(Bindings, len(defaults))
	for action, chords := range defaults {
		merged[action] = append([]string(nil), chords...)
	}
	for action, chords := range overrides {
		merged[action] = append([]string(nil), chords...)
	}
	return merged
}

// Validate rejects binding sets where one chord triggers two actions.
// Chords compare case-insensitively with modifier order normalized, so
// "Ctrl+Z" and "ctrl+z" collide.
func Validate(b Bindings) error {
	seen := make(map[string]string)
	actions := make([]string, 0, len(b))
	for action := range b {
		actions = append(actions, action)
	}
	sort.Strings(actions)

	for _, action := range actions {
		for _, chord := range b[action] {
			key := NormalizeChord(chord)
			if key == "" {
				return fmt.Errorf("action %q: empty chord", action)
			}
			if prev, dup := seen[key]; dup {
				return fmt.Errorf("chord %q bound to both %q and %q", chord, prev, action)
			}
			seen[key] = action
		}
	}
	return nil
}

// NormalizeChord lowercases a chord and sorts its modifiers so chord
// comparison is order- and case-insensitive. The final part is the key
// itself and keeps its position.
func NormalizeChord(chord string) string {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(chord)), "+")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return ""
	}
	if len(parts) > 1 {
		mods := parts[:len(parts)-1]
		sort.Strings(mods)
	}
	return strings.Join(parts, "+")
}

// Lookup returns the action bound to chord, if any.
func Lookup(b Bindings, chord string) (string, bool) {
	want := NormalizeChord(chord)
	for action, chords := range b {
		for _, c := range chords {
			if NormalizeChord(c) == want {
				return action, true
			}
		}
	}
	return "", false
}
