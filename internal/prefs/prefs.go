// Package prefs reads the handful of Processing preferences the
// preprocessor consults when it synthesizes main().
//
// Preferences are a Java .properties file (Processing's preferences.txt)
// layered over built-in defaults. Lookups are read-only and cheap.
package prefs

import (
	"fmt"
	"sort"

	"github.com/magiconair/properties"
)

// Keys consulted by the synthesizer.
const (
	KeyFullScreen = "export.application.fullscreen"
	KeyBgColor    = "run.present.bgcolor"
	KeyStop       = "export.application.stop"
	KeyStopColor  = "run.present.stop.color"
)

var defaults = map[string]string{
	KeyFullScreen: "false",
	KeyBgColor:    "#666666",
	KeyStop:       "true",
	KeyStopColor:  "#cccccc",
}

// Lookup is the read-only view the preprocessor needs.
type Lookup interface {
	Bool(key string) bool
	String(key string) string
}

// Prefs is a Lookup backed by a properties table.
type Prefs struct {
	props *properties.Properties
}

// Defaults returns preferences holding only the built-in values.
func Defaults() *Prefs {
	p := properties.NewProperties()
	p.DisableExpansion = true
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		// ошибка возможна только при циклической подстановке, а она выключена
		_, _, _ = p.Set(k, defaults[k]) //nolint:errcheck
	}
	return &Prefs{props: p}
}

// Load reads a preferences file and layers it over the defaults.
func Load(path string) (*Prefs, error) {
	loaded, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return nil, fmt.Errorf("load preferences %s: %w", path, err)
	}
	return layered(loaded), nil
}

// Parse reads preferences from text and layers them over the defaults.
func Parse(text string) (*Prefs, error) {
	loaded, err := properties.LoadString(text)
	if err != nil {
		return nil, fmt.Errorf("parse preferences: %w", err)
	}
	return layered(loaded), nil
}

func layered(loaded *properties.Properties) *Prefs {
	out := Defaults()
	loaded.DisableExpansion = true
	out.props.Merge(loaded)
	return out
}

// Override sets individual keys, e.g. from pdepp.toml.
func (p *Prefs) Override(values map[string]string) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, _, err := p.props.Set(k, values[k]); err != nil {
			return fmt.Errorf("preference %s: %w", k, err)
		}
	}
	return nil
}

// Bool returns the boolean value of key. Unknown keys and unparsable values
// fall back to the built-in default, which is false when there is none.
func (p *Prefs) Bool(key string) bool {
	def := defaults[key] == "true"
	if p == nil || p.props == nil {
		return def
	}
	return p.props.GetBool(key, def)
}

// String returns the value of key or its built-in default.
func (p *Prefs) String(key string) string {
	if p == nil || p.props == nil {
		return defaults[key]
	}
	return p.props.GetString(key, defaults[key])
}

// Keys lists all keys, sorted.
func (p *Prefs) Keys() []string {
	keys := p.props.Keys()
	sort.Strings(keys)
	return keys
}
