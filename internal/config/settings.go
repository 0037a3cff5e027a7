package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/pfassina/scout/internal/layout"
)

// UnfocusedToggle selects what the toggle does when the file manager is
// open but does not have focus.
type UnfocusedToggle string

const (
	// Refocus brings the running file manager back to the front.
	Refocus UnfocusedToggle = "refocus"
	// Respawn tears the file manager down and starts a new one in the
	// directory of the now active document.
	Respawn UnfocusedToggle = "respawn"
)

// Settings is an immutable snapshot of the file manager settings.
// Two snapshots are equal when every setting is equal.
type Settings struct {
	YaziPath        string
	YaziConfigPath  string
	Maximize        bool
	Policies        layout.Policies
	UnfocusedToggle UnfocusedToggle
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Policies:        layout.DefaultPolicies(),
		UnfocusedToggle: Refocus,
	}
}

// Setting keys as they appear in config.toml.
const (
	KeyYaziPath         = "yazi_path"
	KeyYaziConfigPath   = "yazi_config_path"
	KeyMaximize         = "maximize"
	KeySidebar          = "sidebar"
	KeyPanel            = "panel"
	KeySecondarySidebar = "secondary_sidebar"
	KeyUnfocusedToggle  = "unfocused_toggle"
	KeyAutoHideSidebar  = "auto_hide_sidebar"
	KeyAutoHidePanel    = "auto_hide_panel"
)

// Source answers setting lookups by key.
type Source interface {
	Lookup(key string) (any, bool)
}

// MapSource is a Source backed by a decoded key/value map.
type MapSource map[string]any

func (m MapSource) Lookup(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// policySource is one entry of a region's fallback chain.
type policySource struct {
	key string
	// legacy marks a boolean alias where true means layout.Hide.
	legacy bool
}

// policyChains lists, per region, the keys consulted in priority order.
// The enum key wins whenever it is set to a non-default value.
var policyChains = map[layout.Region][]policySource{
	layout.Sidebar: {
		{key: KeySidebar},
		{key: KeyAutoHideSidebar, legacy: true},
	},
	layout.Panel: {
		{key: KeyPanel},
		{key: KeyAutoHidePanel, legacy: true},
	},
	layout.SecondarySidebar: {
		{key: KeySecondarySidebar},
	},
}

// Resolve builds a Settings snapshot from sources, earlier sources taking
// precedence. Values of the wrong type or out of range are reported as
// warnings and ignored.
func Resolve(sources ...Source) (Settings, []string) {
	r := resolver{sources: sources}
	s := DefaultSettings()

	if v, ok := r.lookupString(KeyYaziPath); ok {
		s.YaziPath = v
	}
	if v, ok := r.lookupString(KeyYaziConfigPath); ok {
		s.YaziConfigPath = v
	}
	if v, ok := r.lookupBool(KeyMaximize); ok {
		s.Maximize = v
	}
	if v, ok := r.lookupString(KeyUnfocusedToggle); ok {
		switch UnfocusedToggle(v) {
		case Refocus, Respawn:
			s.UnfocusedToggle = UnfocusedToggle(v)
		default:
			r.warnf("%s: unknown value %q, using %q", KeyUnfocusedToggle, v, s.UnfocusedToggle)
		}
	}

	defaults := layout.DefaultPolicies()
	for _, reg := range layout.Regions {
		s.Policies = s.Policies.With(reg, r.policy(policyChains[reg], defaults.For(reg)))
	}

	return s, r.warnings
}

type resolver struct {
	sources  []Source
	warnings []string
}

func (r *resolver) warnf(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func (r *resolver) lookup(key string) (any, bool) {
	for _, src := range r.sources {
		if v, ok := src.Lookup(key); ok {
			return v, true
		}
	}
	return nil, false
}

func (r *resolver) lookupString(key string) (string, bool) {
	v, ok := r.lookup(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		r.warnf("%s: expected a string, got %T", key, v)
		return "", false
	}
	return s, true
}

func (r *resolver) lookupBool(key string) (bool, bool) {
	v, ok := r.lookup(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	if !ok {
		r.warnf("%s: expected a boolean, got %T", key, v)
		return false, false
	}
	return b, true
}

func (r *resolver) policy(chain []policySource, def layout.Policy) layout.Policy {
	for _, src := range chain {
		if src.legacy {
			if hide, ok := r.lookupBool(src.key); ok && hide {
				return layout.Hide
			}
			continue
		}
		name, ok := r.lookupString(src.key)
		if !ok {
			continue
		}
		p, err := layout.ParsePolicy(name)
		if err != nil {
			r.warnf("%s: %v", src.key, err)
			continue
		}
		if p != def {
			return p
		}
	}
	return def
}

// Result is what Loader.Load returns for one toggle.
type Result struct {
	Settings Settings
	// Changed is true when Settings differs from the previous Load.
	// The first Load always reports a change.
	Changed  bool
	Warnings []string
}

// Loader re-reads the file manager settings on every toggle.
type Loader struct {
	path   string
	env    string
	extra  []Source
	last   Settings
	loaded bool
}

// NewLoader reads settings from the TOML file at path, overridden by
// environment variables with the given prefix. Empty path means
// ConfigPath(); empty prefix disables environment overrides.
func NewLoader(path, envPrefix string, extra ...Source) *Loader {
	if path == "" {
		path = ConfigPath()
	}
	return &Loader{path: path, env: envPrefix, extra: extra}
}

// Load reads the current settings. It never fails: an unreadable or
// malformed file degrades to defaults with a warning.
func (l *Loader) Load() Result {
	var warnings []string
	var sources []Source

	if l.env != "" {
		env, err := EnvSource(l.env)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("environment: %v", err))
		} else {
			sources = append(sources, env)
		}
	}
	sources = append(sources, l.extra...)

	file, err := fileSource(l.path)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("%s: %v", l.path, err))
	} else {
		sources = append(sources, file)
	}

	s, w := Resolve(sources...)
	warnings = append(warnings, w...)

	changed := !l.loaded || s != l.last
	l.last = s
	l.loaded = true
	return Result{Settings: s, Changed: changed, Warnings: warnings}
}

// fileSource decodes the TOML file at path into a MapSource. A missing
// file is an empty source.
func fileSource(path string) (MapSource, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return MapSource{}, nil
	}
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return MapSource(raw), nil
}
