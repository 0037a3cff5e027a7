package config

import "github.com/kelseyhightower/envconfig"

// EnvPrefix is the prefix of environment overrides, e.g. SCOUT_YAZI_PATH.
const EnvPrefix = "SCOUT"

// envSettings holds environment overrides. Pointer fields stay nil when the
// variable is unset so they do not shadow the config file. Policies stay
// strings so Resolve reports bad values the same way for every source.
type envSettings struct {
	YaziPath         *string `envconfig:"YAZI_PATH"`
	YaziConfigPath   *string `envconfig:"YAZI_CONFIG_PATH"`
	Maximize         *bool   `envconfig:"MAXIMIZE"`
	Sidebar          *string `envconfig:"SIDEBAR"`
	Panel            *string `envconfig:"PANEL"`
	SecondarySidebar *string `envconfig:"SECONDARY_SIDEBAR"`
	UnfocusedToggle  *string `envconfig:"UNFOCUSED_TOGGLE"`
	AutoHideSidebar  *bool   `envconfig:"AUTO_HIDE_SIDEBAR"`
	AutoHidePanel    *bool   `envconfig:"AUTO_HIDE_PANEL"`
}

// EnvSource reads overrides from the environment.
func EnvSource(prefix string) (MapSource, error) {
	var e envSettings
	if err := envconfig.Process(prefix, &e); err != nil {
		return nil, err
	}

	m := MapSource{}
	putString(m, KeyYaziPath, e.YaziPath)
	putString(m, KeyYaziConfigPath, e.YaziConfigPath)
	putString(m, KeyUnfocusedToggle, e.UnfocusedToggle)
	putBool(m, KeyMaximize, e.Maximize)
	putBool(m, KeyAutoHideSidebar, e.AutoHideSidebar)
	putBool(m, KeyAutoHidePanel, e.AutoHidePanel)
	putString(m, KeySidebar, e.Sidebar)
	putString(m, KeyPanel, e.Panel)
	putString(m, KeySecondarySidebar, e.SecondarySidebar)
	return m, nil
}

func putString(m MapSource, key string, v *string) {
	if v != nil {
		m[key] = *v
	}
}

func putBool(m MapSource, key string, v *bool) {
	if v != nil {
		m[key] = *v
	}
}
