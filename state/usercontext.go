package state

// DefaultLanguage and DefaultTimezone are the zero-value defaults applied
// when a UserContext is constructed without explicit overrides (§3.4).
const (
	DefaultLanguage = "zh-CN"
	DefaultTimezone = "Asia/Shanghai"
)

// UserContext carries per-request caller identity, locale, and preferences.
// Preferences holds the optional well-known keys "model" (a model-class
// hint string) and "temperature" (a float64 override), read by
// PreferredModel and PreferredTemperature. None of the built-in workers
// calls these; each uses its own fixed model settings.
type UserContext struct {
	UserID      string
	SessionID   string
	Language    string
	Timezone    string
	Permissions map[string]struct{}
	Preferences map[string]any
}

// NewUserContext returns a UserContext with §3.4 defaults applied:
// DefaultLanguage, DefaultTimezone and empty Permissions/Preferences maps.
// WithDefaults fills the same defaults into a caller-built UserContext.
func NewUserContext() UserContext {
	return UserContext{
		Language:    DefaultLanguage,
		Timezone:    DefaultTimezone,
		Permissions: map[string]struct{}{},
		Preferences: map[string]any{},
	}
}

// WithDefaults returns a copy of u with empty Language/Timezone filled in.
func (u UserContext) WithDefaults() UserContext {
	if u.Language == "" {
		u.Language = DefaultLanguage
	}
	if u.Timezone == "" {
		u.Timezone = DefaultTimezone
	}
	if u.Permissions == nil {
		u.Permissions = map[string]struct{}{}
	}
	if u.Preferences == nil {
		u.Preferences = map[string]any{}
	}
	return u
}

// HasPermission reports whether p is present in u.Permissions.
func (u UserContext) HasPermission(p string) bool {
	_, ok := u.Permissions[p]
	return ok
}

// PreferredModel returns the "model" preference hint, if any.
func (u UserContext) PreferredModel() (string, bool) {
	v, ok := u.Preferences["model"]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// PreferredTemperature returns the "temperature" preference override, if any.
func (u UserContext) PreferredTemperature() (float64, bool) {
	v, ok := u.Preferences["temperature"]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}
