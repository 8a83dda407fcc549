package valueobjects

import (
	"errors"
	"fmt"
	"strings"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ThemePreferenceKey is the single persisted preference key.
const ThemePreferenceKey = "luaStyleTheme"

var ErrUnknownTheme = errors.New("unknown theme")

func DefaultTheme() Theme {
	return ThemeLight
}

func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTheme, s)
	}
}

func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

func (t Theme) String() string {
	return string(t)
}
