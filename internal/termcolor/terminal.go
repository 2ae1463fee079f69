package termcolor

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ColorMode is the --color setting.
type ColorMode int

const (
	ModeAuto ColorMode = iota
	ModeAlways
	ModeNever
)

var modeNames = [...]string{ModeAuto: "auto", ModeAlways: "always", ModeNever: "never"}

func (m ColorMode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return modeNames[ModeAuto]
	}
	return modeNames[m]
}

func ParseMode(v string) (ColorMode, error) {
	s := strings.ToLower(strings.TrimSpace(v))
	if s == "" {
		return ModeAuto, nil
	}
	for m, name := range modeNames {
		if name == s {
			return ColorMode(m), nil
		}
	}
	return ModeAuto, fmt.Errorf("unknown color mode: %s", v)
}

// Profile is the richest color encoding the terminal understands.
type Profile int

const (
	ProfileBasic8 Profile = iota
	ProfileANSI256
	ProfileTrueColor
)

// Scheme is the terminal background brightness.
type Scheme int

const (
	SchemeUnknown Scheme = iota
	SchemeDark
	SchemeLight
)

// Terminal describes how output to one stream should be colored.
type Terminal struct {
	Color   bool
	Profile Profile
	Scheme  Scheme
}

// Probe resolves mode against stdout and the environment. An explicit
// always/never wins; auto consults the environment, then the TTY check.
func Probe(mode ColorMode, stdout *os.File, env map[string]string) Terminal {
	if mode == ModeAuto {
		mode = DetectMode(stdout, env)
	}
	return Terminal{
		Color:   Enabled(mode, stdout),
		Profile: DetectProfile(env),
		Scheme:  DetectScheme(env),
	}
}

// EnvMap turns os.Environ style entries into a map. Entries without "="
// map to the empty string.
func EnvMap(values []string) map[string]string {
	env := make(map[string]string, len(values))
	for _, entry := range values {
		if entry == "" {
			continue
		}
		k, v, _ := strings.Cut(entry, "=")
		env[k] = v
	}
	return env
}

// modeRules are evaluated in order and the first hit decides; disabling
// variables come first so that they beat the force flags.
var modeRules = []struct {
	key  string
	hit  func(string) bool
	mode ColorMode
}{
	{"TERM", func(v string) bool { return strings.EqualFold(v, "dumb") }, ModeNever},
	{"NO_COLOR", func(v string) bool { return v != "" }, ModeNever},
	{"CLICOLOR", func(v string) bool { return v == "0" }, ModeNever},
	{"CLICOLOR_FORCE", forced, ModeAlways},
	{"FORCE_COLOR", forced, ModeAlways},
}

// DetectMode decides auto mode from TERM, NO_COLOR, CLICOLOR, CLICOLOR_FORCE
// and FORCE_COLOR, falling back to whether stdout is a terminal.
func DetectMode(stdout *os.File, env map[string]string) ColorMode {
	if stdout == nil {
		return ModeNever
	}
	for _, r := range modeRules {
		if r.hit(strings.TrimSpace(env[r.key])) {
			return r.mode
		}
	}
	if isTerminal(stdout) {
		return ModeAlways
	}
	return ModeNever
}

// Enabled reports whether to emit escape sequences. Auto only looks at
// stdout; stderr is not considered.
func Enabled(mode ColorMode, stdout *os.File) bool {
	switch mode {
	case ModeAlways:
		return true
	case ModeNever:
		return false
	}
	return isTerminal(stdout)
}

// DetectProfile reads COLORTERM for 24-bit support and TERM for 256 colors.
func DetectProfile(env map[string]string) Profile {
	ct := strings.ToLower(env["COLORTERM"])
	for _, marker := range []string{"truecolor", "24bit", "24-bit"} {
		if strings.Contains(ct, marker) {
			return ProfileTrueColor
		}
	}
	if strings.Contains(strings.ToLower(env["TERM"]), "256color") {
		return ProfileANSI256
	}
	return ProfileBasic8
}

// DetectScheme reads the background index from COLORFGBG ("fg;bg" or
// "fg;default;bg"); indexes 7 and above are light. Without it a TERM name
// containing "light" counts as light, and everything else as dark.
func DetectScheme(env map[string]string) Scheme {
	if raw := strings.TrimSpace(env["COLORFGBG"]); raw != "" {
		parts := strings.Split(raw, ";")
		bg := strings.TrimSpace(parts[len(parts)-1])
		if bg == "" && len(parts) > 1 {
			bg = strings.TrimSpace(parts[len(parts)-2])
		}
		if n, err := strconv.Atoi(bg); err == nil && n >= 0 {
			if n >= 7 {
				return SchemeLight
			}
			return SchemeDark
		}
	}
	if strings.Contains(strings.ToLower(env["TERM"]), "light") {
		return SchemeLight
	}
	return SchemeDark
}

func isTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

func forced(v string) bool { return v != "" && v != "0" }
