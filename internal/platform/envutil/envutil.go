// Package envutil reads typed settings from the environment. Unset, blank or
// unparsable values yield the supplied default.
package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func lookup[T any](name string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func String(name string, def string) string {
	return lookup(name, def, func(s string) (string, error) { return s, nil })
}

func Int(name string, def int) int {
	return lookup(name, def, strconv.Atoi)
}

func Int64(name string, def int64) int64 {
	return lookup(name, def, func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
}

func Float(name string, def float64) float64 {
	return lookup(name, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

// Bool accepts 1/0, true/false, yes/no, y/n and on/off in any case.
func Bool(name string, def bool) bool {
	return lookup(name, def, func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "1", "true", "yes", "y", "on":
			return true, nil
		case "0", "false", "no", "n", "off":
			return false, nil
		}
		return false, strconv.ErrSyntax
	})
}

// Seconds reads an integer number of seconds. Non-positive values fall back to def.
func Seconds(name string, def time.Duration) time.Duration {
	if n := Int(name, 0); n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}
