// Package debug exposes environment-driven debug switches for the delta
// tooling. Each switch is read once at startup from a DELTA_DEBUG_*
// variable holding a boolean value.
package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Diff    bool
	Apply   bool
	Inverse bool
	LCS     bool
	Cache   bool
}

var d *debug

func init() {
	d = &debug{}
	d.Diff = boolEnv("DELTA_DEBUG_DIFF")
	d.Apply = boolEnv("DELTA_DEBUG_APPLY")
	d.Inverse = boolEnv("DELTA_DEBUG_INVERSE")
	d.LCS = boolEnv("DELTA_DEBUG_LCS")
	d.Cache = boolEnv("DELTA_DEBUG_CACHE")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

// Diff reports whether differ tracing is enabled.
func Diff() bool {
	return d.Diff
}

// Apply reports whether executor tracing is enabled.
func Apply() bool {
	return d.Apply
}

// Inverse reports whether inverse-generation tracing is enabled.
func Inverse() bool {
	return d.Inverse
}

// LCS reports whether subsequence tracing is enabled.
func LCS() bool {
	return d.LCS
}

// Cache reports whether cache tracing is enabled.
func Cache() bool {
	return d.Cache
}

// LogAny writes v to stderr as JSON, falling back to fmt on encoding
// failure.
func LogAny(v any) {
	d, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", v)
		return
	}
	os.Stderr.Write(d)
	os.Stderr.Write([]byte{'\n'})
}

// Logf writes a formatted trace line to stderr, rendering container
// arguments as indented JSON.
func Logf(msg string, args ...any) {
	for i := range args {
		switch args[i].(type) {
		case map[string]any, []any:
			d, err := json.MarshalIndent(args[i], "   |", "  ")
			if err != nil {
				args[i] = fmt.Sprintf("%v", args[i])
				continue
			}
			args[i] = string(d)
		}
	}
	fmt.Fprintf(os.Stderr, msg, args...)
}
