// Package report renders human-readable accounts of patches: per-kind
// summaries, per-operation listings and inline string diffs. It is a
// diagnostic layer over the delta package and never modifies documents.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"

	delta "github.com/MysMon/delta-sculptor"
)

// maxValueWidth bounds rendered operation values.
const maxValueWidth = 60

// Summary aggregates what a patch does.
type Summary struct {
	// Total is the number of operations.
	Total int

	// Kinds counts operations per kind.
	Kinds map[delta.Op]int

	// Batched counts operations carrying a count or a multi-element
	// run.
	Batched int

	// MaxDepth is the deepest pointer touched, in tokens.
	MaxDepth int

	// Prefixes lists the distinct top-level tokens touched, sorted.
	Prefixes []string
}

// Analyze computes a Summary for a patch.
func Analyze(p delta.Patch) Summary {
	s := Summary{
		Total: len(p),
		Kinds: make(map[delta.Op]int),
	}

	prefixes := make(map[string]bool)

	for _, op := range p {
		s.Kinds[op.Op]++

		if op.Count > 1 {
			s.Batched++
		} else if op.Op == delta.OpAdd {
			if run, ok := op.Value.([]any); ok && len(run) > 1 {
				s.Batched++
			}
		}

		ptr, err := delta.ParsePointer(op.Path)
		if err != nil {
			continue
		}

		if len(ptr) > s.MaxDepth {
			s.MaxDepth = len(ptr)
		}

		if len(ptr) > 0 {
			prefixes[ptr[0]] = true
		}
	}

	for k := range prefixes {
		s.Prefixes = append(s.Prefixes, k)
	}
	sort.Strings(s.Prefixes)

	return s
}

// String renders the summary as a single line.
func (s Summary) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d ops", s.Total)

	kinds := make([]string, 0, len(s.Kinds))
	for k := range s.Kinds {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	for _, k := range kinds {
		fmt.Fprintf(&b, ", %d %s", s.Kinds[delta.Op(k)], k)
	}

	if s.Batched > 0 {
		fmt.Fprintf(&b, ", %d batched", s.Batched)
	}

	fmt.Fprintf(&b, ", depth %d", s.MaxDepth)

	return b.String()
}

// opColors maps each kind to its rendering color.
var opColors = map[delta.Op]func(format string, a ...interface{}) string{
	delta.OpAdd:     color.New(color.FgGreen).SprintfFunc(),
	delta.OpRemove:  color.New(color.FgRed).SprintfFunc(),
	delta.OpReplace: color.New(color.FgYellow).SprintfFunc(),
	delta.OpMove:    color.New(color.FgCyan).SprintfFunc(),
	delta.OpCopy:    color.New(color.FgBlue).SprintfFunc(),
	delta.OpTest:    color.New(color.FgMagenta).SprintfFunc(),
}

func paint(op delta.Op, colorize bool, format string, a ...interface{}) string {
	if colorize {
		if f, ok := opColors[op]; ok {
			return f(format, a...)
		}
	}

	return fmt.Sprintf(format, a...)
}

// Render writes one line per operation followed by a summary footer.
func Render(w io.Writer, p delta.Patch, colorize bool) {
	for _, op := range p {
		fmt.Fprintln(w, paint(op.Op, colorize, "%s", opLine(op)))
	}

	fmt.Fprintln(w, Analyze(p).String())
}

func opLine(op delta.Operation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "  %-7s %s", op.Op, op.Path)

	switch op.Op {
	case delta.OpMove, delta.OpCopy:
		fmt.Fprintf(&b, " <- %s", op.From)
	case delta.OpRemove:
		if op.Count > 1 {
			fmt.Fprintf(&b, " (x%d)", op.Count)
		}
	default:
		fmt.Fprintf(&b, " %s", renderValue(op.Value))
	}

	return b.String()
}

func renderValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}

	s := string(data)
	if len(s) > maxValueWidth {
		s = s[:maxValueWidth-3] + "..."
	}

	return s
}

// RenderChange writes the operations of p annotated with the values they
// overwrite in doc, the document in its pre-patch state. String
// replacements are shown as inline diffs.
func RenderChange(w io.Writer, doc any, p delta.Patch, colorize bool) {
	for _, op := range p {
		line := opLine(op)

		if op.Op == delta.OpReplace {
			if prior, err := delta.GetByPointer(doc, op.Path); err == nil {
				line += changeDetail(prior, op.Value, colorize)
			}
		}

		fmt.Fprintln(w, paint(op.Op, colorize, "%s", line))
	}

	fmt.Fprintln(w, Analyze(p).String())
}

func changeDetail(prior, next any, colorize bool) string {
	ps, pok := prior.(string)
	ns, nok := next.(string)

	if pok && nok {
		return " | " + StringDiff(ps, ns, colorize)
	}

	return " (was " + renderValue(prior) + ")"
}

// StringDiff renders an inline character diff between two strings,
// deletions as [-text-] and insertions as {+text+}, colored red and green
// when colorize is set.
func StringDiff(old, new string, colorize bool) string {
	dmp := diffmatchpatch.New()

	diffs := dmp.DiffMain(old, new, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	del := color.New(color.FgRed).SprintFunc()
	ins := color.New(color.FgGreen).SprintFunc()

	var b strings.Builder

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			if colorize {
				b.WriteString(del("[-" + d.Text + "-]"))
			} else {
				b.WriteString("[-" + d.Text + "-]")
			}
		case diffmatchpatch.DiffInsert:
			if colorize {
				b.WriteString(ins("{+" + d.Text + "+}"))
			} else {
				b.WriteString("{+" + d.Text + "+}")
			}
		default:
			b.WriteString(d.Text)
		}
	}

	return b.String()
}
