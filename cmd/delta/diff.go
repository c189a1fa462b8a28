package main

import (
	"fmt"

	delta "github.com/MysMon/delta-sculptor"
	"github.com/MysMon/delta-sculptor/debug"
	"github.com/MysMon/delta-sculptor/report"

	"github.com/scott-cotton/cli"
)

func runDiff(cfg *DiffConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Diff.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: diff takes exactly two documents", cli.ErrUsage)
	}
	oldDoc, err := cfg.readDoc(args[0])
	if err != nil {
		return err
	}
	newDoc, err := cfg.readDoc(args[1])
	if err != nil {
		return err
	}
	patch, err := delta.CreatePatch(oldDoc, newDoc, cfg.options())
	if err != nil {
		return err
	}
	if debug.Diff() {
		debug.LogAny(patch)
	}
	w := cc.Out
	switch {
	case cfg.Context:
		report.RenderChange(w, oldDoc, patch, cfg.colorize(w))
	case cfg.Summary:
		report.Render(w, patch, cfg.colorize(w))
	default:
		return cfg.writeDoc(w, patch)
	}
	return nil
}
