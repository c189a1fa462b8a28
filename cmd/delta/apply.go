package main

import (
	"fmt"
	"os"

	delta "github.com/MysMon/delta-sculptor"
	"github.com/MysMon/delta-sculptor/debug"

	"github.com/scott-cotton/cli"
)

func runApply(cfg *ApplyConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Apply.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: apply takes a document and a patch", cli.ErrUsage)
	}
	doc, err := cfg.readDoc(args[0])
	if err != nil {
		return err
	}
	patch, err := cfg.readPatch(args[1])
	if err != nil {
		return err
	}
	opts := cfg.options()
	var result any
	switch {
	case cfg.Inverse != "":
		var inv delta.Patch
		result, inv, err = delta.ApplyPatchWithInverse(doc, patch, opts)
		if err != nil {
			return err
		}
		if err := cfg.writePatchFile(cfg.Inverse, inv); err != nil {
			return err
		}
	case cfg.Rollback:
		result, err = delta.ApplyPatchWithRollback(doc, patch, opts)
		if err != nil {
			return err
		}
	default:
		result, err = delta.ApplyPatch(doc, patch, opts)
		if err != nil {
			return err
		}
	}
	if debug.Apply() {
		debug.LogAny(result)
	}
	return cfg.writeDoc(cc.Out, result)
}

func (cfg *ApplyConfig) writePatchFile(file string, p delta.Patch) error {
	f, err := os.OpenFile(file, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", file, err)
	}
	defer f.Close()
	return cfg.writeDoc(f, p)
}
