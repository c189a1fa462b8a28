package main

import (
	"fmt"

	delta "github.com/MysMon/delta-sculptor"
	"github.com/MysMon/delta-sculptor/debug"

	"github.com/scott-cotton/cli"
)

func runInvert(cfg *InvertConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Invert.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: invert takes a document and a patch", cli.ErrUsage)
	}
	doc, err := cfg.readDoc(args[0])
	if err != nil {
		return err
	}
	patch, err := cfg.readPatch(args[1])
	if err != nil {
		return err
	}
	inv, err := delta.CreateInversePatch(doc, patch, cfg.options())
	if err != nil {
		return err
	}
	if debug.Inverse() {
		debug.LogAny(inv)
	}
	return cfg.writeDoc(cc.Out, inv)
}
