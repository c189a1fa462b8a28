package main

import (
	"fmt"

	"github.com/scott-cotton/cli"
)

func runExpand(cfg *ExpandConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Expand.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) > 1 {
		return fmt.Errorf("%w: expand takes one patch", cli.ErrUsage)
	}
	file := "-"
	if len(args) == 1 {
		file = args[0]
	}
	patch, err := cfg.readPatch(file)
	if err != nil {
		return err
	}
	return cfg.writeDoc(cc.Out, patch.Expand())
}
