package main

import (
	"bytes"
	"fmt"

	delta "github.com/MysMon/delta-sculptor"

	"github.com/scott-cotton/cli"
)

func runGet(cfg *GetConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Get.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: get takes a pointer and an optional document", cli.ErrUsage)
	}
	file := "-"
	if len(args) == 2 {
		file = args[1]
	}
	data, err := cfg.readBytes(file)
	if err != nil {
		return err
	}
	if cfg.Y {
		doc, err := cfg.decode(file, data)
		if err != nil {
			return err
		}
		v, err := delta.GetByPointer(doc, args[0])
		if err != nil {
			return err
		}
		return cfg.writeDoc(cc.Out, v)
	}
	raw, err := delta.GetRaw(data, args[0])
	if err != nil {
		return err
	}
	return cfg.writeJSON(cc.Out, bytes.TrimSpace(raw))
}
