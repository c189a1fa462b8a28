package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, &cli.Opt{
		Name:        "o",
		Description: "output file (default stdout)",
		Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
	})

	return cli.NewCommandAt(&cfg.Main, "delta").
		WithSynopsis("delta [opts] command [opts] args").
		WithDescription("delta diffs, patches, and reverts json or yaml documents.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return deltaMain(cfg, cc, args)
		}).
		WithSubs(
			DiffCommand(cfg),
			ApplyCommand(cfg),
			InvertCommand(cfg),
			GetCommand(cfg),
			ExpandCommand(cfg))
}

func DiffCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DiffConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("diff").
		WithAliases("d", "di").
		WithSynopsis("diff [opts] <old> <new>").
		WithDescription("compute a patch that rewrites old into new").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return runDiff(cfg, cc, args)
		})
	cfg.Diff = cmd
	return cmd
}

func ApplyCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ApplyConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("apply").
		WithAliases("a", "ap").
		WithSynopsis("apply [opts] <doc> <patch>").
		WithDescription("apply a patch to a document").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return runApply(cfg, cc, args)
		})
	cfg.Apply = cmd
	return cmd
}

func InvertCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &InvertConfig{MainConfig: mainCfg}
	cmd := cli.NewCommand("invert").
		WithAliases("i", "inv").
		WithSynopsis("invert <doc> <patch>").
		WithDescription("compute the inverse of a patch against its pre-image").
		WithRun(func(cc *cli.Context, args []string) error {
			return runInvert(cfg, cc, args)
		})
	cfg.Invert = cmd
	return cmd
}

func GetCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &GetConfig{MainConfig: mainCfg}
	cmd := cli.NewCommand("get").
		WithAliases("g", "ge").
		WithSynopsis("get <pointer> [doc]").
		WithDescription("resolve a json pointer against a document").
		WithRun(func(cc *cli.Context, args []string) error {
			return runGet(cfg, cc, args)
		})
	cfg.Get = cmd
	return cmd
}

func ExpandCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ExpandConfig{MainConfig: mainCfg}
	cmd := cli.NewCommand("expand").
		WithAliases("x", "ex").
		WithSynopsis("expand [patch]").
		WithDescription("rewrite batched operations into elementary ones").
		WithRun(func(cc *cli.Context, args []string) error {
			return runExpand(cfg, cc, args)
		})
	cfg.Expand = cmd
	return cmd
}
