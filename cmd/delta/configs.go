package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	delta "github.com/MysMon/delta-sculptor"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
	"github.com/tidwall/pretty"
)

type MainConfig struct {
	J bool `cli:"name=j aliases=json desc='do i/o in json'"`
	Y bool `cli:"name=y aliases=yaml desc='do i/o in yaml'"`

	Pretty bool `cli:"name=pretty desc='indent json output'"`
	Color  bool `cli:"name=color desc='colorize json output'"`

	Move       bool `cli:"name=move aliases=m desc='detect moved array elements'"`
	Batch      bool `cli:"name=batch desc='fold runs of array edits into batched operations'"`
	BatchSize  int  `cli:"name=batchSize desc='max edits folded into one batched operation'"`
	Depth      int  `cli:"name=depth desc='max nesting depth accepted in documents'"`
	NoValidate bool `cli:"name=novalidate desc='skip patch validation'"`
	Verify     bool `cli:"name=verify desc='check inverse patches by replaying them'"`

	Out      string
	CloseOut func() error

	Main *cli.Command
}

func (cfg *MainConfig) options() *delta.Options {
	var opts []delta.Option
	if cfg.Move {
		opts = append(opts, delta.WithMoveDetection())
	}
	if cfg.Batch || cfg.BatchSize > 0 {
		opts = append(opts, delta.WithBatching(cfg.BatchSize))
	}
	if cfg.Depth > 0 {
		opts = append(opts, delta.WithMaxDepth(cfg.Depth))
	}
	if cfg.NoValidate {
		opts = append(opts, delta.WithoutValidation())
	}
	if cfg.Verify {
		opts = append(opts, delta.WithInverseValidation())
	}
	return delta.NewOptions(opts...)
}

// readBytes reads a file argument, with "-" standing for stdin.
func (cfg *MainConfig) readBytes(file string) ([]byte, error) {
	if file == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("error reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("could not read %q: %w", file, err)
	}
	return data, nil
}

func (cfg *MainConfig) decode(file string, data []byte) (any, error) {
	var v any
	if cfg.Y {
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("error decoding %s: %w", file, err)
		}
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", file, err)
	}
	return v, nil
}

func (cfg *MainConfig) readDoc(file string) (any, error) {
	data, err := cfg.readBytes(file)
	if err != nil {
		return nil, err
	}
	return cfg.decode(file, data)
}

func (cfg *MainConfig) readPatch(file string) (delta.Patch, error) {
	data, err := cfg.readBytes(file)
	if err != nil {
		return nil, err
	}
	if cfg.Y {
		// Operation absence tracking only runs through the json
		// decoder, so yaml patches go through a json round trip.
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("error decoding %s: %w", file, err)
		}
		data, err = json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("error decoding %s: %w", file, err)
		}
	}
	p, err := delta.DecodePatch(data)
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", file, err)
	}
	return p, nil
}

// writeDoc encodes v on w in the configured output format. Values with
// custom json marshalers control their own wire shape, so yaml output
// goes through a json round trip first.
func (cfg *MainConfig) writeDoc(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}
	if cfg.Y {
		var plain any
		if err := json.Unmarshal(data, &plain); err != nil {
			return fmt.Errorf("error encoding result: %w", err)
		}
		out, err := yaml.Marshal(plain)
		if err != nil {
			return fmt.Errorf("error encoding result: %w", err)
		}
		_, err = w.Write(out)
		return err
	}
	return cfg.writeJSON(w, data)
}

func (cfg *MainConfig) writeJSON(w io.Writer, data []byte) error {
	if cfg.Pretty {
		data = pretty.Pretty(data)
	} else {
		data = append(data, '\n')
	}
	if cfg.colorize(w) {
		data = pretty.Color(data, nil)
	}
	_, err := w.Write(data)
	return err
}

func (cfg *MainConfig) colorize(w io.Writer) bool {
	if cfg.Color {
		return true
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

func (cfg *MainConfig) outOpt(cc *cli.Context, a string) (any, error) {
	cfg.Out = a
	if a == "-" {
		return nil, nil
	}
	f, err := os.OpenFile(cfg.Out, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	cc.Out = f
	cfg.CloseOut = f.Close
	return nil, nil
}

type DiffConfig struct {
	*MainConfig

	Summary bool `cli:"name=summary aliases=s desc='print a change summary instead of a patch'"`
	Context bool `cli:"name=context aliases=c desc='print a change report with prior values'"`

	Diff *cli.Command
}

type ApplyConfig struct {
	*MainConfig

	Rollback bool   `cli:"name=rollback desc='restore the document when any operation fails'"`
	Inverse  string `cli:"name=inverse aliases=i desc='write an inverse patch to this file'"`

	Apply *cli.Command
}

type InvertConfig struct {
	*MainConfig

	Invert *cli.Command
}

type GetConfig struct {
	*MainConfig

	Get *cli.Command
}

type ExpandConfig struct {
	*MainConfig

	Expand *cli.Command
}
