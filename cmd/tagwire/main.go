// Copyright (C) 2020 Michael J. Fromberger. All Rights Reserved.

// Command tagwire inspects and round-trips messages encoded with the
// tagwire wire format, following the layout and subcommand style of
// krypt.co's own CLI tools (github.com/kryptco/kr).
package main

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/op/go-logging"
	"github.com/urfave/cli"

	"github.com/creachadair/tagwire/value"
	"github.com/creachadair/tagwire/wire"
	"github.com/creachadair/tagwire/wireio"
)

var log = logging.MustGetLogger("tagwire")

func main() {
	logging.SetFormatter(logging.MustStringFormatter(
		`%{time:15:04:05.000} %{level:.4s} %{message}`,
	))

	app := cli.NewApp()
	app.Name = "tagwire"
	app.Usage = "inspect and round-trip tagwire-encoded messages"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "variable",
			Usage: "use the variable-width integer and length codec instead of fixed-width",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "dump",
			Usage:     "decode a self-describing message and print it as a tree",
			ArgsUsage: "[file]",
			Action:    runDump,
		},
		{
			Name:      "roundtrip",
			Usage:     "decode a self-describing message and re-encode it, failing if the bytes differ",
			ArgsUsage: "[file]",
			Action:    runRoundtrip,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func configFor(c *cli.Context) wire.Config {
	if c.GlobalBool("variable") {
		return wire.VariableConfig
	}
	return wire.FixedConfig
}

func readInput(c *cli.Context) ([]byte, error) {
	if name := c.Args().First(); name != "" {
		return ioutil.ReadFile(name)
	}
	return io.ReadAll(os.Stdin)
}

func runDump(c *cli.Context) error {
	data, err := readInput(c)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	v, err := decodeSelfDescribing(data, configFor(c))
	if err != nil {
		return fmt.Errorf("decoding message: %w", err)
	}
	printTree(os.Stdout, v, 0)
	return nil
}

func runRoundtrip(c *cli.Context) error {
	data, err := readInput(c)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	cfg := configFor(c)
	v, err := decodeSelfDescribing(data, cfg)
	if err != nil {
		return fmt.Errorf("decoding message: %w", err)
	}

	var buf bytes.Buffer
	enc := wire.NewEncoder(wireio.NewBuffer(&buf), cfg)
	if err := value.EncodeSelfDescribing(enc, v); err != nil {
		return fmt.Errorf("re-encoding message: %w", err)
	}
	if !bytes.Equal(data, buf.Bytes()) {
		return fmt.Errorf("roundtrip mismatch: got %d bytes, want %d bytes", buf.Len(), len(data))
	}
	log.Infof("roundtrip OK, %d bytes", len(data))
	return nil
}

func decodeSelfDescribing(data []byte, cfg wire.Config) (value.Value, error) {
	dec := wire.NewDecoder(wireio.NewSliceReader(data), cfg)
	return value.DecodeSelfDescribing(dec)
}

func printTree(w io.Writer, v value.Value, depth int) {
	indent := func() { fmt.Fprint(w, spaces(depth)) }
	switch v.Kind {
	case value.KindUnit:
		indent()
		fmt.Fprintln(w, "unit")
	case value.KindBool:
		indent()
		fmt.Fprintf(w, "bool %v\n", v.Bool)
	case value.KindChar:
		indent()
		fmt.Fprintf(w, "char %q\n", v.Char)
	case value.KindNumber:
		indent()
		fmt.Fprintf(w, "number(%s) %+v\n", v.Number.Kind, v.Number)
	case value.KindBytes:
		indent()
		fmt.Fprintf(w, "bytes %x\n", v.Bytes)
	case value.KindString:
		indent()
		fmt.Fprintf(w, "string %q\n", v.String)
	case value.KindSequence:
		indent()
		fmt.Fprintf(w, "sequence (%d)\n", len(v.Sequence))
		for _, item := range v.Sequence {
			printTree(w, item, depth+1)
		}
	case value.KindMap:
		indent()
		fmt.Fprintf(w, "map (%d)\n", len(v.Map))
		for _, p := range v.Map {
			printTree(w, p.First, depth+1)
			printTree(w, p.Second, depth+1)
		}
	case value.KindVariant:
		indent()
		fmt.Fprintln(w, "variant")
		printTree(w, v.Variant.First, depth+1)
		printTree(w, v.Variant.Second, depth+1)
	default:
		indent()
		fmt.Fprintf(w, "<unknown kind %d>\n", v.Kind)
	}
}

func spaces(n int) string {
	out := make([]byte, n*2)
	for i := range out {
		out[i] = ' '
	}
	return string(out)
}
