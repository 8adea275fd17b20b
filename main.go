// Command tailforge is the batch driver of SPEC_FULL.md §C.8: it parses a
// declaration-notation file (C.2), runs internal/layout over every
// declaration the module contains, and writes the resulting flat
// code+ROM object to a file. Mirrors the teacher's root main.go.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"tailforge/grammar"
	"tailforge/internal/config"
	tferrors "tailforge/internal/errors"
	"tailforge/internal/layout"
	"tailforge/internal/module"
)

// romStart is the fixed ROM-segment origin the flat object assumes, placed
// after a generous code-segment ceiling so declaration/import/string pool
// addresses never collide with layout.CodeStart's code offsets.
const romStart uint64 = 0x100000

func main() {
	configPath := flag.String("config", "tailforge.yaml", "path to the cost/heap configuration document")
	outPath := flag.String("o", "", "output object path (defaults to <input>.tfobj)")
	verbose := flag.Bool("v", false, "print the parsed module before planning")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: tailforge [-config tailforge.yaml] [-o out.tfobj] <file.tf>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	out := *outPath
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".tfobj"
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		color.Red("Failed to load config: %s", err)
		os.Exit(1)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("Failed to read %s: %s", path, err)
		os.Exit(1)
	}

	program, err := grammar.ParseFile(path)
	if err != nil {
		os.Exit(1) // grammar.ParseFile already reported the syntax error
	}
	if *verbose {
		fmt.Print(program.String())
	}

	m, err := module.FromProgram(program)
	if err != nil {
		color.Red("Failed to lower %s: %s", path, err)
		os.Exit(1)
	}

	result, err := layout.Build(m, romStart, cfg.BumpContract(), cfg.Weights())
	if err != nil {
		if rendered, ok := tferrors.Render(path, string(source), err); ok {
			fmt.Print(rendered)
		} else {
			color.Red("Failed to plan %s: %s", path, err)
		}
		os.Exit(1)
	}

	if err := writeObject(out, result); err != nil {
		color.Red("Failed to write %s: %s", out, err)
		os.Exit(1)
	}

	for _, d := range result.Declarations {
		fmt.Printf("decl %-16s offset=0x%04x cost=%d\n", d.Name, d.CodeOffset, d.Cost)
	}
	color.Green("✅ wrote %s (%d bytes code, %d bytes ROM)", out, len(result.Code), len(result.ROM))
}

// writeObject serializes result as an 8-byte little-endian code length,
// followed by the code segment, followed by the ROM segment — a minimal
// flat container deliberately short of a loader-ready Mach-O image
// (out of scope per spec.md's executable-packaging Non-goal).
func writeObject(path string, result *layout.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var header [8]byte
	binary.LittleEndian.PutUint64(header[:], uint64(len(result.Code)))
	if _, err := f.Write(header[:]); err != nil {
		return err
	}
	if _, err := f.Write(result.Code); err != nil {
		return err
	}
	_, err = f.Write(result.ROM)
	return err
}
