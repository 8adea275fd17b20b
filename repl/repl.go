// Package repl is the interactive planner console of SPEC_FULL.md §C.7,
// grounded on the teacher's repl/repl.go: it reads one declaration module
// at a time, resolves its initial/goal machine-state pair (internal/pool),
// runs internal/planner, and prints the chosen transition sequence. It is
// a development tool for exercising the search engine, not a debugger for
// emitted machine code or the source language.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"tailforge/grammar"
	"tailforge/internal/config"
	tferrors "tailforge/internal/errors"
	"tailforge/internal/module"
	"tailforge/internal/planner"
	"tailforge/internal/pool"
)

const prompt = "tailforge> "

// Start runs the console, reading declaration-notation modules from in and
// writing to out until in reaches EOF. Each input form must be a complete
// `module ... { ... }` block (C.2); the REPL plans every declaration the
// module contains and prints the result for each.
func Start(in io.Reader, out io.Writer, cfg config.Config) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var buf strings.Builder
	depth := 0

	fmt.Fprint(out, prompt)
	for scanner.Scan() {
		line := scanner.Text()
		depth += strings.Count(line, "{") - strings.Count(line, "}")
		buf.WriteString(line)
		buf.WriteString("\n")

		if depth > 0 {
			fmt.Fprint(out, "... ")
			continue
		}

		runForm(out, cfg, buf.String())
		buf.Reset()
		depth = 0
		fmt.Fprint(out, prompt)
	}
}

func runForm(out io.Writer, cfg config.Config, source string) {
	if strings.TrimSpace(source) == "" {
		return
	}

	program, err := grammar.ParseString("<repl>", source)
	if err != nil {
		color.New(color.FgRed).Fprintf(out, "parse error: %s\n", err)
		return
	}

	m, err := module.FromProgram(program)
	if err != nil {
		color.New(color.FgRed).Fprintf(out, "lowering error: %s\n", err)
		return
	}

	romLayout := pool.BuildLayout(m, 0)
	resolver := pool.NewResolver(m, romLayout)

	for _, decl := range m.Declarations {
		planDeclaration(out, cfg, resolver, decl, source)
	}
}

func planDeclaration(out io.Writer, cfg config.Config, resolver *pool.Resolver, decl module.Declaration, source string) {
	color.New(color.Bold).Fprintf(out, "decl %s\n", decl.Name)

	initial, err := resolver.Initial(decl)
	if err != nil {
		color.New(color.FgRed).Fprintf(out, "  initial state error: %s\n", err)
		return
	}
	goal, err := resolver.Goal(decl)
	if err != nil {
		color.New(color.FgRed).Fprintf(out, "  goal state error: %s\n", err)
		return
	}

	transitions, nodesExplored, err := planner.PlanWithStats(initial, goal, cfg.BumpContract(), cfg.Weights())
	if err != nil {
		reportErr := err
		var unreachable *planner.UnreachableError
		if errors.As(err, &unreachable) {
			reportErr = tferrors.NewUnreachableGoal(decl.Name, unreachable.NodesExplored, tferrors.Position{})
		}
		if rendered, ok := tferrors.Render("<repl>", source, reportErr); ok {
			fmt.Fprint(out, rendered)
		} else {
			color.New(color.FgRed).Fprintf(out, "  %s (%d nodes explored)\n", err, nodesExplored)
		}
		return
	}

	for i, t := range transitions {
		fmt.Fprintf(out, "  %d: %s\n", i, t.String())
	}
	color.New(color.FgGreen).Fprintf(out, "  %d transitions\n", len(transitions))
}
