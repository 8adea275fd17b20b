// Command tailforge-plan is the single-declaration debug tool of
// SPEC_FULL.md §C.8, mirroring the teacher's cmd/kanso-cli: given one
// declaration's initial/goal description, it runs only internal/planner
// and prints the chosen transition sequence, its total cost, and the
// number of A* nodes explored — the reporting spec.md §8's concrete
// scenarios call for.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"tailforge/grammar"
	"tailforge/internal/config"
	"tailforge/internal/cost"
	tferrors "tailforge/internal/errors"
	"tailforge/internal/module"
	"tailforge/internal/planner"
	"tailforge/internal/pool"
)

func main() {
	configPath := flag.String("config", "tailforge.yaml", "path to the cost/heap configuration document")
	declName := flag.String("decl", "", "declaration to plan (defaults to the module's only declaration)")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: tailforge-plan [-config tailforge.yaml] [-decl name] <file.tf>")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		color.Red("Failed to load config: %s", err)
		os.Exit(1)
	}

	path := flag.Arg(0)
	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("Failed to read %s: %s", path, err)
		os.Exit(1)
	}

	program, err := grammar.ParseFile(path)
	if err != nil {
		os.Exit(1) // grammar.ParseFile already reported the syntax error
	}

	m, err := module.FromProgram(program)
	if err != nil {
		color.Red("Failed to lower %s: %s", path, err)
		os.Exit(1)
	}

	decl, err := pickDeclaration(m, *declName)
	if err != nil {
		color.Red("%s", err)
		os.Exit(1)
	}

	romLayout := pool.BuildLayout(m, 0)
	resolver := pool.NewResolver(m, romLayout)

	initial, err := resolver.Initial(decl)
	if err != nil {
		color.Red("Failed to build initial state: %s", err)
		os.Exit(1)
	}
	goal, err := resolver.Goal(decl)
	if err != nil {
		color.Red("Failed to build goal state: %s", err)
		os.Exit(1)
	}

	transitions, nodesExplored, err := planner.PlanWithStats(initial, goal, cfg.BumpContract(), cfg.Weights())
	if err != nil {
		reportErr := err
		var unreachable *planner.UnreachableError
		if errors.As(err, &unreachable) {
			ce := tferrors.NewUnreachableGoal(decl.Name, unreachable.NodesExplored, tferrors.Position{})
			reportErr = ce
		}
		if rendered, ok := tferrors.Render(path, string(source), reportErr); ok {
			fmt.Print(rendered)
		} else {
			color.Red("%s (%d nodes explored)", err, nodesExplored)
		}
		os.Exit(1)
	}

	var total uint64
	for i, t := range transitions {
		fmt.Printf("%d: %s\n", i, t.String())
		total += cost.Cost(t, cfg.BumpContract(), cfg.Weights())
	}
	color.Green("✅ %d transitions, total cost %d, %d nodes explored", len(transitions), total, nodesExplored)
}

func pickDeclaration(m *module.Module, name string) (module.Declaration, error) {
	if name == "" {
		if len(m.Declarations) != 1 {
			return module.Declaration{}, fmt.Errorf("module has %d declarations; pass -decl to pick one", len(m.Declarations))
		}
		return m.Declarations[0], nil
	}
	for _, d := range m.Declarations {
		if d.Name == name {
			return d, nil
		}
	}
	return module.Declaration{}, fmt.Errorf("no declaration named %q", name)
}
