// Command newgame writes a freshly laid out game state.
package main

import (
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"catanrig/internal/config"
	"catanrig/internal/game"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "newgame failed:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("newgame", flag.ContinueOnError)
	out := fs.String("out", "", "output state path (default stdout)")
	seed := fs.Uint64("seed", 0, "random seed (0 picks one)")
	rulesPath := fs.String("rules", "", "YAML rules file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rules, err := config.LoadRules(*rulesPath)
	if err != nil {
		return err
	}
	if *seed == 0 {
		*seed = rand.Uint64()
	}
	state := game.NewGame(game.Palette, rules, rand.New(rand.NewPCG(*seed, *seed)))

	if *out == "" {
		return game.Encode(stdout, state)
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := game.Encode(f, state); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintln(stdout, *out)
	return nil
}
