// Command rulectl is the operator-facing admin tool for visaexpert rule
// catalogues: load a catalogue and print a summary, run the structural
// validator, export a catalogue to JSON, fuzzy-search condition keys,
// or drive an interactive text demo of a diagnosis session.
//
// The teacher ships no comparable CLI, so the subcommand dispatch here
// follows plain stdlib flag.FlagSet per-subcommand, the idiomatic
// lightweight alternative to a CLI framework for a handful of verbs.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "load":
		err = runLoad(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "export":
		err = runExport(os.Args[2:])
	case "search":
		err = runSearch(os.Args[2:])
	case "demo":
		err = runDemo(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "rulectl: unknown subcommand %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "rulectl: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `rulectl - visaexpert rule catalogue admin tool

Usage:
  rulectl load    --config PATH
  rulectl validate --config PATH
  rulectl export  --config PATH --out PATH
  rulectl search  --config PATH --query TEXT [--limit N]
  rulectl demo    --config PATH`)
}
