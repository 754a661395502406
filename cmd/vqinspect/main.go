// vqinspect displays information about .vqc artifacts without needing a
// model: header fields, code table statistics, and payload size.
//
// Usage:
//
//	vqinspect [-v] <artifact.vqc> [<artifact.vqc> ...]
//
// Options:
//
//	-v  also print the full code table
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Parthkk90/vqvae/container"
)

var verbose bool

func init() {
	flag.BoolVar(&verbose, "v", false, "print the full code table")
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [-v] <artifact.vqc> [<artifact.vqc> ...]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	exitCode := 0
	for _, path := range flag.Args() {
		if err := inspect(path); err != nil {
			fmt.Fprintf(os.Stderr, "vqinspect: %s: %v\n", path, err)
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

func inspect(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	a, err := container.Unmarshal(data)
	if err != nil {
		return err
	}

	fmt.Printf("%s:\n", path)
	fmt.Printf("  shape:         %v\n", a.Shape)
	fmt.Printf("  symbol count:  %d\n", a.SymbolCount)
	fmt.Printf("  alphabet size: %d\n", len(a.CodeTable))
	fmt.Printf("  bit length:    %d (%d payload bytes)\n", a.BitLength, len(a.Payload))
	fmt.Printf("  payload codec: %s\n", a.PayloadCodec)
	fmt.Printf("  container:     %d bytes\n", len(data))

	// Bits per symbol against the fixed-width baseline.
	fixedBits := 1
	for 1<<fixedBits < len(a.CodeTable) {
		fixedBits++
	}
	fmt.Printf("  bits/symbol:   %.3f (fixed-width baseline %d)\n",
		float64(a.BitLength)/float64(a.SymbolCount), fixedBits)

	if verbose {
		fmt.Printf("  code table:\n")
		for _, s := range a.CodeTable.Symbols() {
			fmt.Printf("    %6d  %s\n", s, a.CodeTable[s].String())
		}
	}
	return nil
}
