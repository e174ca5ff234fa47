//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Ingest builds the CLI and ingests input into canon_output/, skipping
// documents already in the manifest.
func Ingest(input string) error {
	mg.Deps(Build, Init)
	fmt.Printf("[ingest] %s -> %s\n", input, canonDir)
	return runBinary("ingest", input, "--output-dir", canonDir, "--skip-existing")
}

// Index loads canon_output/ claims and equations into the SQLite index.
func Index() error {
	mg.Deps(Build)
	fmt.Println("[index] Loading claims into", canonDir+"/index")
	return runBinary("index", "store", "--output-dir", canonDir)
}

func runBinary(args ...string) error {
	bin := "./" + binDir + "/" + binName
	if err := sh.RunV(bin, args...); err != nil {
		return fmt.Errorf("%s %s: %w", binName, args[0], err)
	}
	return nil
}
