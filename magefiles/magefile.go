//go:build mage

// Package main contains Mage build targets for canon-engine developer tooling.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/sh"
)

// canonDir is the default output directory used by the developer targets.
const canonDir = "canon_output"

// canonDirs lists the directories an ingestion run writes under canonDir.
var canonDirs = []string{
	"sources",
	"extracted",
	"canon/claims",
	"canon/equations",
	"canon/sections",
	"manifests",
	"index",
}

// Init creates the canon output directory structure.
func Init() error {
	for _, dir := range canonDirs {
		path := filepath.Join(canonDir, dir)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		fmt.Println("  ", path)
	}
	fmt.Println("Canon directories initialized.")
	return nil
}

const (
	binDir   = "bin"
	binName  = "canon-engine"
	cmdPkg   = "./cmd/canon-engine"
	buildTag = "sqlite_fts5"
)

// Build compiles the CLI binary into bin/ with FTS5 enabled in go-sqlite3.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := goCmd("build", "-tags", buildTag, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests with the FTS5 build tag.
func Test() error {
	if err := goCmd("test", "-tags", buildTag, "./..."); err != nil {
		return fmt.Errorf("go test: %w", err)
	}
	return nil
}

func goCmd(args ...string) error {
	return sh.RunV("go", args...)
}

// Stats prints project metrics: Go production/test line counts and the
// number of canon artifacts currently in canon_output/.
func Stats() error {
	prodLines, testLines, err := countGoLines(".")
	if err != nil {
		return err
	}
	claims, err := countFiles(filepath.Join(canonDir, "canon", "claims"), "_claims.json")
	if err != nil {
		return err
	}
	equations, err := countFiles(filepath.Join(canonDir, "canon", "equations"), "_equations.json")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Claim exports:                  %d\n", claims)
	fmt.Printf("Equation exports:               %d\n", equations)
	return nil
}

// countGoLines counts non-blank lines in production and test Go files,
// skipping the _examples reference tree and hidden directories.
func countGoLines(root string) (prod, test int, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		n := nonBlankLines(data)
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, test, err
}

func nonBlankLines(data []byte) int {
	n := 0
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	return n
}

// countFiles counts regular files in dir with the given suffix. A missing
// directory counts as zero.
func countFiles(dir, suffix string) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			n++
		}
	}
	return n, nil
}
