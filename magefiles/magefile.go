//go:build mage

// Package main contains Mage build targets for lectic developer tooling.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "lectic"
	cmdPkg  = "./cmd/lectic"
)

// ldflags stamps the version from `git describe`, falling back to "dev".
func ldflags() string {
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || v == "" {
		v = "dev"
	}
	return fmt.Sprintf("-X main.version=%s", v)
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-ldflags", ldflags(), "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Install puts lectic in $GOBIN.
func Install() error {
	return sh.RunV("go", "install", "-ldflags", ldflags(), cmdPkg)
}

// Test runs the unit tests. go-sqlite3 needs cgo.
func Test() error {
	return sh.RunWithV(map[string]string{"CGO_ENABLED": "1"}, "go", "test", "./...")
}

// Fuzz runs the document parser fuzzer for a short while.
func Fuzz() error {
	return sh.RunV("go", "test", "-run=^$", "-fuzz=FuzzParse", "-fuzztime=30s", "./internal/lectic")
}

// Lint runs go vet over the module.
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs Lint and Test.
func Check() {
	mg.SerialDeps(Lint, Test)
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}

// Stats prints Go production and test line counts per package.
func Stats() error {
	prod := map[string]int{}
	test := map[string]int{}
	err := filepath.WalkDir(".", func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			switch d.Name() {
			case ".git", "_examples", "magefiles", binDir:
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		n, err := countLines(path)
		if err != nil {
			return err
		}
		pkg := filepath.Dir(path)
		if strings.HasSuffix(path, "_test.go") {
			test[pkg] += n
		} else {
			prod[pkg] += n
		}
		return nil
	})
	if err != nil {
		return err
	}

	var prodTotal, testTotal int
	for pkg, n := range prod {
		fmt.Printf("%-28s %6d prod %6d test\n", pkg, n, test[pkg])
		prodTotal += n
		testTotal += test[pkg]
	}
	fmt.Printf("%-28s %6d prod %6d test\n", "total", prodTotal, testTotal)
	return nil
}

// countLines counts non-blank lines in a file.
func countLines(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	n := 0
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	return n, sc.Err()
}
