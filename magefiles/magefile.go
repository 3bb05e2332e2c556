//go:build mage

// Package main contains Mage build targets for rhino-harvest developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// dataDirs are the default output locations from the pipeline config.
var dataDirs = []string{
	"data/raw/discourse/records",
	"data/raw/github/records",
	"data/catalog",
	".secrets",
}

// Init creates the default output and secrets directories.
func Init() error {
	for _, dir := range dataDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	fmt.Printf("Created %s\n", strings.Join(dataDirs, ", "))
	return nil
}

// buildTags enables FTS5 in mattn/go-sqlite3, which the catalog requires.
const buildTags = "sqlite_fts5"

const (
	binDir  = "bin"
	binName = "rhino-harvest"
	cmdPkg  = "./cmd/rhino-harvest"
)

// Build compiles rhino-harvest into bin/, stamping the git version.
func Build() error {
	out := filepath.Join(binDir, binName)
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	ldflags := "-X main.version=" + version
	if err := sh.RunV("go", "build", "-tags", buildTags, "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return err
	}
	fmt.Println(out, version)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "-tags", buildTags, "./...")
}

// Stats reports non-blank Go lines per package, split into production and
// test code, followed by totals.
func Stats() error {
	type lines struct{ prod, test int }
	perPkg := make(map[string]*lines)

	err := filepath.WalkDir(".", func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != "." && (strings.HasPrefix(d.Name(), "_") || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		n, err := nonBlankLines(path)
		if err != nil {
			return err
		}
		pkg := filepath.Dir(path)
		if perPkg[pkg] == nil {
			perPkg[pkg] = &lines{}
		}
		if strings.HasSuffix(path, "_test.go") {
			perPkg[pkg].test += n
		} else {
			perPkg[pkg].prod += n
		}
		return nil
	})
	if err != nil {
		return err
	}

	pkgs := make([]string, 0, len(perPkg))
	for pkg := range perPkg {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)

	var total lines
	fmt.Printf("%-28s %8s %8s\n", "package", "prod", "test")
	for _, pkg := range pkgs {
		l := perPkg[pkg]
		fmt.Printf("%-28s %8d %8d\n", pkg, l.prod, l.test)
		total.prod += l.prod
		total.test += l.test
	}
	fmt.Printf("%-28s %8d %8d\n", "total", total.prod, total.test)
	return nil
}

func nonBlankLines(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	n := 0
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n, nil
}

// binary returns the path of the built CLI, building it first.
func binary() string {
	mg.Deps(Build)
	return filepath.Join(binDir, binName)
}
