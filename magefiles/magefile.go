//go:build mage

// Package main contains Mage build targets for outreach developer tooling.
// See docs/ARCHITECTURE.md § Developer Tooling.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
	"github.com/spf13/viper"

	"github.com/pdiddy/reviewer-outreach/internal/config"
	"github.com/pdiddy/reviewer-outreach/internal/profile"
)

// projectDirs lists the working directories the pipeline expects.
var projectDirs = []string{
	"config",
	"data",
	".secrets",
}

const (
	configPath  = "config/config.yaml"
	profilePath = "config/user_profile.yaml"
)

// Init creates the project directories, a settings file holding every default,
// and a starter profile. Existing files are left alone.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	if err := os.WriteFile(filepath.Join(".secrets", ".gitkeep"), nil, 0o644); err != nil {
		return err
	}

	v := viper.New()
	config.SetDefaults(v)
	err := v.SafeWriteConfigAs(configPath)
	var exists viper.ConfigFileAlreadyExistsError
	switch {
	case errors.As(err, &exists):
		fmt.Println("   kept", configPath)
	case err != nil:
		return fmt.Errorf("writing %s: %w", configPath, err)
	default:
		fmt.Println("   wrote", configPath)
	}

	if _, err := os.Stat(profilePath); err == nil {
		fmt.Println("   kept", profilePath)
	} else {
		data, err := profile.Marshal(profile.Sample())
		if err != nil {
			return err
		}
		if err := os.WriteFile(profilePath, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", profilePath, err)
		}
		fmt.Println("   wrote", profilePath)
	}

	fmt.Println("Project initialized. Put API keys in .secrets/ and edit", profilePath)
	return nil
}

const (
	binDir  = "bin"
	binName = "outreach"
	cmdPkg  = "./cmd/outreach"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	ldflags := "-X main.version=" + version
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s (%s)\n", out, version)
	return nil
}

// Vet runs go vet on every package.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Test runs the unit tests with the race detector.
func Test() error {
	mg.Deps(Vet)
	return sh.RunV("go", "test", "-race", "-count=1", "./...")
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}

// Stats prints project metrics: Go packages, test functions, and documentation word count.
func Stats() error {
	pkgs := map[string]bool{}
	tests := 0
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); path != "." && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		pkgs[filepath.Dir(path)] = true
		if !strings.HasSuffix(path, "_test.go") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		tests += bytes.Count(data, []byte("\nfunc Test"))
		return nil
	})
	if err != nil {
		return err
	}

	docWords, err := countDocWords("docs")
	if err != nil {
		return err
	}

	fmt.Printf("Go packages:           %d\n", len(pkgs))
	fmt.Printf("Test functions:        %d\n", tests)
	fmt.Printf("Words (documentation): %d\n", docWords)
	return nil
}

// countDocWords walks the docs directory and counts words in .md and .yaml files.
func countDocWords(root string) (int, error) {
	total := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".md", ".yaml", ".yml":
		default:
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		total += len(strings.Fields(string(data)))
		return nil
	})
	return total, err
}
