//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "vocabtable"

// Default target to run when none is specified
var Default = Build

// Build compiles the vocabtable binary
func Build() error {
	mg.Deps(Tidy)
	fmt.Println("Building", binary)
	return sh.RunV("go", "build", "-o", binary, "./cmd/vocabtable")
}

// Install installs vocabtable into GOPATH/bin
func Install() error {
	mg.Deps(Tidy)
	return sh.RunV("go", "install", "./cmd/vocabtable")
}

// Test runs all tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Tidy runs go mod tidy
func Tidy() error {
	return sh.Run("go", "mod", "tidy")
}

// Clean removes build artifacts
func Clean() error {
	fmt.Println("Cleaning")
	return os.RemoveAll(binary)
}
