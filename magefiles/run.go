//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Pack mg.Namespace

// Writes the sample level to bin/sample.pack and lists it.
func (Pack) Sample() error {
	mg.Deps(Build.Cli)
	fmt.Println("Building sample pack...")
	if _, err := executeCmd("bin/on3d", withArgs("sample", "-o", "bin/sample.pack"), withStream()); err != nil {
		return err
	}
	if _, err := executeCmd("bin/on3d", withArgs("list", "bin/sample.pack"), withStream()); err != nil {
		return err
	}
	return nil
}

// Packs the directory in $ASSETS_DIR into bin/assets.pack.
func (Pack) Dir() error {
	mg.Deps(Build.Cli)
	dir := envOr("ASSETS_DIR", "assets")
	if _, err := executeCmd("bin/on3d", withArgs("build", dir, "-o", "bin/assets.pack"), withStream()); err != nil {
		return err
	}
	return nil
}
