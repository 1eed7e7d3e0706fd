//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the sponza binary into bin/.
func (Build) Binary() error {
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/sponza", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Converts the scene textures to KTX2, rewrites the glTF references and
// starts the scene.
func (Build) Convert() error {
	mg.Deps(Build.Binary)
	if _, err := executeCmd("bin/sponza", withArgs("--convert"), withDir("."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the unit tests.
func (Build) Test() error {
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}
