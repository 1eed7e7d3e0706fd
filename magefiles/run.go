//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the full scene.
func (Run) Sponza() error {
	fmt.Println("Run sponza...")
	if _, err := executeCmd("go", withArgs("run", "main.go"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the scene with frustum culling disabled, the setup used to compare
// benchmark numbers between machines.
func (Run) Benchmark() error {
	fmt.Println("Run sponza benchmark, press B once the scene is loaded...")
	if _, err := executeCmd("go", withArgs("run", "main.go", "--no-frustum-culling", "--compress"), withStream()); err != nil {
		return err
	}
	return nil
}
