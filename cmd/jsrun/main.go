// Command jsrun hosts the go-ecma tree-walking ECMAScript evaluator
// behind a cobra CLI, mirroring the teacher's cmd/dwscript entry point.
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-ecma/cmd/jsrun/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
