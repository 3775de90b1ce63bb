package demo

import (
	"testing"

	"github.com/cwbudde/go-ecma/internal/builtins"
	"github.com/cwbudde/go-ecma/internal/evaluator"
)

// Every named demo must run to a Normal completion against a freshly
// installed runtime, the same way cmd/jsrun's run subcommand drives it.
func TestNamedDemosRunToCompletion(t *testing.T) {
	for name, build := range Named {
		name, build := name, build
		t.Run(name, func(t *testing.T) {
			ev := evaluator.New()
			builtins.Install(ev)
			if _, err := ev.RunProgram(build()); err != nil {
				t.Fatalf("demo %q failed: %v", name, err)
			}
		})
	}
}
