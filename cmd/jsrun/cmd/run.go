package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/cwbudde/go-ecma/internal/builtins"
	"github.com/cwbudde/go-ecma/internal/evaluator"
	"github.com/cwbudde/go-ecma/internal/heap"
	"github.com/cwbudde/go-ecma/internal/runtime"
	"github.com/cwbudde/go-ecma/internal/value"
	"github.com/cwbudde/go-ecma/cmd/jsrun/demo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RunOptions mirrors the teacher's cmd/dwscript/cmd/run.go flag
// variables, adapted to this evaluator's functional-option runtime
// construction (internal/runtime.Option) instead of a lexer/parser
// pipeline.
type RunOptions struct {
	Demo                string
	DumpAST             bool
	GCThreshold         int
	MaxCallDepth        int
	MicrotaskDrainLimit int
}

var runOpts RunOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a demo ECMAScript program",
	Long: `Execute one of jsrun's named demo programs and print its
completion value.

This evaluator has no lexer or parser (pkg/ast nodes are built
directly by a host), so run selects a hand-built *ast.Program by name
instead of reading a .js file:

  jsrun run --demo hello
  jsrun run --demo json
  jsrun run --demo disposable`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runOpts.Demo = "hello"
	flags := runCmd.Flags()
	flags.VarP(&demoNameFlag{&runOpts.Demo}, "demo", "d", fmt.Sprintf("demo program to run (%s)", demoNames()))
	flags.BoolVar(&runOpts.DumpAST, "dump-ast", false, "print the demo program's AST before executing it")
	flags.IntVar(&runOpts.GCThreshold, "gc-threshold", 0, "allocation-count GC trigger (0 = evaluator default)")
	flags.IntVar(&runOpts.MaxCallDepth, "max-call-depth", 0, "call-stack depth limit (0 = evaluator default)")
	flags.IntVar(&runOpts.MicrotaskDrainLimit, "microtask-drain-limit", 0, "cap on microtask queue drain passes per run, each running until the queue is empty (0 = unbounded)")
}

// demoNameFlag implements pflag.Value directly so an unknown --demo
// name is rejected at flag-parse time instead of surfacing later as a
// RunE error.
type demoNameFlag struct {
	target *string
}

func (f *demoNameFlag) String() string { return *f.target }

func (f *demoNameFlag) Set(s string) error {
	if _, ok := demo.Named[s]; !ok {
		return fmt.Errorf("unknown demo %q (available: %s)", s, demoNames())
	}
	*f.target = s
	return nil
}

func (f *demoNameFlag) Type() string { return "string" }

var _ pflag.Value = (*demoNameFlag)(nil)

func demoNames() string {
	names := make([]string, 0, len(demo.Named))
	for name := range demo.Named {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func runDemo(cmd *cobra.Command, args []string) error {
	build, ok := demo.Named[runOpts.Demo]
	if !ok {
		return fmt.Errorf("unknown demo %q (available: %s)", runOpts.Demo, demoNames())
	}
	program := build()

	if runOpts.DumpAST {
		fmt.Println("AST:")
		fmt.Println(program.String())
		fmt.Println()
	}

	var opts []runtime.Option
	if runOpts.GCThreshold > 0 {
		opts = append(opts, runtime.WithGCThreshold(runOpts.GCThreshold))
	}
	if runOpts.MaxCallDepth > 0 {
		opts = append(opts, runtime.WithMaxCallDepth(runOpts.MaxCallDepth))
	}
	if runOpts.MicrotaskDrainLimit > 0 {
		opts = append(opts, runtime.WithMicrotaskDrainLimit(runOpts.MicrotaskDrainLimit))
	}

	ev := evaluator.New(opts...)
	builtins.Install(ev)

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Fprintf(os.Stderr, "[running demo %q]\n", runOpts.Demo)
	}

	result, err := ev.RunProgram(program)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Uncaught error: %s\n", formatThrown(ev, err))
		return fmt.Errorf("execution failed")
	}

	fmt.Println(formatResult(ev, result))
	return nil
}

// formatThrown renders a thrown value the way Error.prototype.toString
// would if internal/builtins installed one, falling back to a plain
// value dump otherwise.
func formatThrown(ev *evaluator.Evaluator, err error) string {
	tc, ok := err.(*evaluator.ThrowCompletion)
	if !ok {
		return err.Error()
	}
	if obj, ok := tc.Value.(value.Object); ok {
		if toString, gerr := ev.RT.Heap.Get(obj.Ref, heap.StringKey("toString"), tc.Value, ev); gerr == nil {
			if s, ierr := ev.Invoke(toString, tc.Value, nil); ierr == nil {
				if str, ok := value.ToStringPrimitive(s); ok {
					return str
				}
			}
		}
	}
	return formatResult(ev, tc.Value)
}

// formatResult renders a completion value for terminal output. Objects
// print via JSON.stringify when the global is installed (the common
// case once builtins.Install has run); every other kind uses
// value.ToStringPrimitive directly.
func formatResult(ev *evaluator.Evaluator, v value.Value) string {
	if v == nil {
		return "undefined"
	}
	if obj, ok := v.(value.Object); ok {
		if o, ok := ev.RT.Heap.Deref(obj.Ref); ok {
			if _, isFn := o.Slot.(*heap.FunctionSlot); isFn {
				return "[Function]"
			}
		}
		if jsonGlobal, err := ev.RT.Global.Get("JSON"); err == nil {
			if jo, ok := jsonGlobal.(value.Object); ok {
				if stringify, err := ev.RT.Heap.Get(jo.Ref, heap.StringKey("stringify"), jsonGlobal, ev); err == nil {
					if encoded, err := ev.Invoke(stringify, jsonGlobal, []value.Value{v}); err == nil {
						if s, ok := value.ToStringPrimitive(encoded); ok {
							return s
						}
					}
				}
			}
		}
	}
	s, _ := value.ToStringPrimitive(v)
	return s
}
