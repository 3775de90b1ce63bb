package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-ecma/internal/builtins"
	"github.com/cwbudde/go-ecma/internal/evaluator"
	"github.com/cwbudde/go-ecma/internal/runtime"
	"github.com/cwbudde/go-ecma/internal/value"
	"github.com/spf13/cobra"
)

var microtasksCmd = &cobra.Command{
	Use:   "microtasks",
	Short: "Demonstrate the promise microtask queue",
	Long: `Build two promises directly against internal/promise's
Controller (one resolved and observed via then, one rejected and never
observed), drain the microtask queue, and report the fulfillment
callback plus any unhandled rejections — exercising
runtime.Runtime.DrainMicrotasks and UnhandledRejections end to end.`,
	Args: cobra.NoArgs,
	RunE: runMicrotasks,
}

func init() {
	rootCmd.AddCommand(microtasksCmd)
}

func runMicrotasks(cmd *cobra.Command, args []string) error {
	ev := evaluator.New()
	builtins.Install(ev)
	rt := ev.RT

	var events []string

	resolved := rt.Promise.NewPromise()
	rt.Promise.Resolve(resolved, value.String("ok"))

	onFulfilled := ev.NativeFunctionValue("", 1, func(_ *runtime.Runtime, this value.Value, cbArgs []value.Value) (value.Value, error) {
		reason := firstArg(cbArgs)
		s, _ := value.ToStringPrimitive(reason)
		events = append(events, fmt.Sprintf("fulfilled: %s", s))
		return value.Undef, nil
	})
	if _, err := rt.Promise.Then(resolved, onFulfilled, value.Undef); err != nil {
		return err
	}

	rejected := rt.Promise.NewPromise()
	rt.Promise.Reject(rejected, value.String("boom"))

	rt.DrainMicrotasks()

	for _, e := range events {
		fmt.Println(e)
	}

	unhandled := rt.UnhandledRejections()
	if len(unhandled) == 0 {
		fmt.Println("no unhandled rejections")
		return nil
	}
	for _, u := range unhandled {
		reason, _ := value.ToStringPrimitive(u.Reason)
		fmt.Fprintf(os.Stderr, "unhandled rejection: %s\n", reason)
	}
	return nil
}

func firstArg(args []value.Value) value.Value {
	if len(args) == 0 {
		return value.Undef
	}
	return args[0]
}
