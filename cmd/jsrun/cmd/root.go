package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "jsrun",
	Short: "ECMAScript tree-walking interpreter",
	Long: `jsrun hosts the go-ecma tree-walking ECMAScript evaluator.

The evaluator has no lexer or parser of its own (pkg/ast nodes are
built directly by a host and handed to it as a *ast.Program), so this
CLI runs a small set of named, hand-built demo programs rather than
arbitrary .js source files:
  - run          execute a demo program and print its completion value
  - microtasks   drain the promise microtask queue and report any
                 unhandled rejections
  - version      print build version information`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
