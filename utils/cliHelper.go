package utils

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// StripArgSeparator drops a leading "--" so `tool -- --userId=...` parses the
// same as `tool --userId=...`.
func StripArgSeparator(args []string) []string {
	if len(args) > 0 && args[0] == "--" {
		return args[1:]
	}
	return args
}

// ExecuteCLI runs cmd and returns the process exit code: 0 on success, 1 on any
// error. Errors are printed with their stack trace.
func ExecuteCLI(cmd *cobra.Command, args []string, stderr io.Writer) int {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs(StripArgSeparator(args))
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "error (%s): %+v\n", ErrorKind(err), err)
		return 1
	}
	return 0
}
