package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// globals are the flags shared by every command.
type globals struct {
	logFormat string
	logLevel  string
}

func (g *globals) validate() error {
	g.logFormat = strings.ToLower(g.logFormat)
	if g.logFormat != "text" && g.logFormat != "json" {
		return usageError("invalid log-format: must be 'text' or 'json'")
	}
	g.logLevel = strings.ToLower(g.logLevel)
	switch g.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	return nil
}

// NewRootCommand builds the catalogplan command tree. Command output goes
// to outW, logs and prompts to errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "catalogplan",
		Short: "Plan the transactional installation of COM+ catalog resources",
		Long: `catalogplan reads declarative catalog manifests, orders the assemblies
they declare, checks them against the current catalog and spools the
phased action buffers an executor applies.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.validate()
		},
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError("%v", err)
	})

	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	root.AddCommand(
		newPlanCommand(g, outW, errW),
		newInspectCommand(outW),
		newCatalogCommand(g, outW, errW),
	)
	return root
}

// Execute runs the command tree with args. Every returned error is an
// *ExitError: 2 for usage errors, 1 for failures.
func Execute(ctx context.Context, outW, errW io.Writer, args []string) error {
	root := NewRootCommand(outW, errW)
	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	// cobra reports unknown commands and argument count errors as plain
	// errors before any RunE is reached.
	if strings.HasPrefix(err.Error(), "unknown command") || strings.Contains(err.Error(), "arg(s)") {
		return usageError("%v", err)
	}
	return &ExitError{Code: 1, Message: err.Error()}
}

// exactArgs is cobra.ExactArgs reported as a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError("%v", err)
		}
		return nil
	}
}
