package cli

import (
	"errors"
	"fmt"
	"slices"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/idelchi/dusage/internal/dusage"
	"github.com/idelchi/dusage/internal/integration"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// allowedOutputs contains the supported report formats.
//
//nolint:gochecknoglobals // Config constant
var allowedOutputs = []string{"text", "json"}

// Command builds the root command with all flags registered.
func (c CLI) Command() *cobra.Command {
	var options dusage.Options

	cmd := &cobra.Command{
		Use:   "dusage [flags] [path]",
		Short: "Report disk usage of a file or directory tree",
		Long: heredoc.Doc(`
			dusage reports the disk usage, in kilobytes, of a file or directory tree.

			Usage is derived from allocated blocks, so sparse files count what they
			occupy, and additional hard links to an already-counted file are skipped.
			Symbolic links are never followed; each counts as the link object itself.

			One line is written per directory, after all of its contents:

			    <usage_kb><TAB><path>

			Positional Arguments:
			  path                   File or directory to account. Defaults to current directory if not specified.

			Modes:
			  Default mode reports directories only. Use --all to also report
			  individual files and links, or --summarize for just the root total.

			The '-i' flag is available if using the integration script for shell usage.
			It will then run an interactive mode where the output of the tool is piped to 'fzf'
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if options.Version {
				fmt.Fprintln(cmd.OutOrStdout(), c.version)

				return nil
			}

			if options.Init {
				rendered, err := integration.Render()
				if err != nil {
					return fmt.Errorf("rendering integration script: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), rendered)

				return nil
			}

			if !slices.Contains(allowedOutputs, options.Output) {
				return fmt.Errorf("invalid output format %q: must be one of %v", options.Output, allowedOutputs)
			}

			if options.MaxDepth < 0 {
				return errors.New("max-depth cannot be negative")
			}

			if options.Summarize && options.All {
				return errors.New("cannot both summarize and report all entries")
			}

			if options.Summarize && options.MaxDepth > 0 {
				return errors.New("cannot combine summarize with max-depth")
			}

			if len(args) == 0 {
				options.Path = "."
			} else {
				options.Path = args[0]
			}

			// Past this point failures are traversal errors, not
			// invocation mistakes, so usage output would only bury them.
			cmd.SilenceUsage = true

			return logic(options, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()

	flags.BoolVarP(&options.All, "all", "a", false, "Report all files and links, not just directories")
	flags.BoolVarP(&options.Summarize, "summarize", "s", false, "Report only a total for the root path")
	flags.IntVarP(&options.MaxDepth, "max-depth", "d", 0, "Maximum depth to report entries at (0=unlimited)")
	flags.StringVarP(&options.Output, "output", "o", "text", "Output format: text or json")
	flags.BoolVar(&options.Debug, "debug", false, "Enable debug output")
	flags.BoolVarP(&options.Version, "version", "v", false, "Show version and exit")
	flags.BoolVarP(&options.Init, "init", "i", false, "Output init script for shell usage")

	flags.SortFlags = false

	return cmd
}

// Execute runs the CLI with the provided arguments.
func (c CLI) Execute() error {
	return c.Command().Execute()
}
