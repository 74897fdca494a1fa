package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"RocketShoes/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	API     string
	Storage string
	Format  string // "json" | "text"
	Timeout time.Duration
	Verbose bool
}

var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the cartctl root command. Flag defaults come from
// the ROCKETSHOES_* environment.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	env, envErr := config.LoadCLI()
	if env.Storage == "" {
		env.Storage = defaultStorage()
	}

	cmd := &cobra.Command{
		Use:   "cartctl",
		Short: "Manage the RocketShoes cart from a terminal",
		Long: `cartctl keeps a RocketShoes cart in a local slot and checks every
change against the catalog API's stock before saving it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return WrapExitError(ExitCommandError, "read environment", envErr)
			}
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.API, "api", env.API, "catalog API base URL")
	cmd.PersistentFlags().StringVar(&opts.Storage, "storage", env.Storage, "cart storage URL (file://, sqlite://, redis://, postgres://, memory://)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", env.Timeout, "catalog API request timeout")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log to stderr")

	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewSetCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))

	return cmd
}

func defaultStorage() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "file://.rocketshoes"
	}
	return "file://" + filepath.ToSlash(filepath.Join(home, ".rocketshoes"))
}
