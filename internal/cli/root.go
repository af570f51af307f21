// Package cli implements the dicomstack command tree.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/mrsinham/dicomstack/internal/config"
	"github.com/mrsinham/dicomstack/internal/dicom"
	"github.com/mrsinham/dicomstack/internal/logging"
	"github.com/mrsinham/dicomstack/internal/util"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands, plus the configuration
// and logger resolved from them before a command runs.
type RootOptions struct {
	Verbose    bool
	ConfigPath string
	LogFile    string
	Format     string // "json" | "text"

	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the dicomstack CLI.
func NewRootCommand(version string) *cobra.Command {
	cmd, _ := newRootCommand(version)
	return cmd
}

func newRootCommand(version string) (*cobra.Command, *RootOptions) {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "dicomstack",
		Short:   "Assemble DICOM slice directories into 3D volumes",
		Long:    "Reads a directory of single-frame DICOM slices, orders them by SliceLocation or InstanceNumber and stacks them into a float32 volume.",
		Version: version,

		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "also write logs to this rotating file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})

	cmd.AddCommand(NewInfoCommand(opts))
	cmd.AddCommand(NewOrderCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewSynthCommand(opts))

	return cmd, opts
}

// Execute runs the command tree with args and returns the process exit code.
func Execute(version string, args []string, stdout, stderr io.Writer) int {
	cmd, opts := newRootCommand(version)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if opts.closer != nil {
		_ = opts.closer.Close()
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return GetExitCode(err)
}

// setup loads the configuration and builds the logger.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	cfg := config.DefaultConfig()
	if o.ConfigPath != "" {
		loaded, err := config.LoadConfig(o.ConfigPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "load config", err)
		}
		cfg = loaded
	}
	if o.LogFile != "" {
		cfg.Log.File = o.LogFile
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}

	logger, closer, err := logging.New(cmd.ErrOrStderr(), logging.Options{
		File:       cfg.Log.File,
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		MaxBackups: cfg.Log.MaxBackups,
		Compress:   cfg.Log.Compress,
		Verbose:    o.Verbose,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "configure logging", err)
	}

	o.cfg = cfg
	o.logger = logger
	o.closer = closer
	return nil
}

// loadOptions returns assembler options from the config, with the ordering
// mode flipped when byInstance is set.
func (o *RootOptions) loadOptions(byInstance bool) (dicom.LoadOptions, error) {
	lo, err := o.cfg.ToLoadOptions(o.logger)
	if err != nil {
		return dicom.LoadOptions{}, WrapExitError(ExitCommandError, "invalid config", err)
	}
	if byInstance {
		lo.PreferFallbackKey = !lo.PreferFallbackKey
	}
	warnKindMismatch(o, lo)
	return lo, nil
}

// warnKindMismatch flags orderings whose fallback key measures something
// different from the primary key, e.g. a position against a time.
func warnKindMismatch(rootOpts *RootOptions, lo dicom.LoadOptions) {
	primary, ok1 := util.LookupTag(lo.PrimaryKey)
	fallback, ok2 := util.LookupTag(lo.FallbackKey)
	if !ok1 || !ok2 || primary.Kind == fallback.Kind {
		return
	}
	if primary.Kind == util.KindTemporal || fallback.Kind == util.KindTemporal {
		rootOpts.logger.Warn("primary and fallback ordering keys measure different quantities",
			"primary", primary.Name, "primary_kind", primary.Kind.String(),
			"fallback", fallback.Name, "fallback_kind", fallback.Kind.String())
	}
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// exactDir validates the single directory argument.
func exactDir(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return NewExitError(ExitCommandError, fmt.Sprintf("%s expects exactly one directory argument, got %d", cmd.Name(), len(args)))
	}
	return nil
}
