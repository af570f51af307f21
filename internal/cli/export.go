package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mrsinham/dicomstack/internal/render"
	"github.com/mrsinham/dicomstack/internal/util"
	"github.com/mrsinham/dicomstack/internal/volume"
	"github.com/spf13/cobra"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	ByInstance bool
	Out        string
	Format     string // png | gif; empty infers from Out
	Indices    string
	Colormap   string
	StepMS     int
	Scale      int
	Transpose  string
}

// ExportResult is the export command payload.
type ExportResult struct {
	Format string   `json:"format"`
	Files  []string `json:"files"`
	Frames int      `json:"frames"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export <dir>",
		Short: "Render volume slices to PNG files or an animated GIF",
		Long: `Assemble a volume and render depth slices. Each slice is windowed to its
own min/max before the colormap is applied.

With --image-format png, --out is a directory receiving slice_NNN.png
files. With --image-format gif, --out is the GIF path. Without it the type
is taken from the --out extension.`,
		Args: exactDir,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.ByInstance, "order-by-instance", false, "prefer InstanceNumber over SliceLocation")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output directory (png) or file (gif)")
	cmd.Flags().StringVar(&opts.Format, "image-format", "", "png or gif (default: from --out)")
	cmd.Flags().StringVar(&opts.Indices, "indices", "", "slice indices, e.g. 0,2,5-8 (default: all)")
	cmd.Flags().StringVar(&opts.Colormap, "cmap", "", "colormap: "+strings.Join(render.Colormaps(), ", "))
	cmd.Flags().IntVar(&opts.StepMS, "step-ms", 0, "GIF frame delay in milliseconds")
	cmd.Flags().IntVar(&opts.Scale, "scale", 0, "integer upscale factor")
	cmd.Flags().StringVar(&opts.Transpose, "transpose", "", "axis order applied before export, e.g. 2,0,1")

	return cmd
}

func runExport(rootOpts *RootOptions, opts *ExportOptions, dir string, cmd *cobra.Command) error {
	if opts.Out == "" {
		return NewExitError(ExitCommandError, "--out is required")
	}
	format := strings.ToLower(opts.Format)
	if format == "" {
		format = "png"
		if strings.EqualFold(filepath.Ext(opts.Out), ".gif") {
			format = "gif"
		}
	}
	if format != "png" && format != "gif" {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --image-format %q: must be png or gif", opts.Format))
	}

	ropts := render.Options{
		Colormap: rootOpts.cfg.Export.Colormap,
		StepMS:   rootOpts.cfg.Export.StepMS,
		Scale:    rootOpts.cfg.Export.Scale,
	}
	if opts.Colormap != "" {
		ropts.Colormap = opts.Colormap
	}
	if cmd.Flags().Changed("step-ms") {
		ropts.StepMS = opts.StepMS
	}
	if cmd.Flags().Changed("scale") {
		ropts.Scale = opts.Scale
	}
	if ropts.StepMS < 1 || ropts.Scale < 1 {
		return NewExitError(ExitCommandError, "--step-ms and --scale must be >= 1")
	}
	if _, err := render.Palette(ropts.Colormap); err != nil {
		return WrapExitError(ExitCommandError, "invalid --cmap", err)
	}

	var indices []int
	if opts.Indices != "" {
		parsed, err := util.ParseIndices(opts.Indices)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --indices", err)
		}
		indices = parsed
	}

	var axes []int
	if opts.Transpose != "" {
		parsed, err := util.ParseAxes(opts.Transpose)
		if err == nil {
			err = volume.ValidateAxes(parsed)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --transpose", err)
		}
		axes = parsed
	}

	a, err := assemble(rootOpts, dir, opts.ByInstance)
	if err != nil {
		return err
	}
	if axes != nil {
		if _, err := a.Transpose(axes); err != nil {
			return WrapExitError(ExitCommandError, "transpose", err)
		}
	}

	depth := a.Volume().Depth()
	for _, k := range indices {
		if k >= depth {
			return NewExitError(ExitCommandError, fmt.Sprintf("slice index %d out of range, volume depth is %d", k, depth))
		}
	}

	result := ExportResult{Format: format}
	switch format {
	case "gif":
		if err := render.SaveGIF(a.Volume(), opts.Out, indices, ropts); err != nil {
			return WrapExitError(ExitFailure, "write GIF", err)
		}
		result.Files = []string{opts.Out}
		result.Frames = len(indices)
		if indices == nil {
			result.Frames = depth
		}
	default:
		paths, err := render.SavePNGs(a.Volume(), opts.Out, indices, ropts)
		if err != nil {
			return WrapExitError(ExitFailure, "write PNG", err)
		}
		result.Files = paths
		result.Frames = len(paths)
	}

	rootOpts.logger.Info("export finished", "format", format, "frames", result.Frames, "out", opts.Out)
	return rootOpts.formatter(cmd).Emit(result, func(w io.Writer) {
		fmt.Fprintf(w, "Wrote %d %s frame(s) to %s\n", result.Frames, strings.ToUpper(format), opts.Out)
	})
}
