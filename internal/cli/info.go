package cli

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/mrsinham/dicomstack/internal/dicom"
	"github.com/mrsinham/dicomstack/internal/util"
	"github.com/mrsinham/dicomstack/internal/volume"
	"github.com/spf13/cobra"
)

// InfoOptions holds flags for the info command.
type InfoOptions struct {
	ByInstance bool
	Transpose  string
	Normalize  bool
	Min        float32
	Max        float32
}

// InfoResult is the info command payload.
type InfoResult struct {
	Dir       string             `json:"dir"`
	Shape     [3]int             `json:"shape"`
	Size      string             `json:"size"`
	Min       float32            `json:"min"`
	Max       float32            `json:"max"`
	Slices    []volume.SliceStat `json:"slices"`
	Transpose []int              `json:"transpose,omitempty"`
}

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InfoOptions{}

	cmd := &cobra.Command{
		Use:   "info <dir>",
		Short: "Assemble a volume and print its shape and statistics",
		Long: `Load every DICOM slice in a directory, stack them in ordering-key order
and report the volume shape, global range and per-slice statistics.

--transpose permutes the axes before the statistics are taken, so the
per-slice table follows whichever axis ends up last. --normalize maps the
volume to (v - min) / (max - min); --min and --max override the bounds.`,
		Args: exactDir,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.ByInstance, "order-by-instance", false, "prefer InstanceNumber over SliceLocation")
	cmd.Flags().StringVar(&opts.Transpose, "transpose", "", "axis order, e.g. 1,2,0")
	cmd.Flags().BoolVar(&opts.Normalize, "normalize", false, "min-max normalize the volume")
	cmd.Flags().Float32Var(&opts.Min, "min", 0, "normalization lower bound (default: volume min)")
	cmd.Flags().Float32Var(&opts.Max, "max", 0, "normalization upper bound (default: volume max)")

	return cmd
}

func runInfo(rootOpts *RootOptions, opts *InfoOptions, dir string, cmd *cobra.Command) error {
	var axes []int
	if opts.Transpose != "" {
		parsed, err := util.ParseAxes(opts.Transpose)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --transpose", err)
		}
		if err := volume.ValidateAxes(parsed); err != nil {
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
	if opts.Normalize {
		var norm []volume.NormalizeOption
		if cmd.Flags().Changed("min") {
			norm = append(norm, volume.WithMin(opts.Min))
		}
		if cmd.Flags().Changed("max") {
			norm = append(norm, volume.WithMax(opts.Max))
		}
		a.Normalize(norm...)
	}

	vol := a.Volume()
	result := InfoResult{
		Dir:       dir,
		Shape:     vol.Shape(),
		Size:      humanize.IBytes(uint64(vol.SizeBytes())),
		Min:       a.GlobalMin(),
		Max:       a.GlobalMax(),
		Slices:    a.SliceStats(),
		Transpose: axes,
	}
	return rootOpts.formatter(cmd).Emit(result, func(w io.Writer) { printInfo(w, result) })
}

func printInfo(w io.Writer, r InfoResult) {
	fmt.Fprintf(w, "Directory: %s\n", r.Dir)
	fmt.Fprintf(w, "Shape:     %d x %d x %d\n", r.Shape[0], r.Shape[1], r.Shape[2])
	fmt.Fprintf(w, "Size:      %s\n", r.Size)
	fmt.Fprintf(w, "Min:       %g\n", r.Min)
	fmt.Fprintf(w, "Max:       %g\n", r.Max)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-6s %14s %14s %14s %14s\n", "SLICE", "MIN", "MAX", "MEAN", "STD")
	for _, s := range r.Slices {
		fmt.Fprintf(w, "%-6d %14g %14g %14.4f %14.4f\n", s.Index, s.Min, s.Max, s.Mean, s.Std)
	}
}

// assemble loads dir with the configured options. Failures to read the
// input map to ExitFailure.
func assemble(rootOpts *RootOptions, dir string, byInstance bool) (*dicom.Assembler, error) {
	lo, err := rootOpts.loadOptions(byInstance)
	if err != nil {
		return nil, err
	}
	a, err := dicom.NewAssembler(dir, lo)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "assemble volume", err)
	}
	return a, nil
}
