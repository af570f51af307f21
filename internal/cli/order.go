package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/mrsinham/dicomstack/internal/dicom"
	"github.com/mrsinham/dicomstack/internal/util"
	"github.com/spf13/cobra"
)

// OrderEntry is one row of the order command output.
type OrderEntry struct {
	Index     int     `json:"index"`
	File      string  `json:"file"`
	Key       float64 `json:"key"`
	Source    string  `json:"source"`
	Tag       string  `json:"tag,omitempty"`
	Kind      string  `json:"kind,omitempty"`
	Discovery int     `json:"discovery"`
	Rows      int     `json:"rows"`
	Cols      int     `json:"cols"`
}

// NewOrderCommand creates the order command.
func NewOrderCommand(rootOpts *RootOptions) *cobra.Command {
	var byInstance bool

	cmd := &cobra.Command{
		Use:   "order <dir>",
		Short: "List the stacking order without decoding pixel data",
		Args:  exactDir,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrder(rootOpts, byInstance, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&byInstance, "order-by-instance", false, "prefer InstanceNumber over SliceLocation")

	return cmd
}

func runOrder(rootOpts *RootOptions, byInstance bool, dir string, cmd *cobra.Command) error {
	lo, err := rootOpts.loadOptions(byInstance)
	if err != nil {
		return err
	}
	infos, err := dicom.Inspect(dir, lo)
	if err != nil {
		return WrapExitError(ExitFailure, "inspect directory", err)
	}
	rootOpts.logger.Info("headers inspected", "dir", dir, "files", len(infos))

	entries := make([]OrderEntry, len(infos))
	for i, info := range infos {
		entries[i] = OrderEntry{
			Index:     i,
			File:      filepath.Base(info.Path),
			Key:       info.Key,
			Source:    info.Source.String(),
			Discovery: info.Discovery,
			Rows:      info.Rows,
			Cols:      info.Cols,
		}
		if info.Source != dicom.KeyDefault {
			entries[i].Tag = util.GetTagName(info.KeyTag)
			if ti, ok := util.LookupTag(info.KeyTag); ok {
				entries[i].Kind = ti.Kind.String()
			}
		}
	}

	return rootOpts.formatter(cmd).Emit(entries, func(w io.Writer) {
		fmt.Fprintf(w, "%-6s %-24s %12s  %-9s %-16s %s\n", "INDEX", "FILE", "KEY", "SOURCE", "TAG", "SIZE")
		for _, e := range entries {
			tagName := e.Tag
			if tagName == "" {
				tagName = "-"
			}
			fmt.Fprintf(w, "%-6d %-24s %12g  %-9s %-16s %dx%d\n", e.Index, e.File, e.Key, e.Source, tagName, e.Rows, e.Cols)
		}
	})
}
