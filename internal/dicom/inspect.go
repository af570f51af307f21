package dicom

import (
	"fmt"
	"os"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Inspect reports the order NewAssembler would stack the files of dir in,
// reading headers only. Pixel data is skipped, so shape mismatches between
// files are visible in Rows/Cols but not raised.
func Inspect(dir string, opts LoadOptions) ([]SliceInfo, error) {
	opts = opts.withDefaults()

	files, err := discoverFiles(dir, opts.Extensions)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &NotFoundError{Dir: dir, Extensions: opts.Extensions}
	}

	infos := make([]SliceInfo, 0, len(files))
	for i, path := range files {
		info, err := readHeader(path, opts)
		if err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
		info.Discovery = i
		infos = append(infos, info)
	}

	sortByKey(infos, func(s SliceInfo) float64 { return s.Key })
	if mixedSources(infos) {
		opts.Logger.Warn("ordering keys come from different metadata fields", "dir", dir)
	}
	return infos, nil
}

// readHeader parses a file without its pixel data.
func readHeader(path string, opts LoadOptions) (SliceInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return SliceInfo{}, err
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return SliceInfo{}, err
	}

	ds, err := dicom.Parse(f, st.Size(), nil, dicom.SkipPixelData())
	if err != nil {
		return SliceInfo{}, err
	}
	if len(ds.Elements) == 0 {
		return SliceInfo{}, fmt.Errorf("no elements parsed")
	}

	key, source, keyTag := orderingKey(ds, opts.PrimaryKey, opts.FallbackKey, opts.PreferFallbackKey)
	return SliceInfo{
		Path:   path,
		Key:    key,
		Source: source,
		KeyTag: keyTag,
		Rows:   intValue(ds, tag.Rows, 0),
		Cols:   intValue(ds, tag.Columns, 0),
	}, nil
}
