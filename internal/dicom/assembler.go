// Package dicom assembles a directory of single-frame DICOM slices into a
// 3D volume ordered by slice metadata.
package dicom

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mrsinham/dicomstack/internal/util"
	"github.com/mrsinham/dicomstack/internal/volume"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// LoadOptions controls discovery and ordering. The zero value orders by
// SliceLocation, falling back to InstanceNumber, over *.dcm files.
type LoadOptions struct {
	// PreferFallbackKey swaps the key preference: FallbackKey is tried
	// first, then PrimaryKey.
	PreferFallbackKey bool

	PrimaryKey  tag.Tag // zero means SliceLocation
	FallbackKey tag.Tag // zero means InstanceNumber

	Extensions []string // empty means DefaultExtensions

	// MaxVolumeBytes caps the float32 volume size; 0 disables the check.
	MaxVolumeBytes int64

	Logger *slog.Logger // nil means slog.Default()
}

func (o LoadOptions) withDefaults() LoadOptions {
	if o.PrimaryKey == (tag.Tag{}) {
		o.PrimaryKey = tag.SliceLocation
	}
	if o.FallbackKey == (tag.Tag{}) {
		o.FallbackKey = tag.InstanceNumber
	}
	o.Extensions = normalizeExtensions(o.Extensions)
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// SliceRecord pairs a decoded plane with its ordering metadata. It only
// lives while the volume is being assembled.
type SliceRecord struct {
	SliceInfo
	Plane volume.Plane
}

// Assembler owns a volume built from one directory. Transforms replace the
// stored volume in place; earlier states are not kept, so callers that need
// the original intensity range must read GlobalMin/GlobalMax before calling
// Normalize.
type Assembler struct {
	dir     string
	log     *slog.Logger
	vol     *volume.Volume
	records []SliceInfo
}

// NewAssembler reads every matching file in dir, sorts the slices by their
// ordering key and stacks them into a (rows, cols, n) volume.
func NewAssembler(dir string, opts LoadOptions) (*Assembler, error) {
	opts = opts.withDefaults()
	log := opts.Logger.With("dir", dir)

	files, err := discoverFiles(dir, opts.Extensions)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		err := &NotFoundError{Dir: dir, Extensions: opts.Extensions}
		log.Error("no DICOM files found", "extensions", opts.Extensions)
		return nil, err
	}
	log.Info("reading DICOM files", "count", len(files))

	records := make([]SliceRecord, 0, len(files))
	for i, path := range files {
		rec, err := readSlice(path, opts, log)
		if err != nil {
			log.Error("failed to decode slice", "path", path, "error", err)
			return nil, &DecodeError{Path: path, Err: err}
		}
		rec.Discovery = i
		records = append(records, rec)
		if i == 0 {
			if err := checkVolumeSize(rec.Plane, len(files), opts.MaxVolumeBytes); err != nil {
				log.Error("volume exceeds size limit", "error", err)
				return nil, err
			}
		}
	}

	sortByKey(records, func(r SliceRecord) float64 { return r.Key })

	infos := make([]SliceInfo, len(records))
	planes := make([]volume.Plane, len(records))
	for i, rec := range records {
		infos[i] = rec.SliceInfo
		planes[i] = rec.Plane
	}
	if mixedSources(infos) {
		log.Warn("ordering keys come from different metadata fields",
			"primary", util.GetTagName(opts.PrimaryKey), "fallback", util.GetTagName(opts.FallbackKey))
	}

	vol, err := volume.Stack(planes)
	if err != nil {
		log.Error("failed to stack slices", "error", err)
		return nil, fmt.Errorf("stack %d slices from %s: %w", len(planes), dir, err)
	}

	shape := vol.Shape()
	log.Info("volume assembled",
		"shape", fmt.Sprintf("%dx%dx%d", shape[0], shape[1], shape[2]),
		"size", humanize.IBytes(uint64(vol.SizeBytes())))

	return &Assembler{dir: dir, log: log, vol: vol, records: infos}, nil
}

// checkVolumeSize estimates the float32 volume from the first plane so the
// limit is enforced before the remaining files are decoded.
func checkVolumeSize(first volume.Plane, n int, limit int64) error {
	if limit <= 0 {
		return nil
	}
	need := int64(first.Rows) * int64(first.Cols) * int64(n) * 4
	if need > limit {
		return fmt.Errorf("%w: %s needed, limit %s", ErrVolumeTooLarge,
			humanize.IBytes(uint64(need)), humanize.IBytes(uint64(limit)))
	}
	return nil
}

// readSlice decodes one file. The handle is released before returning on
// every path.
func readSlice(path string, opts LoadOptions, log *slog.Logger) (SliceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return SliceRecord{}, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return SliceRecord{}, err
	}

	ds, err := dicom.Parse(f, info.Size(), nil)
	if err != nil {
		return SliceRecord{}, err
	}

	plane, lossy, err := decodePlane(ds)
	if err != nil {
		return SliceRecord{}, err
	}
	if lossy > 0 {
		log.Warn("samples exceed float32 integer precision", "path", path, "count", lossy)
	}

	key, source, keyTag := orderingKey(ds, opts.PrimaryKey, opts.FallbackKey, opts.PreferFallbackKey)
	log.Debug("slice decoded", "path", path, "key", key, "source", source, "rows", plane.Rows, "cols", plane.Cols)

	return SliceRecord{
		SliceInfo: SliceInfo{
			Path:   path,
			Key:    key,
			Source: source,
			KeyTag: keyTag,
			Rows:   plane.Rows,
			Cols:   plane.Cols,
		},
		Plane: plane,
	}, nil
}

// Dir is the directory the volume was read from.
func (a *Assembler) Dir() string { return a.dir }

// Volume returns the current volume. It is shared, not copied.
func (a *Assembler) Volume() *volume.Volume { return a.vol }

// Records lists the stacked slices in depth order as assembled. Transposes
// do not update it.
func (a *Assembler) Records() []SliceInfo { return a.records }

// Transpose permutes the axes of the stored volume and returns the result.
// axes must be a permutation of {0, 1, 2}; otherwise volume.ErrInvalidArgument
// is returned and the stored volume is unchanged. Calls compose.
func (a *Assembler) Transpose(axes []int) (*volume.Volume, error) {
	out, err := a.vol.Transpose(axes)
	if err != nil {
		a.log.Error("axes must be a permutation of (0, 1, 2)", "axes", axes)
		return nil, err
	}
	a.vol = out
	return out, nil
}

// Normalize maps the stored volume to (v - min) / (max - min) in place.
// Bounds not given through opts default to the current global extrema.
// Equal bounds produce NaN/Inf samples; nothing guards against it.
func (a *Assembler) Normalize(opts ...volume.NormalizeOption) *volume.Volume {
	lo, hi := a.vol.Normalize(opts...)
	a.log.Debug("volume normalized", "min", lo, "max", hi)
	return a.vol
}

// GlobalMin returns the smallest sample of the current volume.
func (a *Assembler) GlobalMin() float32 { return a.vol.Min() }

// GlobalMax returns the largest sample of the current volume.
func (a *Assembler) GlobalMax() float32 { return a.vol.Max() }

// SliceMinMax returns per-slice ranges along the current axis 2.
func (a *Assembler) SliceMinMax() []volume.MinMax { return a.vol.SliceMinMax() }

// SliceStats returns per-slice min, max, mean and standard deviation.
func (a *Assembler) SliceStats() []volume.SliceStat { return a.vol.SliceStats() }
