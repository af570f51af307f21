package dicom

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a directory holds no recognized DICOM files.
	ErrNotFound = errors.New("no DICOM files found")

	// ErrVolumeTooLarge is returned when the assembled volume would exceed
	// LoadOptions.MaxVolumeBytes.
	ErrVolumeTooLarge = errors.New("volume exceeds size limit")
)

// NotFoundError names the directory and extensions that produced no files.
type NotFoundError struct {
	Dir        string
	Extensions []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no DICOM files (%s) found in directory: %s", strings.Join(e.Extensions, ", "), e.Dir)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// DecodeError reports a file that could not be read as a 2D DICOM image.
// Any DecodeError aborts the whole assembly.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
