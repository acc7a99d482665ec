package metrica

import (
	"github.com/cockroachdb/errors"
)

// Error kinds. Every error returned by this package is marked with one of
// them; test with errors.Is.
var (
	ErrMissingFile       = errors.New("missing file")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrMalformedRecord   = errors.New("malformed record")
	ErrMalformedMetadata = errors.New("malformed metadata")
)

// Stable kind labels for metrics and API responses.
const (
	KindMissingFile       = "missing_file"
	KindTypeMismatch      = "type_mismatch"
	KindMalformedRecord   = "malformed_record"
	KindMalformedMetadata = "malformed_metadata"
	KindUnknown           = "unknown"
)

// Kind maps an error to its stable label.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingFile):
		return KindMissingFile
	case errors.Is(err, ErrTypeMismatch):
		return KindTypeMismatch
	case errors.Is(err, ErrMalformedRecord):
		return KindMalformedRecord
	case errors.Is(err, ErrMalformedMetadata):
		return KindMalformedMetadata
	default:
		return KindUnknown
	}
}

func malformedRecord(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrMalformedRecord)
}

func malformedMetadata(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrMalformedMetadata)
}

func wrapMark(err error, kind error, format string, args ...any) error {
	return errors.Mark(errors.Wrapf(err, format, args...), kind)
}
