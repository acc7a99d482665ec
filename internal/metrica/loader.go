// Package metrica parses Metrica Sports event exports: a JSON event log and
// its EPTS XML metadata.
package metrica

import (
	"context"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/okian/touchline/internal/domain/model"
	"github.com/okian/touchline/pkg/logger"
)

type sourceKind int

const (
	sourceFile sourceKind = iota
	sourceInline
	sourceReader
)

// Source is where an event log or metadata document comes from.
type Source struct {
	kind   sourceKind
	path   string
	data   []byte
	reader io.Reader
}

// FromFile reads the document from path.
func FromFile(path string) Source { return Source{kind: sourceFile, path: path} }

// FromString uses s as the document itself.
func FromString(s string) Source { return Source{kind: sourceInline, data: []byte(s)} }

// FromBytes uses b as the document itself.
func FromBytes(b []byte) Source { return Source{kind: sourceInline, data: b} }

// FromReader reads the document from r once.
func FromReader(r io.Reader) Source { return Source{kind: sourceReader, reader: r} }

// Detect treats s as inline content when it contains '{' (an event log) or
// '<' (a metadata document), and as a file path otherwise.
func Detect(s string) Source {
	if strings.ContainsAny(s, "{<") {
		return FromString(s)
	}
	return FromFile(s)
}

// String describes the source for logs.
func (s Source) String() string {
	switch s.kind {
	case sourceFile:
		return s.path
	case sourceReader:
		return "<reader>"
	default:
		return "<inline>"
	}
}

// check fails with ErrMissingFile when a file source does not exist.
func (s Source) check() error {
	switch s.kind {
	case sourceFile:
		if _, err := os.Stat(s.path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return errors.Mark(errors.Newf("could not find %s", s.path), ErrMissingFile)
			}
			return errors.Wrapf(err, "stat %s", s.path)
		}
	case sourceReader:
		if s.reader == nil {
			return errors.Mark(errors.New("reader source is nil"), ErrMissingFile)
		}
	}
	return nil
}

// Bytes reads the whole document. A file source that does not exist fails
// with ErrMissingFile. A reader source can be read once.
func (s Source) Bytes() ([]byte, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.read()
}

func (s Source) read() ([]byte, error) {
	switch s.kind {
	case sourceFile:
		b, err := os.ReadFile(s.path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Mark(errors.Newf("could not find %s", s.path), ErrMissingFile)
		}
		return b, errors.Wrapf(err, "read %s", s.path)
	case sourceReader:
		b, err := io.ReadAll(s.reader)
		return b, errors.Wrap(err, "read source")
	default:
		return s.data, nil
	}
}

// Loader runs the whole parse pipeline.
type Loader struct {
	log logger.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for step progress.
func WithLogger(l logger.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.log = l
		}
	}
}

// NewLoader creates a Loader. Without WithLogger it logs nowhere.
func NewLoader(opts ...Option) *Loader {
	ld := &Loader{}
	for _, opt := range opts {
		opt(ld)
	}
	if ld.log == nil {
		ld.log = logger.New(logger.WithWriter(io.Discard))
	}
	return ld
}

// Load parses one match with a silent Loader.
func Load(ctx context.Context, events, metadata Source) (*model.Match, error) {
	return NewLoader().Load(ctx, events, metadata)
}

// Load reads the metadata and event log, rescales coordinates to metres,
// attaches datetimes, aligns playing direction and builds the canonical
// events. ctx is checked between steps.
func (ld *Loader) Load(ctx context.Context, events, metadata Source) (*model.Match, error) {
	start := time.Now()
	log := ld.log.With(logger.String("events", events.String()), logger.String("metadata", metadata.String()))
	log.Info(ctx, "loading metrica event data")

	fail := func(err error) (*model.Match, error) {
		log.Error(ctx, "loading metrica event data failed",
			logger.String("kind", Kind(err)), logger.Error(err))
		return nil, err
	}

	if err := events.check(); err != nil {
		return fail(err)
	}
	if err := metadata.check(); err != nil {
		return fail(err)
	}

	rawMetadata, err := metadata.read()
	if err != nil {
		return fail(err)
	}
	md, err := ParseMetadata(rawMetadata)
	if err != nil {
		return fail(err)
	}
	log.Debug(ctx, "metadata loaded",
		logger.String("home", md.HomeTeamID),
		logger.String("away", md.AwayTeamID),
		logger.Int("periods", len(md.Periods)))
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	rawEvents, err := events.read()
	if err != nil {
		return fail(err)
	}
	data, err := ExtractEvents(rawEvents)
	if err != nil {
		return fail(err)
	}
	log.Debug(ctx, "event log extracted", logger.Int("records", data.Len()))
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	Rescale(data, md.PitchDimensions)
	if err := AttachDatetimes(data, md); err != nil {
		return fail(err)
	}
	NormalizePlayingDirection(data, md.HomeTeamID)

	canonical, err := BuildEvents(data, md)
	if err != nil {
		return fail(err)
	}

	log.Info(ctx, "loaded metrica event data",
		logger.Int("records", data.Len()),
		logger.Int("shots", len(canonical.Shots)),
		logger.Int("passes", len(canonical.Passes)),
		logger.Int("dribbles", len(canonical.Dribbles)),
		logger.Duration("elapsed", time.Since(start)))

	return &model.Match{Events: data, Metadata: md, Canonical: canonical}, nil
}
