package codec

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"
)

var (
	// ErrNilSurface is returned when capture or restore is given no surface.
	ErrNilSurface = errors.New("codec: nil surface")
	// ErrSurfacePanic wraps a panic raised by the surface implementation.
	ErrSurfacePanic = errors.New("codec: surface panicked")
	// ErrHistoryUnavailable marks a capture that succeeded without history.
	// The returned snapshot is still usable.
	ErrHistoryUnavailable = errors.New("codec: history unavailable")
	// ErrUnknownEncoding is returned for a snapshot history encoding this
	// codec cannot read.
	ErrUnknownEncoding = errors.New("codec: unknown history encoding")
)

// EncodingZstd marks a zstd-compressed history payload.
const EncodingZstd = "zstd"

// HistoryMode describes how a history payload will be replayed onto a
// surface.
type HistoryMode string

const (
	HistoryLoad    HistoryMode = "load"
	HistoryReplace HistoryMode = "replace"
	HistorySkip    HistoryMode = "skip"
)

// Options configures a Codec.
type Options struct {
	// CompressThreshold is the history size in bytes above which captured
	// histories are stored zstd-compressed. Zero disables compression.
	CompressThreshold int
	// AllowUnsafeHistory enables the legacy direct state replacement path
	// for surfaces that have no supported history loader.
	AllowUnsafeHistory bool
}

// Codec captures and restores editor state.
type Codec struct {
	opts    Options
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// New creates a codec.
func New(opts Options) (*Codec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Codec{opts: opts, encoder: encoder, decoder: decoder}, nil
}

// Options returns the codec configuration.
func (c *Codec) Options() Options {
	return c.opts
}

// Capture reads the current selection, history and scroll offset of s.
//
// A selection failure fails the whole capture. A history failure yields a
// snapshot without history together with an error matching
// ErrHistoryUnavailable.
func (c *Codec) Capture(s Surface) (snap Snapshot, err error) {
	if s == nil {
		return Snapshot{}, ErrNilSurface
	}

	defer func() {
		if r := recover(); r != nil {
			snap = Snapshot{}
			err = fmt.Errorf("capture: %w: %v", ErrSurfacePanic, r)
		}
	}()

	selection, err := s.Selection()
	if err != nil {
		return Snapshot{}, fmt.Errorf("capture selection: %w", err)
	}

	snap = Snapshot{
		Selection: string(selection),
		ScrollTop: s.ScrollTop(),
	}

	history, histErr := s.History()
	if histErr != nil {
		return snap, fmt.Errorf("%w: %w", ErrHistoryUnavailable, histErr)
	}
	if len(history) == 0 {
		return snap, nil
	}

	if c.opts.CompressThreshold > 0 && len(history) > c.opts.CompressThreshold {
		snap.History = string(c.encoder.EncodeAll(history, make([]byte, 0, len(history)/2)))
		snap.HistoryEncoding = EncodingZstd
	} else {
		snap.History = string(history)
	}
	return snap, nil
}

// Restore applies snap to a freshly created surface.
//
// History is replayed first (best effort), then selection, then scroll
// offset, and finally the selection is revealed. A failing part is skipped
// and reported in the joined error; the remaining parts are still applied.
// Restore never panics.
func (c *Codec) Restore(snap Snapshot, s Surface) error {
	if s == nil {
		return ErrNilSurface
	}

	return errors.Join(
		c.guard("history", func() error { return c.restoreHistory(snap, s) }),
		c.guard("selection", func() error {
			if snap.Selection == "" {
				return nil
			}
			return s.SetSelection([]byte(snap.Selection))
		}),
		c.guard("scroll", func() error {
			s.SetScrollTop(snap.ScrollTop)
			return nil
		}),
		c.guard("reveal", func() error {
			s.RevealSelection()
			return nil
		}),
	)
}

// HistoryModeFor reports which history path Restore would take for s.
func (c *Codec) HistoryModeFor(s Surface) HistoryMode {
	switch s.(type) {
	case HistoryLoader:
		return HistoryLoad
	case UnsafeHistoryReplacer:
		if c.opts.AllowUnsafeHistory {
			return HistoryReplace
		}
	}
	return HistorySkip
}

// HistoryBytes returns the decoded history payload of snap.
func (c *Codec) HistoryBytes(snap Snapshot) ([]byte, error) {
	switch snap.HistoryEncoding {
	case "":
		return []byte(snap.History), nil
	case EncodingZstd:
		out, err := c.decoder.DecodeAll([]byte(snap.History), nil)
		if err != nil {
			return nil, fmt.Errorf("decompress history: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, snap.HistoryEncoding)
	}
}

func (c *Codec) restoreHistory(snap Snapshot, s Surface) error {
	if snap.History == "" {
		return nil
	}

	mode := c.HistoryModeFor(s)
	if mode == HistorySkip {
		return nil
	}

	data, err := c.HistoryBytes(snap)
	if err != nil {
		return err
	}

	if mode == HistoryLoad {
		return s.(HistoryLoader).LoadHistory(data)
	}
	// Legacy path: the surface overwrites its internal history state
	// wholesale. Only reachable with AllowUnsafeHistory.
	return s.(UnsafeHistoryReplacer).ReplaceHistoryUnsafe(data)
}

func (c *Codec) guard(part string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("restore %s: %w: %v", part, ErrSurfacePanic, r)
		}
	}()

	if e := fn(); e != nil {
		return fmt.Errorf("restore %s: %w", part, e)
	}
	return nil
}

// Encode serializes a snapshot to JSON.
func Encode(snap Snapshot) ([]byte, error) {
	data, err := sonic.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot produced by Encode.
func Decode(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := sonic.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}
