// Package dumper runs the read loop: each line of the subscribe-all stream
// is parsed, filtered, reshaped and printed, one record at a time.
package dumper

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"syscall"

	"github.com/arnodel/xmtpdump/encoding/json"
	"github.com/arnodel/xmtpdump/envelope"
	"github.com/arnodel/xmtpdump/internal/format"
	"github.com/arnodel/xmtpdump/iterator"
	"github.com/rs/zerolog"
)

// StopReason tells why Run returned.
type StopReason uint8

const (
	// StreamEnd means the node closed the stream.
	StreamEnd StopReason = iota
	// Limit means MaxMessages lines were processed.
	Limit
	// Interrupt means the context was cancelled.
	Interrupt
	// BrokenPipe means the reader of the output went away.
	BrokenPipe
	// ReadError means reading the stream failed.
	ReadError
)

func (r StopReason) String() string {
	switch r {
	case StreamEnd:
		return "stream end"
	case Limit:
		return "limit"
	case Interrupt:
		return "interrupt"
	case BrokenPipe:
		return "broken pipe"
	case ReadError:
		return "read error"
	default:
		return fmt.Sprintf("StopReason(%d)", r)
	}
}

// Stats counts what happened to the lines read.  Processed counts every
// line, whatever became of it.
type Stats struct {
	Processed int64
	Emitted   int64
	Filtered  int64
	Malformed int64
	Reason    StopReason
}

// A Source produces stream lines, returning io.EOF at the end.
// *subscribe.Stream is the Source used by the command.
type Source interface {
	Next() (string, error)
}

// A Source may also count what it has read.  The counts are logged when
// Run returns.
type counter interface {
	Lines() int64
	Bytes() int64
}

// Options configure a Dumper.
type Options struct {
	// Raw prints lines as they were read, skipping everything else.
	Raw bool

	// Pretty indents JSON output by 2 spaces.
	Pretty bool

	// Colorizer colors JSON output, nil meaning no color.
	Colorizer *format.Colorizer

	// MaxMessages stops the loop after that many lines, 0 meaning no limit.
	MaxMessages int

	Shaper envelope.Shaper
}

// A Dumper prints records to Stdout and malformed lines to Stderr.
type Dumper struct {
	opts    Options
	out     *bufio.Writer
	errOut  io.Writer
	encoder *json.Encoder
	logger  zerolog.Logger
}

// New returns a Dumper writing to stdout and stderr.
func New(stdout, stderr io.Writer, opts Options, logger zerolog.Logger) *Dumper {
	out := bufio.NewWriter(stdout)
	indentSize := -1
	if opts.Pretty {
		indentSize = 2
	}
	return &Dumper{
		opts:   opts,
		out:    out,
		errOut: stderr,
		encoder: &json.Encoder{
			Printer:   &format.DefaultPrinter{Writer: out, IndentSize: indentSize, Flusher: out},
			Colorizer: opts.Colorizer,
		},
		logger: logger,
	}
}

// Run processes the lines of src until the stream ends, MaxMessages lines
// have been processed or ctx is cancelled.  The error is non-nil only when
// reading src or writing the output failed for another reason than ctx
// being cancelled or the output pipe being closed.
func (d *Dumper) Run(ctx context.Context, src Source) (stats Stats, err error) {
	defer func() {
		ev := d.logger.Debug()
		if c, ok := src.(counter); ok {
			ev = ev.Int64("lines", c.Lines()).Int64("bytes", c.Bytes())
		}
		ev.Int64("processed", stats.Processed).
			Int64("emitted", stats.Emitted).
			Int64("filtered", stats.Filtered).
			Int64("malformed", stats.Malformed).
			Stringer("reason", stats.Reason).
			Msg("stopped")
	}()
	if f := d.opts.Shaper.Filter; f.Active() {
		d.logger.Debug().Str("contains", f.Contains).Str("prefix", f.Prefix).Msg("filtering topics")
	}
	for {
		if ctx.Err() != nil {
			stats.Reason = Interrupt
			return stats, nil
		}
		line, err := src.Next()
		if err != nil {
			switch {
			case ctx.Err() != nil:
				stats.Reason = Interrupt
				return stats, nil
			case errors.Is(err, io.EOF):
				stats.Reason = StreamEnd
				return stats, nil
			default:
				d.logger.Error().Err(err).Msg("stream read failed")
				stats.Reason = ReadError
				return stats, err
			}
		}
		if err := d.processLine(line, &stats); err != nil {
			if errors.Is(err, syscall.EPIPE) {
				stats.Reason = BrokenPipe
				return stats, nil
			}
			return stats, err
		}
		stats.Processed++
		if d.opts.MaxMessages > 0 && stats.Processed >= int64(d.opts.MaxMessages) {
			stats.Reason = Limit
			return stats, nil
		}
	}
}

func (d *Dumper) processLine(line string, stats *Stats) error {
	if d.opts.Raw {
		if err := d.writeRaw(line); err != nil {
			return err
		}
		stats.Emitted++
		return nil
	}
	toks, err := json.DecodeValue([]byte(line))
	if err != nil {
		stats.Malformed++
		d.logger.Debug().Err(err).Msg("malformed line")
		fmt.Fprintln(d.errOut, line)
		return nil
	}
	shaped := iterator.TransformTokens(toks, &d.opts.Shaper)
	if len(shaped) == 0 {
		stats.Filtered++
		return nil
	}
	if err := d.encoder.Encode(shaped); err != nil {
		return err
	}
	stats.Emitted++
	return nil
}

func (d *Dumper) writeRaw(line string) error {
	if _, err := d.out.WriteString(line); err != nil {
		return err
	}
	if err := d.out.WriteByte('\n'); err != nil {
		return err
	}
	return d.out.Flush()
}
