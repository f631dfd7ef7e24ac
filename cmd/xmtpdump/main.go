package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/arnodel/xmtpdump/dumper"
	"github.com/arnodel/xmtpdump/envelope"
	"github.com/arnodel/xmtpdump/internal/config"
	"github.com/arnodel/xmtpdump/internal/format"
	"github.com/arnodel/xmtpdump/internal/logging"
	"github.com/arnodel/xmtpdump/subscribe"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
)

// Build variables - set by ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes
const (
	exitOK          = 0
	exitError       = 1
	exitUsage       = 2
	exitInterrupted = 130
)

func main() {
	// Do not handle SIGPIPE, a closed stdout is detected when writing.
	signal.Ignore(syscall.SIGPIPE)

	// Display a stack trace on panic
	defer func() {
		if e := recover(); e != nil {
			fmt.Fprintf(os.Stderr, "%s: %s", e, debug.Stack())
			os.Exit(exitError)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load("xmtpdump", args, stderr)
	if err != nil {
		var uerr *config.UsageError
		switch {
		case errors.Is(err, pflag.ErrHelp):
			return exitOK
		case errors.As(err, &uerr):
			return exitUsage
		default:
			fmt.Fprintf(stderr, "error: %s\n", err)
			return exitError
		}
	}
	if cfg.ShowVersion {
		fmt.Fprintf(stdout, "xmtpdump %s (commit %s)\n", version, commit)
		return exitOK
	}

	logger := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Writer:  stderr,
		NoColor: !isTerminal(stderr),
	})
	if cfg.ConfigFile != "" {
		logger.Debug().Str("path", cfg.ConfigFile).Msg("config file loaded")
	}

	colorizer := chooseColorizer(cfg.Color, stdout)
	if colorizer != nil {
		if f, ok := stdout.(*os.File); ok {
			stdout = colorable.NewColorable(f)
		}
	}

	stream, err := subscribe.Open(ctx, http.DefaultClient, cfg.SubscribeBaseURL(),
		subscribe.WithUserAgent("xmtpdump/"+version),
		subscribe.WithLogger(logger),
	)
	if err != nil {
		if ctx.Err() != nil {
			return interrupted(stderr)
		}
		fmt.Fprintf(stderr, "error: %s\n", err)
		return exitError
	}
	defer stream.Close()

	d := dumper.New(stdout, stderr, dumper.Options{
		Raw:         cfg.Raw,
		Pretty:      cfg.Pretty,
		Colorizer:   colorizer,
		MaxMessages: cfg.MaxMessages,
		Shaper: envelope.Shaper{
			Filter: envelope.TopicFilter{
				Contains: cfg.TopicContains,
				Prefix:   cfg.TopicPrefix,
			},
			Message: envelope.MessageOptions{
				Decode:     cfg.DecodeMessage,
				HexMax:     cfg.HexMax,
				MessageMax: cfg.MessageMax,
				Omit:       cfg.OmitMessage,
			},
		},
	}, logger.With().Str("request_id", stream.RequestID()).Logger())

	stats, err := d.Run(ctx, stream)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return exitError
	}
	if stats.Reason == dumper.Interrupt {
		return interrupted(stderr)
	}
	return exitOK
}

func interrupted(stderr io.Writer) int {
	fmt.Fprintln(stderr, "\nInterrupted.")
	return exitInterrupted
}

// chooseColorizer returns the colorizer for a --color mode.  In auto mode
// output is colored only when it goes to a terminal.
func chooseColorizer(mode string, stdout io.Writer) *format.Colorizer {
	switch mode {
	case "always":
		return &format.DefaultColorizer
	case "auto":
		if isTerminal(stdout) {
			return &format.DefaultColorizer
		}
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
