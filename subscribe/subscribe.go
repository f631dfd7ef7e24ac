// Package subscribe opens the subscribe-all stream of an XMTP node and reads
// it line by line.
//
// The node answers a POST to /message/v1/subscribe-all with a response that
// never ends: every envelope published on the network is sent as one JSON
// document followed by a new line.
package subscribe

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Path of the subscribe-all endpoint, relative to the node base URL.
const Path = "/message/v1/subscribe-all"

// RequestIDHeader carries the id generated for each subscription.
const RequestIDHeader = "X-Request-Id"

const maxErrorBody = 512

// Option customises the subscription request.
type Option func(*options)

type options struct {
	userAgent string
	requestID string
	logger    zerolog.Logger
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(o *options) {
		o.userAgent = userAgent
	}
}

// WithRequestID sets the X-Request-Id header instead of a random UUID.
func WithRequestID(id string) Option {
	return func(o *options) {
		o.requestID = id
	}
}

// WithLogger sets the logger used to report the subscription.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// URL returns the subscribe-all URL for a node base URL.
func URL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + Path
}

// A StatusError is returned by Open when the node answers with a non-2xx
// status.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("subscribe-all: unexpected status %s", e.Status)
	}
	return fmt.Sprintf("subscribe-all: unexpected status %s: %s", e.Status, e.Body)
}

// A Stream is the open subscribe-all response.  It is not restartable: once
// it is closed or has ended a new one must be opened.
type Stream struct {
	body      io.ReadCloser
	rd        *bufio.Reader
	requestID string
	err       error
	lines     int64
	bytes     int64
	closeOnce sync.Once
	closeErr  error
}

// Open posts an empty JSON object to the subscribe-all endpoint of baseURL
// and returns the response stream.  Cancelling ctx aborts the request, and
// any Next call blocked on it.
//
// The client should not have a timeout as the response is unbounded.  If it
// is nil, http.DefaultClient is used.
func Open(ctx context.Context, client *http.Client, baseURL string, opts ...Option) (*Stream, error) {
	o := options{
		userAgent: "xmtpdump",
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.requestID == "" {
		o.requestID = uuid.NewString()
	}
	if client == nil {
		client = http.DefaultClient
	}

	url := URL(baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader("{}"))
	if err != nil {
		return nil, fmt.Errorf("subscribe-all request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", o.userAgent)
	req.Header.Set(RequestIDHeader, o.requestID)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("subscribe-all: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(excerpt)),
		}
	}

	o.logger.Info().
		Str("url", url).
		Str("request_id", o.requestID).
		Int("status", resp.StatusCode).
		Msg("subscribed")

	return &Stream{
		body:      resp.Body,
		rd:        bufio.NewReader(resp.Body),
		requestID: o.requestID,
	}, nil
}

// Next returns the next non-empty line, with surrounding white space
// removed and invalid UTF-8 replaced by U+FFFD.  It returns io.EOF when the
// node has closed the stream.  Lines can be of any length.
func (s *Stream) Next() (string, error) {
	for s.err == nil {
		raw, err := s.rd.ReadBytes('\n')
		if err != nil {
			if err != io.EOF {
				err = fmt.Errorf("read subscribe-all stream: %w", err)
			}
			s.err = err
		}
		if len(raw) == 0 {
			continue
		}
		s.bytes += int64(len(raw))
		if line := decodeLine(raw); line != "" {
			s.lines++
			return line, nil
		}
	}
	return "", s.err
}

// Close releases the connection.  It can be called more than once.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.body.Close()
	})
	return s.closeErr
}

// RequestID returns the X-Request-Id sent with the subscription.
func (s *Stream) RequestID() string {
	return s.requestID
}

// Lines returns the number of non-empty lines returned so far.
func (s *Stream) Lines() int64 {
	return s.lines
}

// Bytes returns the number of bytes read from the response body.
func (s *Stream) Bytes() int64 {
	return s.bytes
}

var replacementChar = []byte("�")

func decodeLine(raw []byte) string {
	fixed, _, err := transform.Bytes(runes.ReplaceIllFormed(), raw)
	if err != nil {
		fixed = bytes.ToValidUTF8(raw, replacementChar)
	}
	return strings.TrimSpace(string(fixed))
}
