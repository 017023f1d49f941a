// Package server exposes the tokenizer over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/example/go-tekken/internal/audio"
	"github.com/example/go-tekken/internal/config"
	"github.com/example/go-tekken/internal/tokenizer"
)

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// Codec is the tokenizer surface the HTTP handlers need.
type Codec interface {
	Encode(text string, addBOS, addEOS bool) ([]uint32, error)
	Decode(ids []uint32, policy tokenizer.SpecialTokenPolicy) (string, error)
	EncodeAudio(a audio.Audio) (audio.Encoding, error)
	VocabSize() int
	NumSpecialTokens() int
	Version() tokenizer.Version
	HasAudioSupport() bool
}

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxTextBytes   int
	maxAudioBytes  int
	workers        int
	requestTimeout time.Duration
	logger         *slog.Logger
}

func defaultOptions() options {
	return options{
		maxTextBytes:   1 << 20,
		maxAudioBytes:  32 << 20,
		workers:        4,
		requestTimeout: 60 * time.Second,
		logger:         slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxTextBytes sets the maximum allowed text length in bytes for POST /encode.
func WithMaxTextBytes(n int) Option {
	return func(o *options) { o.maxTextBytes = n }
}

// WithMaxAudioBytes sets the maximum allowed decoded audio payload size for
// POST /encode-audio.
func WithMaxAudioBytes(n int) Option {
	return func(o *options) { o.maxAudioBytes = n }
}

// WithWorkers sets the maximum number of concurrent tokenization calls.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithRequestTimeout sets the per-request deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

// handler holds the dependencies needed to serve HTTP requests.
type handler struct {
	codec Codec
	opts  options
	sem   chan struct{} // semaphore for worker pool
	log   *slog.Logger
}

// NewHandler returns an http.Handler serving /health, POST /encode,
// POST /decode, and POST /encode-audio.
func NewHandler(codec Codec, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		codec: codec,
		opts:  opts,
		log:   opts.logger,
	}
	if opts.workers > 0 {
		h.sem = make(chan struct{}, opts.workers)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/encode", h.handleEncode)
	mux.HandleFunc("/decode", h.handleDecode)
	mux.HandleFunc("/encode-audio", h.handleEncodeAudio)

	if opts.requestTimeout > 0 {
		return http.TimeoutHandler(mux, opts.requestTimeout, `{"error":"request timed out"}`)
	}
	return mux
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"version":           buildVersion(),
		"tokenizer_version": string(h.codec.Version()),
		"vocab_size":        h.codec.VocabSize(),
		"num_special":       h.codec.NumSpecialTokens(),
		"audio":             h.codec.HasAudioSupport(),
	})
}

// acquire blocks until a worker slot is free or the request is cancelled.
// The returned release func is a no-op when throttling is disabled.
func (h *handler) acquire(r *http.Request) (release func(), ok bool) {
	if h.sem == nil {
		return func() {}, true
	}
	select {
	case h.sem <- struct{}{}:
		return func() { <-h.sem }, true
	case <-r.Context().Done():
		return nil, false
	}
}

type encodeRequest struct {
	Text   string `json:"text"`
	AddBOS bool   `json:"add_bos"`
	AddEOS bool   `json:"add_eos"`
}

type encodeResponse struct {
	IDs   []uint32 `json:"ids"`
	Count int      `json:"count"`
}

func (h *handler) handleEncode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req encodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if len(req.Text) > h.opts.maxTextBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("text exceeds maximum size of %d bytes", h.opts.maxTextBytes))
		return
	}

	release, ok := h.acquire(r)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for worker")
		return
	}
	defer release()

	start := time.Now()
	ids, err := h.codec.Encode(req.Text, req.AddBOS, req.AddEOS)
	if err != nil {
		h.log.ErrorContext(r.Context(), "encode failed",
			slog.Int("text_len", len(req.Text)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.log.InfoContext(r.Context(), "encode complete",
		slog.Int("text_len", len(req.Text)),
		slog.Int("tokens", len(ids)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	if ids == nil {
		ids = []uint32{}
	}
	writeJSON(w, http.StatusOK, encodeResponse{IDs: ids, Count: len(ids)})
}

type decodeRequest struct {
	IDs                []uint32 `json:"ids"`
	SpecialTokenPolicy string   `json:"special_token_policy"`
}

type decodeResponse struct {
	Text string `json:"text"`
}

func (h *handler) handleDecode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req decodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	policy, err := tokenizer.ParseSpecialTokenPolicy(req.SpecialTokenPolicy)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	release, ok := h.acquire(r)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for worker")
		return
	}
	defer release()

	text, err := h.codec.Decode(req.IDs, policy)
	if err != nil {
		var unknownErr *tokenizer.UnknownTokenIDError
		var specialErr *tokenizer.UnexpectedSpecialTokenError
		if errors.As(err, &unknownErr) || errors.As(err, &specialErr) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.log.ErrorContext(r.Context(), "decode failed",
			slog.Int("tokens", len(req.IDs)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, decodeResponse{Text: text})
}

type encodeAudioRequest struct {
	// Base64-encoded WAV bytes.
	Audio string `json:"audio"`
}

type encodeAudioResponse struct {
	IDs             []uint32 `json:"ids"`
	FrameCount      int      `json:"frame_count"`
	DurationSeconds float64  `json:"duration_s"`
}

func (h *handler) handleEncodeAudio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if !h.codec.HasAudioSupport() {
		writeError(w, http.StatusNotImplemented, "tokenizer has no audio configuration")
		return
	}

	var req encodeAudioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if req.Audio == "" {
		writeError(w, http.StatusBadRequest, "audio field is required")
		return
	}

	// Base64 expands by 4/3; bound the encoded form accordingly.
	if len(req.Audio) > h.opts.maxAudioBytes/3*4 {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("audio exceeds maximum size of %d bytes", h.opts.maxAudioBytes))
		return
	}

	wave, err := audio.FromBase64(req.Audio)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	release, ok := h.acquire(r)
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for worker")
		return
	}
	defer release()

	start := time.Now()
	enc, err := h.codec.EncodeAudio(wave)
	if err != nil {
		if errors.Is(err, audio.ErrEmptyAudio) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.ErrorContext(r.Context(), "audio encode failed",
			slog.Int("samples", len(wave.Samples)),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.log.InfoContext(r.Context(), "audio encode complete",
		slog.Int("samples", len(wave.Samples)),
		slog.Int("frames", enc.FrameCount),
		slog.Int("tokens", len(enc.Tokens)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	writeJSON(w, http.StatusOK, encodeAudioResponse{
		IDs:             enc.Tokens,
		FrameCount:      enc.FrameCount,
		DurationSeconds: enc.Audio.Duration(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server — wires handler into net/http.Server with graceful shutdown
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.Config
	codec           Codec
	shutdownTimeout time.Duration
}

func New(cfg config.Config, codec Codec) *Server {
	return &Server{
		cfg:             cfg,
		codec:           codec,
		shutdownTimeout: 30 * time.Second,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

func (s *Server) Start(ctx context.Context) error {
	if s.codec == nil {
		return errors.New("server requires a tokenizer")
	}

	h := NewHandler(s.codec,
		WithWorkers(s.cfg.Server.Workers),
		WithMaxTextBytes(s.cfg.Server.MaxTextBytes),
		WithMaxAudioBytes(s.cfg.Server.MaxAudioBytes),
		WithRequestTimeout(time.Duration(s.cfg.Server.RequestTimeout)*time.Second),
	)

	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}

// ProbeHTTP checks a running server's health endpoint.
func ProbeHTTP(addr string) error {
	resp, err := http.Get("http://" + addr + "/health") //nolint:noctx
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %s", resp.Status)
	}
	return nil
}
