package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// SamplingConfig configures log sampling.
type SamplingConfig struct {
	// Enabled turns sampling on. Disabled by default.
	Enabled bool

	// Tick is the window after which counters reset (default: 1 second).
	Tick time.Duration

	// Threshold is the number of identical records passed through per tick
	// before sampling applies (default: 100).
	Threshold uint64

	// Rate is the fraction of records kept after the threshold, in [0, 1].
	Rate float64

	// OnDropped is called for every dropped record. Panics are swallowed.
	OnDropped func(ctx context.Context, record slog.Record)
}

const (
	DefaultSamplingTick      = time.Second
	DefaultSamplingThreshold = 100
	maxSampledKeys           = 10000
)

// samplerState is shared between a handler and every handler derived from it
// through WithAttrs or WithGroup, so logger.With(...) does not reset counting.
type samplerState struct {
	mu        sync.Mutex
	counts    map[string]uint64
	lastReset time.Time
}

type samplingHandler struct {
	handler slog.Handler
	config  SamplingConfig
	state   *samplerState
	dropped *atomic.Uint64
}

// NewSamplingHandler wraps h so that, per tick, only the first Threshold records
// with the same level and message pass through, followed by a deterministic
// Rate fraction of the rest. Warn and error records are never sampled.
func NewSamplingHandler(h slog.Handler, cfg SamplingConfig) slog.Handler {
	if !cfg.Enabled {
		return h
	}
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultSamplingTick
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultSamplingThreshold
	}

	return &samplingHandler{
		handler: h,
		config:  cfg,
		state: &samplerState{
			counts:    make(map[string]uint64),
			lastReset: time.Now(),
		},
		dropped: &atomic.Uint64{},
	}
}

func (h *samplingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *samplingHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelWarn {
		return h.handler.Handle(ctx, r)
	}

	count, tracked := h.state.observe(r.Level.String()+":"+r.Message, h.config.Tick)
	if !tracked || count <= h.config.Threshold || keep(count, h.config.Rate) {
		return h.handler.Handle(ctx, r)
	}

	h.dropped.Add(1)
	h.onDropped(ctx, r)
	return nil
}

func (h *samplingHandler) onDropped(ctx context.Context, r slog.Record) {
	if h.config.OnDropped == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	h.config.OnDropped(ctx, r)
}

func (h *samplingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &samplingHandler{
		handler: h.handler.WithAttrs(attrs),
		config:  h.config,
		state:   h.state,
		dropped: h.dropped,
	}
}

func (h *samplingHandler) WithGroup(name string) slog.Handler {
	return &samplingHandler{
		handler: h.handler.WithGroup(name),
		config:  h.config,
		state:   h.state,
		dropped: h.dropped,
	}
}

// Dropped reports how many records the sampler has discarded.
func (h *samplingHandler) Dropped() uint64 {
	return h.dropped.Load()
}

// observe increments the counter for key and returns its new value. Once the
// table is full, unseen keys are not tracked and always pass through.
func (s *samplerState) observe(key string, tick time.Duration) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now := time.Now(); now.Sub(s.lastReset) >= tick {
		clear(s.counts)
		s.lastReset = now
	}

	n, ok := s.counts[key]
	if !ok && len(s.counts) >= maxSampledKeys {
		return 0, false
	}
	n++
	s.counts[key] = n
	return n, true
}

func keep(count uint64, rate float64) bool {
	if rate >= 1 {
		return true
	}
	if rate <= 0 {
		return false
	}
	interval := uint64(1 / rate)
	return count%interval == 0
}
