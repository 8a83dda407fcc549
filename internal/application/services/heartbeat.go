package services

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	DefaultProgressInterval = 300 * time.Millisecond
	DefaultMessageInterval  = 3 * time.Second
	DefaultDecayDelay       = 500 * time.Millisecond
	DefaultMaxIncrement     = 3.0
)

type HeartbeatConfig struct {
	ProgressInterval time.Duration
	MessageInterval  time.Duration
	DecayDelay       time.Duration
	MaxIncrement     float64
	// Rand returns a value in [0, 1). Defaults to math/rand/v2.
	Rand func() float64
}

func DefaultHeartbeatConfig() HeartbeatConfig {
	return HeartbeatConfig{
		ProgressInterval: DefaultProgressInterval,
		MessageInterval:  DefaultMessageInterval,
		DecayDelay:       DefaultDecayDelay,
		MaxIncrement:     DefaultMaxIncrement,
		Rand:             rand.Float64,
	}
}

// Heartbeat drives simulated progress while a generation call is outstanding.
type Heartbeat struct {
	config HeartbeatConfig
}

func NewHeartbeat(config HeartbeatConfig) *Heartbeat {
	defaults := DefaultHeartbeatConfig()
	if config.ProgressInterval <= 0 {
		config.ProgressInterval = defaults.ProgressInterval
	}
	if config.MessageInterval <= 0 {
		config.MessageInterval = defaults.MessageInterval
	}
	if config.DecayDelay <= 0 {
		config.DecayDelay = defaults.DecayDelay
	}
	if config.MaxIncrement <= 0 {
		config.MaxIncrement = defaults.MaxIncrement
	}
	if config.Rand == nil {
		config.Rand = defaults.Rand
	}
	return &Heartbeat{config: config}
}

// Start runs onProgress and onMessage on their own periods until ctx ends or
// Stop is called. Callbacks never run after Stop returns.
func (h *Heartbeat) Start(ctx context.Context, onProgress func(increment float64), onMessage func()) *HeartbeatTicker {
	ctx, cancel := context.WithCancel(ctx)
	t := &HeartbeatTicker{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)

		progress := time.NewTicker(h.config.ProgressInterval)
		defer progress.Stop()
		message := time.NewTicker(h.config.MessageInterval)
		defer message.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-progress.C:
				onProgress(h.config.Rand() * h.config.MaxIncrement)
			case <-message.C:
				onMessage()
			}
		}
	}()

	return t
}

// ScheduleDecay runs fn once after the decay delay.
func (h *Heartbeat) ScheduleDecay(fn func()) *time.Timer {
	return time.AfterFunc(h.config.DecayDelay, fn)
}

type HeartbeatTicker struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Stop ends the ticker and waits for the tick loop to exit. It is safe to call more than once.
func (t *HeartbeatTicker) Stop() {
	t.once.Do(t.cancel)
	<-t.done
}

// Done is closed once the tick loop has exited.
func (t *HeartbeatTicker) Done() <-chan struct{} {
	return t.done
}
