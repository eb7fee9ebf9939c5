package joysticks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// defaultPollInterval paces both the per-device monitors and the change
// detection loop in Fetch. Human-input timescales, nothing finer needed.
const defaultPollInterval = 10 * time.Millisecond

// debounceKey scopes the suppression window to one code on one device so a
// press on one controller never swallows the same code on another.
type debounceKey struct {
	device string
	code   uint16
}

// Pool monitors every configured device that is connected, merging raw
// readings into a shared registry under debounce filtering and serving
// snapshot and change-wait queries against it.
//
// A pool starts stopped. Reset enumerates connected hardware, matches it
// against the configured descriptions by name and spawns one monitor
// goroutine per match; it is also the only hot-plug mechanism, devices
// connected afterwards stay invisible until the next Reset.
type Pool struct {
	descriptions []DeviceDescription
	debounce     time.Duration
	interval     time.Duration
	transport    Transport
	log          *zap.Logger

	registryMu sync.Mutex
	registry   map[string]*State

	baselineMu sync.Mutex
	baseline   map[string]*State

	debounceMu sync.Mutex
	lastAccept map[debounceKey]time.Time

	runMu    sync.Mutex
	running  bool
	cancel   context.CancelFunc
	monitors sync.WaitGroup
}

// Option adjusts pool construction.
type Option func(*Pool)

// WithLogger attaches a logger; the default is a nop.
func WithLogger(log *zap.Logger) Option {
	return func(p *Pool) { p.log = log }
}

// WithTransport substitutes the device transport, the default reads evdev.
func WithTransport(t Transport) Option {
	return func(p *Pool) { p.transport = t }
}

// WithPollInterval overrides the monitor and change-detection pacing.
func WithPollInterval(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.interval = d
		}
	}
}

// New builds a stopped pool holding one zeroed state per description.
// Button and hat updates arriving within debounce of the previously
// accepted update for the same device and code are discarded.
func New(descriptions []DeviceDescription, debounce time.Duration, opts ...Option) (*Pool, error) {

	p := &Pool{
		descriptions: descriptions,
		debounce:     debounce,
		interval:     defaultPollInterval,
		transport:    evdevTransport{},
		log:          zap.NewNop(),
		registry:     make(map[string]*State, len(descriptions)),
		baseline:     make(map[string]*State, len(descriptions)),
		lastAccept:   make(map[debounceKey]time.Time),
	}

	for _, opt := range opts {
		opt(p)
	}

	for _, desc := range descriptions {
		if err := desc.Validate(); err != nil {
			return nil, err
		}
		p.registry[desc.Name] = desc.BuildState()
		p.baseline[desc.Name] = desc.BuildState()
	}

	return p, nil
}

// Reset restarts monitoring from a clean slate: it stops any running
// monitors, re-seeds the registries to their zeroed state, clears the
// debounce stamps and spawns one monitor per connected device whose kernel
// name matches a configured description. It returns the matched names.
func (p *Pool) Reset() (matched []string, err error) {

	p.Stop()
	p.reseed()

	devices, err := p.transport.List()
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	p.runMu.Lock()
	p.running = true
	p.cancel = cancel
	p.runMu.Unlock()

	for _, dev := range devices {
		p.registryMu.Lock()
		_, ok := p.registry[dev.Name]
		p.registryMu.Unlock()
		if !ok {
			continue
		}

		matched = append(matched, dev.Name)
		p.monitors.Add(1)
		go p.monitor(ctx, dev)
	}

	p.log.Info("monitoring started", zap.Strings("devices", matched))
	return matched, nil
}

// Stop cancels every monitor and waits for them to finish, so all device
// handles are released by the time it returns. Safe to call when already
// stopped.
func (p *Pool) Stop() {

	p.runMu.Lock()
	if !p.running {
		p.runMu.Unlock()
		return
	}
	p.running = false
	cancel := p.cancel
	p.cancel = nil
	p.runMu.Unlock()

	cancel()
	p.monitors.Wait()
	p.log.Info("monitoring stopped")
}

// FetchNowait returns a snapshot of the live registry without waiting for
// a change. The snapshot becomes the new baseline and the edge-triggered
// channels (buttons, hats) are reset to neutral so a consumed press is not
// re-reported. Fails with ErrNotRunning while the pool is stopped.
func (p *Pool) FetchNowait() (map[string]State, error) {

	if !p.isRunning() {
		return nil, ErrNotRunning
	}
	return p.consume(), nil
}

// Fetch blocks until the live registry differs from the baseline, then
// consumes and returns the snapshot exactly as FetchNowait does. A context
// deadline elapsing first yields ErrTimedOut, any other context cancellation
// yields ctx.Err(), and the pool stopping mid-wait yields ErrNotRunning.
func (p *Pool) Fetch(ctx context.Context) (map[string]State, error) {

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if !p.isRunning() {
			return nil, ErrNotRunning
		}

		if p.changed() {
			return p.consume(), nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrTimedOut
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Pool) isRunning() bool {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	return p.running
}

// reseed puts both registries back to the zeroed state of every
// description and forgets all debounce stamps.
func (p *Pool) reseed() {

	p.registryMu.Lock()
	for _, desc := range p.descriptions {
		p.registry[desc.Name] = desc.BuildState()
	}
	p.registryMu.Unlock()

	p.baselineMu.Lock()
	for _, desc := range p.descriptions {
		p.baseline[desc.Name] = desc.BuildState()
	}
	p.baselineMu.Unlock()

	p.debounceMu.Lock()
	clear(p.lastAccept)
	p.debounceMu.Unlock()
}

// consume snapshots the live registry, promotes the snapshot to the
// baseline and zeroes the live button and hat entries.
func (p *Pool) consume() map[string]State {

	snapshot := make(map[string]State, len(p.descriptions))
	baseline := make(map[string]*State, len(p.descriptions))

	p.registryMu.Lock()
	for name, state := range p.registry {
		snapshot[name] = *state.clone()
		baseline[name] = state.clone()
	}
	for _, state := range p.registry {
		for code := range state.Buttons {
			state.Buttons[code] = 0
		}
		for code := range state.Hats {
			state.Hats[code] = 0
		}
	}
	p.registryMu.Unlock()

	p.baselineMu.Lock()
	p.baseline = baseline
	p.baselineMu.Unlock()

	return snapshot
}

// changed reports whether the live registry structurally differs from the
// baseline.
func (p *Pool) changed() bool {

	live := make(map[string]*State, len(p.descriptions))

	p.registryMu.Lock()
	for name, state := range p.registry {
		live[name] = state.clone()
	}
	p.registryMu.Unlock()

	p.baselineMu.Lock()
	defer p.baselineMu.Unlock()

	if len(live) != len(p.baseline) {
		return true
	}
	for name, state := range live {
		base, ok := p.baseline[name]
		if !ok || !state.Equal(base) {
			return true
		}
	}
	return false
}

// monitor is the per-device loop: poll at a fixed interval, merge each
// batch into the registry, keep going until the run context is cancelled.
func (p *Pool) monitor(ctx context.Context, dev DeviceInfo) {

	defer p.monitors.Done()

	reader, err := p.transport.Open(dev.Path)
	if err != nil {
		p.log.Warn("skipping device, open failed",
			zap.String("device", dev.Name),
			zap.String("path", dev.Path),
			zap.Error(err))
		return
	}
	defer func() { _ = reader.Close() }()

	p.log.Debug("monitor started", zap.String("device", dev.Name))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Debug("monitor stopped", zap.String("device", dev.Name))
			return
		case <-ticker.C:
		}

		update, err := reader.Poll()
		if err != nil {
			// One bad read must not kill an otherwise healthy monitor.
			p.log.Warn("poll failed, skipping cycle",
				zap.String("device", dev.Name),
				zap.Error(err))
			continue
		}
		if update.Empty() {
			continue
		}
		p.merge(dev.Name, update)
	}
}

// merge applies one poll batch atomically under the registry lock. Axes
// are level-triggered and overwritten unconditionally; buttons and hats
// pass the debounce gate first. Codes the description does not declare are
// dropped so the state key sets stay fixed.
func (p *Pool) merge(name string, update Update) {

	now := time.Now()

	p.registryMu.Lock()
	defer p.registryMu.Unlock()

	state, ok := p.registry[name]
	if !ok {
		return
	}

	for code, value := range update.Axes {
		if _, ok := state.Axes[code]; ok {
			state.Axes[code] = value
		}
	}
	for code, value := range update.Buttons {
		if _, ok := state.Buttons[code]; !ok {
			continue
		}
		if p.accept(name, code, now) {
			state.Buttons[code] = value
		}
	}
	for code, value := range update.Hats {
		if _, ok := state.Hats[code]; !ok {
			continue
		}
		if p.accept(name, code, now) {
			state.Hats[code] = value
		}
	}
}

// accept stamps and admits the update unless the previous accepted update
// for the same device and code lies within the debounce window.
func (p *Pool) accept(device string, code uint16, now time.Time) bool {

	p.debounceMu.Lock()
	defer p.debounceMu.Unlock()

	key := debounceKey{device: device, code: code}
	if last, ok := p.lastAccept[key]; ok && now.Sub(last) < p.debounce {
		return false
	}
	p.lastAccept[key] = now
	return true
}
