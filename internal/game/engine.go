package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"cabin_boarding/internal/models"
)

const (
	defaultRecentEvents = 20
	// stallTicks is how many ticks without any event a run may go before it
	// counts as stalled, on top of the baggage load delay.
	stallTicks = 30
)

type EngineOptions struct {
	BaggageLoadTicks int
	QueueOrder       string
	QueueSeed        int64
	RecentEvents     int
	SavePath         string
}

// Engine owns a boarding run and drives it from a ticker.
type Engine struct {
	mu        sync.Mutex
	level     models.Level
	opts      EngineOptions
	sim       *Simulation
	runID     string
	speed     int
	running   bool
	recent    []string
	lastErr   error
	lastEvent int
	listeners []Listener
	ctx       context.Context
	cancel    context.CancelFunc
	ticker    *time.Ticker
}

// NewEngine builds the first run of level. Listeners receive every event of
// every run.
func NewEngine(level models.Level, opts EngineOptions, listeners ...Listener) (*Engine, error) {
	if opts.RecentEvents <= 0 {
		opts.RecentEvents = defaultRecentEvents
	}
	e := &Engine{
		level:     level,
		opts:      opts,
		speed:     1,
		listeners: listeners,
	}
	if err := e.resetLocked(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) resetLocked() error {
	opts := []Option{WithListener(ListenerFunc(e.relayLocked))}
	if e.opts.BaggageLoadTicks > 0 {
		opts = append(opts, WithBaggageLoadTicks(e.opts.BaggageLoadTicks))
	}
	sim, err := NewSimulation(e.level, opts...)
	if err != nil {
		return err
	}
	if err := ApplyOrdering(sim, e.opts.QueueOrder, e.opts.QueueSeed); err != nil {
		return err
	}
	e.sim = sim
	e.runID = uuid.NewString()
	e.recent = []string{}
	e.lastErr = nil
	e.lastEvent = 0
	e.addEventLocked(fmt.Sprintf("run %s loaded %q with %d passengers", e.runID[:8], e.level.Name, len(sim.ordered)))
	return nil
}

// Reset stops the loop and rebuilds the run from the level.
func (e *Engine) Reset() error {
	e.PauseSim()
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resetLocked()
}

// ReorderQueue applies a named queue ordering. Boarding must not have begun.
func (e *Engine) ReorderQueue(order string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ApplyOrdering(e.sim, order, e.opts.QueueSeed); err != nil {
		return err
	}
	e.opts.QueueOrder = order
	e.addEventLocked(fmt.Sprintf("queue ordered %s", order))
	return nil
}

// AdvanceTick runs one tick. Once a tick fails the run stays failed until
// Reset.
func (e *Engine) AdvanceTick() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastErr != nil {
		return e.lastErr
	}
	if e.sim.IsComplete() {
		return nil
	}
	if err := e.sim.Tick(); err != nil {
		e.lastErr = err
		e.addEventLocked(fmt.Sprintf("run stopped: %v", err))
		return err
	}
	st := e.sim.Stats()
	if e.sim.IsComplete() {
		e.addEventLocked(fmt.Sprintf("boarding complete after %d ticks, %d steps, %d shuffles", st.Ticks, st.TotalSteps, st.Shuffles))
		return nil
	}
	if idle := st.Ticks - e.lastEvent; idle >= e.stallLimit() {
		e.lastErr = fmt.Errorf("%w: no movement for %d ticks, active %v", ErrStalled, idle, e.sim.Active())
		e.addEventLocked(fmt.Sprintf("run stopped: %v", e.lastErr))
		return e.lastErr
	}
	return nil
}

func (e *Engine) stallLimit() int {
	load := e.opts.BaggageLoadTicks
	if load <= 0 {
		load = defaultBaggageLoadTicks
	}
	return stallTicks + load
}

// Complete reports whether the current run has finished boarding.
func (e *Engine) Complete() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sim.IsComplete()
}

// Level returns the level definition the engine runs.
func (e *Engine) Level() models.Level {
	return e.level
}

func (e *Engine) Stats() models.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sim.Stats()
}

func (e *Engine) State() models.SimState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Engine) stateLocked() models.SimState {
	st := models.SimState{
		RunID:        e.runID,
		Level:        e.level.Name,
		Tick:         e.sim.Stats().Ticks,
		IsRunning:    e.running,
		Speed:        e.speed,
		Complete:     e.sim.IsComplete(),
		Stats:        e.sim.Stats(),
		Queue:        e.sim.Queue(),
		Active:       e.sim.Active(),
		Passengers:   e.sim.Passengers(),
		RecentEvents: append([]string(nil), e.recent...),
	}
	if e.lastErr != nil {
		st.Error = e.lastErr.Error()
	}
	return st
}

// SaveState writes the current run state to path, or to the configured save
// path when path is empty.
func (e *Engine) SaveState(path string) error {
	if path == "" {
		path = e.opts.SavePath
	}
	if path == "" {
		return errors.New("no save path configured")
	}
	st := e.State()
	data, err := json.MarshalIndent(&st, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// SetSpeed updates the simulation speed without starting it.
func (e *Engine) SetSpeed(speed int) {
	speed = clampSpeed(speed)
	e.mu.Lock()
	e.speed = speed
	running := e.running
	e.mu.Unlock()
	if running {
		e.startSim(speed)
	}
}

// StartSim starts the ticker loop. A non-positive speed keeps the current one.
func (e *Engine) StartSim(speed int) {
	if speed <= 0 {
		e.mu.Lock()
		speed = e.speed
		e.mu.Unlock()
	}
	e.startSim(speed)
}

func (e *Engine) startSim(speed int) {
	speed = clampSpeed(speed)
	interval := intervalForSpeed(speed)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.speed = speed
	e.running = true

	if e.ticker == nil {
		e.ticker = time.NewTicker(interval)
	} else {
		e.ticker.Reset(interval)
	}
	if e.cancel != nil {
		e.cancel()
	}
	e.ctx, e.cancel = context.WithCancel(context.Background())

	go e.run(e.ctx, e.ticker.C)
}

func (e *Engine) run(ctx context.Context, ticks <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			if err := e.AdvanceTick(); err != nil {
				log.Printf("tick failed: %v", err)
				e.PauseSim()
				return
			}
			if e.Complete() {
				e.PauseSim()
				if e.opts.SavePath != "" {
					if err := e.SaveState(""); err != nil {
						log.Printf("save run: %v", err)
					}
				}
				return
			}
		}
	}
}

// PauseSim stops the ticker loop.
func (e *Engine) PauseSim() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	if e.ticker != nil {
		e.ticker.Stop()
		e.ticker = nil
	}
}

// relayLocked is called by the simulation while e.mu is held.
func (e *Engine) relayLocked(ev models.Event) {
	e.lastEvent = ev.Tick
	if msg := describeEvent(ev); msg != "" {
		e.addEventLocked(msg)
	}
	for _, l := range e.listeners {
		l.Notify(ev)
	}
}

func (e *Engine) addEventLocked(msg string) {
	if msg == "" {
		return
	}
	e.recent = append(e.recent, msg)
	if len(e.recent) > e.opts.RecentEvents {
		e.recent = e.recent[len(e.recent)-e.opts.RecentEvents:]
	}
}

// describeEvent renders the events worth showing in the recent log.
// Single steps are too noisy and are skipped.
func describeEvent(ev models.Event) string {
	switch ev.Type {
	case models.EventSeated:
		return fmt.Sprintf("tick %d: passenger %d seated", ev.Tick, ev.PassengerID)
	case models.EventBaggageStored:
		return fmt.Sprintf("tick %d: passenger %d stored baggage at node %d", ev.Tick, ev.PassengerID, *ev.NodeID)
	case models.EventShuffleBegin:
		return fmt.Sprintf("tick %d: passenger %d shuffles past %d", ev.Tick, ev.PassengerID, len(ev.Passengers)-1)
	case models.EventShuffleEnd:
		return fmt.Sprintf("tick %d: shuffle for passenger %d done", ev.Tick, ev.PassengerID)
	default:
		return ""
	}
}

func clampSpeed(speed int) int {
	if speed < 1 {
		return 1
	}
	if speed > 4 {
		return 4
	}
	return speed
}

func intervalForSpeed(speed int) time.Duration {
	switch speed {
	case 1:
		return 2 * time.Second
	case 2:
		return 1 * time.Second
	case 3:
		return 500 * time.Millisecond
	case 4:
		return 250 * time.Millisecond
	default:
		return 2 * time.Second
	}
}
