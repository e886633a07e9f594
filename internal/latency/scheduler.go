// Package latency schedules venue-latency-delayed callbacks: an order
// submitted now fires its effect after a per-venue delay, modelling the
// network/matching-engine latency of each simulated exchange (spec §4.3).
package latency

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/mohamed-esoliman/tradepulse-go/internal/model"
)

const pollInterval = time.Millisecond

const defaultVenueLatencyMs = 50.0

// OnLatencyEvent is invoked once per scheduled delay, before it fires, so
// callers can report the applied latency alongside the eventual trade.
type OnLatencyEvent func(model.LatencyEvent)

type delayedItem struct {
	fireAt   time.Time
	seq      uint64
	callback func()
}

// Scheduler runs a single background worker that polls a pending queue and
// fires callbacks whose delay has elapsed, in FIFO order among items that
// become ready in the same poll (ties broken by enqueue sequence).
type Scheduler struct {
	mu       sync.Mutex
	venues   map[string]float64
	pending  []delayedItem
	nextSeq  uint64
	onEvent  OnLatencyEvent
	logger   *log.Logger

	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func New(logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		venues: make(map[string]float64),
		logger: logger,
	}
}

// SetOnLatencyEvent registers the callback invoked when a delay is queued.
func (s *Scheduler) SetOnLatencyEvent(fn OnLatencyEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvent = fn
}

// SetVenueLatency overrides the simulated one-way latency for a venue.
func (s *Scheduler) SetVenueLatency(venue string, latencyMs float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.venues[venue] = latencyMs
}

// LatencyFor returns the currently configured latency for venue, or the
// 50ms default for an unknown venue.
func (s *Scheduler) LatencyFor(venue string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ms, ok := s.venues[venue]; ok {
		return ms
	}
	return defaultVenueLatencyMs
}

// AddOrderDelay schedules cb to run after the venue's configured latency has
// elapsed, and reports the applied latency to the onEvent subscriber (if
// any) immediately, for the given order.
func (s *Scheduler) AddOrderDelay(orderID, venue string, cb func()) {
	latencyMs := s.LatencyFor(venue)

	s.mu.Lock()
	s.nextSeq++
	item := delayedItem{
		fireAt:   time.Now().Add(time.Duration(latencyMs * float64(time.Millisecond))),
		seq:      s.nextSeq,
		callback: cb,
	}
	s.pending = append(s.pending, item)
	onEvent := s.onEvent
	s.mu.Unlock()

	if onEvent != nil {
		onEvent(model.LatencyEvent{
			Venue:     venue,
			LatencyMs: latencyMs,
			OrderID:   orderID,
			Now:       time.Now(),
		})
	}
}

// Start launches the background worker. Idempotent.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.run()
}

// Stop halts the background worker and waits for it to exit. Idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stopCh := s.stopCh
	doneCh := s.doneCh
	s.mu.Unlock()

	close(stopCh)
	<-doneCh
}

func (s *Scheduler) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.fireReady()
		}
	}
}

// fireReady partitions the pending queue into ready/not-ready under lock,
// then invokes ready callbacks outside the lock so a slow callback never
// blocks AddOrderDelay.
func (s *Scheduler) fireReady() {
	now := time.Now()

	s.mu.Lock()
	var ready, notReady []delayedItem
	for _, item := range s.pending {
		if !item.fireAt.After(now) {
			ready = append(ready, item)
		} else {
			notReady = append(notReady, item)
		}
	}
	s.pending = notReady
	s.mu.Unlock()

	if len(ready) == 0 {
		return
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i].seq < ready[j].seq })

	for _, item := range ready {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Printf("latency: callback panic: %v", r)
				}
			}()
			item.callback()
		}()
	}
}
