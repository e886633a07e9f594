package source

import (
	"sync"
	"time"

	"github.com/mohamed-esoliman/tradepulse-go/internal/model"
	"github.com/mohamed-esoliman/tradepulse-go/internal/rng"
)

const (
	synthVenue       = "SYNTH"
	defaultTickEvery = 100 * time.Millisecond
	walkStdDev       = 0.1
	walkFloor        = 1.0
)

// Synthetic is the reflecting-random-walk generator described in spec §4.1:
// one venue tag "SYNTH", a Gaussian step with mean 0 / std 0.1, clamped at a
// floor of 1.0.
type Synthetic struct {
	Symbol   string
	Interval time.Duration
	Seed     int64

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	rng   *rng.RNG
	price float64
}

// NewSynthetic creates a synthetic tick source for symbol. A zero Interval
// defaults to 100ms; startPrice anchors the random walk.
func NewSynthetic(symbol string, interval time.Duration, startPrice float64, seed int64) *Synthetic {
	if interval <= 0 {
		interval = defaultTickEvery
	}
	if startPrice < walkFloor {
		startPrice = walkFloor
	}
	return &Synthetic{
		Symbol:   symbol,
		Interval: interval,
		Seed:     seed,
		rng:      rng.New(seed),
		price:    startPrice,
	}
}

// Start begins emitting ticks. Idempotent while already running.
func (s *Synthetic) Start(on OnTick) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stopCh := s.stopCh
	doneCh := s.doneCh
	s.mu.Unlock()

	go s.run(on, stopCh, doneCh)
}

func (s *Synthetic) run(on OnTick, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			tick := s.nextTick()
			on(tick)
		}
	}
}

func (s *Synthetic) nextTick() model.Tick {
	s.mu.Lock()
	step := s.rng.Gaussian() * walkStdDev
	s.price += step
	if s.price < walkFloor {
		s.price = walkFloor
	}
	price := s.price
	s.mu.Unlock()

	return model.Tick{
		Venue:            synthVenue,
		Symbol:           s.Symbol,
		Price:            price,
		Size:             0,
		ExchangeRecvTsMs: -1,
		IngestTsMs:       time.Now().UnixMilli(),
	}
}

// Stop blocks until the worker has exited. Idempotent.
func (s *Synthetic) Stop() {
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
