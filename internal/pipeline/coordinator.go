// Package pipeline wires the Source → Strategy → (Book | Scheduler → Book)
// → Broadcast Server chain, owns its lifecycle, and dispatches the
// /control and /info hot-reconfiguration endpoints (spec §4.6).
package pipeline

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mohamed-esoliman/tradepulse-go/internal/book"
	"github.com/mohamed-esoliman/tradepulse-go/internal/broadcast"
	"github.com/mohamed-esoliman/tradepulse-go/internal/config"
	"github.com/mohamed-esoliman/tradepulse-go/internal/latency"
	"github.com/mohamed-esoliman/tradepulse-go/internal/model"
	"github.com/mohamed-esoliman/tradepulse-go/internal/protocol"
	"github.com/mohamed-esoliman/tradepulse-go/internal/source"
	"github.com/mohamed-esoliman/tradepulse-go/internal/strategy"
)

// strategyBox boxes a Strategy so it can live behind an atomic.Pointer: an
// interface value itself can't be the type parameter of atomic.Pointer.
type strategyBox struct {
	s    strategy.Strategy
	name string
}

// Coordinator owns every long-lived component and the mutable "current
// source/strategy" state that /control mutates at runtime.
type Coordinator struct {
	logger      *log.Logger
	book        *book.Book
	scheduler   *latency.Scheduler
	manager     *broadcast.Manager
	latencyMode config.LatencyMode
	seed        int64

	active atomic.Pointer[strategyBox]

	heartbeatStop chan struct{}
	stopOnce      sync.Once

	mu         sync.Mutex
	curSource  source.Source
	sourceKind config.SourceKind
	exchange   string
	symbol     string
	replayFile string
	replaySpeed float64
}

func New(cfg *config.Config, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.Default()
	}

	c := &Coordinator{
		logger:        logger,
		scheduler:     latency.New(logger),
		manager:       broadcast.NewManager(64, logger),
		latencyMode:   cfg.LatencyMode,
		seed:          cfg.Seed,
		sourceKind:    cfg.Source,
		exchange:      cfg.Exchange,
		symbol:        cfg.Symbol,
		replayFile:    cfg.ReplayFile,
		replaySpeed:   cfg.ReplaySpeed,
		heartbeatStop: make(chan struct{}),
	}
	c.book = book.New(c.onTrade)

	for venue, ms := range cfg.ModelledLatencyMs {
		c.scheduler.SetVenueLatency(venue, ms)
	}
	c.scheduler.SetOnLatencyEvent(c.onLatencyEvent)
	c.manager.SetOnDisconnect(c.onDisconnect)

	name := cfg.Strategy
	st, err := strategy.New(name, cfg.Lookback, cfg.OrderQty, c.onOrder)
	if err != nil {
		logger.Printf("pipeline: %v, falling back to momentum", err)
		name = "momentum"
		st, _ = strategy.New(name, cfg.Lookback, cfg.OrderQty, c.onOrder)
	}
	c.active.Store(&strategyBox{s: st, name: name})

	return c
}

// Manager exposes the broadcast manager so main can register its HTTP
// routes.
func (c *Coordinator) Manager() *broadcast.Manager { return c.manager }

// Start launches the scheduler and then the initially configured Source,
// back to back, plus the heartbeat loop. The HTTP/WebSocket listener is not
// started here; cmd/tradepulse starts it after Start returns, so the Source
// is already running when the server begins accepting connections.
func (c *Coordinator) Start() {
	c.scheduler.Start()
	c.startSourceLocked()

	go c.manager.RunHeartbeat(c.heartbeatStop, func() any {
		return protocol.NewHeartbeatMessage(time.Now().UnixMilli())
	})
}

// Stop halts the Source and then the Scheduler, mirroring spec §5's
// shutdown order (the Server's own listener is closed by the caller).
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() { close(c.heartbeatStop) })

	c.mu.Lock()
	src := c.curSource
	c.curSource = nil
	c.mu.Unlock()

	if src != nil {
		src.Stop()
	}
	c.scheduler.Stop()
}

func (c *Coordinator) startSourceLocked() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.curSource != nil {
		return
	}
	src, err := source.New(c.sourceKind, c.exchange, c.symbol, c.replayFile, c.replaySpeed, c.seed)
	if err != nil {
		c.logger.Printf("pipeline: failed to build source: %v", err)
		return
	}
	c.curSource = src
	src.Start(c.onTick)
}

func (c *Coordinator) onTick(tick model.Tick) {
	box := c.active.Load()
	if box == nil {
		return
	}
	box.s.OnMarketTick(tick)
}

// onOrder routes a freshly emitted order to the book directly (measured
// mode) or through the latency scheduler (modelled/both).
func (c *Coordinator) onOrder(order model.Order) {
	if c.latencyMode == config.LatencyMeasured {
		c.book.Submit(order, time.Now(), 0)
		return
	}

	latencyMs := c.scheduler.LatencyFor(order.Venue)
	c.scheduler.AddOrderDelay(order.ID, order.Venue, func() {
		c.book.Submit(order, time.Now(), latencyMs)
	})
}

// onTrade serializes a Trade to the broadcast wire shape, stamping
// server_broadcast_ts_ms at the moment of transmission.
func (c *Coordinator) onTrade(t model.Trade) {
	msg := protocol.NewTradeMessage(t, time.Now().UnixMilli())
	c.manager.Broadcast(msg)
}

func (c *Coordinator) onLatencyEvent(e model.LatencyEvent) {
	msg := protocol.NewLatencyMessage(e, time.Now().UnixMilli())
	c.manager.Broadcast(msg)
}

// onDisconnect logs a client eviction; spec §4.5/§8 S4 only requires the
// subscriber fire exactly once, not any particular action on it.
func (c *Coordinator) onDisconnect(clientID uint64) {
	c.logger.Printf("pipeline: client %d disconnected", clientID)
}

// InfoBody renders the current strategy/source state as key=value lines,
// the body GET /info returns (spec §4.5). An optional ?recent_trades=N
// query parameter appends the last N trades from the Execution Book's
// history as additional diagnostic lines (SPEC_FULL.md §12).
func (c *Coordinator) InfoBody(r *http.Request) string {
	box := c.active.Load()

	c.mu.Lock()
	srcKind := c.sourceKind
	sym := c.symbol
	c.mu.Unlock()

	strategyName, lookback, orderQty := "", 0, 0
	if box != nil {
		strategyName, lookback, orderQty = box.name, box.s.Lookback(), box.s.OrderQuantity()
	}

	body := fmt.Sprintf("strategy=%s\nlookback=%d\norder_qty=%d\nsource=%s\nsymbol=%s\n",
		strategyName, lookback, orderQty, srcKind, sym)

	if r != nil {
		if n, err := strconv.Atoi(r.URL.Query().Get("recent_trades")); err == nil && n > 0 {
			body += c.recentTradesDiagnostics(n)
		}
	}
	return body
}

// recentTradesDiagnostics renders the last n Execution Book trades as
// key=value lines, one per trade, oldest first.
func (c *Coordinator) recentTradesDiagnostics(n int) string {
	trades := c.book.RecentTrades(n)
	var b strings.Builder
	fmt.Fprintf(&b, "recent_trades=%d\n", len(trades))
	for i, t := range trades {
		fmt.Fprintf(&b, "trade_%d=%s:%s:%s:%g:%g:%g\n", i, t.Venue, t.Symbol, t.Side, t.Price, t.Size, t.PnL)
	}
	return b.String()
}

// ControlBody applies a /control request's query parameters to the running
// pipeline (spec §4.6) and returns the acknowledgement body.
func (c *Coordinator) ControlBody(r *http.Request) string {
	if err := c.apply(r.URL.Query()); err != nil {
		return err.Error()
	}
	return "ok"
}

func (c *Coordinator) apply(q url.Values) error {
	if action := q.Get("action"); action != "" {
		switch action {
		case "stop":
			c.stopSource()
		case "start":
			c.startSourceLocked()
		default:
			return fmt.Errorf("unknown action: %q", action)
		}
	}

	if name := q.Get("strategy"); name != "" {
		c.swapStrategy(name)
	}
	if lb := q.Get("lookback"); lb != "" {
		if n, err := strconv.Atoi(lb); err == nil {
			if box := c.active.Load(); box != nil {
				box.s.SetLookback(n)
			}
		}
	}
	if oq := q.Get("order_qty"); oq != "" {
		if n, err := strconv.Atoi(oq); err == nil {
			if box := c.active.Load(); box != nil {
				box.s.SetOrderQuantity(n)
			}
		}
	}
	if kind := q.Get("source"); kind != "" {
		c.swapSource(config.SourceKind(kind), q.Get("symbol"))
	}
	return nil
}

func (c *Coordinator) stopSource() {
	c.mu.Lock()
	src := c.curSource
	c.curSource = nil
	c.mu.Unlock()
	if src != nil {
		src.Stop()
	}
}

// swapStrategy rebinds the active strategy pointer. In-flight orders already
// queued in the scheduler are not retracted and will still reach the book.
func (c *Coordinator) swapStrategy(name string) {
	cur := c.active.Load()
	lookback, orderQty := 1, 1
	if cur != nil {
		lookback, orderQty = cur.s.Lookback(), cur.s.OrderQuantity()
	}
	st, err := strategy.New(name, lookback, orderQty, c.onOrder)
	if err != nil {
		c.logger.Printf("pipeline: control: %v", err)
		return
	}
	c.active.Store(&strategyBox{s: st, name: name})
}

// swapSource stops the current Source (if any) and installs + starts a new
// one of the given kind bound to symbol (when supplied).
func (c *Coordinator) swapSource(kind config.SourceKind, symbol string) {
	c.mu.Lock()
	old := c.curSource
	c.curSource = nil
	c.sourceKind = kind
	if symbol != "" {
		c.symbol = symbol
	}
	sk, exch, sym, rf, rs, seed := c.sourceKind, c.exchange, c.symbol, c.replayFile, c.replaySpeed, c.seed
	c.mu.Unlock()

	if old != nil {
		old.Stop()
	}

	src, err := source.New(sk, exch, sym, rf, rs, seed)
	if err != nil {
		c.logger.Printf("pipeline: control: failed to build source: %v", err)
		return
	}

	c.mu.Lock()
	c.curSource = src
	c.mu.Unlock()

	src.Start(c.onTick)
}
