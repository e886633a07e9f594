package source

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mohamed-esoliman/tradepulse-go/internal/model"
)

// Replay reads an append-only newline-delimited tick file and paces emission
// to the gaps between each record's timestamp, scaled by Speed (spec §4.1).
//
// The parser is intentionally a direct key search rather than a full JSON
// parser (spec §6, §9): it tolerates unknown fields but requires the fields
// it does look for to carry unambiguous quoted-string or bare-numeric
// values.
type Replay struct {
	Path  string
	Speed float64

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewReplay creates a replay source over the ndjson-like file at path.
func NewReplay(path string, speed float64) *Replay {
	if speed <= 0 {
		speed = 1.0
	}
	return &Replay{Path: path, Speed: speed}
}

// Start begins replaying records. Idempotent while already running.
func (r *Replay) Start(on OnTick) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	stopCh := r.stopCh
	doneCh := r.doneCh
	r.mu.Unlock()

	go r.run(on, stopCh, doneCh)
}

func (r *Replay) run(on OnTick, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	f, err := os.Open(r.Path)
	if err != nil {
		// "Replay open failure is equivalent to immediate EOF" (spec §4.1).
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var lastTs int64
	haveLast := false

	for scanner.Scan() {
		select {
		case <-stopCh:
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		rec, ok := parseReplayRecord(line)
		if !ok {
			continue
		}

		if haveLast && rec.ts > lastTs {
			delay := time.Duration(float64(rec.ts-lastTs)/r.Speed) * time.Millisecond
			if !r.sleepInterruptible(delay, stopCh) {
				return
			}
		}
		lastTs = rec.ts
		haveLast = true

		on(model.Tick{
			Venue:            rec.venue,
			Symbol:           rec.symbol,
			Price:            rec.price,
			Size:             rec.size,
			ExchangeRecvTsMs: -1,
			IngestTsMs:       rec.ts,
		})
	}
}

// sleepInterruptible sleeps for d, returning false if stopCh fires first.
func (r *Replay) sleepInterruptible(d time.Duration, stopCh chan struct{}) bool {
	if d <= 0 {
		select {
		case <-stopCh:
			return false
		default:
			return true
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-stopCh:
		return false
	case <-timer.C:
		return true
	}
}

// Stop blocks until the worker has exited. Idempotent.
func (r *Replay) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	stopCh := r.stopCh
	doneCh := r.doneCh
	r.mu.Unlock()

	close(stopCh)
	<-doneCh
}

type replayRecord struct {
	venue  string
	symbol string
	price  float64
	size   float64
	ts     int64
}

// parseReplayRecord extracts venue, symbol, price, size, and a timestamp
// field by direct key search, matching the original ad-hoc parser's
// tolerance of unrelated surrounding JSON (spec §9) while using real
// strconv/string parsing for the values themselves.
func parseReplayRecord(line string) (replayRecord, bool) {
	venue, okV := findStringField(line, "venue")
	symbol, okS := findStringField(line, "symbol")
	priceStr, okP := findValueField(line, "price")
	if !okV || !okS || !okP {
		return replayRecord{}, false
	}
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		return replayRecord{}, false
	}

	size := 0.0
	if sizeStr, ok := findValueField(line, "size"); ok {
		if v, err := strconv.ParseFloat(sizeStr, 64); err == nil {
			size = v
		}
	}

	ts, ok := findTimestamp(line)
	if !ok {
		ts = time.Now().UnixMilli()
	}

	return replayRecord{venue: venue, symbol: symbol, price: price, size: size, ts: ts}, true
}

func findTimestamp(line string) (int64, bool) {
	for _, key := range []string{"ingest_ts_ms", "server_broadcast_ts_ms"} {
		if v, ok := findValueField(line, key); ok {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// findStringField locates `"key":"value"` and returns value.
func findStringField(line, key string) (string, bool) {
	idx := strings.Index(line, `"`+key+`"`)
	if idx < 0 {
		return "", false
	}
	rest := line[idx+len(key)+2:]
	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return "", false
	}
	rest = strings.TrimSpace(rest[colon+1:])
	if len(rest) == 0 || rest[0] != '"' {
		return "", false
	}
	rest = rest[1:]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// findValueField locates `"key":value` where value is a bare token (number)
// and returns it as a trimmed string, stopping at the next comma/brace.
func findValueField(line, key string) (string, bool) {
	idx := strings.Index(line, `"`+key+`"`)
	if idx < 0 {
		return "", false
	}
	rest := line[idx+len(key)+2:]
	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return "", false
	}
	rest = strings.TrimSpace(rest[colon+1:])
	if len(rest) == 0 {
		return "", false
	}
	if rest[0] == '"' {
		rest = rest[1:]
		end := strings.IndexByte(rest, '"')
		if end < 0 {
			return "", false
		}
		return rest[:end], true
	}
	end := strings.IndexAny(rest, ",}")
	if end < 0 {
		end = len(rest)
	}
	return strings.TrimSpace(rest[:end]), true
}
