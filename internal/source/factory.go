package source

import (
	"fmt"
	"time"

	"github.com/mohamed-esoliman/tradepulse-go/internal/config"
)

const defaultSyntheticStartPrice = 100.0
const defaultSyntheticInterval = 100 * time.Millisecond

// New constructs the Source variant indicated by kind, bound to symbol (and
// exchange/replay parameters where applicable).
func New(kind config.SourceKind, exchange, symbol, replayFile string, replaySpeed float64, seed int64) (Source, error) {
	switch kind {
	case config.SourceSynthetic:
		return NewSynthetic(symbol, defaultSyntheticInterval, defaultSyntheticStartPrice, seed), nil
	case config.SourceLive:
		return NewLive(exchange, symbol), nil
	case config.SourceReplay:
		return NewReplay(replayFile, replaySpeed), nil
	default:
		return nil, fmt.Errorf("unknown source kind: %q", kind)
	}
}
