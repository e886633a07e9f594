// Package source implements the Tick Source contract: start/stop an
// asynchronous producer of model.Tick values delivered to a subscriber
// callback.
package source

import "github.com/mohamed-esoliman/tradepulse-go/internal/model"

// OnTick is invoked once per observed tick. Implementations may call it from
// a dedicated worker goroutine; it is never called concurrently with itself
// for a single Source instance.
type OnTick func(model.Tick)

// Source produces a stream of market ticks. Start and Stop must both be
// idempotent: a second Start while running is a no-op, and Stop blocks until
// no further OnTick invocations will occur.
type Source interface {
	Start(on OnTick)
	Stop()
}
