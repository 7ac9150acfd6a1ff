package dispatch

import (
	"context"
	"math/rand"
	"time"

	"github.com/marklangat/waleads-backend/internal/model"
)

// GatewaySender is the narrow contract against the external messaging
// gateway. Implementations return the gateway-assigned message id.
type GatewaySender interface {
	SendText(ctx context.Context, instance, to, text string) (string, error)
}

// Executor performs the actual send under an explicit deadline. A timeout is
// a transient failure like any other gateway error and feeds the item's
// retry counter downstream.
type Executor struct {
	Gateway GatewaySender
	Timeout time.Duration
}

// Send attempts one delivery of text to the item's destination through the
// given gateway instance. It never retries within a tick; retry bookkeeping
// belongs to the committer.
func (e *Executor) Send(ctx context.Context, instance string, item *model.DispatchableItem, text string) model.DispatchOutcome {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	msgID, err := e.Gateway.SendText(ctx, instance, item.Destination, text)
	if err != nil {
		return model.DispatchOutcome{Success: false, Err: err}
	}
	return model.DispatchOutcome{Success: true, GatewayMessageID: msgID}
}

// DelayFunc produces the artificial pause inserted between consecutive sends
// of one batch.
type DelayFunc func() time.Duration

// UniformDelay returns a delay drawn uniformly from [min, max]. Used by the
// campaign and reactivation workers to avoid presenting as bursty automated
// traffic.
func UniformDelay(min, max time.Duration) DelayFunc {
	return func() time.Duration {
		if max <= min {
			return min
		}
		return min + time.Duration(rand.Int63n(int64(max-min)+1))
	}
}

// FixedDelay returns a constant delay. Used by the lower-cadence follow-up
// worker.
func FixedDelay(d time.Duration) DelayFunc {
	return func() time.Duration { return d }
}
