package dispatch

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/opd-ai/sonicloop/decision"
	"github.com/opd-ai/sonicloop/state"
	"github.com/sirupsen/logrus"
)

// Stats counts dispatch outcomes since creation.
type Stats struct {
	Applied      uint64 `json:"applied"`
	Rejected     uint64 `json:"rejected"`
	SendFailures uint64 `json:"send_failures"`
}

// Dispatcher applies decisions to the store, records them and emits the
// resulting value through a Sink. It is safe for concurrent use.
type Dispatcher struct {
	store   *state.Store
	history *decision.History
	sink    Sink

	applied      atomic.Uint64
	rejected     atomic.Uint64
	sendFailures atomic.Uint64
}

// NewDispatcher creates a dispatcher. A nil history keeps the default 50
// decisions; a nil sink discards messages.
func NewDispatcher(store *state.Store, history *decision.History, sink Sink) *Dispatcher {
	if history == nil {
		history = decision.NewHistory(decision.DefaultHistorySize)
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &Dispatcher{store: store, history: history, sink: sink}
}

// Execute applies d, appends it to the history whether or not it succeeds,
// and sends the value the store actually holds afterwards. A rejected
// decision sends nothing.
func (x *Dispatcher) Execute(ctx context.Context, d decision.Decision) error {
	snapshot, err := x.store.Apply(d.Parameter, d.Value)
	x.history.Append(d)
	if err != nil {
		x.rejected.Add(1)
		logrus.WithFields(logrus.Fields{
			"function":  "Dispatcher.Execute",
			"parameter": d.Parameter.String(),
			"value":     d.Value.String(),
			"error":     err.Error(),
		}).Warn("Decision rejected")
		return &DispatchError{Parameter: d.Parameter, Err: fmt.Errorf("%w: %w", ErrStateRejected, err)}
	}
	x.applied.Add(1)

	stored := snapshot.Value(d.Parameter)
	if err := x.sink.Send(ctx, d.Parameter, stored); err != nil {
		x.sendFailures.Add(1)
		logrus.WithFields(logrus.Fields{
			"function":  "Dispatcher.Execute",
			"parameter": d.Parameter.String(),
			"value":     stored.String(),
			"error":     err.Error(),
		}).Warn("Control message not sent")
		return &DispatchError{Parameter: d.Parameter, Err: fmt.Errorf("%w: %w", ErrSendFailed, err)}
	}

	logrus.WithFields(logrus.Fields{
		"function":   "Dispatcher.Execute",
		"parameter":  d.Parameter.String(),
		"value":      stored.String(),
		"confidence": d.Confidence,
		"reason":     d.Reason,
	}).Info("Decision dispatched")

	return nil
}

// History returns the decision history.
func (x *Dispatcher) History() *decision.History {
	return x.history
}

// Stats returns the outcome counters.
func (x *Dispatcher) Stats() Stats {
	return Stats{
		Applied:      x.applied.Load(),
		Rejected:     x.rejected.Load(),
		SendFailures: x.sendFailures.Load(),
	}
}
