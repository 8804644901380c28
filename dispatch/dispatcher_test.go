package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/opd-ai/sonicloop/decision"
	"github.com/opd-ai/sonicloop/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	p state.Parameter
	v state.Value
}

type recordingSink struct {
	mu   sync.Mutex
	msgs []sent
	err  error
}

func (r *recordingSink) Send(_ context.Context, p state.Parameter, v state.Value) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, sent{p, v})
	return nil
}

func TestExecuteSendsClampedValue(t *testing.T) {
	store := state.NewStore()
	sink := &recordingSink{}
	x := NewDispatcher(store, nil, sink)

	err := x.Execute(context.Background(), decision.Decision{
		Parameter:  state.ParamCutoff,
		Value:      state.Number(9999),
		Confidence: 0.9,
	})
	require.NoError(t, err)

	assert.Equal(t, 130.0, store.Get().Cutoff)
	require.Len(t, sink.msgs, 1)
	assert.Equal(t, state.ParamCutoff, sink.msgs[0].p)
	assert.Equal(t, 130.0, sink.msgs[0].v.Number)
	assert.Equal(t, Stats{Applied: 1}, x.Stats())
	assert.Equal(t, 1, x.History().Len())
}

func TestExecuteRejectedIsRecordedNotSent(t *testing.T) {
	store := state.NewStore()
	sink := &recordingSink{}
	x := NewDispatcher(store, decision.NewHistory(5), sink)

	err := x.Execute(context.Background(), decision.Decision{
		Parameter: state.ParamKey,
		Value:     state.Text("H"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStateRejected)
	assert.ErrorIs(t, err, state.ErrInvalidValue)

	var de *DispatchError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, state.ParamKey, de.Parameter)

	assert.Empty(t, sink.msgs)
	assert.Equal(t, state.KeyC, store.Get().Key)
	assert.Equal(t, Stats{Rejected: 1}, x.Stats())
	assert.Equal(t, 1, x.History().Len(), "attempted decisions are recorded")
}

func TestExecuteSendFailureKeepsState(t *testing.T) {
	store := state.NewStore()
	x := NewDispatcher(store, nil, &recordingSink{err: errors.New("connection refused")})

	err := x.Execute(context.Background(), decision.Decision{
		Parameter: state.ParamBPM,
		Value:     state.Number(140),
	})
	assert.ErrorIs(t, err, ErrSendFailed)
	assert.Equal(t, 140.0, store.Get().BPM)
	assert.Equal(t, Stats{Applied: 1, SendFailures: 1}, x.Stats())
}

func TestMultiSink(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{err: errors.New("b down")}
	c := &recordingSink{}
	m := MultiSink{a, b, c}

	err := m.Send(context.Background(), state.ParamEcho, state.Number(0.5))
	assert.ErrorContains(t, err, "b down")
	assert.Len(t, a.msgs, 1)
	assert.Len(t, c.msgs, 1, "later sinks still receive the message")

	assert.NoError(t, MultiSink{a, c}.Send(context.Background(), state.ParamEcho, state.Number(0.1)))
	assert.NoError(t, m.Close())
}

func TestNilSinkDiscards(t *testing.T) {
	x := NewDispatcher(state.NewStore(), nil, nil)
	assert.NoError(t, x.Execute(context.Background(), decision.Decision{
		Parameter: state.ParamReverb,
		Value:     state.Number(0.7),
	}))
}
