package query

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var testTx = common.HexToHash("0xabc123")

func TestMutationLifecycle(t *testing.T) {
	var states []MutationState
	m := NewMutation(
		func(ctx context.Context) (common.Hash, error) { return testTx, nil },
		func(ctx context.Context, tx common.Hash) error { return nil },
	)
	invalidated := false
	m.OnSuccess(func(context.Context) { invalidated = true })

	if m.State() != StateIdle {
		t.Fatalf("initial state = %q", m.State())
	}

	if err := m.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	states = append(states, m.State())

	if states[0] != StateSucceeded {
		t.Errorf("final state = %q", states[0])
	}
	if m.TxHash() != testTx {
		t.Errorf("tx hash = %s", m.TxHash())
	}
	if !invalidated {
		t.Error("success callback did not fire")
	}

	if err := m.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if m.State() != StateIdle || m.TxHash() != (common.Hash{}) {
		t.Error("Reset did not clear state")
	}
}

func TestMutationSubmitFailure(t *testing.T) {
	cause := errors.New("user rejected")
	m := NewMutation(
		func(ctx context.Context) (common.Hash, error) { return common.Hash{}, cause },
		func(ctx context.Context, tx common.Hash) error { return nil },
	)
	fired := false
	m.OnSuccess(func(context.Context) { fired = true })

	err := m.Execute(context.Background())
	if !errors.Is(err, cause) {
		t.Fatalf("Execute error = %v", err)
	}
	if m.State() != StateFailed {
		t.Errorf("state = %q, want failed", m.State())
	}
	if !errors.Is(m.Err(), cause) {
		t.Errorf("Err() = %v", m.Err())
	}
	if fired {
		t.Error("success callback fired on failure")
	}
	// No tx was broadcast, so no hash.
	if m.TxHash() != (common.Hash{}) {
		t.Errorf("tx hash = %s, want zero", m.TxHash())
	}
}

func TestMutationConfirmFailureKeepsHash(t *testing.T) {
	cause := errors.New("execution reverted")
	m := NewMutation(
		func(ctx context.Context) (common.Hash, error) { return testTx, nil },
		func(ctx context.Context, tx common.Hash) error { return cause },
	)

	if err := m.Execute(context.Background()); !errors.Is(err, cause) {
		t.Fatalf("Execute error = %v", err)
	}
	if m.State() != StateFailed {
		t.Errorf("state = %q", m.State())
	}
	// The tx reached the chain even though it reverted; keep the hash so the
	// failure can be inspected.
	if m.TxHash() != testTx {
		t.Errorf("tx hash = %s, want %s", m.TxHash(), testTx)
	}
}

func TestMutationSingleFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	m := NewMutation(
		func(ctx context.Context) (common.Hash, error) {
			close(started)
			<-release
			return testTx, nil
		},
		func(ctx context.Context, tx common.Hash) error { return nil },
	)

	done := make(chan error, 1)
	go func() { done <- m.Execute(context.Background()) }()
	<-started

	if err := m.Execute(context.Background()); !errors.Is(err, ErrMutationInFlight) {
		t.Errorf("second Execute = %v, want ErrMutationInFlight", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Execute: %v", err)
	}
}

func TestMutationResetRules(t *testing.T) {
	m := NewMutation(nil, nil)

	// Idle -> Idle reset is legal and a no-op.
	if err := m.Reset(); err != nil {
		t.Errorf("Reset from idle: %v", err)
	}

	m.state = StateAwaitingConfirmation
	if err := m.Reset(); err == nil {
		t.Error("Reset mid-flight should be rejected")
	}

	m.state = StateFailed
	m.err = errors.New("old failure")
	if err := m.Reset(); err != nil {
		t.Fatalf("Reset from failed: %v", err)
	}
	if m.Err() != nil {
		t.Error("Reset did not clear the error")
	}
}
