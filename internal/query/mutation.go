package query

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// MutationState tags where a write currently sits in its two-phase
// lifecycle: the transaction is first signed and submitted, then awaited
// until mined.
type MutationState string

const (
	StateIdle                 MutationState = "idle"
	StateAwaitingSignature    MutationState = "awaiting-signature"
	StateAwaitingConfirmation MutationState = "awaiting-confirmation"
	StateSucceeded            MutationState = "succeeded"
	StateFailed               MutationState = "failed"
)

// ErrMutationInFlight is returned by Execute when a submission is already in
// progress on this handle. Mutations are never queued or retried.
var ErrMutationInFlight = errors.New("query: mutation already in flight")

// transitions is the legal state graph. Anything not listed is a programming
// error.
var transitions = map[MutationState][]MutationState{
	StateIdle:                 {StateAwaitingSignature},
	StateAwaitingSignature:    {StateAwaitingConfirmation, StateFailed},
	StateAwaitingConfirmation: {StateSucceeded, StateFailed},
	StateSucceeded:            {StateIdle},
	StateFailed:               {StateIdle},
}

func canTransition(from, to MutationState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SubmitFunc signs and broadcasts the transaction, returning its hash.
type SubmitFunc func(ctx context.Context) (common.Hash, error)

// ConfirmFunc blocks until the transaction is mined, returning an error if
// it reverted or could not be confirmed.
type ConfirmFunc func(ctx context.Context, tx common.Hash) error

// Mutation drives one contract write through the submit/confirm lifecycle.
// At most one submission is in flight per handle; a finished handle must be
// Reset before it can run again. Failures are terminal for that attempt —
// nothing is rolled back and nothing is retried automatically.
type Mutation struct {
	submit  SubmitFunc
	confirm ConfirmFunc

	mu        sync.Mutex
	state     MutationState
	txHash    common.Hash
	err       error
	onSuccess []func(context.Context)
}

// NewMutation creates an idle Mutation.
func NewMutation(submit SubmitFunc, confirm ConfirmFunc) *Mutation {
	return &Mutation{
		submit:  submit,
		confirm: confirm,
		state:   StateIdle,
	}
}

// OnSuccess registers a callback fired after the transaction confirms.
// Services use this to invalidate the queries the write affects.
func (m *Mutation) OnSuccess(fn func(context.Context)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSuccess = append(m.onSuccess, fn)
}

// State returns the current lifecycle state.
func (m *Mutation) State() MutationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// TxHash returns the submitted transaction hash. Zero until the transaction
// has been broadcast.
func (m *Mutation) TxHash() common.Hash {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.txHash
}

// Err returns the failure reason when the mutation is in StateFailed.
func (m *Mutation) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Execute runs the full lifecycle: sign and submit, then wait for
// confirmation. It returns ErrMutationInFlight if the handle is not idle.
// Cancelling ctx stops the waiting, not the transaction — a broadcast
// transaction cannot be recalled.
func (m *Mutation) Execute(ctx context.Context) error {
	if err := m.transition(StateIdle, StateAwaitingSignature); err != nil {
		return ErrMutationInFlight
	}

	txHash, err := m.submit(ctx)
	if err != nil {
		m.fail(StateAwaitingSignature, err)
		return err
	}

	m.mu.Lock()
	m.txHash = txHash
	m.mu.Unlock()
	if err := m.transition(StateAwaitingSignature, StateAwaitingConfirmation); err != nil {
		return err
	}

	if err := m.confirm(ctx, txHash); err != nil {
		m.fail(StateAwaitingConfirmation, err)
		return err
	}

	if err := m.transition(StateAwaitingConfirmation, StateSucceeded); err != nil {
		return err
	}

	m.mu.Lock()
	callbacks := append([]func(context.Context){}, m.onSuccess...)
	m.mu.Unlock()
	for _, fn := range callbacks {
		fn(ctx)
	}
	return nil
}

// Reset returns a finished mutation to StateIdle so the handle can be reused.
// Resetting an in-flight mutation is an error.
func (m *Mutation) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateIdle {
		return nil
	}
	if !canTransition(m.state, StateIdle) {
		return fmt.Errorf("query: cannot reset mutation in state %q", m.state)
	}
	m.state = StateIdle
	m.txHash = common.Hash{}
	m.err = nil
	return nil
}

func (m *Mutation) transition(from, to MutationState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != from || !canTransition(from, to) {
		return fmt.Errorf("query: illegal transition %q -> %q (current %q)", from, to, m.state)
	}
	m.state = to
	return nil
}

func (m *Mutation) fail(from MutationState, cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == from && canTransition(from, StateFailed) {
		m.state = StateFailed
		m.err = cause
	}
}
