package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrUnknownAccount      = errors.New("unknown account")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

type account struct {
	asset   AssetID
	balance uint64
}

// Memory is an in-process ledger used by the simulator and tests. It stands in
// for the external ledger service: balances move only through Credit/Debit,
// and Atomic gives the snapshot/rollback unit the transitive swap requires.
type Memory struct {
	mu       sync.RWMutex
	accounts map[AccountRef]*account
}

func NewMemory() *Memory {
	return &Memory{accounts: make(map[AccountRef]*account)}
}

// Open registers an account with an asset type and starting balance.
// Re-opening an existing ref overwrites it.
func (m *Memory) Open(ref AccountRef, asset AssetID, balance uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[ref] = &account{asset: asset, balance: balance}
}

func (m *Memory) Balance(ctx context.Context, ref AccountRef) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, ok := m.accounts[ref]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownAccount, ref)
	}
	return acc.balance, nil
}

func (m *Memory) AssetOf(ctx context.Context, ref AccountRef) (AssetID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, ok := m.accounts[ref]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownAccount, ref)
	}
	return acc.asset, nil
}

// Credit adds amount to the account balance.
func (m *Memory) Credit(ref AccountRef, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[ref]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, ref)
	}
	acc.balance += amount
	return nil
}

// Debit removes amount from the account balance.
func (m *Memory) Debit(ref AccountRef, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[ref]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, ref)
	}
	if acc.balance < amount {
		return fmt.Errorf("%w: %s", ErrInsufficientBalance, ref)
	}
	acc.balance -= amount
	return nil
}

// Atomic runs fn as one all-or-nothing unit: balances are snapshotted first
// and restored in full if fn fails.
func (m *Memory) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := m.snapshot()
	if err := fn(ctx); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

func (m *Memory) snapshot() map[AccountRef]uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := make(map[AccountRef]uint64, len(m.accounts))
	for ref, acc := range m.accounts {
		snap[ref] = acc.balance
	}
	return snap
}

func (m *Memory) restore(snap map[AccountRef]uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ref, bal := range snap {
		if acc, ok := m.accounts[ref]; ok {
			acc.balance = bal
		}
	}
}
