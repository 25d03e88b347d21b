package ledger

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryBalanceAndAsset(t *testing.T) {
	m := NewMemory()
	m.Open("alice-usdc", "USDC", 1000)

	ctx := context.Background()
	bal, err := m.Balance(ctx, "alice-usdc")
	if err != nil {
		t.Fatalf("balance err: %v", err)
	}
	if bal != 1000 {
		t.Fatalf("expected balance 1000, got %d", bal)
	}
	asset, err := m.AssetOf(ctx, "alice-usdc")
	if err != nil {
		t.Fatalf("asset err: %v", err)
	}
	if asset != "USDC" {
		t.Fatalf("expected asset USDC, got %s", asset)
	}

	if _, err := m.Balance(ctx, "nobody"); !errors.Is(err, ErrUnknownAccount) {
		t.Fatalf("expected ErrUnknownAccount, got %v", err)
	}
}

func TestMemoryDebitInsufficient(t *testing.T) {
	m := NewMemory()
	m.Open("a", "ETH", 10)
	if err := m.Debit("a", 11); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if err := m.Debit("a", 10); err != nil {
		t.Fatalf("debit err: %v", err)
	}
}

func TestMemoryAtomicRollback(t *testing.T) {
	m := NewMemory()
	m.Open("a", "ETH", 100)
	m.Open("b", "USDC", 500)

	ctx := context.Background()
	boom := errors.New("boom")
	err := m.Atomic(ctx, func(ctx context.Context) error {
		if err := m.Debit("a", 40); err != nil {
			return err
		}
		if err := m.Credit("b", 80); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	balA, _ := m.Balance(ctx, "a")
	balB, _ := m.Balance(ctx, "b")
	if balA != 100 || balB != 500 {
		t.Fatalf("expected rollback to 100/500, got %d/%d", balA, balB)
	}
}

func TestMemoryAtomicCommit(t *testing.T) {
	m := NewMemory()
	m.Open("a", "ETH", 100)

	ctx := context.Background()
	err := m.Atomic(ctx, func(ctx context.Context) error {
		return m.Debit("a", 40)
	})
	if err != nil {
		t.Fatalf("atomic err: %v", err)
	}
	bal, _ := m.Balance(ctx, "a")
	if bal != 60 {
		t.Fatalf("expected 60 after commit, got %d", bal)
	}
}
