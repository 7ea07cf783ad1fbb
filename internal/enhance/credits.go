package enhance

import (
	"context"
	"fmt"
	"sync"

	"moodboard/internal/domain"
)

// CreditGate is a pre-flight check against the external ledger. It keeps the
// last balance it read per user for display and never adjusts it locally.
type CreditGate struct {
	ledger domain.CreditLedger

	mu        sync.RWMutex
	snapshots map[string]domain.CreditBalance
}

// NewCreditGate wires the gate to a ledger.
func NewCreditGate(ledger domain.CreditLedger) *CreditGate {
	return &CreditGate{ledger: ledger, snapshots: make(map[string]domain.CreditBalance)}
}

// CanAfford reports whether the balance covers one job on the provider.
func (g *CreditGate) CanAfford(balance domain.CreditBalance, p ProviderInfo) bool {
	return balance.Current >= p.Cost
}

// Refresh re-reads the balance from the ledger.
func (g *CreditGate) Refresh(ctx context.Context, userID string) (domain.CreditBalance, error) {
	balance, err := g.ledger.GetBalance(ctx, userID)
	if err != nil {
		return domain.CreditBalance{}, fmt.Errorf("credits: get balance: %w", err)
	}
	balance.UserID = userID
	g.mu.Lock()
	g.snapshots[userID] = balance
	g.mu.Unlock()
	return balance, nil
}

// Snapshot returns the last balance read for the user, possibly stale.
func (g *CreditGate) Snapshot(userID string) (domain.CreditBalance, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	b, ok := g.snapshots[userID]
	return b, ok
}
