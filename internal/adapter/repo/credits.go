package repo

import (
	"context"
	"fmt"

	"moodboard/internal/domain"
	"moodboard/internal/infra"
	"moodboard/internal/sqlinline"
)

// CreditRepo reads and grants balances in user_credits.
type CreditRepo struct {
	sql infra.SQLExecutor
}

func NewCreditRepo(sql infra.SQLExecutor) *CreditRepo {
	return &CreditRepo{sql: sql}
}

// GetBalance reports a free-tier zero balance for users without a row.
func (r *CreditRepo) GetBalance(ctx context.Context, userID string) (domain.CreditBalance, error) {
	b, err := scanBalance(r.sql.QueryRow(ctx, sqlinline.QSelectUserCredits, userID))
	if err != nil {
		if infra.IsNoRows(err) {
			return domain.CreditBalance{UserID: userID, Tier: domain.CreditTierFree}, nil
		}
		return domain.CreditBalance{}, fmt.Errorf("balance %s: %w", userID, err)
	}
	return b, nil
}

// GrantMonthly resets the user's balance to the tier allowance.
func (r *CreditRepo) GrantMonthly(ctx context.Context, userID string, tier domain.CreditTier) (domain.CreditBalance, error) {
	allowance, ok := tier.MonthlyAllowance()
	if !ok {
		return domain.CreditBalance{}, fmt.Errorf("%w: unknown tier %q", domain.ErrInvalidRequest, tier)
	}
	b, err := scanBalance(r.sql.QueryRow(ctx, sqlinline.QGrantMonthlyAllowance, userID, allowance, string(tier)))
	if err != nil {
		return domain.CreditBalance{}, fmt.Errorf("grant %s: %w", userID, err)
	}
	return b, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBalance(row scanner) (domain.CreditBalance, error) {
	var (
		b    domain.CreditBalance
		tier string
	)
	if err := row.Scan(&b.UserID, &b.Current, &b.Monthly, &tier); err != nil {
		return domain.CreditBalance{}, err
	}
	b.Tier = domain.CreditTier(tier)
	return b, nil
}

var _ domain.CreditLedger = (*CreditRepo)(nil)
