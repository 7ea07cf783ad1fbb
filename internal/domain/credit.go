package domain

// CreditTier enumerates subscription tiers that carry a monthly allowance.
type CreditTier string

const (
	CreditTierFree CreditTier = "free"
	CreditTierPlus CreditTier = "plus"
	CreditTierPro  CreditTier = "pro"
)

// MonthlyAllowance returns the credits granted per month for the tier.
func (t CreditTier) MonthlyAllowance() (int, bool) {
	switch t {
	case CreditTierFree:
		return 0, true
	case CreditTierPlus:
		return 10, true
	case CreditTierPro:
		return 25, true
	default:
		return 0, false
	}
}

// CreditBalance is a read-only snapshot from the external ledger.
type CreditBalance struct {
	UserID  string
	Current int
	Monthly int
	Tier    CreditTier
}
