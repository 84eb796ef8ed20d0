package services

import (
	"context"
	"log"

	"gorm.io/gorm"
)

// BalanceDrift is a user whose stored balance disagrees with their ledger.
type BalanceDrift struct {
	UserID    uint  `json:"user_id"`
	Balance   int64 `json:"balance"`
	LedgerSum int64 `json:"ledger_sum"`
}

type Reconciler struct {
	DB *gorm.DB
}

func NewReconciler(db *gorm.DB) *Reconciler {
	return &Reconciler{DB: db}
}

// Reconcile compares users.coins against the sum of ledger_entries.amount.
// It only reads; drift is reported, never repaired.
func (r *Reconciler) Reconcile(ctx context.Context) ([]BalanceDrift, error) {
	var drifts []BalanceDrift
	err := r.DB.WithContext(ctx).Raw(`
		SELECT u.id AS user_id, u.coins AS balance, COALESCE(l.total, 0) AS ledger_sum
		FROM users u
		LEFT JOIN (
			SELECT user_id, SUM(amount) AS total
			FROM ledger_entries
			GROUP BY user_id
		) l ON l.user_id = u.id
		WHERE u.coins <> COALESCE(l.total, 0)
		ORDER BY u.id ASC
	`).Scan(&drifts).Error
	if err != nil {
		return nil, classify("reconcile", err)
	}

	for _, d := range drifts {
		log.Printf("[AUDIT] ❗ balance drift for user %d: balance=%d ledger=%d", d.UserID, d.Balance, d.LedgerSum)
	}
	return drifts, nil
}
