package services

import (
	"context"
	"testing"

	"coinquest/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestReconcileCleanAfterOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	f.register(t, "carol") // no entries at all

	for _, q := range []uint{1, 5, 7} {
		_, err := f.ledger.CompleteQuest(ctx, alice, q)
		require.NoError(t, err)
	}
	_, err := f.ledger.PurchaseReward(ctx, alice, 2)
	require.NoError(t, err)
	_, err = f.ledger.CompleteQuest(ctx, bob, 4)
	require.NoError(t, err)
	_, err = f.ledger.PurchaseReward(ctx, bob, 3) // insufficient
	require.NoError(t, err)

	drifts, err := NewReconciler(f.db).Reconcile(ctx)
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestReconcileReportsTamper(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	_, err := f.ledger.CompleteQuest(ctx, alice, 1)
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", alice.UserID).
		Update("coins", gorm.Expr("coins + ?", 999)).Error)

	drifts, err := NewReconciler(f.db).Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, []BalanceDrift{{UserID: alice.UserID, Balance: 1099, LedgerSum: 100}}, drifts)
}
