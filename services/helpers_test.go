package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"coinquest/database/dbtest"
	"coinquest/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []LedgerEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Events() []LedgerEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]LedgerEvent(nil), p.events...)
}

type fixture struct {
	db     *gorm.DB
	ledger *LedgerService
	users  *UserService
	events *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.OpenSeeded(t)
	events := &recordingPublisher{}
	return &fixture{
		db:     db,
		ledger: NewLedgerService(db, events, NewSQLLeaderboard(db)),
		users:  NewUserService(db, bcrypt.MinCost),
		events: events,
	}
}

func (f *fixture) register(t *testing.T, name string) Identity {
	t.Helper()
	u, err := f.users.Register(context.Background(), name, "password")
	require.NoError(t, err)
	return IdentityOf(u)
}

func (f *fixture) addReward(t *testing.T, price int64) uint {
	t.Helper()
	r := models.Reward{Slug: fmt.Sprintf("test-reward-%d", price), Name: "Test", Price: price, Active: true}
	require.NoError(t, f.db.Create(&r).Error)
	return r.ID
}

func (f *fixture) balance(t *testing.T, who Identity) int64 {
	t.Helper()
	coins, err := f.ledger.GetBalance(context.Background(), who)
	require.NoError(t, err)
	return coins
}
