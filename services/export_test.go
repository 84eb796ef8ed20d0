package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"coinquest/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	objects map[string][]byte
	err     error
}

func (m *memoryStore) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func TestExportKey(t *testing.T) {
	day := time.Date(2024, 2, 9, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "ledger/2024/02/09.jsonl", ExportKey(day))
}

func TestLedgerExportWritesOneDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	clock := day.Add(time.Hour)
	f.ledger.now = func() time.Time { return clock }

	_, err := f.ledger.CompleteQuest(ctx, alice, 1)
	require.NoError(t, err)
	_, err = f.ledger.CompleteQuest(ctx, alice, 5)
	require.NoError(t, err)

	clock = day.AddDate(0, 0, 1).Add(time.Minute)
	_, err = f.ledger.CompleteQuest(ctx, alice, 2)
	require.NoError(t, err)

	store := &memoryStore{}
	key, n, err := NewLedgerExporter(f.db, store, "audit").Export(ctx, day.Add(15*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "ledger/2024/05/01.jsonl", key)
	assert.Equal(t, 2, n)

	body, ok := store.objects["audit/"+key]
	require.True(t, ok)

	var got []models.LedgerEntry
	sc := bufio.NewScanner(bytes.NewReader(body))
	for sc.Scan() {
		var e models.LedgerEntry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		got = append(got, e)
	}
	require.Len(t, got, 2)
	assert.Equal(t, int64(100), got[0].Amount)
	assert.Equal(t, int64(500), got[1].Amount)
	assert.Equal(t, int64(600), got[1].BalanceAfter)
}

func TestLedgerExportUploadFailure(t *testing.T) {
	f := newFixture(t)
	store := &memoryStore{err: errors.New("access denied")}

	_, _, err := NewLedgerExporter(f.db, store, "audit").Export(context.Background(), time.Now())
	assert.ErrorContains(t, err, "access denied")
}
