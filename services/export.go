package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"coinquest/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gorm.io/gorm"
)

// ObjectPutter is the slice of *s3.Client the exporter needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// LedgerExporter ships one UTC day of ledger entries to object storage as
// JSON lines.
type LedgerExporter struct {
	DB     *gorm.DB
	Store  ObjectPutter
	Bucket string
}

func NewLedgerExporter(db *gorm.DB, store ObjectPutter, bucket string) *LedgerExporter {
	return &LedgerExporter{DB: db, Store: store, Bucket: bucket}
}

func ExportKey(day time.Time) string {
	return fmt.Sprintf("ledger/%s.jsonl", day.UTC().Format("2006/01/02"))
}

// Export writes the entries created on day (UTC) and returns the object key
// and the number of entries written. An empty day still produces an object.
func (e *LedgerExporter) Export(ctx context.Context, day time.Time) (string, int, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	var entries []models.LedgerEntry
	if err := e.DB.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return "", 0, classify("export ledger", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, entry := range entries {
		if err := enc.Encode(entry); err != nil {
			return "", 0, fmt.Errorf("encode ledger entry %s: %w", entry.Ref, err)
		}
	}

	key := ExportKey(start)
	_, err := e.Store.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	log.Printf("[AUDIT] 📦 exported %d ledger entries to %s/%s", len(entries), e.Bucket, key)
	return key, len(entries), nil
}
