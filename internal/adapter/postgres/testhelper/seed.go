package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/modlog-backend/internal/domain"
)

// UniqueIdentity returns an identity no other test uses.
func UniqueIdentity() string {
	return "user-" + uuid.New().String()[:8]
}

// SeedLogs inserts n logs for userID with strictly increasing created_at, so
// the newest log is the last one inserted. Confidence of the i-th log (1-based)
// is (i % 10) / 10. Returned logs are ordered newest first.
func SeedLogs(t *testing.T, pool *pgxpool.Pool, userID string, n int) []domain.DetectionLog {
	t.Helper()
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Duration(n) * time.Hour).Truncate(time.Microsecond)
	model := "koelectra-v1"
	logs := make([]domain.DetectionLog, n)

	for i := 1; i <= n; i++ {
		uid := userID
		l := domain.DetectionLog{
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
			TextContent:   "sample " + uniqueSuffix(),
			Confidence:    float64(i%10) / 10,
			ThresholdUsed: 0.5,
			ModelVersion:  &model,
			UserID:        &uid,
			Metadata:      map[string]any{"seq": i},
		}
		l.IsHarmful = l.Confidence >= l.ThresholdUsed

		err := pool.QueryRow(ctx,
			`INSERT INTO detection_logs
			    (created_at, text_content, confidence, threshold_used, model_version, is_harmful, user_id, metadata)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING id`,
			l.CreatedAt, l.TextContent, l.Confidence, l.ThresholdUsed, l.ModelVersion, l.IsHarmful, l.UserID, l.Metadata,
		).Scan(&l.ID)
		if err != nil {
			t.Fatalf("testhelper: SeedLogs insert: %v", err)
		}
		logs[n-i] = l
	}
	return logs
}

// SeedFeedback inserts n feedback entries with status new and returns their
// ids newest first.
func SeedFeedback(t *testing.T, pool *pgxpool.Pool, userID *string, n int) []int64 {
	t.Helper()
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Duration(n) * time.Hour).Truncate(time.Microsecond)
	ids := make([]int64, n)
	for i := 1; i <= n; i++ {
		var id int64
		err := pool.QueryRow(ctx,
			`INSERT INTO user_feedback (created_at, user_id, category, content)
			 VALUES ($1, $2, 'general', $3) RETURNING id`,
			base.Add(time.Duration(i)*time.Minute), userID, "feedback "+uniqueSuffix(),
		).Scan(&id)
		if err != nil {
			t.Fatalf("testhelper: SeedFeedback insert: %v", err)
		}
		ids[n-i] = id
	}
	return ids
}

func uniqueSuffix() string {
	return uuid.New().String()[:8]
}
