package detectionlog

import (
	"time"

	"github.com/heartmarshall/modlog-backend/internal/domain"
)

// logRow is the scan target for logquery.Columns.
type logRow struct {
	ID            int64          `db:"id"`
	CreatedAt     time.Time      `db:"created_at"`
	TextContent   string         `db:"text_content"`
	Confidence    float64        `db:"confidence"`
	ThresholdUsed float64        `db:"threshold_used"`
	ModelVersion  *string        `db:"model_version"`
	IsHarmful     bool           `db:"is_harmful"`
	UserID        *string        `db:"user_id"`
	Metadata      map[string]any `db:"metadata"`
}

func (r logRow) toDomain() domain.DetectionLog {
	md := r.Metadata
	if md == nil {
		md = map[string]any{}
	}
	return domain.DetectionLog{
		ID:            r.ID,
		CreatedAt:     r.CreatedAt,
		TextContent:   r.TextContent,
		Confidence:    r.Confidence,
		ThresholdUsed: r.ThresholdUsed,
		ModelVersion:  r.ModelVersion,
		IsHarmful:     r.IsHarmful,
		UserID:        r.UserID,
		Metadata:      md,
	}
}

func toDomainLogs(rows []logRow) []domain.DetectionLog {
	out := make([]domain.DetectionLog, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out
}
