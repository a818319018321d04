package feedback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/heartmarshall/modlog-backend/internal/domain"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func feedbackRows(n int) *pgxmock.Rows {
	rows := pgxmock.NewRows(columns)
	now := time.Now()
	uid := "U1"
	email := "someone@example.com"
	for i := n; i >= 1; i-- {
		rows.AddRow(int64(i), now.Add(time.Duration(i)*time.Minute), &uid, "general",
			"content", &email, "new", map[string]any{})
	}
	return rows
}

func TestRepo_List(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		page    domain.PageRequest
		setup   func(mock pgxmock.PgxPoolIface)
		wantLen int
		wantErr bool
	}{
		{
			name: "first page",
			page: domain.ForwardPage(1, 10),
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, created_at, user_id, category, content, contact_email, status, metadata FROM user_feedback ORDER BY created_at DESC LIMIT 10$`).
					WillReturnRows(feedbackRows(10))
			},
			wantLen: 10,
		},
		{
			name: "third page is short",
			page: domain.ForwardPage(3, 10),
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM user_feedback ORDER BY created_at DESC LIMIT 10 OFFSET 20`).
					WillReturnRows(feedbackRows(5))
			},
			wantLen: 5,
		},
		{
			name: "store error",
			page: domain.ForwardPage(1, 10),
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM user_feedback`).
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock := newMock(t)
			tt.setup(mock)

			items, err := New(mock).List(context.Background(), tt.page)
			if (err != nil) != tt.wantErr {
				t.Fatalf("List() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(items) != tt.wantLen {
				t.Errorf("List() returned %d items, want %d", len(items), tt.wantLen)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestRepo_Create(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO user_feedback \(user_id,category,content,contact_email,status,metadata\) VALUES \(\$1,\$2,\$3,\$4,\$5,\$6\) RETURNING`).
		WithArgs(pgxmock.AnyArg(), "general", "content", pgxmock.AnyArg(), "new", pgxmock.AnyArg()).
		WillReturnRows(feedbackRows(1))

	uid := "U1"
	got, err := New(mock).Create(context.Background(), domain.UserFeedback{
		UserID:   &uid,
		Category: "general",
		Content:  "content",
		Status:   domain.FeedbackStatusNew,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got.ID != 1 || got.Status != domain.FeedbackStatusNew {
		t.Errorf("unexpected feedback: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepo_UpdateStatus(t *testing.T) {
	t.Parallel()

	t.Run("updates only status", func(t *testing.T) {
		t.Parallel()

		mock := newMock(t)
		mock.ExpectQuery(`UPDATE user_feedback SET status = \$1 WHERE id = \$2 RETURNING`).
			WithArgs("resolved", int64(1)).
			WillReturnRows(feedbackRows(1))

		if _, err := New(mock).UpdateStatus(context.Background(), 1, domain.FeedbackStatusResolved); err != nil {
			t.Fatalf("UpdateStatus() error = %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		mock := newMock(t)
		mock.ExpectQuery(`UPDATE user_feedback`).
			WithArgs("read", int64(99)).
			WillReturnError(pgx.ErrNoRows)

		_, err := New(mock).UpdateStatus(context.Background(), 99, domain.FeedbackStatusRead)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestRepo_CountByStatus(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	mock.ExpectQuery(`SELECT status, count\(\*\) AS count FROM user_feedback GROUP BY status`).
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).AddRow("new", int64(4)).AddRow("resolved", int64(1)))

	got, err := New(mock).CountByStatus(context.Background())
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	want := map[domain.FeedbackStatus]int{"new": 4, "read": 0, "resolved": 1}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("count[%s] = %d, want %d", k, got[k], v)
		}
	}
}
