package setting

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

func TestRepo_List(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	desc := "Classifier build"
	now := time.Now()
	mock.ExpectQuery(`SELECT key, value, description, updated_at FROM app_settings ORDER BY key`).
		WillReturnRows(pgxmock.NewRows([]string{"key", "value", "description", "updated_at"}).
			AddRow("active_model", "koelectra-v1", &desc, now).
			AddRow("detection_threshold", "0.5", &desc, now))

	got, err := New(mock).List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 || got[0].Key != "active_model" {
		t.Fatalf("unexpected settings: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRepo_UpdateValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr error
	}{
		{
			name: "updated",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`UPDATE app_settings SET value = \$1, updated_at = now\(\) WHERE key = \$2 RETURNING`).
					WithArgs("0.7", "detection_threshold").
					WillReturnRows(pgxmock.NewRows([]string{"key", "value", "description", "updated_at"}).
						AddRow("detection_threshold", "0.7", (*string)(nil), time.Now()))
			},
		},
		{
			name: "unknown key",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`UPDATE app_settings`).
					WithArgs("0.7", "detection_threshold").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock := newMock(t)
			tt.setup(mock)

			got, err := New(mock).UpdateValue(context.Background(), "detection_threshold", "0.7")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateValue() error = %v", err)
			}
			if got.Value != "0.7" {
				t.Errorf("Value = %q, want 0.7", got.Value)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}
