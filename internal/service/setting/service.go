// Package setting serves the admin key/value settings with a read cache.
package setting

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/heartmarshall/modlog-backend/internal/domain"
	"github.com/heartmarshall/modlog-backend/pkg/ctxutil"
)

const (
	listKey      = "settings:list"
	maxValueLen  = 2000
	maxKeyLength = 100
)

type settingRepo interface {
	List(ctx context.Context) ([]domain.AppSetting, error)
	UpdateValue(ctx context.Context, key, value string) (*domain.AppSetting, error)
}

type recorder interface {
	ObserveSettingsCache(hit bool)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type auditLogger interface {
	Log(ctx context.Context, rec domain.AuditRecord) error
}

// Service lists and updates settings. Settings are never created or deleted here.
type Service struct {
	log     *slog.Logger
	repo    settingRepo
	metrics recorder
	cache   *cache.Cache
	tx      txManager
	audit   auditLogger
}

// NewService creates a settings service. A non-positive ttl disables caching.
func NewService(logger *slog.Logger, repo settingRepo, metrics recorder, ttl time.Duration) *Service {
	s := &Service{
		log:     logger.With("service", "setting"),
		repo:    repo,
		metrics: metrics,
	}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

// WithAudit makes updates append an audit record in the same transaction
// as the update.
func (s *Service) WithAudit(tx txManager, audit auditLogger) *Service {
	s.tx = tx
	s.audit = audit
	return s
}

// List returns all settings ordered by key.
func (s *Service) List(ctx context.Context) ([]domain.AppSetting, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(listKey); ok {
			s.observe(true)
			return cloneSettings(v.([]domain.AppSetting)), nil
		}
		s.observe(false)
	}

	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	if settings == nil {
		settings = []domain.AppSetting{}
	}

	if s.cache != nil {
		s.cache.SetDefault(listKey, cloneSettings(settings))
	}
	return settings, nil
}

// Get returns one setting by key from the cached list.
func (s *Service) Get(ctx context.Context, key string) (*domain.AppSetting, error) {
	settings, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range settings {
		if settings[i].Key == key {
			return &settings[i], nil
		}
	}
	return nil, fmt.Errorf("setting %q: %w", key, domain.ErrNotFound)
}

// Update sets the value of an existing key and invalidates the cache.
// An unknown key returns domain.ErrNotFound.
func (s *Service) Update(ctx context.Context, key, value string) (*domain.AppSetting, error) {
	key = strings.TrimSpace(key)
	var errs []domain.FieldError
	if key == "" {
		errs = append(errs, domain.FieldError{Field: "key", Message: "required"})
	}
	if len(key) > maxKeyLength {
		errs = append(errs, domain.FieldError{Field: "key", Message: "max 100 characters"})
	}
	if len(value) > maxValueLen {
		errs = append(errs, domain.FieldError{Field: "value", Message: "max 2000 characters"})
	}
	if len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}

	var updated *domain.AppSetting
	err := s.inTx(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.repo.UpdateValue(ctx, key, value)
		if err != nil {
			return err
		}
		return s.record(ctx, key, value)
	})
	if err != nil {
		return nil, fmt.Errorf("update setting: %w", err)
	}
	if s.cache != nil {
		s.cache.Delete(listKey)
	}

	s.log.InfoContext(ctx, "setting updated", "key", key)
	return updated, nil
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.RunInTx(ctx, fn)
}

func (s *Service) record(ctx context.Context, key, value string) error {
	if s.audit == nil {
		return nil
	}
	err := s.audit.Log(ctx, domain.AuditRecord{
		Actor:      ctxutil.AdminFromCtx(ctx),
		EntityType: domain.AuditEntitySetting,
		EntityID:   key,
		Action:     domain.AuditActionUpdate,
		Changes:    map[string]any{"value": value},
	})
	if err != nil {
		return fmt.Errorf("audit: %w", err)
	}
	return nil
}

func (s *Service) observe(hit bool) {
	if s.metrics != nil {
		s.metrics.ObserveSettingsCache(hit)
	}
}

func cloneSettings(in []domain.AppSetting) []domain.AppSetting {
	return append([]domain.AppSetting(nil), in...)
}
