package rest

import (
	"context"
	"sync"
	"time"

	"github.com/heartmarshall/modlog-backend/internal/domain"
	"github.com/heartmarshall/modlog-backend/internal/logquery"
	"github.com/heartmarshall/modlog-backend/internal/service/admin"
	"github.com/heartmarshall/modlog-backend/internal/service/feedback"
	"github.com/heartmarshall/modlog-backend/internal/service/retrieval"
)

// ---------------------------------------------------------------------------
// logService
// ---------------------------------------------------------------------------

type fetchScopedCall struct {
	Identity string
	Range    domain.ConfidenceRange
	Page     domain.PageRequest
}

type logServiceMock struct {
	FetchScopedFunc    func(ctx context.Context, identity string, rng domain.ConfidenceRange, page domain.PageRequest) (logquery.Result, error)
	FetchDashboardFunc func(ctx context.Context, identity string, rng domain.ConfidenceRange, n, size int) (retrieval.Page, error)
	KindFunc           func() string

	mu          sync.Mutex
	scopedCalls []fetchScopedCall
}

func (mock *logServiceMock) FetchScoped(ctx context.Context, identity string, rng domain.ConfidenceRange, page domain.PageRequest) (logquery.Result, error) {
	if mock.FetchScopedFunc == nil {
		panic("logServiceMock.FetchScopedFunc: method is nil but logService.FetchScoped was just called")
	}
	mock.mu.Lock()
	mock.scopedCalls = append(mock.scopedCalls, fetchScopedCall{Identity: identity, Range: rng, Page: page})
	mock.mu.Unlock()
	return mock.FetchScopedFunc(ctx, identity, rng, page)
}

func (mock *logServiceMock) FetchScopedCalls() []fetchScopedCall {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return append([]fetchScopedCall(nil), mock.scopedCalls...)
}

func (mock *logServiceMock) FetchDashboard(ctx context.Context, identity string, rng domain.ConfidenceRange, n, size int) (retrieval.Page, error) {
	if mock.FetchDashboardFunc == nil {
		panic("logServiceMock.FetchDashboardFunc: method is nil but logService.FetchDashboard was just called")
	}
	return mock.FetchDashboardFunc(ctx, identity, rng, n, size)
}

func (mock *logServiceMock) ScopedLimit() int { return 50 }

func (mock *logServiceMock) Kind() string {
	if mock.KindFunc == nil {
		return "privileged"
	}
	return mock.KindFunc()
}

// ---------------------------------------------------------------------------
// feedbackSubmitter
// ---------------------------------------------------------------------------

type feedbackSubmitterMock struct {
	SubmitFunc func(ctx context.Context, input feedback.SubmitInput) (*domain.UserFeedback, error)
}

func (mock *feedbackSubmitterMock) Submit(ctx context.Context, input feedback.SubmitInput) (*domain.UserFeedback, error) {
	if mock.SubmitFunc == nil {
		panic("feedbackSubmitterMock.SubmitFunc: method is nil but feedbackSubmitter.Submit was just called")
	}
	return mock.SubmitFunc(ctx, input)
}

// ---------------------------------------------------------------------------
// admin dependencies
// ---------------------------------------------------------------------------

type sessionIssuerMock struct {
	IssueFunc func(subject string) (string, time.Time, error)
}

func (mock *sessionIssuerMock) Issue(subject string) (string, time.Time, error) {
	if mock.IssueFunc == nil {
		panic("sessionIssuerMock.IssueFunc: method is nil but sessionIssuer.Issue was just called")
	}
	return mock.IssueFunc(subject)
}

type adminLogPagerMock struct {
	PageAllFunc func(ctx context.Context, rng domain.ConfidenceRange, n, size int) (retrieval.Page, error)
}

func (mock *adminLogPagerMock) PageAll(ctx context.Context, rng domain.ConfidenceRange, n, size int) (retrieval.Page, error) {
	if mock.PageAllFunc == nil {
		panic("adminLogPagerMock.PageAllFunc: method is nil but adminLogPager.PageAll was just called")
	}
	return mock.PageAllFunc(ctx, rng, n, size)
}

type adminFeedbackServiceMock struct {
	ListPageFunc     func(ctx context.Context, n, size int) (feedback.Page, error)
	UpdateStatusFunc func(ctx context.Context, id int64, status domain.FeedbackStatus) (*domain.UserFeedback, error)
}

func (mock *adminFeedbackServiceMock) ListPage(ctx context.Context, n, size int) (feedback.Page, error) {
	if mock.ListPageFunc == nil {
		panic("adminFeedbackServiceMock.ListPageFunc: method is nil but adminFeedbackService.ListPage was just called")
	}
	return mock.ListPageFunc(ctx, n, size)
}

func (mock *adminFeedbackServiceMock) UpdateStatus(ctx context.Context, id int64, status domain.FeedbackStatus) (*domain.UserFeedback, error) {
	if mock.UpdateStatusFunc == nil {
		panic("adminFeedbackServiceMock.UpdateStatusFunc: method is nil but adminFeedbackService.UpdateStatus was just called")
	}
	return mock.UpdateStatusFunc(ctx, id, status)
}

type adminSettingServiceMock struct {
	ListFunc   func(ctx context.Context) ([]domain.AppSetting, error)
	UpdateFunc func(ctx context.Context, key, value string) (*domain.AppSetting, error)
}

func (mock *adminSettingServiceMock) List(ctx context.Context) ([]domain.AppSetting, error) {
	if mock.ListFunc == nil {
		panic("adminSettingServiceMock.ListFunc: method is nil but adminSettingService.List was just called")
	}
	return mock.ListFunc(ctx)
}

func (mock *adminSettingServiceMock) Update(ctx context.Context, key, value string) (*domain.AppSetting, error) {
	if mock.UpdateFunc == nil {
		panic("adminSettingServiceMock.UpdateFunc: method is nil but adminSettingService.Update was just called")
	}
	return mock.UpdateFunc(ctx, key, value)
}

type overviewServiceMock struct {
	OverviewFunc func(ctx context.Context) (*admin.Overview, error)
}

func (mock *overviewServiceMock) Overview(ctx context.Context) (*admin.Overview, error) {
	if mock.OverviewFunc == nil {
		panic("overviewServiceMock.OverviewFunc: method is nil but overviewService.Overview was just called")
	}
	return mock.OverviewFunc(ctx)
}

type harmfulCounterMock struct {
	mu     sync.Mutex
	calls  int
	counts map[string]int
}

func (mock *harmfulCounterMock) CountHarmfulByUserIDs(_ context.Context, ids []string) (map[string]int, error) {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	mock.calls++
	out := make(map[string]int, len(ids))
	for _, id := range ids {
		out[id] = mock.counts[id]
	}
	return out, nil
}

type auditListerMock struct {
	ListFunc func(ctx context.Context, limit int) ([]domain.AuditRecord, error)
}

func (mock *auditListerMock) List(ctx context.Context, limit int) ([]domain.AuditRecord, error) {
	if mock.ListFunc == nil {
		panic("auditListerMock.ListFunc: method is nil but auditLister.List was just called")
	}
	return mock.ListFunc(ctx, limit)
}
