package feedback

import (
	"context"
	"sync"

	"github.com/heartmarshall/modlog-backend/internal/domain"
)

var _ feedbackRepo = &feedbackRepoMock{}

type feedbackRepoMock struct {
	ListFunc          func(ctx context.Context, page domain.PageRequest) ([]domain.UserFeedback, error)
	CountByStatusFunc func(ctx context.Context) (map[domain.FeedbackStatus]int, error)
	CreateFunc        func(ctx context.Context, fb domain.UserFeedback) (*domain.UserFeedback, error)
	UpdateStatusFunc  func(ctx context.Context, id int64, status domain.FeedbackStatus) (*domain.UserFeedback, error)

	calls struct {
		List []struct {
			Page domain.PageRequest
		}
		Create []struct {
			Fb domain.UserFeedback
		}
		UpdateStatus []struct {
			ID     int64
			Status domain.FeedbackStatus
		}
	}
	lock sync.RWMutex
}

func (mock *feedbackRepoMock) List(ctx context.Context, page domain.PageRequest) ([]domain.UserFeedback, error) {
	if mock.ListFunc == nil {
		panic("feedbackRepoMock.ListFunc: method is nil but feedbackRepo.List was just called")
	}
	mock.lock.Lock()
	mock.calls.List = append(mock.calls.List, struct{ Page domain.PageRequest }{page})
	mock.lock.Unlock()
	return mock.ListFunc(ctx, page)
}

func (mock *feedbackRepoMock) ListCalls() []struct{ Page domain.PageRequest } {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.List
}

func (mock *feedbackRepoMock) CountByStatus(ctx context.Context) (map[domain.FeedbackStatus]int, error) {
	if mock.CountByStatusFunc == nil {
		panic("feedbackRepoMock.CountByStatusFunc: method is nil but feedbackRepo.CountByStatus was just called")
	}
	return mock.CountByStatusFunc(ctx)
}

func (mock *feedbackRepoMock) Create(ctx context.Context, fb domain.UserFeedback) (*domain.UserFeedback, error) {
	if mock.CreateFunc == nil {
		panic("feedbackRepoMock.CreateFunc: method is nil but feedbackRepo.Create was just called")
	}
	mock.lock.Lock()
	mock.calls.Create = append(mock.calls.Create, struct{ Fb domain.UserFeedback }{fb})
	mock.lock.Unlock()
	return mock.CreateFunc(ctx, fb)
}

func (mock *feedbackRepoMock) CreateCalls() []struct{ Fb domain.UserFeedback } {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.Create
}

func (mock *feedbackRepoMock) UpdateStatus(ctx context.Context, id int64, status domain.FeedbackStatus) (*domain.UserFeedback, error) {
	if mock.UpdateStatusFunc == nil {
		panic("feedbackRepoMock.UpdateStatusFunc: method is nil but feedbackRepo.UpdateStatus was just called")
	}
	mock.lock.Lock()
	mock.calls.UpdateStatus = append(mock.calls.UpdateStatus, struct {
		ID     int64
		Status domain.FeedbackStatus
	}{id, status})
	mock.lock.Unlock()
	return mock.UpdateStatusFunc(ctx, id, status)
}

func (mock *feedbackRepoMock) UpdateStatusCalls() []struct {
	ID     int64
	Status domain.FeedbackStatus
} {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.UpdateStatus
}
