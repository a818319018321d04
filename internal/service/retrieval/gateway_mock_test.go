package retrieval

import (
	"context"
	"sync"
	"time"

	"github.com/heartmarshall/modlog-backend/internal/logquery"
)

var _ gateway = &gatewayMock{}

type gatewayMock struct {
	FetchFunc func(ctx context.Context, d logquery.Descriptor) (logquery.Result, error)
	KindFunc  func() string

	calls struct {
		Fetch []struct {
			Ctx context.Context
			D   logquery.Descriptor
		}
	}
	lockFetch sync.RWMutex
}

func (mock *gatewayMock) Fetch(ctx context.Context, d logquery.Descriptor) (logquery.Result, error) {
	if mock.FetchFunc == nil {
		panic("gatewayMock.FetchFunc: method is nil but gateway.Fetch was just called")
	}
	callInfo := struct {
		Ctx context.Context
		D   logquery.Descriptor
	}{Ctx: ctx, D: d}
	mock.lockFetch.Lock()
	mock.calls.Fetch = append(mock.calls.Fetch, callInfo)
	mock.lockFetch.Unlock()
	return mock.FetchFunc(ctx, d)
}

func (mock *gatewayMock) FetchCalls() []struct {
	Ctx context.Context
	D   logquery.Descriptor
} {
	mock.lockFetch.RLock()
	calls := mock.calls.Fetch
	mock.lockFetch.RUnlock()
	return calls
}

func (mock *gatewayMock) Kind() string {
	if mock.KindFunc == nil {
		return "privileged"
	}
	return mock.KindFunc()
}

var _ recorder = &recorderMock{}

type recorderMock struct {
	mu    sync.Mutex
	calls []struct {
		Gateway, Scope, Outcome string
		Rows                    int
	}
}

func (mock *recorderMock) ObserveRetrieval(gateway, scope, outcome string, _ time.Duration, rows int) {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	mock.calls = append(mock.calls, struct {
		Gateway, Scope, Outcome string
		Rows                    int
	}{gateway, scope, outcome, rows})
}

func (mock *recorderMock) outcomes() []string {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	out := make([]string, len(mock.calls))
	for i, c := range mock.calls {
		out[i] = c.Scope + "/" + c.Outcome
	}
	return out
}
