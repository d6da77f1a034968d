package session

import (
	"context"
	"sync"

	"github.com/mauv0809/courtbooker/internal/booking"
)

// Mock is a test double for Client recording every call.
type Mock struct {
	mu sync.Mutex

	LoginCalls        int
	FetchContextCalls []booking.TargetDate
	SubmitCalls       []booking.Slot

	LoginFunc        func(ctx context.Context) error
	FetchContextFunc func(ctx context.Context, target booking.TargetDate) (*Context, error)
	SubmitFunc       func(ctx context.Context, reservation *Context, slot booking.Slot) error
}

var _ Client = (*Mock)(nil)

func (m *Mock) Login(ctx context.Context) error {
	m.mu.Lock()
	m.LoginCalls++
	m.mu.Unlock()
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx)
	}
	return nil
}

func (m *Mock) FetchContext(ctx context.Context, target booking.TargetDate) (*Context, error) {
	m.mu.Lock()
	m.FetchContextCalls = append(m.FetchContextCalls, target)
	m.mu.Unlock()
	if m.FetchContextFunc != nil {
		return m.FetchContextFunc(ctx, target)
	}
	return &Context{Form: booking.EmptyForm(), Target: target}, nil
}

func (m *Mock) Submit(ctx context.Context, reservation *Context, slot booking.Slot) error {
	m.mu.Lock()
	m.SubmitCalls = append(m.SubmitCalls, slot)
	m.mu.Unlock()
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, reservation, slot)
	}
	return nil
}
