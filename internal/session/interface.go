package session

import (
	"context"

	"github.com/mauv0809/courtbooker/internal/booking"
)

// Context is the reservation context harvested by one fetch: the page's form
// snapshot and the candidate slots, together with the run's target date.
type Context struct {
	Form   booking.FormSnapshot
	Slots  []booking.Slot
	Target booking.TargetDate
}

// Client is one authenticated reservation session. Operations must be called
// in order: Login, FetchContext, Submit. A session serves exactly one run and
// its cookie state is discarded with it.
type Client interface {
	Login(ctx context.Context) error
	FetchContext(ctx context.Context, target booking.TargetDate) (*Context, error)
	Submit(ctx context.Context, reservation *Context, slot booking.Slot) error
}
