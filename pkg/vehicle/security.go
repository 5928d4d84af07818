package vehicle

import (
	"context"

	"github.com/bluelinky/bluelinky-go/pkg/bluelink"
	"github.com/bluelinky/bluelinky-go/pkg/session"
)

// Lock locks the vehicle's doors.
func (v *Vehicle) Lock(ctx context.Context) (*bluelink.CommandResult, error) {
	return v.issue(ctx, func(s *session.Session) (*bluelink.CommandResult, error) {
		return v.ctrl.Lock(ctx, s, &v.info)
	})
}

// Unlock unlocks the vehicle's doors.
func (v *Vehicle) Unlock(ctx context.Context) (*bluelink.CommandResult, error) {
	return v.issue(ctx, func(s *session.Session) (*bluelink.CommandResult, error) {
		return v.ctrl.Unlock(ctx, s, &v.info)
	})
}
