package vehicle

import (
	"context"

	"github.com/bluelinky/bluelinky-go/pkg/bluelink"
	"github.com/bluelinky/bluelinky-go/pkg/session"
)

// ClimateOn remotely starts the vehicle's climate control (and, on combustion vehicles, the
// engine) with the given options.
func (v *Vehicle) ClimateOn(ctx context.Context, opts bluelink.ClimateOptions) (*bluelink.CommandResult, error) {
	return v.issue(ctx, func(s *session.Session) (*bluelink.CommandResult, error) {
		return v.ctrl.ClimateOn(ctx, s, &v.info, opts)
	})
}

// ClimateOff stops a remotely-started climate session.
func (v *Vehicle) ClimateOff(ctx context.Context) (*bluelink.CommandResult, error) {
	return v.issue(ctx, func(s *session.Session) (*bluelink.CommandResult, error) {
		return v.ctrl.ClimateOff(ctx, s, &v.info)
	})
}
