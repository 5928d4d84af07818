package vehicle

import (
	"context"

	"github.com/bluelinky/bluelinky-go/pkg/bluelink"
	"github.com/bluelinky/bluelinky-go/pkg/session"
)

// Status fetches the vehicle's status snapshot. With opts.Refresh the backend polls the vehicle
// directly, which is slower and costs 12V battery.
func (v *Vehicle) Status(ctx context.Context, opts bluelink.StatusOptions) (*bluelink.VehicleStatus, error) {
	v.commandMu.Lock()
	defer v.commandMu.Unlock()

	var status *bluelink.VehicleStatus
	err := v.execute(ctx, func(s *session.Session) error {
		var opErr error
		status, opErr = v.ctrl.Status(ctx, s, &v.info, opts)
		return opErr
	})
	return status, err
}

// Location fetches the vehicle's last reported GPS fix.
func (v *Vehicle) Location(ctx context.Context) (*bluelink.Location, error) {
	v.commandMu.Lock()
	defer v.commandMu.Unlock()

	var location *bluelink.Location
	err := v.execute(ctx, func(s *session.Session) error {
		var opErr error
		location, opErr = v.ctrl.Location(ctx, s, &v.info)
		return opErr
	})
	return location, err
}

// Odometer fetches the vehicle's odometer reading.
func (v *Vehicle) Odometer(ctx context.Context) (*bluelink.Odometer, error) {
	v.commandMu.Lock()
	defer v.commandMu.Unlock()

	var odometer *bluelink.Odometer
	err := v.execute(ctx, func(s *session.Session) error {
		var opErr error
		odometer, opErr = v.ctrl.Odometer(ctx, s, &v.info)
		return opErr
	})
	return odometer, err
}
