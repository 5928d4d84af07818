package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/bluelinky/bluelinky-go/pkg/bluelink"
	"github.com/bluelinky/bluelinky-go/pkg/session"
)

// placeholderController mirrors the Controller surface for regions whose deployments have not
// been reverse engineered yet. Every operation fails with ErrRegionNotSupported so callers get a
// consistent error rather than a nil-controller panic.
type placeholderController struct {
	config bluelink.Config
}

func newPlaceholderController(config bluelink.Config) *placeholderController {
	return &placeholderController{config: config}
}

func (c *placeholderController) Region() bluelink.Region { return c.config.Region }
func (c *placeholderController) Brand() bluelink.Brand   { return c.config.Brand }

func (c *placeholderController) RetryInterval() time.Duration { return time.Second }

func (c *placeholderController) unsupported() error {
	return fmt.Errorf("%w: %s", bluelink.ErrRegionNotSupported, c.config.Region)
}

func (c *placeholderController) Login(ctx context.Context) (*session.Session, error) {
	return nil, c.unsupported()
}

func (c *placeholderController) Refresh(ctx context.Context, s *session.Session) (*session.Session, error) {
	return nil, c.unsupported()
}

func (c *placeholderController) Logout(ctx context.Context, s *session.Session) error {
	return c.unsupported()
}

func (c *placeholderController) Vehicles(ctx context.Context, s *session.Session) ([]bluelink.VehicleInfo, error) {
	return nil, c.unsupported()
}

func (c *placeholderController) Lock(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.CommandResult, error) {
	return nil, c.unsupported()
}

func (c *placeholderController) Unlock(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.CommandResult, error) {
	return nil, c.unsupported()
}

func (c *placeholderController) ClimateOn(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo, opts bluelink.ClimateOptions) (*bluelink.CommandResult, error) {
	return nil, c.unsupported()
}

func (c *placeholderController) ClimateOff(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.CommandResult, error) {
	return nil, c.unsupported()
}

func (c *placeholderController) CommandStatus(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo, r *bluelink.CommandResult) (*bluelink.CommandResult, error) {
	return nil, c.unsupported()
}

func (c *placeholderController) Status(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo, opts bluelink.StatusOptions) (*bluelink.VehicleStatus, error) {
	return nil, c.unsupported()
}

func (c *placeholderController) Location(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.Location, error) {
	return nil, c.unsupported()
}

func (c *placeholderController) Odometer(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.Odometer, error) {
	return nil, c.unsupported()
}
