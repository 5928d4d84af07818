// Package controller implements the per-region Bluelink API controllers. Each region runs a
// different backend deployment with its own identity flow and endpoint set; the Controller
// interface isolates those quirks behind a uniform contract so that the account and vehicle
// packages are region-agnostic.
package controller

import (
	"context"
	"time"

	"github.com/bluelinky/bluelinky-go/pkg/bluelink"
	"github.com/bluelinky/bluelinky-go/pkg/session"
)

// Controller is the capability set implemented per region.
type Controller interface {
	Region() bluelink.Region
	Brand() bluelink.Brand

	// Login authenticates against the region's identity endpoint. Credential or region
	// mismatches surface as *bluelink.AuthError.
	Login(ctx context.Context) (*session.Session, error)

	// Refresh exchanges the session's refresh token for a new access token. Implementations
	// perform at most one attempt; callers decide whether to fall back to a full login.
	Refresh(ctx context.Context, s *session.Session) (*session.Session, error)

	// Logout invalidates the session on the vendor side. Best effort; some regions have no
	// logout endpoint.
	Logout(ctx context.Context, s *session.Session) error

	// Vehicles fetches the vehicles enrolled on the account.
	Vehicles(ctx context.Context, s *session.Session) ([]bluelink.VehicleInfo, error)

	// Lock, Unlock, ClimateOn, and ClimateOff issue remote commands. On synchronous regions the
	// returned result is already terminal; on asynchronous regions it is pending and carries a
	// transaction ID for CommandStatus polling.
	Lock(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.CommandResult, error)
	Unlock(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.CommandResult, error)
	ClimateOn(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo, opts bluelink.ClimateOptions) (*bluelink.CommandResult, error)
	ClimateOff(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.CommandResult, error)

	// CommandStatus polls a pending command until the vendor reports a terminal state. Called
	// repeatedly by the vehicle package at RetryInterval.
	CommandStatus(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo, r *bluelink.CommandResult) (*bluelink.CommandResult, error)

	// Status, Location, and Odometer read vehicle state.
	Status(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo, opts bluelink.StatusOptions) (*bluelink.VehicleStatus, error)
	Location(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.Location, error)
	Odometer(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.Odometer, error)

	// RetryInterval returns the recommended wait between CommandStatus polls.
	RetryInterval() time.Duration
}

// ForRegion returns the Controller serving the config's region.
func ForRegion(config bluelink.Config) (Controller, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	switch config.Region {
	case bluelink.RegionUS:
		return NewAmericanController(config)
	case bluelink.RegionCA:
		return NewCanadianController(config)
	case bluelink.RegionEU, bluelink.RegionCN, bluelink.RegionAU:
		return newPlaceholderController(config), nil
	}
	return nil, bluelink.ErrRegionNotSupported
}
