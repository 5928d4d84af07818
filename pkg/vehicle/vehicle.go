// Package vehicle exposes the per-vehicle command client. A Vehicle is a handle obtained from the
// account registry; its methods issue remote commands and state reads scoped to that vehicle,
// always through a valid session obtained from the owning account.
package vehicle

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/bluelinky/bluelinky-go/internal/log"
	"github.com/bluelinky/bluelinky-go/pkg/bluelink"
	"github.com/bluelinky/bluelinky-go/pkg/controller"
	"github.com/bluelinky/bluelinky-go/pkg/session"
)

// SessionProvider supplies valid sessions to vehicle operations. Implemented by account.Account,
// which serializes refreshes so concurrent vehicles never race on token renewal.
type SessionProvider interface {
	// Session returns a session that is valid at the time of the call, refreshing first if the
	// current one is expired or about to expire.
	Session(ctx context.Context) (*session.Session, error)

	// ForceRefresh discards the current session state and obtains a fresh one. Called after the
	// vendor rejects a request with 401 despite a locally-valid session.
	ForceRefresh(ctx context.Context) (*session.Session, error)
}

// A Vehicle represents one vehicle enrolled on a Bluelink account.
type Vehicle struct {
	info     bluelink.VehicleInfo
	ctrl     controller.Controller
	sessions SessionProvider

	// commandMu enforces one in-flight operation per vehicle. The vendor rejects overlapping
	// commands with opaque errors, so the client never issues them.
	commandMu sync.Mutex
}

// New wraps a registry descriptor in a command client. Callers normally obtain Vehicles from
// account.Account rather than constructing them directly.
func New(info bluelink.VehicleInfo, ctrl controller.Controller, sessions SessionProvider) *Vehicle {
	log.Debug("%s vehicle %s created", ctrl.Region(), info.VIN)
	return &Vehicle{info: info, ctrl: ctrl, sessions: sessions}
}

func (v *Vehicle) VIN() string                { return v.info.VIN }
func (v *Vehicle) Nickname() string           { return v.info.Nickname }
func (v *Vehicle) Model() string              { return v.info.Model }
func (v *Vehicle) Region() bluelink.Region    { return v.ctrl.Region() }
func (v *Vehicle) Info() bluelink.VehicleInfo { return v.info }

// execute runs op with a valid session, refreshing and retrying exactly once if the vendor
// rejects the session mid-flight.
func (v *Vehicle) execute(ctx context.Context, op func(s *session.Session) error) error {
	s, err := v.sessions.Session(ctx)
	if err != nil {
		return err
	}
	err = op(s)
	if !isUnauthorized(err) {
		return err
	}
	log.Debug("vendor rejected session for %s, refreshing once", v.info.VIN)
	s, refreshErr := v.sessions.ForceRefresh(ctx)
	if refreshErr != nil {
		return refreshErr
	}
	return op(s)
}

func isUnauthorized(err error) bool {
	var httpErr *bluelink.HttpError
	if errors.As(err, &httpErr) {
		return httpErr.Code == http.StatusUnauthorized
	}
	return false
}
