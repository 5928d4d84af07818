// Package account ties the Bluelink client together: it owns the session lifecycle (login,
// single-writer token refresh, logout) and the vehicle registry for one account.
package account

import (
	"context"
	"strings"
	"sync"

	"github.com/bluelinky/bluelinky-go/internal/log"
	"github.com/bluelinky/bluelinky-go/pkg/bluelink"
	"github.com/bluelinky/bluelinky-go/pkg/controller"
	"github.com/bluelinky/bluelinky-go/pkg/session"
	"github.com/bluelinky/bluelinky-go/pkg/vehicle"
)

// Account is an authenticated Bluelink account. All methods are safe for concurrent use; token
// refresh is serialized so that two goroutines can never invalidate each other's tokens.
type Account struct {
	config bluelink.Config
	ctrl   controller.Controller

	mu       sync.Mutex
	session  *session.Session
	vehicles []*vehicle.Vehicle
}

// New builds an Account for the config's region and brand. No network traffic happens until
// Login or the first operation that needs a session.
func New(config bluelink.Config) (*Account, error) {
	if config.Language == "" {
		config.Language = bluelink.DefaultLanguage
	}
	ctrl, err := controller.ForRegion(config)
	if err != nil {
		return nil, err
	}
	return &Account{config: config, ctrl: ctrl}, nil
}

// NewWithController builds an Account around an explicit controller. Intended for tests and for
// callers providing custom region implementations.
func NewWithController(config bluelink.Config, ctrl controller.Controller) *Account {
	return &Account{config: config, ctrl: ctrl}
}

func (a *Account) Region() bluelink.Region { return a.ctrl.Region() }
func (a *Account) Brand() bluelink.Brand   { return a.ctrl.Brand() }

// Login authenticates against the vendor's identity endpoint. Calling Login with a valid session
// replaces it.
func (a *Account) Login(ctx context.Context) error {
	s, err := a.ctrl.Login(ctx)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.session = s
	a.mu.Unlock()
	log.Info("logged in to %s %s as %s", a.ctrl.Region(), a.ctrl.Brand(), a.config.Username)
	return nil
}

// Session returns a valid session, logging in on first use and refreshing when the current token
// is expired or within the expiry skew. A session inside its validity window is returned as-is,
// so a batch of sequential calls refreshes at most once. Refresh failures propagate; there is no
// second attempt.
func (a *Account) Session(ctx context.Context) (*session.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session.Valid() {
		return a.session, nil
	}
	return a.renewLocked(ctx)
}

// ForceRefresh discards the current token and obtains a fresh session. Used after the vendor
// rejects a locally-valid token.
func (a *Account) ForceRefresh(ctx context.Context) (*session.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.renewLocked(ctx)
}

// renewLocked refreshes or, lacking a session, performs the initial login. Caller holds a.mu, so
// only one renewal can be in flight.
func (a *Account) renewLocked(ctx context.Context) (*session.Session, error) {
	var (
		s   *session.Session
		err error
	)
	if a.session == nil {
		log.Debug("no session, performing initial login")
		s, err = a.ctrl.Login(ctx)
	} else {
		log.Debug("session expired or rejected, refreshing")
		s, err = a.ctrl.Refresh(ctx, a.session)
	}
	if err != nil {
		return nil, err
	}
	a.session = s
	return s, nil
}

// Logout invalidates the session on the vendor side and locally. The registry cache is dropped as
// well.
func (a *Account) Logout(ctx context.Context) error {
	a.mu.Lock()
	s := a.session
	a.session = nil
	a.vehicles = nil
	a.mu.Unlock()
	if s == nil {
		return nil
	}
	return a.ctrl.Logout(ctx, s)
}

// CurrentSession returns the session as-is without renewing it, or nil if not logged in. Used by
// callers persisting sessions across process restarts.
func (a *Account) CurrentSession() *session.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// RestoreSession installs a previously-persisted session. An expired session is accepted; the
// next operation refreshes it.
func (a *Account) RestoreSession(s *session.Session) {
	a.mu.Lock()
	a.session = s
	a.mu.Unlock()
}

// Vehicles fetches the vehicles enrolled on the account and caches the handles. Subsequent calls
// re-fetch; use GetVehicle for cached lookups.
func (a *Account) Vehicles(ctx context.Context) ([]*vehicle.Vehicle, error) {
	s, err := a.Session(ctx)
	if err != nil {
		return nil, err
	}
	infos, err := a.ctrl.Vehicles(ctx, s)
	if err != nil {
		return nil, err
	}
	vehicles := make([]*vehicle.Vehicle, 0, len(infos))
	for _, info := range infos {
		vehicles = append(vehicles, vehicle.New(info, a.ctrl, a))
	}
	a.mu.Lock()
	a.vehicles = vehicles
	a.mu.Unlock()
	return vehicles, nil
}

// GetVehicle returns the vehicle with the given VIN, or (nil, nil) if the account has no such
// vehicle: an unknown VIN is an expected condition, not an error. VIN comparison is
// case-insensitive. The registry is fetched on first use.
func (a *Account) GetVehicle(ctx context.Context, vin string) (*vehicle.Vehicle, error) {
	a.mu.Lock()
	cached := a.vehicles
	a.mu.Unlock()
	if cached == nil {
		var err error
		if cached, err = a.Vehicles(ctx); err != nil {
			return nil, err
		}
	}
	for _, v := range cached {
		if strings.EqualFold(v.VIN(), vin) {
			return v, nil
		}
	}
	return nil, nil
}
