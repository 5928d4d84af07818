package account

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bluelinky/bluelinky-go/pkg/bluelink"
	"github.com/bluelinky/bluelinky-go/pkg/controller"
	"github.com/bluelinky/bluelinky-go/pkg/session"
)

const sonataVIN = "5NMS55555555555555"

// countingController records how often the session and registry endpoints are hit.
type countingController struct {
	logins    atomic.Int32
	refreshes atomic.Int32
	logouts   atomic.Int32
	listings  atomic.Int32

	loginErr   error
	refreshErr error
}

func (c *countingController) Region() bluelink.Region      { return bluelink.RegionUS }
func (c *countingController) Brand() bluelink.Brand        { return bluelink.BrandHyundai }
func (c *countingController) RetryInterval() time.Duration { return time.Millisecond }

func (c *countingController) Login(ctx context.Context) (*session.Session, error) {
	c.logins.Add(1)
	if c.loginErr != nil {
		return nil, c.loginErr
	}
	return &session.Session{AccessToken: "access", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (c *countingController) Refresh(ctx context.Context, s *session.Session) (*session.Session, error) {
	c.refreshes.Add(1)
	if c.refreshErr != nil {
		return nil, c.refreshErr
	}
	return &session.Session{AccessToken: "refreshed", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (c *countingController) Logout(ctx context.Context, s *session.Session) error {
	c.logouts.Add(1)
	return nil
}

func (c *countingController) Vehicles(ctx context.Context, s *session.Session) ([]bluelink.VehicleInfo, error) {
	c.listings.Add(1)
	return []bluelink.VehicleInfo{
		{VIN: sonataVIN, Nickname: "Sonata", Model: "Sonata", RegistrationID: "reg-1"},
		{VIN: "KM8KRDAF5PU999999", Nickname: "Ioniq", Model: "IONIQ 5", RegistrationID: "reg-2", EngineType: bluelink.EngineTypeEV},
	}, nil
}

func (c *countingController) Lock(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.CommandResult, error) {
	return &bluelink.CommandResult{Command: bluelink.CommandLock, State: bluelink.CommandSuccess}, nil
}

func (c *countingController) Unlock(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.CommandResult, error) {
	return &bluelink.CommandResult{Command: bluelink.CommandUnlock, State: bluelink.CommandSuccess}, nil
}

func (c *countingController) ClimateOn(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo, opts bluelink.ClimateOptions) (*bluelink.CommandResult, error) {
	return &bluelink.CommandResult{Command: bluelink.CommandClimateOn, State: bluelink.CommandSuccess}, nil
}

func (c *countingController) ClimateOff(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.CommandResult, error) {
	return &bluelink.CommandResult{Command: bluelink.CommandClimateOff, State: bluelink.CommandSuccess}, nil
}

func (c *countingController) CommandStatus(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo, r *bluelink.CommandResult) (*bluelink.CommandResult, error) {
	return r, nil
}

func (c *countingController) Status(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo, opts bluelink.StatusOptions) (*bluelink.VehicleStatus, error) {
	return &bluelink.VehicleStatus{}, nil
}

func (c *countingController) Location(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.Location, error) {
	return &bluelink.Location{}, nil
}

func (c *countingController) Odometer(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.Odometer, error) {
	return &bluelink.Odometer{}, nil
}

var _ controller.Controller = (*countingController)(nil)

func testAccount(ctrl controller.Controller) *Account {
	return NewWithController(bluelink.Config{
		Username: "owner@example.com",
		Password: "hunter2",
		Brand:    bluelink.BrandHyundai,
		Region:   bluelink.RegionUS,
	}, ctrl)
}

func TestSessionLogsInOnce(t *testing.T) {
	ctrl := &countingController{}
	acct := testAccount(ctrl)

	first, err := acct.Session(context.Background())
	if err != nil {
		t.Fatalf("Session: %s", err)
	}
	second, err := acct.Session(context.Background())
	if err != nil {
		t.Fatalf("Session: %s", err)
	}
	if first != second {
		t.Error("valid session was not reused")
	}
	if got := ctrl.logins.Load(); got != 1 {
		t.Errorf("logged in %d times, want 1", got)
	}
	if got := ctrl.refreshes.Load(); got != 0 {
		t.Errorf("refreshed %d times, want 0", got)
	}
}

func TestSessionRefreshesExpiredToken(t *testing.T) {
	ctrl := &countingController{}
	acct := testAccount(ctrl)
	acct.RestoreSession(&session.Session{
		AccessToken:  "stale",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(-time.Minute),
	})

	s, err := acct.Session(context.Background())
	if err != nil {
		t.Fatalf("Session: %s", err)
	}
	if s.AccessToken != "refreshed" {
		t.Errorf("token = %s, want the refreshed one", s.AccessToken)
	}
	if got := ctrl.refreshes.Load(); got != 1 {
		t.Errorf("refreshed %d times, want 1", got)
	}
	if got := ctrl.logins.Load(); got != 0 {
		t.Errorf("logged in %d times, want 0", got)
	}
}

func TestConcurrentCallersShareOneRefresh(t *testing.T) {
	ctrl := &countingController{}
	acct := testAccount(ctrl)
	acct.RestoreSession(&session.Session{
		AccessToken: "stale",
		ExpiresAt:   time.Now().Add(-time.Minute),
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := acct.Session(context.Background()); err != nil {
				t.Errorf("Session: %s", err)
			}
		}()
	}
	wg.Wait()

	if got := ctrl.refreshes.Load(); got != 1 {
		t.Errorf("refreshed %d times, want 1", got)
	}
}

func TestRefreshFailurePropagates(t *testing.T) {
	ctrl := &countingController{refreshErr: &bluelink.AuthError{StatusCode: 401, Message: "refresh token revoked"}}
	acct := testAccount(ctrl)
	acct.RestoreSession(&session.Session{AccessToken: "stale", ExpiresAt: time.Now().Add(-time.Minute)})

	_, err := acct.Session(context.Background())
	if !bluelink.IsAuthError(err) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if got := ctrl.refreshes.Load(); got != 1 {
		t.Errorf("refreshed %d times, want exactly 1", got)
	}
}

func TestGetVehicle(t *testing.T) {
	ctrl := &countingController{}
	acct := testAccount(ctrl)

	car, err := acct.GetVehicle(context.Background(), sonataVIN)
	if err != nil {
		t.Fatalf("GetVehicle: %s", err)
	}
	if car == nil || car.VIN() != sonataVIN {
		t.Fatalf("car = %v", car)
	}
	if car.Nickname() != "Sonata" {
		t.Errorf("nickname = %s", car.Nickname())
	}
}

func TestGetVehicleIsCaseInsensitive(t *testing.T) {
	ctrl := &countingController{}
	acct := testAccount(ctrl)

	car, err := acct.GetVehicle(context.Background(), "km8krdaf5pu999999")
	if err != nil {
		t.Fatalf("GetVehicle: %s", err)
	}
	if car == nil || car.VIN() != "KM8KRDAF5PU999999" {
		t.Fatalf("car = %v", car)
	}
}

func TestGetVehicleUnknownVINIsNotAnError(t *testing.T) {
	ctrl := &countingController{}
	acct := testAccount(ctrl)

	car, err := acct.GetVehicle(context.Background(), "WAUZZZ8V5KA000000")
	if err != nil {
		t.Fatalf("GetVehicle: %s", err)
	}
	if car != nil {
		t.Fatalf("car = %v, want nil for a VIN not on the account", car)
	}
}

func TestGetVehicleUsesCachedRegistry(t *testing.T) {
	ctrl := &countingController{}
	acct := testAccount(ctrl)

	if _, err := acct.GetVehicle(context.Background(), sonataVIN); err != nil {
		t.Fatalf("GetVehicle: %s", err)
	}
	if _, err := acct.GetVehicle(context.Background(), "KM8KRDAF5PU999999"); err != nil {
		t.Fatalf("GetVehicle: %s", err)
	}
	if got := ctrl.listings.Load(); got != 1 {
		t.Errorf("fetched vehicle list %d times, want 1", got)
	}
	if got := ctrl.logins.Load(); got != 1 {
		t.Errorf("logged in %d times, want 1", got)
	}
}

func TestLogoutDropsSessionAndRegistry(t *testing.T) {
	ctrl := &countingController{}
	acct := testAccount(ctrl)

	if _, err := acct.GetVehicle(context.Background(), sonataVIN); err != nil {
		t.Fatalf("GetVehicle: %s", err)
	}
	if err := acct.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %s", err)
	}
	if got := ctrl.logouts.Load(); got != 1 {
		t.Errorf("logged out %d times, want 1", got)
	}
	if acct.CurrentSession() != nil {
		t.Error("session survived logout")
	}

	// The next lookup logs in again and re-fetches the registry.
	if _, err := acct.GetVehicle(context.Background(), sonataVIN); err != nil {
		t.Fatalf("GetVehicle after logout: %s", err)
	}
	if got := ctrl.logins.Load(); got != 2 {
		t.Errorf("logged in %d times, want 2", got)
	}
	if got := ctrl.listings.Load(); got != 2 {
		t.Errorf("fetched vehicle list %d times, want 2", got)
	}
}

func TestLogoutWithoutSessionIsNoop(t *testing.T) {
	ctrl := &countingController{}
	acct := testAccount(ctrl)

	if err := acct.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %s", err)
	}
	if got := ctrl.logouts.Load(); got != 0 {
		t.Errorf("logged out %d times, want 0", got)
	}
}

func TestRestoredSessionAvoidsLogin(t *testing.T) {
	ctrl := &countingController{}
	acct := testAccount(ctrl)
	acct.RestoreSession(&session.Session{
		AccessToken: "persisted",
		ExpiresAt:   time.Now().Add(time.Hour),
	})

	s, err := acct.Session(context.Background())
	if err != nil {
		t.Fatalf("Session: %s", err)
	}
	if s.AccessToken != "persisted" {
		t.Errorf("token = %s", s.AccessToken)
	}
	if got := ctrl.logins.Load(); got != 0 {
		t.Errorf("logged in %d times, want 0", got)
	}
}

func TestLoginFailurePropagates(t *testing.T) {
	ctrl := &countingController{loginErr: &bluelink.AuthError{StatusCode: 401, Message: "bad password"}}
	acct := testAccount(ctrl)

	if err := acct.Login(context.Background()); !bluelink.IsAuthError(err) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if _, err := acct.Vehicles(context.Background()); !bluelink.IsAuthError(err) {
		t.Fatalf("expected AuthError from Vehicles, got %v", err)
	}
}
