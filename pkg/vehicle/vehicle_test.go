package vehicle

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bluelinky/bluelinky-go/pkg/bluelink"
	"github.com/bluelinky/bluelinky-go/pkg/controller"
	"github.com/bluelinky/bluelinky-go/pkg/session"
)

// fakeController scripts controller behavior for command-client tests. Each hook defaults to a
// trivially-successful implementation.
type fakeController struct {
	lock          func(s *session.Session) (*bluelink.CommandResult, error)
	commandStatus func(s *session.Session, r *bluelink.CommandResult) (*bluelink.CommandResult, error)
	status        func(s *session.Session, opts bluelink.StatusOptions) (*bluelink.VehicleStatus, error)
	retryInterval time.Duration

	lockCalls   atomic.Int32
	statusCalls atomic.Int32
}

func (f *fakeController) Region() bluelink.Region { return bluelink.RegionUS }
func (f *fakeController) Brand() bluelink.Brand   { return bluelink.BrandHyundai }

func (f *fakeController) RetryInterval() time.Duration {
	if f.retryInterval == 0 {
		return time.Millisecond
	}
	return f.retryInterval
}

func (f *fakeController) Login(ctx context.Context) (*session.Session, error) {
	return &session.Session{AccessToken: "token", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeController) Refresh(ctx context.Context, s *session.Session) (*session.Session, error) {
	return f.Login(ctx)
}

func (f *fakeController) Logout(ctx context.Context, s *session.Session) error { return nil }

func (f *fakeController) Vehicles(ctx context.Context, s *session.Session) ([]bluelink.VehicleInfo, error) {
	return nil, nil
}

func (f *fakeController) Lock(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.CommandResult, error) {
	f.lockCalls.Add(1)
	if f.lock != nil {
		return f.lock(s)
	}
	return &bluelink.CommandResult{Command: bluelink.CommandLock, State: bluelink.CommandSuccess}, nil
}

func (f *fakeController) Unlock(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.CommandResult, error) {
	return &bluelink.CommandResult{Command: bluelink.CommandUnlock, State: bluelink.CommandSuccess}, nil
}

func (f *fakeController) ClimateOn(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo, opts bluelink.ClimateOptions) (*bluelink.CommandResult, error) {
	return &bluelink.CommandResult{Command: bluelink.CommandClimateOn, State: bluelink.CommandSuccess}, nil
}

func (f *fakeController) ClimateOff(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.CommandResult, error) {
	return &bluelink.CommandResult{Command: bluelink.CommandClimateOff, State: bluelink.CommandSuccess}, nil
}

func (f *fakeController) CommandStatus(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo, r *bluelink.CommandResult) (*bluelink.CommandResult, error) {
	f.statusCalls.Add(1)
	if f.commandStatus != nil {
		return f.commandStatus(s, r)
	}
	return r, nil
}

func (f *fakeController) Status(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo, opts bluelink.StatusOptions) (*bluelink.VehicleStatus, error) {
	if f.status != nil {
		return f.status(s, opts)
	}
	return &bluelink.VehicleStatus{}, nil
}

func (f *fakeController) Location(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.Location, error) {
	return &bluelink.Location{}, nil
}

func (f *fakeController) Odometer(ctx context.Context, s *session.Session, v *bluelink.VehicleInfo) (*bluelink.Odometer, error) {
	return &bluelink.Odometer{}, nil
}

var _ controller.Controller = (*fakeController)(nil)

// fakeSessions hands out a fixed session and counts forced refreshes.
type fakeSessions struct {
	mu        sync.Mutex
	session   *session.Session
	refreshes int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{
		session: &session.Session{AccessToken: "token", ExpiresAt: time.Now().Add(time.Hour)},
	}
}

func (f *fakeSessions) Session(ctx context.Context) (*session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, nil
}

func (f *fakeSessions) ForceRefresh(ctx context.Context) (*session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	f.session = &session.Session{AccessToken: "refreshed", ExpiresAt: time.Now().Add(time.Hour)}
	return f.session, nil
}

func (f *fakeSessions) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes
}

func testVehicle(ctrl *fakeController) (*Vehicle, *fakeSessions) {
	sessions := newFakeSessions()
	info := bluelink.VehicleInfo{VIN: "5NMS55555555555555", RegistrationID: "reg-1"}
	return New(info, ctrl, sessions), sessions
}

func TestCommandPollsUntilTerminal(t *testing.T) {
	ctrl := &fakeController{
		lock: func(s *session.Session) (*bluelink.CommandResult, error) {
			return &bluelink.CommandResult{
				Command:       bluelink.CommandLock,
				State:         bluelink.CommandPending,
				TransactionID: "txn-1",
			}, nil
		},
	}
	polls := 0
	ctrl.commandStatus = func(s *session.Session, r *bluelink.CommandResult) (*bluelink.CommandResult, error) {
		polls++
		state := bluelink.CommandPending
		if polls >= 2 {
			state = bluelink.CommandSuccess
		}
		return &bluelink.CommandResult{Command: r.Command, State: state, TransactionID: r.TransactionID}, nil
	}

	car, _ := testVehicle(ctrl)
	result, err := car.Lock(context.Background())
	if err != nil {
		t.Fatalf("Lock: %s", err)
	}
	if result.State != bluelink.CommandSuccess {
		t.Errorf("state = %s, want success", result.State)
	}
	if polls != 2 {
		t.Errorf("polled %d times, want 2", polls)
	}
	if result.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not stamped on polled result")
	}
}

func TestCommandTimesOutInsteadOfPollingForever(t *testing.T) {
	ctrl := &fakeController{
		lock: func(s *session.Session) (*bluelink.CommandResult, error) {
			return &bluelink.CommandResult{Command: bluelink.CommandLock, State: bluelink.CommandPending}, nil
		},
		commandStatus: func(s *session.Session, r *bluelink.CommandResult) (*bluelink.CommandResult, error) {
			return r, nil
		},
	}

	car, _ := testVehicle(ctrl)
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()

	start := time.Now()
	result, err := car.Lock(ctx)
	if !errors.Is(err, bluelink.ErrCommandTimeout) {
		t.Fatalf("expected ErrCommandTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout took %s", elapsed)
	}
	if result == nil || result.State != bluelink.CommandPending {
		t.Errorf("result = %+v, want the last pending result", result)
	}
	if !bluelink.MayHaveSucceeded(err) {
		t.Error("a timed-out command may still have executed")
	}
}

func TestCanceledCommandIsNotATimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := &fakeController{
		lock: func(s *session.Session) (*bluelink.CommandResult, error) {
			return &bluelink.CommandResult{Command: bluelink.CommandLock, State: bluelink.CommandPending}, nil
		},
		commandStatus: func(s *session.Session, r *bluelink.CommandResult) (*bluelink.CommandResult, error) {
			cancel()
			return r, nil
		},
	}

	car, _ := testVehicle(ctrl)
	_, err := car.Lock(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, bluelink.ErrCommandTimeout) {
		t.Error("caller cancellation misreported as a command timeout")
	}
}

func TestUnauthorizedTriggersSingleRefresh(t *testing.T) {
	ctrl := &fakeController{}
	ctrl.lock = func(s *session.Session) (*bluelink.CommandResult, error) {
		if s.AccessToken != "refreshed" {
			return nil, &bluelink.HttpError{Code: http.StatusUnauthorized}
		}
		return &bluelink.CommandResult{Command: bluelink.CommandLock, State: bluelink.CommandSuccess}, nil
	}

	car, sessions := testVehicle(ctrl)
	result, err := car.Lock(context.Background())
	if err != nil {
		t.Fatalf("Lock: %s", err)
	}
	if result.State != bluelink.CommandSuccess {
		t.Errorf("state = %s", result.State)
	}
	if sessions.refreshCount() != 1 {
		t.Errorf("refreshed %d times, want 1", sessions.refreshCount())
	}
	if got := ctrl.lockCalls.Load(); got != 2 {
		t.Errorf("lock sent %d times, want 2", got)
	}
}

func TestUnauthorizedDoesNotRetryTwice(t *testing.T) {
	ctrl := &fakeController{
		lock: func(s *session.Session) (*bluelink.CommandResult, error) {
			return nil, &bluelink.HttpError{Code: http.StatusUnauthorized}
		},
	}

	car, sessions := testVehicle(ctrl)
	_, err := car.Lock(context.Background())
	var httpErr *bluelink.HttpError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 to surface, got %v", err)
	}
	if sessions.refreshCount() != 1 {
		t.Errorf("refreshed %d times, want exactly 1", sessions.refreshCount())
	}
	if got := ctrl.lockCalls.Load(); got != 2 {
		t.Errorf("lock sent %d times, want 2", got)
	}
}

func TestNonAuthErrorsDoNotRefresh(t *testing.T) {
	ctrl := &fakeController{
		lock: func(s *session.Session) (*bluelink.CommandResult, error) {
			return nil, &bluelink.HttpError{Code: http.StatusBadRequest}
		},
	}

	car, sessions := testVehicle(ctrl)
	if _, err := car.Lock(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if sessions.refreshCount() != 0 {
		t.Errorf("refreshed %d times, want 0", sessions.refreshCount())
	}
}

func TestTransientPollErrorsAreRetried(t *testing.T) {
	ctrl := &fakeController{
		lock: func(s *session.Session) (*bluelink.CommandResult, error) {
			return &bluelink.CommandResult{Command: bluelink.CommandLock, State: bluelink.CommandPending}, nil
		},
	}
	polls := 0
	ctrl.commandStatus = func(s *session.Session, r *bluelink.CommandResult) (*bluelink.CommandResult, error) {
		polls++
		if polls == 1 {
			return nil, &bluelink.HttpError{Code: http.StatusServiceUnavailable}
		}
		return &bluelink.CommandResult{Command: r.Command, State: bluelink.CommandSuccess}, nil
	}

	car, _ := testVehicle(ctrl)
	result, err := car.Lock(context.Background())
	if err != nil {
		t.Fatalf("Lock: %s", err)
	}
	if result.State != bluelink.CommandSuccess || polls != 2 {
		t.Errorf("state = %s after %d polls", result.State, polls)
	}
}

func TestPermanentPollErrorsAbort(t *testing.T) {
	ctrl := &fakeController{
		lock: func(s *session.Session) (*bluelink.CommandResult, error) {
			return &bluelink.CommandResult{Command: bluelink.CommandLock, State: bluelink.CommandPending}, nil
		},
		commandStatus: func(s *session.Session, r *bluelink.CommandResult) (*bluelink.CommandResult, error) {
			return nil, &bluelink.HttpError{Code: http.StatusBadRequest}
		},
	}

	car, _ := testVehicle(ctrl)
	_, err := car.Lock(context.Background())
	var httpErr *bluelink.HttpError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 to surface, got %v", err)
	}
}

func TestCommandsDoNotOverlap(t *testing.T) {
	var inFlight atomic.Int32
	ctrl := &fakeController{
		lock: func(s *session.Session) (*bluelink.CommandResult, error) {
			if inFlight.Add(1) > 1 {
				t.Error("overlapping commands issued")
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return &bluelink.CommandResult{Command: bluelink.CommandLock, State: bluelink.CommandSuccess}, nil
		},
	}

	car, _ := testVehicle(ctrl)
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := car.Lock(context.Background()); err != nil {
				t.Errorf("Lock: %s", err)
			}
		}()
	}
	wg.Wait()
}

func TestStatusForwardsOptions(t *testing.T) {
	var seen bluelink.StatusOptions
	ctrl := &fakeController{
		status: func(s *session.Session, opts bluelink.StatusOptions) (*bluelink.VehicleStatus, error) {
			seen = opts
			return &bluelink.VehicleStatus{}, nil
		},
	}

	car, _ := testVehicle(ctrl)
	if _, err := car.Status(context.Background(), bluelink.StatusOptions{Refresh: true, Parsed: true}); err != nil {
		t.Fatalf("Status: %s", err)
	}
	if !seen.Refresh || !seen.Parsed {
		t.Errorf("options = %+v", seen)
	}
}
