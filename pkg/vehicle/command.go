package vehicle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bluelinky/bluelinky-go/internal/log"
	"github.com/bluelinky/bluelinky-go/pkg/bluelink"
	"github.com/bluelinky/bluelinky-go/pkg/session"
)

// DefaultCommandTimeout bounds command polling when the caller's context has no deadline of its
// own.
const DefaultCommandTimeout = time.Minute

// issue sends a remote command and, when the region's API is asynchronous, polls until the result
// reaches a terminal state or ctx expires. The command mutex is held for the whole exchange so a
// slow poll cannot interleave with the next command.
func (v *Vehicle) issue(ctx context.Context, send func(s *session.Session) (*bluelink.CommandResult, error)) (*bluelink.CommandResult, error) {
	v.commandMu.Lock()
	defer v.commandMu.Unlock()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCommandTimeout)
		defer cancel()
	}

	var result *bluelink.CommandResult
	err := v.execute(ctx, func(s *session.Session) error {
		var opErr error
		result, opErr = send(s)
		if opErr != nil {
			return opErr
		}
		result, opErr = v.awaitResult(ctx, s, result)
		return opErr
	})
	if err != nil {
		return result, err
	}
	return result, nil
}

// awaitResult polls CommandStatus until the result is terminal. A context deadline during polling
// reports ErrCommandTimeout: the command was accepted by the vendor, so it may still complete.
// Caller cancellation is passed through unchanged.
func (v *Vehicle) awaitResult(ctx context.Context, s *session.Session, result *bluelink.CommandResult) (*bluelink.CommandResult, error) {
	for !result.Terminal() {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return result, ctx.Err()
			}
			return result, fmt.Errorf("%w: %s", bluelink.ErrCommandTimeout, result.Command)
		case <-time.After(v.ctrl.RetryInterval()):
		}
		updated, err := v.ctrl.CommandStatus(ctx, s, &v.info, result)
		if err != nil {
			if bluelink.Temporary(err) {
				log.Debug("transient error polling %s on %s: %s", result.Command, v.info.VIN, err)
				continue
			}
			return result, err
		}
		updated.UpdatedAt = time.Now()
		result = updated
	}
	return result, nil
}
