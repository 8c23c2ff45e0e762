package schema

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nmbl-labs/formpath/pkg/ports"
)

// Debounce wraps a validator so that only the last invocation within the
// quiet window actually executes; earlier invocations fail with
// ErrSuperseded. Intended for live field-level checks, not for the flow
// engine itself.
func Debounce(v ports.Validator, window time.Duration) ports.Validator {
	return &debounced{inner: v, window: window}
}

type debounced struct {
	inner  ports.Validator
	window time.Duration
	seq    atomic.Uint64
}

func (d *debounced) wait(ctx context.Context) (uint64, error) {
	my := d.seq.Add(1)
	timer := time.NewTimer(d.window)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-timer.C:
	}
	if d.seq.Load() != my {
		return 0, ErrSuperseded
	}
	return my, nil
}

func (d *debounced) Parse(ctx context.Context, data any) (any, error) {
	if _, err := d.wait(ctx); err != nil {
		return nil, err
	}
	return d.inner.Parse(ctx, data)
}

func (d *debounced) SafeParse(ctx context.Context, data any) (ports.ParseResult, error) {
	if _, err := d.wait(ctx); err != nil {
		return ports.ParseResult{}, err
	}
	return d.inner.SafeParse(ctx, data)
}

// RetryPolicy controls how transient validation failures are retried.
// MaxAttempts includes the first attempt. InitialBackoff is the delay
// before the first retry; Multiplier grows it each attempt (1.0 yields a
// constant backoff, values <= 0 default to 2.0); MaxBackoff caps the
// delay when > 0.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	Multiplier     float64
	MaxBackoff     time.Duration
}

// Retry wraps a validator so that operational errors (not validation
// failures) are retried per the policy. Validation failures are never
// retried: invalid input does not become valid by asking again.
func Retry(v ports.Validator, policy RetryPolicy) ports.Validator {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if policy.Multiplier <= 0 {
		policy.Multiplier = 2.0
	}
	return &retrying{inner: v, policy: policy}
}

type retrying struct {
	inner  ports.Validator
	policy RetryPolicy
}

func (r *retrying) backoff(attempt int) time.Duration {
	d := r.policy.InitialBackoff
	for i := 1; i < attempt; i++ {
		d = time.Duration(float64(d) * r.policy.Multiplier)
	}
	if r.policy.MaxBackoff > 0 && d > r.policy.MaxBackoff {
		d = r.policy.MaxBackoff
	}
	return d
}

func (r *retrying) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *retrying) Parse(ctx context.Context, data any) (any, error) {
	var lastErr error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		out, err := r.inner.Parse(ctx, data)
		if err == nil || IsValidationError(err) {
			return out, err
		}
		lastErr = err
		if attempt < r.policy.MaxAttempts {
			if serr := r.sleep(ctx, r.backoff(attempt)); serr != nil {
				return nil, serr
			}
		}
	}
	return nil, lastErr
}

func (r *retrying) SafeParse(ctx context.Context, data any) (ports.ParseResult, error) {
	var lastErr error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		res, err := r.inner.SafeParse(ctx, data)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if attempt < r.policy.MaxAttempts {
			if serr := r.sleep(ctx, r.backoff(attempt)); serr != nil {
				return ports.ParseResult{}, serr
			}
		}
	}
	return ports.ParseResult{}, lastErr
}

// AbortableValidator wraps a validator with an explicit cancellation
// signal. Abort causes every in-flight and subsequent call to fail with
// ErrAborted until Reset is called, letting callers drop stale results
// without confusing them with validation failures.
type AbortableValidator struct {
	inner ports.Validator

	mu      sync.Mutex
	aborted chan struct{}
}

// Abortable wraps v with an abort signal.
func Abortable(v ports.Validator) *AbortableValidator {
	return &AbortableValidator{inner: v, aborted: make(chan struct{})}
}

// Abort cancels in-flight validations. Idempotent.
func (a *AbortableValidator) Abort() {
	a.mu.Lock()
	defer a.mu.Unlock()
	select {
	case <-a.aborted:
	default:
		close(a.aborted)
	}
}

// Reset re-arms the validator after an abort.
func (a *AbortableValidator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	select {
	case <-a.aborted:
		a.aborted = make(chan struct{})
	default:
	}
}

func (a *AbortableValidator) signal() <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.aborted
}

func (a *AbortableValidator) Parse(ctx context.Context, data any) (any, error) {
	signal := a.signal()
	select {
	case <-signal:
		return nil, ErrAborted
	default:
	}

	type outcome struct {
		out any
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		out, err := a.inner.Parse(ctx, data)
		done <- outcome{out: out, err: err}
	}()

	select {
	case <-signal:
		return nil, ErrAborted
	case <-ctx.Done():
		return nil, ctx.Err()
	case o := <-done:
		return o.out, o.err
	}
}

func (a *AbortableValidator) SafeParse(ctx context.Context, data any) (ports.ParseResult, error) {
	out, err := a.Parse(ctx, data)
	if err != nil {
		if IsValidationError(err) {
			return ports.ParseResult{Success: false, Errors: FieldErrors(err)}, nil
		}
		return ports.ParseResult{}, err
	}
	return ports.ParseResult{Success: true, Data: out}, nil
}
