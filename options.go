package wireup

import "time"

const (
	defaultKeepaliveInterval = time.Second
	defaultRetryInterval     = 250 * time.Millisecond
	defaultInitialWireCount  = 1
)

// wiringOptions holds resolved configuration for a Wiring.
type wiringOptions struct {
	keepaliveInterval time.Duration
	retryInterval     time.Duration
	// timeoutInterval is the expire deadline's offset from now. Zero
	// means disabled: expire is armed 100 years out (see expireDeadline).
	timeoutInterval  time.Duration
	maxRequests      int
	lock             LockBundle
	acceptCallback   func(AcceptInfo) (data any, cb Callback)
	initialWireCount int
}

// Option configures a Wiring at construction time.
type Option interface {
	apply(*wiringOptions) error
}

type optionImpl struct {
	applyFunc func(*wiringOptions) error
}

func (o *optionImpl) apply(opts *wiringOptions) error {
	return o.applyFunc(opts)
}

// WithKeepaliveInterval sets how often a LIVE wire sends a KEEPALIVE to
// its peer. The default is one second.
func WithKeepaliveInterval(d time.Duration) Option {
	return &optionImpl{func(opts *wiringOptions) error {
		opts.keepaliveInterval = d
		return nil
	}}
}

// WithRetryInterval sets how often an INITIAL wire resends its REQ while
// awaiting an ACK. The default is 250ms.
func WithRetryInterval(d time.Duration) Option {
	return &optionImpl{func(opts *wiringOptions) error {
		opts.retryInterval = d
		return nil
	}}
}

// WithTimeoutInterval sets the silence window after which a LIVE wire is
// torn down for failing to receive a KEEPALIVE. Zero (the default)
// disables the expire timer entirely.
func WithTimeoutInterval(d time.Duration) Option {
	return &optionImpl{func(opts *wiringOptions) error {
		opts.timeoutInterval = d
		return nil
	}}
}

// WithRequestSize bounds the number of outstanding-request tracking
// handles a Wiring will ever allocate; zero (the default) means
// unbounded. Once the bound is reached, an operation that needs a new
// handle fails with ErrNoFreeRequest instead of sending.
func WithRequestSize(n int) Option {
	return &optionImpl{func(opts *wiringOptions) error {
		opts.maxRequests = n
		return nil
	}}
}

// WithLockBundle supplies the lock/unlock/assert-locked triple every
// mutating operation is documented to require the caller to hold. The
// default is a no-op bundle, appropriate for single-threaded use.
func WithLockBundle(lb LockBundle) Option {
	return &optionImpl{func(opts *wiringOptions) error {
		opts.lock = lb
		return nil
	}}
}

// WithAcceptCallback registers the function invoked when a peer's REQ is
// answered and a new wire is accepted directly into LIVE. It returns the
// opaque association data to store for the new wire and the per-event
// callback (if any) to install on it.
func WithAcceptCallback(fn func(AcceptInfo) (data any, cb Callback)) Option {
	return &optionImpl{func(opts *wiringOptions) error {
		opts.acceptCallback = fn
		return nil
	}}
}

// WithInitialWireCount sets the initial wire table size. The default is
// one slot; the table grows from there as needed.
func WithInitialWireCount(n int) Option {
	return &optionImpl{func(opts *wiringOptions) error {
		opts.initialWireCount = n
		return nil
	}}
}

func resolveOptions(opts []Option) (*wiringOptions, error) {
	cfg := &wiringOptions{
		keepaliveInterval: defaultKeepaliveInterval,
		retryInterval:     defaultRetryInterval,
		timeoutInterval:   0,
		initialWireCount:  defaultInitialWireCount,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
