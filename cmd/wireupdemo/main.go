// Command wireupdemo exercises a Wiring end to end over the UDP
// transport: run with no arguments to listen for an incoming wire, or
// with a remote address to originate one. Mirrors the shape of the
// original na/wireup test harness (a responder and a client driving the
// same protocol loop).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jgmoore-or/wireup"
	"github.com/jgmoore-or/wireup/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "wireupdemo:", err)
		os.Exit(1)
	}
}

func run() error {
	bind := flag.String("bind", "127.0.0.1:0", "local address to bind")
	verbose := flag.Bool("v", false, "log at debug level")
	flag.Parse()
	remote := flag.Arg(0) // empty means "act as responder"

	level := wireup.LevelWarn
	if *verbose {
		level = wireup.LevelDebug
	}
	logger := wireup.NewWriterLogger(os.Stderr, level)

	tr, err := transport.NewUDPTransport(*bind)
	if err != nil {
		return fmt.Errorf("bind %s: %w", *bind, err)
	}
	defer tr.Close()

	fmt.Printf("listening on %x\n", tr.LocalAddr())

	var mu sync.Mutex
	wr, err := wireup.New(tr, logger,
		wireup.WithLockBundle(mutexLockBundle(&mu)),
		wireup.WithKeepaliveInterval(2*time.Second),
		wireup.WithTimeoutInterval(10*time.Second),
		wireup.WithAcceptCallback(func(info wireup.AcceptInfo) (any, wireup.Callback) {
			fmt.Printf("accepted wire from %x as sender %d\n", info.Addr, info.SenderID)
			return nil, eventLogger
		}),
	)
	if err != nil {
		return fmt.Errorf("new wiring: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mu.Lock()
	if remote != "" {
		raddr, err := transport.ResolveAddr(remote)
		if err != nil {
			mu.Unlock()
			return fmt.Errorf("resolve %s: %w", remote, err)
		}
		id, err := wr.Start(ctx, tr.LocalAddr(), raddr, eventLogger, nil)
		if err != nil {
			mu.Unlock()
			return fmt.Errorf("start: %w", err)
		}
		fmt.Printf("originating wire %v to %s\n", id, remote)
	}
	mu.Unlock()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			err := wr.Destroy(true)
			mu.Unlock()
			return err
		case <-ticker.C:
			mu.Lock()
			for wr.Once() {
			}
			mu.Unlock()
		}
	}
}

func eventLogger(data any, ev wireup.Event) (any, bool) {
	fmt.Printf("event %d for sender %d\n", ev.Kind, ev.SenderID)
	return data, true
}

// mutexLockBundle adapts a *sync.Mutex to wireup.LockBundle, matching
// the original demo's pthread_mutex-backed custom_lock/custom_unlock.
// AssertLocked uses TryLock, which only ever runs in debug builds (see
// debug.go); it is best-effort, not a strict "this goroutine holds it"
// check, since sync.Mutex carries no owner identity.
func mutexLockBundle(mu *sync.Mutex) wireup.LockBundle {
	return wireup.LockBundle{
		Arg:    mu,
		Lock:   func(arg any) { arg.(*sync.Mutex).Lock() },
		Unlock: func(arg any) { arg.(*sync.Mutex).Unlock() },
		AssertLocked: func(arg any) bool {
			m := arg.(*sync.Mutex)
			if m.TryLock() {
				m.Unlock()
				return false
			}
			return true
		},
	}
}
