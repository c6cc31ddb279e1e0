package signals

import (
	"fmt"
	"os"
	"sync"
)

// sigChan is buffered so a signal delivered while no receiver is ready is
// not lost.
var sigChan = make(chan os.Signal, 1)

// Handler is a function called when a signal is received.
type Handler func()

var (
	mu           sync.RWMutex
	reloaders    []Handler
	interrupters []Handler
)

// RegisterReloadHandler registers a handler called on SIGHUP (config
// reload). Nil handlers are ignored.
func RegisterReloadHandler(f Handler) {
	if f == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	reloaders = append(reloaders, f)
}

// RegisterInterruptHandler registers a handler called on SIGINT/SIGTERM
// (shutdown). Nil handlers are ignored.
func RegisterInterruptHandler(f Handler) {
	if f == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	interrupters = append(interrupters, f)
}

func handleReload() {
	runHandlers(snapshot(&reloaders), "reload")
}

func handleInterrupted() {
	runHandlers(snapshot(&interrupters), "interrupt")
}

func snapshot(handlers *[]Handler) []Handler {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Handler, len(*handlers))
	copy(out, *handlers)
	return out
}

func runHandlers(handlers []Handler, kind string) {
	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					// No logger here; stderr keeps panicking handlers visible.
					fmt.Fprintf(os.Stderr, "signals: panic in %s handler: %v\n", kind, r)
				}
			}()
			h()
		}()
	}
}
