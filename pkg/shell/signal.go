package shell

import (
	"os"
	"os/signal"
)

// Relays signals to the given callbacks until the returned function is
// called. SIGINT (Ctrl-C outside raw mode) calls onInterrupt; the signals
// asking the process to terminate call onTerminate.
func notifySignals(onInterrupt, onTerminate func()) func() {
	sigCh := make(chan os.Signal, 8)
	signal.Notify(sigCh, append([]os.Signal{os.Interrupt}, terminateSignals...)...)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for sig := range sigCh {
			logger.Println("signal", sig)
			if sig == os.Interrupt {
				onInterrupt()
			} else {
				onTerminate()
			}
		}
	}()
	return func() {
		signal.Stop(sigCh)
		close(sigCh)
		<-done
	}
}
