package signals

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"
)

var (
	signalHandlers      []func()
	signalHandlersMutex sync.Mutex
	signalHandlersOnce  sync.Once
)

func RegisterGracefulTerminationHandler(fn func()) {
	signalHandlersMutex.Lock()
	defer signalHandlersMutex.Unlock()
	signalHandlers = append(signalHandlers, fn)
}

func init() {
	signalHandlersOnce.Do(func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		go signalHandler(c)
	})
}

func signalHandler(c chan os.Signal) {
	s := <-c
	log.Debug().Str("signal", s.String()).Msg("termination signal received, running shutdown hooks")

	signalHandlersMutex.Lock()
	defer signalHandlersMutex.Unlock()
	for _, fn := range signalHandlers {
		fn()
	}

	os.Exit(0)
}
