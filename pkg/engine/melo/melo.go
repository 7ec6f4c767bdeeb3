// Package melo drives an external MeloTTS worker process. The worker is
// started on demand on a free local port and spoken to over HTTP; its
// stdout/stderr are tailed into our logs.
package melo

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/hpcloud/tail"
	process "github.com/mudler/go-processmanager"
	"github.com/phayes/freeport"
	"github.com/rs/zerolog/log"

	"github.com/meloserve/meloserve/pkg/engine"
)

// DefaultWorkerCommand is the worker binary looked up on PATH when no
// engine command is configured.
const DefaultWorkerCommand = "melo-worker"

var (
	startupProbes    = 10
	startupProbeWait = time.Second
)

type Engine struct {
	command string
	device  string

	mu      sync.Mutex
	proc    *process.Process
	client  *client
	started bool
}

type Option func(*Engine)

func WithCommand(command string) Option {
	return func(e *Engine) {
		if command != "" {
			e.command = command
		}
	}
}

func WithDevice(device string) Option {
	return func(e *Engine) {
		e.device = device
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		command: DefaultWorkerCommand,
		device:  "auto",
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// start launches the worker process and waits for it to become healthy.
func (e *Engine) start(ctx context.Context) error {
	if e.started {
		return nil
	}

	port, err := freeport.GetFreePort()
	if err != nil {
		return err
	}
	workerAddress := fmt.Sprintf("localhost:%d", port)

	log.Debug().Str("command", e.command).Str("address", workerAddress).Msg("starting TTS worker")

	workerProcess := process.New(
		process.WithTemporaryStateDir(),
		process.WithName(e.command),
		process.WithArgs("--addr", workerAddress, "--device", e.device))

	if err := workerProcess.Run(); err != nil {
		return fmt.Errorf("failed to start TTS worker %q: %w", e.command, err)
	}

	e.proc = workerProcess
	e.client = newClient(workerAddress)

	go e.tailWorkerLog(workerProcess.StderrPath(), "stderr")
	go e.tailWorkerLog(workerProcess.StdoutPath(), "stdout")

	ready := false
	for i := 0; i < startupProbes; i++ {
		if e.client.HealthCheck(ctx) {
			ready = true
			break
		}
		select {
		case <-ctx.Done():
			e.reap()
			return ctx.Err()
		case <-time.After(startupProbeWait):
		}
	}

	if !ready {
		alive := workerProcess.IsAlive()
		exitCode, _ := workerProcess.ExitCode()
		log.Error().Bool("alive", alive).Str("exitCode", exitCode).Msg("TTS worker did not become ready")
		e.reap()
		return fmt.Errorf("TTS worker %q not ready", e.command)
	}

	log.Debug().Str("address", workerAddress).Msg("TTS worker ready")
	e.started = true
	return nil
}

// reap stops a worker that failed to come up and clears its handles, so the
// next Synthesize starts fresh instead of piling up processes. Callers hold
// e.mu.
func (e *Engine) reap() {
	if e.proc == nil {
		return
	}
	if err := e.proc.Stop(); err != nil {
		log.Debug().Err(err).Msg("error stopping unready TTS worker")
	}
	e.proc = nil
	e.client = nil
}

func (e *Engine) tailWorkerLog(path, stream string) {
	t, err := tail.TailFile(path, tail.Config{Follow: true})
	if err != nil {
		log.Debug().Err(err).Str("stream", stream).Msg("could not tail worker output")
		return
	}
	for line := range t.Lines {
		log.Debug().Str("worker", e.command).Str("stream", stream).Msg(line.Text)
	}
}

func (e *Engine) Synthesize(ctx context.Context, params engine.SynthesisParams) error {
	e.mu.Lock()
	if err := e.start(ctx); err != nil {
		e.mu.Unlock()
		return err
	}
	client := e.client
	e.mu.Unlock()

	if params.Device == "" {
		params.Device = e.device
	}
	return client.Synthesize(ctx, params)
}

func (e *Engine) Ready(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		// The worker starts lazily, being not yet started is healthy as long
		// as the binary can be found.
		_, err := exec.LookPath(e.command)
		return err == nil
	}
	return e.client.HealthCheck(ctx)
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.proc == nil {
		return nil
	}
	log.Debug().Str("command", e.command).Msg("stopping TTS worker")
	err := e.proc.Stop()
	e.proc = nil
	e.started = false
	return err
}
