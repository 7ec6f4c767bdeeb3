// Package fake provides an in-process engine for tests. It renders silence
// of a length proportional to the input text.
package fake

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/meloserve/meloserve/pkg/audio"
	"github.com/meloserve/meloserve/pkg/engine"
)

const sampleRate = 16000

type Engine struct {
	mu    sync.Mutex
	calls []engine.SynthesisParams

	// Err, when set, is returned by every Synthesize call.
	Err error
	// Unready makes Ready report false.
	Unready bool
}

func New() *Engine {
	return &Engine{}
}

func (e *Engine) Synthesize(_ context.Context, params engine.SynthesisParams) error {
	e.mu.Lock()
	e.calls = append(e.calls, params)
	err := e.Err
	e.mu.Unlock()
	if err != nil {
		return err
	}
	if params.Text == "" {
		return errors.New("no text to synthesize")
	}

	f, err := os.Create(params.Dst)
	if err != nil {
		return err
	}
	defer f.Close()

	// ~100ms of 16-bit silence per character
	pcm := make([]byte, len(params.Text)*sampleRate/5)
	header := audio.NewWAVHeader(sampleRate, uint32(len(pcm)))
	if err := header.Write(f); err != nil {
		return err
	}
	_, err = f.Write(pcm)
	return err
}

func (e *Engine) Ready(context.Context) bool {
	return !e.Unready
}

func (e *Engine) Close() error { return nil }

// Calls returns the synthesis requests seen so far.
func (e *Engine) Calls() []engine.SynthesisParams {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]engine.SynthesisParams{}, e.calls...)
}
