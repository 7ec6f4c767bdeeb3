package engine

import "context"

// SynthesisParams is a single render job for an engine. Dst is the path the
// engine writes the WAV file to.
type SynthesisParams struct {
	Text      string  `json:"text"`
	ModelFile string  `json:"model"`
	Language  string  `json:"language"`
	Speaker   string  `json:"speaker"`
	Speed     float64 `json:"speed"`
	Device    string  `json:"device"`
	Dst       string  `json:"dst"`
}

// Engine renders text to audio. Implementations own the lifecycle of any
// worker process they need.
type Engine interface {
	Synthesize(ctx context.Context, params SynthesisParams) error
	Ready(ctx context.Context) bool
	Close() error
}
