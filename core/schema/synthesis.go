package schema

// @Description Speech synthesis request body
type SynthesisRequest struct {
	// Inline text to synthesize. Mutually exclusive with SourceURI.
	Input string `json:"input,omitempty" yaml:"input,omitempty"`

	// Object store URI of a text file to synthesize (gs://bucket/object or
	// s3://bucket/object).
	SourceURI string `json:"source_uri,omitempty" yaml:"source_uri,omitempty"`

	// Legacy parameter name kept for callers of the original function.
	GCSURI string `json:"gcs_uri,omitempty" yaml:"gcs_uri,omitempty"`

	Language string  `json:"language,omitempty" yaml:"language,omitempty"`
	Speaker  string  `json:"speaker,omitempty" yaml:"speaker,omitempty"`
	Speed    float64 `json:"speed,omitempty" yaml:"speed,omitempty"`
	Device   string  `json:"device,omitempty" yaml:"device,omitempty"`
}

// Source returns the object store URI of the request, honoring the legacy
// parameter name.
func (r *SynthesisRequest) Source() string {
	if r.SourceURI != "" {
		return r.SourceURI
	}
	return r.GCSURI
}

type SynthesisResult struct {
	ID         string  `json:"id"`
	Voice      string  `json:"voice"`
	Language   string  `json:"language"`
	Speaker    string  `json:"speaker"`
	OutputURI  string  `json:"output_uri,omitempty"`
	Duration   float64 `json:"duration_seconds,omitempty"`
	SampleRate int     `json:"sample_rate,omitempty"`
	Skipped    bool    `json:"skipped,omitempty"`
	Reason     string  `json:"reason,omitempty"`

	// Local path of the rendered audio, not serialized.
	AudioPath string `json:"-"`
}

type APIError struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

type ErrorResponse struct {
	Error *APIError `json:"error,omitempty"`
}
