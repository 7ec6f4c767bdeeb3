package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/meloserve/meloserve/core/application"
	cliContext "github.com/meloserve/meloserve/core/cli/context"
	"github.com/meloserve/meloserve/core/config"
	"github.com/meloserve/meloserve/core/schema"
)

type TTSCMD struct {
	Text []string `arg:"" optional:"" help:"Text to synthesize, reads from a source URI when empty"`

	SourceURI  string  `name:"source-uri" short:"u" help:"Object store URI of a text file to synthesize (gs:// or s3://)"`
	Language   string  `short:"l" default:"EN" help:"Language of the text"`
	Speaker    string  `short:"s" help:"Speaker voice, English only"`
	Speed      float64 `default:"1.0" help:"Speech speed"`
	Device     string  `default:"auto" help:"Compute device the engine runs on"`
	OutputFile string  `short:"o" type:"path" help:"The path to write the output wav file"`

	VoicesPath    string `env:"MELOSERVE_VOICES_PATH,VOICES_PATH" type:"path" default:"${basepath}/voices" help:"Path containing the voice catalog" group:"storage"`
	AssetsPath    string `env:"MELOSERVE_ASSETS_PATH,ASSETS_PATH" type:"path" default:"${basepath}/assets" help:"Path containing voice model assets" group:"storage"`
	EngineCommand string `env:"MELOSERVE_ENGINE_COMMAND,ENGINE_COMMAND" help:"Override for the TTS worker command" group:"storage"`
}

func (t *TTSCMD) Run(ctx *cliContext.Context) error {
	app, err := application.New(
		config.WithContext(context.Background()),
		config.WithVoicesPath(t.VoicesPath),
		config.WithAssetsPath(t.AssetsPath),
		config.WithAudioDir(os.TempDir()),
		config.WithEngineCommand(t.EngineCommand),
		config.WithDefaultDevice(t.Device),
	)
	if err != nil {
		return err
	}
	defer app.Shutdown()

	request := &schema.SynthesisRequest{
		Input:     strings.Join(t.Text, " "),
		SourceURI: t.SourceURI,
		Language:  t.Language,
		Speaker:   t.Speaker,
		Speed:     t.Speed,
		Device:    t.Device,
	}

	result, err := app.Synthesizer().Synthesize(context.Background(), request)
	if err != nil {
		return err
	}

	if t.OutputFile != "" {
		if err := os.Rename(result.AudioPath, t.OutputFile); err != nil {
			return err
		}
		fmt.Printf("Generated file %q\n", t.OutputFile)
	} else {
		fmt.Printf("Generated file %q\n", result.AudioPath)
	}
	return nil
}
