package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	cliContext "github.com/meloserve/meloserve/core/cli/context"
	"github.com/meloserve/meloserve/core/config"
)

type VoicesCMD struct {
	VoicesPath string `env:"MELOSERVE_VOICES_PATH,VOICES_PATH" type:"path" default:"${basepath}/voices" help:"Path containing the voice catalog" group:"storage"`
	Language   string `short:"l" help:"Only list voices for this language"`
}

func (v *VoicesCMD) Run(ctx *cliContext.Context) error {
	vcl := config.NewVoiceConfigLoader(v.VoicesPath)
	if err := vcl.LoadVoiceConfigsFromPath(v.VoicesPath); err != nil {
		return err
	}

	voices := vcl.GetAllVoiceConfigs()
	if v.Language != "" {
		voices = vcl.VoicesForLanguage(v.Language)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tLANGUAGE\tSPEAKER\tMODEL\tDEFAULT")
	for _, voice := range voices {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\n", voice.Name, voice.Language, voice.Speaker, voice.ModelFile, voice.Default)
	}
	return w.Flush()
}
