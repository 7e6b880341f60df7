package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/felixgeelhaar/scriptsmith/internal/errors"
	"github.com/felixgeelhaar/scriptsmith/internal/requirement"
	"github.com/felixgeelhaar/scriptsmith/internal/scenario"
	"github.com/felixgeelhaar/scriptsmith/internal/tui"
)

// scenarioFlags are the flags that describe a test scenario
type scenarioFlags struct {
	file     string
	url      string
	username string
	password string
	priority string
	require  []string
}

func (f *scenarioFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.file, "file", "f", "", "read the scenario from a file (- for stdin)")
	fs.StringVar(&f.url, "url", "", "target URL (default "+scenario.PlaceholderURL+")")
	fs.StringVar(&f.username, "username", "", "login username embedded in the script")
	fs.StringVar(&f.password, "password", "", "login password embedded in the script")
	fs.StringVar(&f.priority, "priority", "", "test depth: low, medium, high (default medium)")
	fs.StringSliceVarP(&f.require, "require", "r", nil, "requirement tags to add: "+strings.Join(vocabulary(), ", "))
}

// build assembles the scenario. The narrative comes from args, then --file,
// then an interactive prompt. It is not validated here.
func (f *scenarioFlags) build(cc *CommandContext, args []string) (scenario.Spec, error) {
	narrative := strings.TrimSpace(strings.Join(args, " "))

	if narrative == "" && f.file != "" {
		text, err := readSource(f.file, cc.Stdin)
		if err != nil {
			return scenario.Spec{}, err
		}
		narrative = strings.TrimSpace(text)
	}

	if narrative == "" && cc.Interactive() {
		text, err := tui.AskNarrative()
		if err != nil {
			return scenario.Spec{}, err
		}
		narrative = text
	}

	priority, err := scenario.ParsePriority(f.priority)
	if err != nil {
		return scenario.Spec{}, err
	}

	toggles, err := requirement.ParseTags(f.require)
	if err != nil {
		return scenario.Spec{}, err
	}

	spec := scenario.Spec{
		Narrative: narrative,
		TargetURL: f.url,
		Priority:  priority,
		Toggles:   toggles,
	}
	if f.username != "" || f.password != "" {
		spec.Credentials = &scenario.Credentials{Username: f.username, Password: f.password}
	}
	return spec, nil
}

// readSource reads a file, or r when path is "-"
func readSource(path string, r io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(r)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeUnreadableInput, fmt.Sprintf("failed to read %s", path), err).
			WithSuggestion("Check the path, or pass - to read from stdin")
	}
	return string(data), nil
}

func vocabulary() []string {
	out := make([]string, len(requirement.Vocabulary))
	for i, tag := range requirement.Vocabulary {
		out[i] = string(tag)
	}
	return out
}
