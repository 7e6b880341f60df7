package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/scriptsmith/internal/dialect"
	"github.com/felixgeelhaar/scriptsmith/internal/errors"
	"github.com/felixgeelhaar/scriptsmith/internal/prompt"
)

// OfflineClient renders the dialect's scaffold from the pair's inputs.
// It needs no key and makes no network calls.
type OfflineClient struct {
	dialects *dialect.Registry
}

// NewOfflineClient creates an offline client that resolves dialects in reg
func NewOfflineClient(reg *dialect.Registry) *OfflineClient {
	if reg == nil {
		reg = dialect.Default()
	}
	return &OfflineClient{dialects: reg}
}

// Name implements GenerationClient
func (c *OfflineClient) Name() string { return string(BackendOffline) }

// Generate implements GenerationClient
func (c *OfflineClient) Generate(ctx context.Context, pair prompt.Pair, _ Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	in := pair.Inputs
	if in.Purpose != prompt.PurposeGenerate || in.Dialect == "" {
		return "", errors.New(errors.ErrCodeMissingPromptInputs, "offline backend can only render generation prompts").
			WithSuggestion("Use the offline or static checker with the offline backend")
	}

	profile, err := c.dialects.Lookup(in.Dialect)
	if err != nil {
		return "", err
	}

	code, err := profile.Scaffold(dialect.NewScaffoldData(in.Scenario, in.Requirements))
	if err != nil {
		return "", err
	}

	if len(in.Issues) > 0 {
		var b strings.Builder
		b.WriteString(code)
		if !strings.HasSuffix(code, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("// Revised for:\n")
		for _, issue := range in.Issues {
			fmt.Fprintf(&b, "// - %s\n", strings.Join(strings.Fields(issue), " "))
		}
		code = b.String()
	}

	return code, nil
}
