// Package dialect describes the browser-automation dialects scripts are generated for.
//
// A Profile is everything the prompt composer, the offline client and the
// checkers need to know about one dialect. Control flow never branches on a
// dialect name; callers pick a Profile once and pass it along.
package dialect

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/felixgeelhaar/scriptsmith/internal/errors"
	"github.com/felixgeelhaar/scriptsmith/internal/requirement"
	"github.com/felixgeelhaar/scriptsmith/internal/scenario"
)

// Profile is the read-only description of one automation dialect
type Profile interface {
	Name() string
	Framework() string
	// EntryPoint is the exact function signature every script must declare
	EntryPoint() string
	Skeleton() string
	Rules() []string
	Guidance(tag requirement.Tag) string
	// Forbidden lists primitives that belong to other dialects
	Forbidden() []string
	Rubric() []string
	DoNotFlag() []string
	WaitPrimitives() []string
	ProgressMarker() string
	RequiresErrorHandling() bool
	Temperature() float64
	// Login renders the authentication steps with literal credential values
	Login(creds scenario.Credentials) string
	Scaffold(data ScaffoldData) (string, error)
}

// ScaffoldData feeds the offline scaffold template
type ScaffoldData struct {
	URL            string
	Narrative      string
	Priority       string
	Responsive     bool
	Accessibility  bool
	Interactive    bool
	Forms          bool
	HasCredentials bool
	Username       string
	Password       string
}

// NewScaffoldData derives template data from a scenario and its requirements
func NewScaffoldData(spec scenario.Spec, reqs requirement.Set) ScaffoldData {
	data := ScaffoldData{
		URL:           spec.URL(),
		Narrative:     spec.Narrative,
		Priority:      string(spec.EffectivePriority()),
		Responsive:    reqs.Has(requirement.Responsive),
		Accessibility: reqs.Has(requirement.Accessibility),
		Interactive:   reqs.Has(requirement.Interactive),
		Forms:         reqs.Has(requirement.Forms),
	}
	if spec.HasCredentials() {
		data.HasCredentials = true
		data.Username = spec.Credentials.Username
		data.Password = spec.Credentials.Password
	}
	return data
}

// Definition is the data-driven Profile implementation. Built-in dialects
// and dialects loaded from YAML files share it.
type Definition struct {
	Key               string                     `yaml:"name"`
	Label             string                     `yaml:"framework"`
	Signature         string                     `yaml:"entry_point"`
	Structure         string                     `yaml:"skeleton"`
	SelectorRules     []string                   `yaml:"rules"`
	TagGuidance       map[requirement.Tag]string `yaml:"guidance"`
	ForbiddenPatterns []string                   `yaml:"forbidden"`
	RubricItems       []string                   `yaml:"rubric"`
	Exemptions        []string                   `yaml:"do_not_flag"`
	Waits             []string                   `yaml:"wait_primitives"`
	Marker            string                     `yaml:"progress_marker"`
	ErrorHandling     bool                       `yaml:"requires_error_handling"`
	DefaultTemp       float64                    `yaml:"temperature"`
	LoginSteps        string                     `yaml:"login"`
	ScaffoldTemplate  string                     `yaml:"scaffold"`
}

var _ Profile = (*Definition)(nil)

func (d *Definition) Name() string { return d.Key }
func (d *Definition) Framework() string { return d.Label }
func (d *Definition) EntryPoint() string { return d.Signature }
func (d *Definition) Skeleton() string { return d.Structure }
func (d *Definition) Rules() []string { return clone(d.SelectorRules) }
func (d *Definition) Guidance(tag requirement.Tag) string { return d.TagGuidance[tag] }
func (d *Definition) Forbidden() []string { return clone(d.ForbiddenPatterns) }
func (d *Definition) Rubric() []string { return clone(d.RubricItems) }
func (d *Definition) DoNotFlag() []string { return clone(d.Exemptions) }
func (d *Definition) WaitPrimitives() []string { return clone(d.Waits) }
func (d *Definition) ProgressMarker() string { return d.Marker }
func (d *Definition) RequiresErrorHandling() bool { return d.ErrorHandling }

// Temperature falls back to 0.1 when the definition leaves it unset
func (d *Definition) Temperature() float64 {
	if d.DefaultTemp <= 0 {
		return 0.1
	}
	return d.DefaultTemp
}

// Login substitutes {{USERNAME}} and {{PASSWORD}} in the login steps
func (d *Definition) Login(creds scenario.Credentials) string {
	if d.LoginSteps == "" {
		return ""
	}
	r := strings.NewReplacer("{{USERNAME}}", jsQuote(creds.Username), "{{PASSWORD}}", jsQuote(creds.Password))
	return r.Replace(d.LoginSteps)
}

// Scaffold renders the offline scaffold template
func (d *Definition) Scaffold(data ScaffoldData) (string, error) {
	tmpl, err := d.parseScaffold()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidDialect, fmt.Sprintf("render scaffold for %s", d.Key), err)
	}
	return buf.String(), nil
}

// Validate checks that a definition is complete enough to drive a generation cycle
func (d *Definition) Validate() error {
	var problems []string
	if strings.TrimSpace(d.Key) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(d.Signature) == "" {
		problems = append(problems, "entry_point is required")
	}
	if len(d.SelectorRules) == 0 {
		problems = append(problems, "at least one rule is required")
	}
	if d.Structure != "" && d.Signature != "" && !strings.Contains(d.Structure, d.Signature) {
		problems = append(problems, "skeleton must contain the entry_point signature")
	}
	for tag := range d.TagGuidance {
		if _, err := requirement.ParseTag(string(tag)); err != nil {
			problems = append(problems, fmt.Sprintf("guidance for unknown requirement tag %q", tag))
		}
	}
	if d.DefaultTemp < 0 || d.DefaultTemp > 2 {
		problems = append(problems, "temperature must be between 0 and 2")
	}
	if strings.TrimSpace(d.ScaffoldTemplate) == "" {
		problems = append(problems, "scaffold is required")
	} else if _, err := d.parseScaffold(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		name := d.Key
		if name == "" {
			name = "<unnamed>"
		}
		return errors.New(errors.ErrCodeInvalidDialect, fmt.Sprintf("invalid dialect %s: %s", name, strings.Join(problems, "; "))).
			WithSuggestion("Compare the definition with 'scriptsmith dialects playwright'")
	}
	return nil
}

func (d *Definition) parseScaffold() (*template.Template, error) {
	tmpl, err := template.New(d.Key).
		Funcs(template.FuncMap{"quote": jsQuote, "oneline": oneline}).
		Option("missingkey=error").
		Parse(d.ScaffoldTemplate)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDialect, fmt.Sprintf("parse scaffold for %s", d.Key), err)
	}
	return tmpl, nil
}

// jsQuote escapes a value for a single-quoted JavaScript string literal
func jsQuote(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`).Replace(s)
}

// oneline keeps free text inside a single-line comment
func oneline(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func clone(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
