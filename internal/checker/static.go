package checker

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/scriptsmith/internal/artifact"
	"github.com/felixgeelhaar/scriptsmith/internal/dialect"
	"github.com/felixgeelhaar/scriptsmith/internal/requirement"
	"github.com/felixgeelhaar/scriptsmith/internal/scenario"
)

// StaticChecker applies the mechanical part of a dialect's rubric locally.
// It is deterministic and needs no backend.
type StaticChecker struct {
	dialects *dialect.Registry
}

// NewStaticChecker creates a static checker resolving dialects in reg
func NewStaticChecker(reg *dialect.Registry) *StaticChecker {
	if reg == nil {
		reg = dialect.Default()
	}
	return &StaticChecker{dialects: reg}
}

// Name implements Checker
func (c *StaticChecker) Name() string { return string(ModeStatic) }

// Check implements Checker
func (c *StaticChecker) Check(ctx context.Context, a artifact.Artifact, _ scenario.Spec, _ requirement.Set) (Verdict, error) {
	if err := refuseEmpty(a); err != nil {
		return Verdict{}, err
	}
	if err := ctx.Err(); err != nil {
		return Verdict{}, err
	}

	profile, err := c.dialects.Lookup(a.Dialect)
	if err != nil {
		return Verdict{}, err
	}

	return NewVerdict(Inspect(profile, a.Code)), nil
}

// Inspect lists the rubric violations found in code
func Inspect(profile dialect.Profile, code string) []string {
	var issues []string

	if !strings.Contains(code, profile.EntryPoint()) {
		issues = append(issues, fmt.Sprintf("Missing entry point: %s", profile.EntryPoint()))
	}

	for _, pattern := range profile.Forbidden() {
		if strings.Contains(code, pattern) {
			issues = append(issues, fmt.Sprintf("Uses %s, which is not part of the %s API", pattern, profile.Framework()))
		}
	}

	if waits := profile.WaitPrimitives(); len(waits) > 0 && !containsAny(code, waits) {
		issues = append(issues, fmt.Sprintf("No wait primitive found; use one of %s", strings.Join(waits, ", ")))
	}

	if marker := profile.ProgressMarker(); marker != "" && !strings.Contains(code, marker) {
		issues = append(issues, fmt.Sprintf("Missing %s statements for progress tracking", marker))
	}

	if profile.RequiresErrorHandling() && !(strings.Contains(code, "try") && strings.Contains(code, "catch")) {
		issues = append(issues, "Missing try/catch error handling")
	}

	if problem := unbalanced(code); problem != "" {
		issues = append(issues, "Function appears incomplete or truncated: "+problem)
	}

	return issues
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// unbalanced scans braces, brackets and parentheses outside string
// literals and comments. It returns "" when everything closes.
func unbalanced(code string) string {
	pairs := map[rune]rune{')': '(', ']': '[', '}': '{'}
	var stack []rune
	var quote rune
	lineComment, blockComment, escaped := false, false, false

	runes := []rune(code)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		next := rune(0)
		if i+1 < len(runes) {
			next = runes[i+1]
		}

		switch {
		case lineComment:
			if r == '\n' {
				lineComment = false
			}
		case blockComment:
			if r == '*' && next == '/' {
				blockComment = false
				i++
			}
		case quote != 0:
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == quote:
				quote = 0
			}
		case r == '/' && next == '/':
			lineComment = true
			i++
		case r == '/' && next == '*':
			blockComment = true
			i++
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == '(' || r == '[' || r == '{':
			stack = append(stack, r)
		case r == ')' || r == ']' || r == '}':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[r] {
				return fmt.Sprintf("unexpected %q", r)
			}
			stack = stack[:len(stack)-1]
		}
	}

	switch {
	case quote != 0:
		return "unterminated string literal"
	case blockComment:
		return "unterminated comment"
	case len(stack) > 0:
		return fmt.Sprintf("%d unclosed %q", len(stack), stack[len(stack)-1])
	}
	return ""
}
