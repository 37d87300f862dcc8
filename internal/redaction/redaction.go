package redaction

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// SensitivePatterns contains regex patterns for known sensitive data formats.
// Memories pass through redaction before they are journaled or indexed.
var SensitivePatterns = []string{
	`sk_live_[a-zA-Z0-9]+`,                 // Stripe live keys
	`sk_test_[a-zA-Z0-9]+`,                 // Stripe test keys
	`sk-[a-zA-Z0-9]{20,}`,                  // OpenAI-style API keys
	`ghp_[a-zA-Z0-9]+`,                     // GitHub personal access tokens
	`AKIA[0-9A-Z]{16}`,                     // AWS access key IDs
	`xoxb-[a-zA-Z0-9-]+`,                   // Slack bot tokens
	`-----BEGIN (?:RSA )?PRIVATE KEY-----`, // Private keys (RSA and generic)
	`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+`, // JWT tokens
	`password\s*[:=]\s*["']?.+`,            // Password fields
	`secret\s*[:=]\s*["']?.+`,              // Secret fields
	`api[_-]?key\s*[:=]\s*["']?.+`,         // API key fields
}

// compiledBuiltins holds pre-compiled versions of SensitivePatterns.
// Compiled once at package init; zero runtime cost per Redact call.
var (
	compiledBuiltins []*regexp.Regexp
	redactedTagRe    = regexp.MustCompile(`<redacted>.*?</redacted>`)
	sectionHeaderRe  = regexp.MustCompile(`^\[([a-z]+)\]$`)
)

func init() {
	compiledBuiltins = make([]*regexp.Regexp, 0, len(SensitivePatterns))
	for _, p := range SensitivePatterns {
		// All built-in patterns are hardcoded and valid; panic immediately if not.
		compiledBuiltins = append(compiledBuiltins, regexp.MustCompile(p))
	}
}

// Rules holds custom redaction patterns from a .mnemoignore file. Patterns
// before any section header apply to every memory; a `[sector]` header scopes
// the patterns after it to that sector only. Emotional memories, for example,
// can get stricter rules than procedural ones.
type Rules struct {
	Global   []string
	BySector map[string][]string
}

// Count returns the total number of patterns across all scopes.
func (r *Rules) Count() int {
	if r == nil {
		return 0
	}

	n := len(r.Global)
	for _, patterns := range r.BySector {
		n += len(patterns)
	}

	return n
}

// Compile pre-compiles every pattern. Invalid patterns are skipped.
// Intended to run once at service startup.
func (r *Rules) Compile() *CompiledRules {
	c := &CompiledRules{bySector: map[string][]*regexp.Regexp{}}
	if r == nil {
		return c
	}

	c.global = CompilePatterns(r.Global)
	for sector, patterns := range r.BySector {
		c.bySector[sector] = CompilePatterns(patterns)
	}

	return c
}

// CompiledRules is the pre-compiled form of Rules.
type CompiledRules struct {
	global   []*regexp.Regexp
	bySector map[string][]*regexp.Regexp
}

// For returns the patterns that apply to a sector: the global ones plus the
// sector's own section, if any.
func (c *CompiledRules) For(sector string) []*regexp.Regexp {
	if c == nil {
		return nil
	}

	extra := c.bySector[sector]
	if len(extra) == 0 {
		return c.global
	}

	merged := make([]*regexp.Regexp, 0, len(c.global)+len(extra))
	merged = append(merged, c.global...)
	merged = append(merged, extra...)

	return merged
}

// CompilePatterns compiles a slice of regex strings into []*regexp.Regexp.
// Invalid patterns are skipped.
func CompilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))

	for _, p := range patterns {
		if re, err := regexp.Compile(p); err == nil {
			compiled = append(compiled, re)
		}
	}

	return compiled
}

// Redact applies three-layer redaction to text.
//   - Layer 1: explicit <redacted>…</redacted> tags
//   - Layer 2: built-in sensitive patterns (pre-compiled)
//   - Layer 3: caller-supplied extra patterns as raw strings (compiled on first use)
//
// Use RedactCompiled for hot paths where extra patterns are already compiled.
func Redact(text string, extraPatterns []string) string {
	return RedactCompiled(text, CompilePatterns(extraPatterns))
}

// RedactCompiled is the same as Redact but accepts pre-compiled extra patterns,
// avoiding regexp.Compile overhead on repeated calls.
func RedactCompiled(text string, extra []*regexp.Regexp) string {
	// Layer 1: Explicit <redacted> tags
	for {
		prev := text

		text = redactedTagRe.ReplaceAllString(text, "[REDACTED]")

		if prev == text {
			break
		}
	}

	text = strings.ReplaceAll(text, "<redacted>", "")
	text = strings.ReplaceAll(text, "</redacted>", "")

	// Layer 2: Built-in patterns (pre-compiled, zero cost)
	for _, re := range compiledBuiltins {
		text = re.ReplaceAllString(text, "[REDACTED]")
	}

	// Layer 3: Custom patterns
	for _, re := range extra {
		text = re.ReplaceAllString(text, "[REDACTED]")
	}

	return text
}

// LoadIgnoreFile loads custom redaction rules from a .mnemoignore file.
// Each non-comment line is a regex pattern; a line of the form `[sector]`
// starts a sector-scoped section. A missing file yields empty rules.
func LoadIgnoreFile(path string) (*Rules, error) {
	rules := &Rules{BySector: map[string][]string{}}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return rules, nil
		}

		return nil, fmt.Errorf("failed to open .mnemoignore: %w", err)
	}

	defer func() { _ = file.Close() }()

	section := ""

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if m := sectionHeaderRe.FindStringSubmatch(line); m != nil {
			section = m[1]

			continue
		}

		if section == "" {
			rules.Global = append(rules.Global, line)
		} else {
			rules.BySector[section] = append(rules.BySector[section], line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read .mnemoignore: %w", err)
	}

	return rules, nil
}
