// Package prompt builds the competitor-name prompt sent to the generator and
// parses the name out of the response.
package prompt

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yapa-dev/techwatch/internal/record"
)

// DefaultPreamble describes the product the competitor is compared against.
const DefaultPreamble = "YAPA is a payment aggregation solution available as both a web and mobile application."

// DefaultInstruction asks the generator for a single-line answer.
const DefaultInstruction = "Find the competitor's name from this information and give only the name.\nYou will only say Name is: 'the_name'"

// DefaultNamePattern is the literal pattern the parser matches against.
//
// Note the extra space before the colon: the deployed generator phrases its
// answers that way even though the instruction writes "Name is:". Changing
// either side breaks extraction, which is why the pattern is configurable.
const DefaultNamePattern = `Name is : (.+)`

// Template holds the configurable pieces of the prompt and the extraction
// pattern. The zero value is not usable; call New or Load.
type Template struct {
	Preamble    string
	Instruction string
	namePattern *regexp.Regexp
}

// fileConfig is the YAML override shape accepted by Load.
type fileConfig struct {
	Preamble    string `yaml:"preamble"`
	Instruction string `yaml:"instruction"`
	NamePattern string `yaml:"name_pattern"`
}

// New returns a template with the built-in defaults.
func New() *Template {
	t, err := build(fileConfig{})
	if err != nil {
		// The default pattern is a compile-time constant; this cannot fail.
		panic(err)
	}
	return t
}

// Load reads a YAML override file. Empty fields keep their defaults. An
// empty path returns the default template.
func Load(path string) (*Template, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return New(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt config: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse prompt config: %w", err)
	}
	return build(cfg)
}

func build(cfg fileConfig) (*Template, error) {
	preamble := strings.TrimSpace(cfg.Preamble)
	if preamble == "" {
		preamble = DefaultPreamble
	}
	instruction := strings.TrimSpace(cfg.Instruction)
	if instruction == "" {
		instruction = DefaultInstruction
	}
	pattern := strings.TrimSpace(cfg.NamePattern)
	if pattern == "" {
		pattern = DefaultNamePattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile name pattern %q: %w", pattern, err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("name pattern %q must have one capture group", pattern)
	}
	return &Template{
		Preamble:    preamble,
		Instruction: instruction,
		namePattern: re,
	}, nil
}

// Build renders the prompt for one record.
func (t *Template) Build(r record.ReportRecord) string {
	var b strings.Builder
	b.WriteString("Here is the information about my project:\n")
	b.WriteString(t.Preamble)
	b.WriteString("\nHere is the information about a competitor:\n\n")
	fmt.Fprintf(&b, "URL: %s\n", r.URL)
	fmt.Fprintf(&b, "Title: %s\n", r.Title)
	fmt.Fprintf(&b, "Content: %s\n", r.Content)
	fmt.Fprintf(&b, "Publication date: %s\n\n", r.Date)
	b.WriteString(t.Instruction)
	return b.String()
}

// ParseName extracts the candidate name from generated text. The second
// return is false when the text does not match the pattern or the match is
// blank after trimming.
func (t *Template) ParseName(text string) (string, bool) {
	m := t.namePattern.FindStringSubmatch(strings.TrimSpace(text))
	if len(m) < 2 {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return "", false
	}
	return name, true
}
