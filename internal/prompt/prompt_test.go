package prompt_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yapa-dev/techwatch/internal/prompt"
	"github.com/yapa-dev/techwatch/internal/record"
)

func TestBuild_EmbedsRecordFields(t *testing.T) {
	t.Parallel()

	p := prompt.New().Build(record.ReportRecord{
		URL:     "https://rival.example/post",
		Title:   "Rival launches payments",
		Content: "Some content",
		Date:    "2025-02-01",
	})

	for _, want := range []string{
		prompt.DefaultPreamble,
		"URL: https://rival.example/post",
		"Title: Rival launches payments",
		"Content: Some content",
		"Publication date: 2025-02-01",
		"Name is:",
	} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestParseName(t *testing.T) {
	t.Parallel()

	tmpl := prompt.New()

	cases := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{name: "exact", text: "Name is : Acme", want: "Acme", ok: true},
		{name: "trailing whitespace", text: "  Name is : Acme Corp  \n", want: "Acme Corp", ok: true},
		{name: "embedded line", text: "Sure.\nName is : Stripe", want: "Stripe", ok: true},
		{name: "wrong phrasing", text: "Name is: Acme", ok: false},
		{name: "no match", text: "I cannot determine a name", ok: false},
		{name: "empty", text: "", ok: false},
		{name: "blank capture", text: "Name is :  ", ok: false},
	}
	for _, tc := range cases {
		got, ok := tmpl.ParseName(tc.text)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("%s: got (%q, %t), want (%q, %t)", tc.name, got, ok, tc.want, tc.ok)
		}
	}
}

func TestLoad_OverridesFromYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "prompts.yaml")
	data := "preamble: Custom product pitch\nname_pattern: 'The name is: (.+)'\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	tmpl, err := prompt.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tmpl.Preamble != "Custom product pitch" {
		t.Fatalf("preamble: %q", tmpl.Preamble)
	}
	if name, ok := tmpl.ParseName("The name is: Square"); !ok || name != "Square" {
		t.Fatalf("override pattern not applied: (%q, %t)", name, ok)
	}
	if _, ok := tmpl.ParseName("Name is : Square"); ok {
		t.Fatal("default pattern should be replaced")
	}
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	t.Parallel()

	tmpl, err := prompt.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tmpl.Preamble != prompt.DefaultPreamble {
		t.Fatalf("preamble: %q", tmpl.Preamble)
	}
}

func TestLoad_RejectsPatternWithoutCaptureGroup(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "prompts.yaml")
	if err := os.WriteFile(path, []byte("name_pattern: 'Name is : .+'\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := prompt.Load(path); err == nil {
		t.Fatal("expected error for pattern without capture group")
	}
}
