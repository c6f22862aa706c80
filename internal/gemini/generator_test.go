package gemini_test

import (
	"context"
	"testing"

	"github.com/yapa-dev/techwatch/internal/gemini"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	t.Parallel()

	if _, err := gemini.New(context.Background(), gemini.Config{}); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestNew_DefaultsModel(t *testing.T) {
	t.Parallel()

	g, err := gemini.New(context.Background(), gemini.Config{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if g.Model() != gemini.DefaultModel {
		t.Fatalf("model: %q", g.Model())
	}
}

func TestNew_KeepsConfiguredModel(t *testing.T) {
	t.Parallel()

	g, err := gemini.New(context.Background(), gemini.Config{APIKey: "test-key", Model: " gemini-2.0-flash "})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if g.Model() != "gemini-2.0-flash" {
		t.Fatalf("model: %q", g.Model())
	}
}
