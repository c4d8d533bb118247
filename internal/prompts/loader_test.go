package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestGetPrompt_Defaults(t *testing.T) {
	for _, category := range []string{"universal", "performance", "optimization", "quality"} {
		prompt, err := GetPrompt(category, "")
		if err != nil {
			t.Fatalf("%s: %v", category, err)
		}
		if prompt == "" {
			t.Errorf("%s: empty prompt", category)
		}
	}
}

func TestGetPrompt_UnknownCategoryFallsBackToUniversal(t *testing.T) {
	prompt, err := GetPrompt("no-such-category", "")
	if err != nil {
		t.Fatal(err)
	}
	if prompt != UniversalSystemPrompt {
		t.Error("unknown category did not fall back to the universal prompt")
	}
}

func TestGetPrompt_OverrideFileWins(t *testing.T) {
	dir := t.TempDir()
	custom := "You are a terse analyst."
	if err := os.WriteFile(filepath.Join(dir, "performance_prompt.txt"), []byte(custom), 0644); err != nil {
		t.Fatal(err)
	}

	prompt, err := GetPrompt("performance", dir)
	if err != nil {
		t.Fatal(err)
	}
	if prompt != custom {
		t.Errorf("override ignored, got %q", prompt)
	}

	// Categories without an override file keep their defaults.
	prompt, err = GetPrompt("quality", dir)
	if err != nil {
		t.Fatal(err)
	}
	if prompt != QualitySystemPrompt {
		t.Error("missing override file replaced the default")
	}
}

func TestWithDateBlock(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	out := WithDateBlock("base prompt", now)

	if !strings.HasPrefix(out, "base prompt") {
		t.Error("original prompt not preserved")
	}
	if !strings.Contains(out, "2026-03-15 09:30") {
		t.Errorf("date missing: %q", out)
	}
	if !strings.Contains(out, "Sunday") {
		t.Errorf("weekday missing: %q", out)
	}
}
