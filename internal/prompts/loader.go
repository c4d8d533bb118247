package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// promptConfig defines the default content and override filename for a
// category prompt.
type promptConfig struct {
	defaultContent string
	filename       string
}

var promptRegistry = map[string]promptConfig{
	"universal": {
		defaultContent: UniversalSystemPrompt,
		filename:       "universal_prompt.txt",
	},
	"performance": {
		defaultContent: PerformanceSystemPrompt,
		filename:       "performance_prompt.txt",
	},
	"optimization": {
		defaultContent: OptimizationSystemPrompt,
		filename:       "optimization_prompt.txt",
	},
	"quality": {
		defaultContent: QualitySystemPrompt,
		filename:       "quality_prompt.txt",
	},
}

// GetPrompt returns the system prompt template for a category. If
// templatesDir contains an override file for the category, its content wins
// over the built-in default. Unknown categories fall back to the universal
// prompt so a misconfigured agent still works.
func GetPrompt(category, templatesDir string) (string, error) {
	cfg, ok := promptRegistry[category]
	if !ok {
		cfg = promptRegistry["universal"]
	}

	if strings.TrimSpace(templatesDir) == "" {
		return cfg.defaultContent, nil
	}

	customPath := filepath.Join(templatesDir, cfg.filename)
	if _, err := os.Stat(customPath); err == nil {
		content, readErr := os.ReadFile(customPath)
		if readErr != nil {
			return "", fmt.Errorf("read custom prompt %s: %w", customPath, readErr)
		}
		return string(content), nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("stat custom prompt %s: %w", customPath, err)
	}

	return cfg.defaultContent, nil
}

// WithDateBlock appends the current date/time so the model can resolve
// relative expressions like "last week".
func WithDateBlock(prompt string, now time.Time) string {
	now = now.UTC()
	return fmt.Sprintf("%s\n\nCurrent date and time: %s (%s, UTC). Resolve relative dates against it.",
		prompt, now.Format("2006-01-02 15:04"), now.Weekday())
}
