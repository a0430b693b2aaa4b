package doctor

import (
	"context"
	"errors"
	"os"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/hookbot/internal/core/config"
)

// ConfigCheck validates the configuration file.
type ConfigCheck struct {
	config     *config.Config
	configPath string
}

// NewConfigCheck creates a new configuration check.
func NewConfigCheck(cfg *config.Config, configPath string) *ConfigCheck {
	return &ConfigCheck{
		config:     cfg,
		configPath: configPath,
	}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if c.config == nil {
		result.Items = append(result.Items, fail("Config loaded", "configuration not loaded"))
		return result
	}

	if _, err := os.Stat(c.configPath); err == nil {
		result.Items = append(result.Items, pass("Config file", c.configPath))
	} else {
		result.Items = append(result.Items, pass("Config file", "not found, using defaults"))
	}

	result.Items = append(result.Items, pass("Mode", string(c.config.Mode)))

	err := c.config.Validate()
	warnings := c.config.Warnings()

	if err == nil && len(warnings) == 0 {
		result.Items = append(result.Items, pass("Config valid", ""))
		return result
	}

	if err != nil {
		var fieldErrs criterio.FieldErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				label := fe.Field
				if label == "" {
					label = "validation"
				}
				result.Items = append(result.Items, fail(label, fe.Err.Error()))
			}
		} else {
			result.Items = append(result.Items, fail("validation", err.Error()))
		}
	}

	for _, w := range warnings {
		label := w.Category
		if w.Item != "" {
			label += " (" + w.Item + ")"
		}
		result.Items = append(result.Items, warn(label, w.Message))
	}

	return result
}
