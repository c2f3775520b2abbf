package app

import (
	"fmt"

	"repairboard/internal/config"
	"repairboard/internal/rollover"
)

// validate runs the checks config.Validate cannot do without importing
// the components.
func validate(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := rollover.ParseSchedule(cfg.Rollover.Schedule); err != nil {
		return fmt.Errorf("rollover.schedule: %w", err)
	}
	if _, _, err := mapStorageConfig(cfg); err != nil {
		return err
	}
	return nil
}
