package config

import (
	"reflect"

	logx "repairboard/pkg/logx"
)

// SummarizeChange returns the names of changed sections and log fields
// describing their new values.
func SummarizeChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	var (
		changed []string
		attrs   []logx.Field
	)
	if oldCfg.Board != newCfg.Board {
		changed = append(changed, "board")
		attrs = append(attrs,
			logx.Int("board.window_days", newCfg.Board.WindowDays),
			logx.Int("board.min_window_days", newCfg.Board.MinWindowDays),
			logx.Int("board.max_window_days", newCfg.Board.MaxWindowDays),
			logx.String("board.timezone", newCfg.Board.Timezone),
		)
	}
	if oldCfg.RolloverEnabled() != newCfg.RolloverEnabled() || oldCfg.Rollover.Schedule != newCfg.Rollover.Schedule {
		changed = append(changed, "rollover")
		attrs = append(attrs,
			logx.Bool("rollover.enabled", newCfg.RolloverEnabled()),
			logx.String("rollover.schedule", newCfg.Rollover.Schedule),
		)
	}
	if oldCfg.Photo != newCfg.Photo {
		changed = append(changed, "photo")
		attrs = append(attrs, logx.Int64("photo.max_bytes", newCfg.Photo.MaxBytes))
	}
	if oldCfg.ColorEnabled() != newCfg.ColorEnabled() ||
		oldCfg.Render.Width != newCfg.Render.Width ||
		oldCfg.Render.ResizeRatePerSec != newCfg.Render.ResizeRatePerSec {
		changed = append(changed, "render")
		attrs = append(attrs,
			logx.Bool("render.color", newCfg.ColorEnabled()),
			logx.Int("render.width", newCfg.Render.Width),
		)
	}
	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
		)
	}
	if !reflect.DeepEqual(oldCfg.Storage, newCfg.Storage) {
		// the journal is opened once; a restart is needed to switch it
		changed = append(changed, "storage")
	}
	return changed, attrs
}
