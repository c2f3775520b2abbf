// Package logx configures repairboard's structured logging.
//
// A small wrapper (logx.Logger) on top of zerolog keeps:
//   - Console output readable (short timestamp + short caller) on stderr
//   - File output JSON-structured
//   - Level and sinks hot-swappable through Service.Apply
package logx
