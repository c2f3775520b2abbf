//go:build !unix

package console

import (
	"context"
	"os"
)

// resizeSignals never fires; the width is re-measured on every redraw.
func resizeSignals(ctx context.Context) <-chan os.Signal {
	return make(chan os.Signal)
}
