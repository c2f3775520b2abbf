package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"repairboard/internal/app"
)

func main() {
	var (
		cfgPath string
		demo    bool
	)
	flag.StringVar(&cfgPath, "config", "", "path to config yaml/json (empty uses defaults)")
	flag.BoolVar(&demo, "demo", false, "seed two sample jobs")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.NewApp(cfgPath, app.WithDemo(demo))
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
	if err := a.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}
