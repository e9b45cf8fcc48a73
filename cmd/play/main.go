package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"xianxia/internal/app"
	"xianxia/internal/config"
	"xianxia/internal/tui"
)

func main() {
	_ = godotenv.Load()

	logPath := flag.String("log", "", "write logs to this file (discarded when empty)")
	story := flag.String("story", "", "story file (overrides XIANXIA_STORY_PATH)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *story != "" {
		cfg.StoryPath = *story
	}

	// The screen belongs to the client, so logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	logger := cfg.Logger(out)

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer a.Close()

	if err := tui.Run(ctx, a.Play, a.Saves); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
