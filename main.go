package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/nexus-automation/nexusprobe/internal/commands"
	"github.com/nexus-automation/nexusprobe/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	code := commands.Execute(ctx, os.Args[1:], &commands.Environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getenv: config.OSGetenv,
	})

	stop()
	os.Exit(code)
}
