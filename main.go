package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fjacquet/statement-organizer/cmd/cache"
	"fjacquet/statement-organizer/cmd/classify"
	"fjacquet/statement-organizer/cmd/match"
	"fjacquet/statement-organizer/cmd/organize"
	"fjacquet/statement-organizer/cmd/root"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(organize.Cmd)
	root.Cmd.AddCommand(classify.Cmd)
	root.Cmd.AddCommand(match.Cmd)
	root.Cmd.AddCommand(cache.Cmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.Cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
