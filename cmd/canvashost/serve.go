package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"canvashost/pkg/logging"
	"canvashost/pkg/ops"
)

type serveCmd struct{}

func (s *serveCmd) Run(g Globals) error {
	d, err := g.setup()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return serve(ctx, d, os.Stdin, os.Stdout)
}

// serve runs one wire session and reports the surfaces the client left
// allocated.
func serve(ctx context.Context, d *ops.Dispatcher, r io.Reader, w io.Writer) error {
	err := d.Serve(ctx, r, w)
	if live := d.Registry().Handles(); len(live) > 0 {
		logging.Logger().Info("session ended with live surfaces", "count", len(live), "handles", live)
	}
	return err
}

type opsCmd struct{}

func (o *opsCmd) Run() error {
	for _, name := range ops.Operations() {
		fmt.Println(name)
	}
	return nil
}
