// Command canvashost runs canvas scripts headlessly and serves the canvas
// operations over a JSON-lines protocol.
package main

import (
	"github.com/alecthomas/kong"
)

type cli struct {
	Globals

	Run   runCmd   `cmd:"" help:"Run scripts and write every canvas they create as PNG."`
	Serve serveCmd `cmd:"" help:"Serve canvas operations as JSON lines on stdin/stdout."`
	Ops   opsCmd   `cmd:"" help:"List the supported operation names."`
}

func main() {
	var c cli
	ctx := kong.Parse(&c,
		kong.Name("canvashost"),
		kong.Description("Headless canvas host."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run(c.Globals))
}
