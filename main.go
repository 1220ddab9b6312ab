package main

import (
	"log/slog"
	"os"

	"osimage/export"
	"osimage/inspect"
	"osimage/parallel"

	"github.com/alecthomas/kong"
)

type cli struct {
	Workers  int        `help:"Number of files processed at once, 0 uses every CPU" default:"0"`
	LogLevel slog.Level `help:"Log level (debug, info, warn, error)" default:"info"`

	Info   inspect.CLICmd `cmd:"" help:"Report size, native layout, canonical pixel format and frames of images"`
	Export export.CLICmd  `cmd:"" help:"Convert images to canonical pixel dumps or re-encode them"`
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("osimage"),
		kong.Description("Classify and convert bitmap pixels."),
		kong.UsageOnError(),
	)

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel})))

	pool := parallel.Start(c.Workers)
	slog.Debug("running", "command", kctx.Command(), "workers", pool.Workers())

	err := kctx.Run(pool.Do, pool.Wait)
	pool.Wait(true)
	kctx.FatalIfErrorf(err)
}
