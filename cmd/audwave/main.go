// SPDX-License-Identifier: EPL-2.0

// Command audwave renders, plays and cuts audio files from the terminal.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/ik5/audwave/internal/config"
	"github.com/ik5/audwave/internal/logging"
	"github.com/rs/zerolog"
)

var version = "0.1.0"

// Globals are shared by every command.
type Globals struct {
	LogLevel string           `help:"Log level." default:"${log_level}" enum:"trace,debug,info,warn,error,disabled"`
	Quiet    bool             `short:"q" help:"Hide progress bars."`
	Version  kong.VersionFlag `short:"v" help:"Show version information."`

	cfg config.Config
	log zerolog.Logger
	ctx context.Context
}

type CLI struct {
	Globals

	Render  RenderCmd  `cmd:"" help:"Render a waveform image."`
	Play    PlayCmd    `cmd:"" help:"Play a file through the speaker."`
	Regions RegionsCmd `cmd:"" help:"Inspect and export regions."`
}

type RegionsCmd struct {
	List   RegionsListCmd   `cmd:"" help:"Print a region file as JSON."`
	Export RegionsExportCmd `cmd:"" help:"Write one region of a file as WAV."`
}

func main() {
	cfg := config.Load()

	vars := kong.Vars{"version": version}
	for k, v := range cfg.Vars() {
		vars[k] = v
	}

	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("audwave"),
		kong.Description("Audio waveform rendering and playback"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		vars,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cli.cfg = cfg
	cli.log = logging.New(os.Stderr, cli.LogLevel, cfg.LogPretty)
	cli.ctx = ctx

	err := kctx.Run(&cli.Globals)
	stop()
	kctx.FatalIfErrorf(err)
}
