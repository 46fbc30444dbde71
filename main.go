package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"obra/internal/cmd"
	"obra/internal/config"
	"obra/internal/version"
)

func main() {
	var cli cmd.CLI

	// Settings load failures are not fatal; flags and defaults still apply
	settings, err := config.LoadSettings()
	if err == nil {
		cli.SetSettings(settings)
	}

	ctx := kong.Parse(&cli,
		kong.Name("obra"),
		kong.Description(version.Tagline),
		kong.UsageOnError(),
		kong.Vars{"version": version.Info()},
		kong.Bind(&cli),
	)
	defer cli.Close()

	if err := ctx.Run(&cli); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
