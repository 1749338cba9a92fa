package main

import (
	"flag"
	"fmt"
	"os"

	"signalkit/internal/di"
	"signalkit/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the YAML config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "log at debug level and mirror logs to stdout")
	flag.Parse()

	app, err := di.InitApp(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "signalkit: %s\n", err)
		os.Exit(1)
	}
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "signalkit: %s\n", err)
		os.Exit(1)
	}
}
