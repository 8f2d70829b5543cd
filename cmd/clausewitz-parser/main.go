// Command clausewitz-parser is the Session Server binary: it serves one
// loaded save archive to a client bridge over stdin/stdout, or performs a
// one-shot extraction/iteration directly from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"

	"github.com/neper-stars/clausewitz/log"
)

// version is overridden at build time via -ldflags.
var version = "dev"

type globalOptions struct {
	Verbose bool `short:"v" long:"verbose" description:"Enable debug logging to stderr"`
	Version func() `long:"version" description:"Print the version and exit"`
}

func (o *globalOptions) configureLogging() {
	level := zerolog.InfoLevel
	if o.Verbose {
		level = zerolog.DebugLevel
	}
	zlog := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	log.SetLogger(log.NewZerologAdapter(zlog))
}

func main() {
	opts := &globalOptions{}
	opts.Version = func() {
		fmt.Println("clausewitz-parser " + version)
		os.Exit(0)
	}

	parser := flags.NewParser(opts, flags.Default)
	parser.CommandHandler = func(command flags.Commander, args []string) error {
		opts.configureLogging()
		if command == nil {
			return nil
		}
		return command.Execute(args)
	}

	addServeCommand(parser)
	addExtractSaveCommand(parser)
	addIterSaveCommand(parser)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
