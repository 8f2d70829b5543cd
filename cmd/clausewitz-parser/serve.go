package main

import (
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/neper-stars/clausewitz/log"
	"github.com/neper-stars/clausewitz/session"
)

type serveCommand struct {
	Path string `long:"path" required:"true" description:"Path to the save archive (.sav)"`
}

func addServeCommand(parser *flags.Parser) {
	_, err := parser.AddCommand("serve", "Run the session server over stdin/stdout", "", &serveCommand{})
	if err != nil {
		panic(err)
	}
}

func (c *serveCommand) Execute(_ []string) error {
	srv, exitCode, err := session.Load(c.Path)
	if err != nil {
		log.Error("failed to load archive", log.F("path", c.Path), log.F("error", err.Error()))
		os.Exit(exitCode)
	}
	os.Exit(srv.Run(os.Stdin, os.Stdout))
	return nil
}
