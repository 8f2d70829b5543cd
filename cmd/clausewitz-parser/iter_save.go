package main

import (
	"encoding/json"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/neper-stars/clausewitz/log"
	"github.com/neper-stars/clausewitz/session"
)

type iterSaveCommand struct {
	Path    string `long:"path" required:"true" description:"Path to the save archive (.sav)"`
	Section string `long:"section" required:"true" description:"Section name to iterate"`
	Format  string `long:"format" default:"jsonl" choice:"jsonl" choice:"json" description:"Output framing"`
}

func addIterSaveCommand(parser *flags.Parser) {
	_, err := parser.AddCommand("iter-save", "Stream one section's entries", "", &iterSaveCommand{})
	if err != nil {
		panic(err)
	}
}

func (c *iterSaveCommand) Execute(_ []string) error {
	srv, exitCode, err := session.Load(c.Path)
	if err != nil {
		log.Error("failed to load archive", log.F("path", c.Path), log.F("error", err.Error()))
		os.Exit(exitCode)
	}

	engine := srv.Engine()
	if err := engine.IterSectionStart(c.Section, 64); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	var collected []any

	for {
		batch, done := engine.StreamNext()
		if done {
			break
		}
		for _, entry := range batch {
			if c.Format == "json" {
				collected = append(collected, entry)
				continue
			}
			if err := enc.Encode(entry); err != nil {
				return err
			}
		}
	}

	if c.Format == "json" {
		return enc.Encode(collected)
	}
	return nil
}
