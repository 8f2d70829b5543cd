package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"

	"github.com/neper-stars/clausewitz/log"
	"github.com/neper-stars/clausewitz/session"
)

type extractSaveCommand struct {
	Path     string `long:"path" required:"true" description:"Path to the save archive (.sav)"`
	Sections string `long:"sections" description:"Comma-separated section names; defaults to all known sections"`
	Output   string `long:"output" description:"Write JSON here instead of stdout"`
}

func addExtractSaveCommand(parser *flags.Parser) {
	_, err := parser.AddCommand("extract-save", "Extract one or more sections as JSON", "", &extractSaveCommand{})
	if err != nil {
		panic(err)
	}
}

var allKnownSections = []string{
	"meta", "galaxy", "country", "player", "pop_groups", "planets", "fleet",
	"ships", "ship_design", "war", "leaders", "species_db", "starbase_mgr",
	"galactic_object", "megastructures", "archaeological_sites", "buildings",
	"pop_factions",
}

func (c *extractSaveCommand) Execute(_ []string) error {
	srv, exitCode, err := session.Load(c.Path)
	if err != nil {
		log.Error("failed to load archive", log.F("path", c.Path), log.F("error", err.Error()))
		os.Exit(exitCode)
	}

	sections := allKnownSections
	if c.Sections != "" {
		sections = strings.Split(c.Sections, ",")
	}

	result := srv.Engine().ExtractSections(sections)
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	if c.Output == "" {
		os.Stdout.Write(b)
		os.Stdout.Write([]byte("\n"))
		return nil
	}
	return os.WriteFile(c.Output, b, 0o644)
}
