// Command example demonstrates a minimal client bridge round trip: spawn
// a parser server for a save archive, run a couple of queries, build the
// snapshot signals document, and print it.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/neper-stars/clausewitz/bridge"
	"github.com/neper-stars/clausewitz/log"
	"github.com/neper-stars/clausewitz/signals"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: example <path-to-save.sav>")
		os.Exit(2)
	}

	zlog := zerolog.New(os.Stderr).With().Timestamp().Logger()
	log.SetLogger(log.NewZerologAdapter(zlog))
	bridge.InstallSignalCleanup()

	err := bridge.Use(os.Args[1], func(s *bridge.Session) error {
		resp, err := s.Call(map[string]any{
			"op":       "extract_sections",
			"sections": []string{"meta"},
		})
		if err != nil {
			return err
		}
		fmt.Println("meta section:", resp["sections"])

		snapshot, err := signals.Build(s, time.Now())
		if err != nil {
			return err
		}
		b, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
