package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/Cowspump/some-diploma-stuff/devserver"
)

func main() {
	if err := devserver.Run(); err != nil {
		log.Error().Err(err).Msg("wellbeing-devserver exited with error")
		os.Exit(1)
	}
}
