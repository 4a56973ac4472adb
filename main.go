package main

import (
	"github.com/joho/godotenv"
	"github.com/jsphweid/melodex/cmd"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file, using the environment as is")
	}
	cmd.Execute()
}
