package main

import (
	"context"
	"log"
	"os"

	"github.com/boostfeed/go-client/internal/cli"
	"github.com/boostfeed/go-client/internal/config"
	"github.com/boostfeed/go-client/internal/logging"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	app := cli.NewApp(cfg, logging.NewDefault())
	app.Run(context.Background())
}
