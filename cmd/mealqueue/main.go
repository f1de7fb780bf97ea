// Command mealqueue runs the canteen vote and dispense queue server.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/canteenlab/mealqueue/internal/app"
	"github.com/canteenlab/mealqueue/internal/config"
	"github.com/canteenlab/mealqueue/internal/logger"
)

var (
	version = "dev"
)

func main() {
	args := os.Args[1:]
	for _, arg := range args {
		if arg == "-version" || arg == "--version" {
			fmt.Printf("mealqueue %s\n", version)
			return
		}
	}

	cfg, err := config.Load(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal("Invalid configuration: ", err)
	}

	appLog := logger.NewWithLevel(logger.ParseLevel(cfg.LogLevel))

	a, err := app.New(appLog, cfg)
	if err != nil {
		log.Fatal("Failed to initialize application: ", err)
	}
	defer a.Close()

	addr := fmt.Sprintf(":%d", cfg.Port)
	if err := a.Run(addr); err != nil {
		log.Fatal("Server stopped: ", err)
	}
}
