package main

import (
	"log"

	"github.com/glimmerworks/platform-sdk/internal/webapp"
)

func main() {
	cfg := webapp.LoadConfig()

	app, err := webapp.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialise webapp: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("Webapp exited with error: %v", err)
	}
}
