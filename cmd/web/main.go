package main

import (
	"log"

	"servicesbladi_backend/internal/app"
)

func main() {
	application, err := app.New()
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	if err := application.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
