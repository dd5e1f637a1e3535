package main

import (
	"log"

	"github.com/MrSnakeDoc/wirelink/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("wirelink failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("wirelink stopped with error: %v", err)
	}
}
