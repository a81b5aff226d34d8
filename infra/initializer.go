package infra

import (
	"log"

	"github.com/joho/godotenv"
)

// Initialize loads a .env file into the process environment so that
// CATALOG_* overrides can live next to the binary during development.
func Initialize() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using environment variables")
	}
}
