package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/singhvigyat/scrutiny-client/internal/cli"
)

func main() {
	// Optional; deployments without a .env just fall through.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
