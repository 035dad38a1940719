package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; the environment wins either way
	_ = godotenv.Load()

	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
