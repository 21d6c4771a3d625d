package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"notas/internal/cli"
	"notas/internal/client"
)

func main() {
	_ = godotenv.Load()

	serverURL := os.Getenv("NOTAS_SERVER_URL")
	if serverURL == "" {
		serverURL = "http://localhost:3000"
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := cli.NewApp(client.New(serverURL), os.Stdin, os.Stdout)
	app.Run(ctx)
}
