package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/peterkuimelis/hollowstate/internal/net"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/ws", "server websocket URL")
	roomID := flag.String("room", "", "room to join (empty creates a new one)")
	name := flag.String("name", "", "your display name")
	flag.Parse()

	if *name == "" {
		fmt.Fprintln(os.Stderr, "Error: -name is required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := net.Connect(ctx, *url, *roomID, *name, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
