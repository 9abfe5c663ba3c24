// cmd/reviewdesk-stub/main.go
//
// Standalone stub review service for demos and local development. It serves
// the same endpoints the console talks to, with an in-memory queue and a
// mock purchase-order match.

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kingrea/reviewdesk/internal/stubserver"
)

func main() {
	defaults := stubserver.DefaultSettings()
	host := flag.String("host", defaults.Host, "interface to bind")
	port := flag.Int("port", defaults.Port, "port to listen on")
	poAmount := flag.Float64("po", defaults.POAmount, "mock purchase-order amount")
	tolerance := flag.Float64("tolerance", defaults.TolerancePct, "two-way match tolerance in percent")
	flag.Parse()

	settings := defaults
	settings.Host = *host
	settings.Port = *port
	settings.POAmount = *poAmount
	settings.TolerancePct = *tolerance

	logger := log.New(os.Stderr, "reviewdesk-stub ", log.LstdFlags)
	server := stubserver.NewServer(settings, stubserver.WithLogger(logger))

	ctx := context.Background()
	if err := server.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting stub server: %v\n", err)
		os.Exit(1)
	}
	logger.Printf("listening on %s", server.BaseURL())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error shutting down: %v\n", err)
		os.Exit(1)
	}
}
