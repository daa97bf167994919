// Command coderag-mcp binds the service surface as MCP tools, grounded on
// standardbeagle-lci's mcp.NewServer/AddTool registration style
// (the pack's clearest modelcontextprotocol/go-sdk user).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/viant/coderag/config"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		cfg = config.Default()
	}

	base := logrus.New()
	logger := base.WithField("component", "mcp")

	srv := newServer(cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "coderag-mcp: %v\n", err)
		os.Exit(1)
	}
}
