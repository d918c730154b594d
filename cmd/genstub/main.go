package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jbonatakis/studydesk/internal/genstub"
	"github.com/jbonatakis/studydesk/internal/logging"
)

func main() {
	var addr string
	var delay time.Duration
	var noStream bool
	var debug bool

	flag.StringVar(&addr, "addr", genstub.DefaultAddr, "listen address")
	flag.DurationVar(&delay, "chunk-delay", 40*time.Millisecond, "pause between streamed chat chunks")
	flag.BoolVar(&noStream, "no-stream", false, "do not serve the streaming chat endpoint")
	flag.BoolVar(&debug, "debug", false, "verbose logging")
	flag.Parse()

	logger, err := logging.New(logging.Options{Debug: debug, Console: os.Stderr})
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	srv := genstub.New(genstub.Options{
		Logger:           logger,
		ChunkDelay:       delay,
		DisableStreaming: noStream,
		RequestLog:       debug,
	})
	if err := srv.ListenAndServe(addr); err != nil {
		logger.Sugar().Fatalf("stub service stopped: %v", err)
	}
}
