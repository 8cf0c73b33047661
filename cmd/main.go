package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/gommon/log"

	"greenroom/pkg/inference"
	"greenroom/pkg/server"
	"greenroom/pkg/store"
)

func main() {
	ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGKILL)

	dbPath := os.Getenv("GREENROOM_DB")
	if dbPath == "" {
		dbPath = "greenroom.db"
	}
	st, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}

	registry := inference.NewRegistry()

	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		model := os.Getenv("OPENAI_MODEL")
		if model == "" {
			model = "gpt-4o-mini"
		}
		registry.Register("openai", inference.NewOpenAIInferencer(apiKey, model))
	}
	if grokKey := os.Getenv("GROK_API_KEY"); grokKey != "" {
		registry.Register("grok", inference.NewGrokInferencer(grokKey, os.Getenv("GROK_MODEL")))
	}
	if geminiKey := os.Getenv("GEMINI_API_KEY"); geminiKey != "" {
		gemini, err := inference.NewGeminiInferencer(geminiKey, os.Getenv("GEMINI_MODEL"))
		if err != nil {
			log.Warnf("Failed to configure gemini: %v", err)
		} else {
			registry.Register("gemini", gemini)
		}
	}
	if len(registry.Names()) == 0 {
		log.Warn("No generation provider configured; generation falls back to templates")
	} else {
		log.Infof("Providers: %v (default %s)", registry.Names(), registry.Default())
	}

	srv := server.NewServer(ctx, st, registry)
	srv.Echo.Logger.SetLevel(log.DEBUG)

	addr := ":8080"
	if envAddr := os.Getenv("PORT"); envAddr != "" {
		addr = ":" + envAddr
	}

	finishedShutDown := make(chan struct{})
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(ctx); err != nil {
			log.Fatal(err)
		}
		done()
		close(finishedShutDown)
	}()

	if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(err)
	}
	<-finishedShutDown
}
