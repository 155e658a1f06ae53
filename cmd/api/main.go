package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/whisper/backend/internal/config"
	"github.com/zhouzirui/whisper/backend/internal/handler"
	"github.com/zhouzirui/whisper/backend/internal/model/persona"
	"github.com/zhouzirui/whisper/backend/internal/service/ai"
	"github.com/zhouzirui/whisper/backend/internal/service/chat"
	emotionservice "github.com/zhouzirui/whisper/backend/internal/service/emotion"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	chatModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		log.Fatalf("failed to initialize %s chat model: %v", cfg.AI.Provider, err)
	}
	if closer, ok := chatModel.(io.Closer); ok {
		defer closer.Close()
	}
	log.Printf("%s chat model initialized (model=%s)", cfg.AI.Provider, cfg.AI.ModelName())

	aiService, err := ai.NewService(chatModel, persona.Default())
	if err != nil {
		log.Fatalf("failed to initialize AI service: %v", err)
	}

	emotionSvc, err := emotionservice.NewService(ctx, chatModel, emotionservice.Config{
		Enabled: cfg.Emotion.LLMEnabled(),
	})
	if err != nil {
		log.Fatalf("failed to initialize emotion service: %v", err)
	}
	if emotionSvc.Enabled() {
		log.Println("Emotion classifier: llm with lexicon fallback")
	} else {
		log.Println("Emotion classifier: lexicon")
	}

	chatService := chat.NewService(aiService, emotionSvc)
	router := handler.NewRouter(cfg.Server, cfg.AI.Provider, chatService)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Whisper backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
