package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/nsqio/go-nsq"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	"nurseaid/features/chat"
	"nurseaid/features/quiz"
	"nurseaid/internal/adapter/gemini"
	"nurseaid/internal/adapter/memory"
	wstore "nurseaid/internal/adapter/weaviate"
	"nurseaid/internal/answer"
	"nurseaid/internal/config"
	"nurseaid/internal/corpus"
	"nurseaid/internal/events"
	"nurseaid/internal/extract"
	"nurseaid/internal/history"
	"nurseaid/internal/index"
	"nurseaid/internal/logger"
	"nurseaid/internal/middleware"
	"nurseaid/internal/qa"
	"nurseaid/internal/textsplit"
)

func main() {
	// Initialize structured logger
	handler := logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(slog.New(handler))

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// 2. Database Connection (optional: empty DB_HOST disables chat history)
	var historyService *history.Service
	if cfg.DBHost != "" {
		db, err := openDatabase(cfg)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := runMigrations(db, cfg.MigrationPath); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("migrations applied successfully")

		historyService = history.NewService(history.NewPostgresRepo(db))
	} else {
		slog.Info("DB_HOST not set, chat history disabled")
	}

	// 3. Gemini Client (embedding + generation)
	geminiClient, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		slog.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}
	defer geminiClient.Close()

	embedder := geminiClient.Embedder(cfg.GeminiEmbed)
	generator := geminiClient.Generator(cfg.GeminiGenerate)

	// 4. Index Builders (Weaviate first when configured, memory fallback)
	var builders []index.Builder
	if cfg.WeaviateHost != "" {
		wClient, err := weaviate.NewClient(weaviate.Config{
			Host:   cfg.WeaviateHost,
			Scheme: cfg.WeaviateScheme,
		})
		if err != nil {
			slog.Error("failed to create weaviate client", "error", err)
			os.Exit(1)
		}
		builders = append(builders, wstore.NewBuilder(wClient, embedder))
	}
	builders = append(builders, memory.NewBuilder(embedder))

	// 5. Corpus Pipeline
	extractor := extract.New(extract.NewTesseractOCR())
	splitter := textsplit.New(cfg.ChunkSize, cfg.ChunkOverlap)
	loader := corpus.NewLoader(extractor, splitter)

	queryLogger, err := qa.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = qa.NewQueryLogger(os.Stdout)
	}

	phones := answer.NewPhoneDirectory(cfg.PhonePath())
	qaService := qa.NewService(cfg.DocsPath, loader, builders, generator, phones, cfg.RetrievalTopK, queryLogger)

	// 6. NSQ Producer (optional: empty NSQD_HOST disables analytics events)
	var emitter *events.Emitter
	if cfg.NSQDHost != "" {
		nsqProducer, err := nsq.NewProducer(cfg.NSQDHost, nsq.NewConfig())
		if err != nil {
			slog.Error("failed to create NSQ producer", "error", err)
			os.Exit(1)
		}
		defer nsqProducer.Stop()
		emitter = events.NewEmitter(nsqProducer)
	} else {
		slog.Info("NSQD_HOST not set, analytics events disabled")
	}

	chatHandler := chat.NewHandler(qaService, historyService, emitter)
	quizHandler := quiz.NewHandler(qaService)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	http.Handle("POST /chat", middleware.CorrelationID(enableCORS(chatHandler.Ask)))
	http.Handle("GET /chat/history", middleware.CorrelationID(enableCORS(chatHandler.History)))
	http.Handle("DELETE /chat/history", middleware.CorrelationID(enableCORS(chatHandler.ClearHistory)))
	http.Handle("GET /quiz", middleware.CorrelationID(enableCORS(quizHandler.Get)))
	http.Handle("GET /debug", middleware.CorrelationID(enableCORS(chatHandler.Debug)))
	http.Handle("GET /init_qa", middleware.CorrelationID(enableCORS(chatHandler.InitQA)))

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	slog.Info("server starting", "port", cfg.ServerPort)
	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func openDatabase(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPass, cfg.DBName)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	// Retry connection
	delay := time.Duration(cfg.BootstrapRetryDelaySeconds) * time.Second
	for i := 0; i < cfg.BootstrapRetryAttempts; i++ {
		if err := db.Ping(); err == nil {
			return db, nil
		}
		slog.Warn("failed to ping db, retrying...", "attempt", i+1, "max_attempts", cfg.BootstrapRetryAttempts)
		time.Sleep(delay)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func runMigrations(db *sql.DB, path string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(path, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
