package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	tele "gopkg.in/telebot.v3"

	"github.com/talesofkitsune/applybot/internal/config"
	"github.com/talesofkitsune/applybot/internal/relay"
	"github.com/talesofkitsune/applybot/internal/roles"
	"github.com/talesofkitsune/applybot/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	// --- DB (архив доставок, опционален) ---
	var archive relay.Archive
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db open error: %v", err)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			log.Fatalf("db ping error: %v", err)
		}
		archive = relay.NewArchive(db)
	} else {
		log.Println("DATABASE_URL not set, delivery archive disabled")
	}

	// --- Bot ---
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			// Внешняя граница обработчиков: логируем, цикл не роняем.
			if c != nil && c.Sender() != nil {
				log.Printf("[bot] handler error user=%d: %v", c.Sender().ID, err)
				return
			}
			log.Printf("[bot] error: %v", err)
		},
	})
	if err != nil {
		log.Fatalf("bot init error: %v", err)
	}

	// --- Relay module wiring ---
	catalog := roles.NewCatalog(cfg.RoleTopics)
	svc := relay.NewService(relay.Params{
		Gateway:     telegram.NewGateway(bot),
		Archive:     archive,
		Catalog:     catalog,
		StaffChatID: cfg.StaffChatID,
		Operators:   cfg.Operators(),
		TestWindow:  time.Duration(cfg.TestWindowDays) * 24 * time.Hour,
	})
	telegram.NewHandler(bot, svc, cfg.StaffChatID).Register()

	// --- Router (health для внешнего пинга) ---
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	ok := func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
	healthz := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
	r.Get("/", ok)
	r.Head("/", ok)
	r.Get("/healthz", healthz)
	r.Head("/healthz", healthz)

	go func() {
		log.Printf("listening on :%s", cfg.Port)
		if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	log.Println("starting telegram polling...")
	bot.Start()
}
