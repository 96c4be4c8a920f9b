package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/orfobot/internal/bot"
	"github.com/example/orfobot/internal/config"
	"github.com/example/orfobot/internal/content"
	"github.com/example/orfobot/internal/database"
	"github.com/example/orfobot/internal/leveling"
	"github.com/example/orfobot/internal/scheduler"
	"github.com/example/orfobot/internal/spaced_repetition"
	"github.com/example/orfobot/internal/training"
)

func main() {
	// Создаем канал для сигналов
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Создаем контекст с отменой
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Подключаемся к базе данных
	driver, err := database.DriverFor(cfg.DBType)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	store, err := database.Open(driver, cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	tracker := spaced_repetition.NewTracker()
	tracker.MasteryThreshold = cfg.MasteryThreshold

	trainer := training.NewService(store, training.NewMemorySessionStore(), tracker, leveling.NewEngine(cfg.Location), training.Config{
		WordsPerTraining: cfg.WordsPerTraining,
		Location:         cfg.Location,
	})

	botConfig := bot.DefaultConfig()
	botConfig.AdminUserIDs = cfg.AdminUserIDs

	// Создаем бота
	b, err := bot.New(cfg.TelegramToken, trainer, content.NewService(store), botConfig)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	if cfg.SchedulerEnabled {
		s := scheduler.New(store.Progress, b, cfg.NotificationHours, cfg.Location)
		if err := s.Start(); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
		b.SetScheduler(s)
	}

	// Канал для ожидания завершения бота
	done := make(chan struct{})

	// Горутина для обработки сигналов
	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v", sig)
		cancel() // Отменяем контекст

		// Даем время на graceful shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := b.Stop(shutdownCtx); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}

		close(done) // Сигнализируем о завершении
	}()

	// Запускаем бота
	log.Println("Bot started. Press Ctrl+C to stop.")
	go func() {
		if err := b.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Bot error: %v", err)
		}
	}()

	// Ждем сигнала завершения
	<-done
	log.Println("Bot stopped successfully")
}
