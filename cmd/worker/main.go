package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suPer8Hu/chat-dashboard/internal/config"
	"github.com/suPer8Hu/chat-dashboard/internal/logging"
	"github.com/suPer8Hu/chat-dashboard/internal/metrics"
	"github.com/suPer8Hu/chat-dashboard/internal/settings"
	"github.com/suPer8Hu/chat-dashboard/internal/storage"
	"github.com/suPer8Hu/chat-dashboard/internal/store/rabbitmq"
)

// worker consumes logo cleanup jobs and deletes the files. Failed jobs are
// dead-lettered, never retried.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat).With("component", "worker")

	if cfg.RabbitURL == "" {
		logger.Error("RABBIT_URL is required")
		os.Exit(1)
	}

	logos, err := storage.NewLocalLogoStore(cfg.UploadDir)
	if err != nil {
		logger.Error("upload dir", "error", err)
		os.Exit(1)
	}

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		logger.Error("rabbit dial", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("rabbit channel", "error", err)
		os.Exit(1)
	}
	defer ch.Close()

	if err := rabbitmq.DeclareQueues(ch, cfg.RabbitQueue); err != nil {
		logger.Error("queue declare", "error", err)
		os.Exit(1)
	}

	concurrency := cfg.WorkerConcurrency
	if err := ch.Qos(concurrency, 0, false); err != nil {
		logger.Error("qos", "error", err)
		os.Exit(1)
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.Error("consume", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("worker started", "queue", cfg.RabbitQueue, "concurrency", concurrency)

	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				var job rabbitmq.CleanupJob
				if err := json.Unmarshal(d.Body, &job); err != nil || job.Ref == "" {
					logger.Warn("bad message", "worker", workerID, "error", err)
					_ = d.Nack(false, false)
					continue
				}

				start := time.Now()
				err := handleJob(ctx, logos, job)
				metrics.LogoCleanup(err)
				if err != nil {
					logger.Warn("cleanup failed", "worker", workerID, "ref", job.Ref, "cost", time.Since(start), "error", err)
					_ = d.Nack(false, false)
					continue
				}

				if err := d.Ack(false); err != nil {
					logger.Warn("ack failed", "worker", workerID, "ref", job.Ref, "error", err)
				}
			}
		}(i)
	}

	// dispatcher
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				logger.Warn("delivery channel closed")
				msgs = nil
				stop()
				continue
			}
			jobs <- d
		}
	}
}

func handleJob(ctx context.Context, logos settings.LogoStore, job rabbitmq.CleanupJob) error {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return logos.Remove(cctx, job.Ref)
}
