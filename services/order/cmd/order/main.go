package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Skotchmaster/marketplace/pkg/authclient"
	pkgdb "github.com/Skotchmaster/marketplace/pkg/db"
	pkgkafka "github.com/Skotchmaster/marketplace/pkg/kafka"
	"github.com/Skotchmaster/marketplace/pkg/logging"
	"github.com/Skotchmaster/marketplace/pkg/metrics"
	loggingmw "github.com/Skotchmaster/marketplace/pkg/middleware/logging"

	"github.com/Skotchmaster/marketplace/services/order/internal/catalog"
	ordercfg "github.com/Skotchmaster/marketplace/services/order/internal/config"
	"github.com/Skotchmaster/marketplace/services/order/internal/httpserver"
	"github.com/Skotchmaster/marketplace/services/order/internal/notify"
	"github.com/Skotchmaster/marketplace/services/order/internal/payment"
	"github.com/Skotchmaster/marketplace/services/order/internal/repo"
	"github.com/Skotchmaster/marketplace/services/order/internal/search"
	"github.com/Skotchmaster/marketplace/services/order/internal/service"
)

func main() {
	cfg := ordercfg.Load("services/order/.env")

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db open: %v", err)
	}

	orders := &repo.GormRepo{DB: db}
	if err := orders.Migrate(ctx); err != nil {
		cancel()
		log.Fatalf("db migrate: %v", err)
	}

	notifiers := notify.Multi{}

	var producer *pkgkafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = pkgkafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			cancel()
			log.Fatalf("kafka producer: %v", err)
		}
		notifiers = append(notifiers, notify.NewKafkaNotifier(producer, cfg.OrderEventsTopic))
	} else {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	var indexer *search.Indexer
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			cancel()
			log.Fatalf("elasticsearch client: %v", err)
		}
		indexer = search.NewIndexer(es, cfg.OrderIndex)
		if err := indexer.EnsureIndex(ctx); err != nil {
			logger.Warn("order_index_unavailable", "index", cfg.OrderIndex, "error", err)
		}
		notifiers = append(notifiers, indexer)
	} else {
		logger.Warn("search_disabled", "reason", "ES_URL is empty")
	}
	cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewServerMetrics(cfg.ServiceName, reg)

	svc := &service.OrderService{
		Store:    orders,
		Catalog:  &catalog.GormRepo{DB: db},
		Payments: payment.NewClient(cfg.PaymentAPIURL, cfg.PaymentKeyID, cfg.PaymentKeySecret),
		Notifier: notifiers,
		Metrics:  m,
	}
	if indexer != nil {
		svc.Search = indexer
	}

	handler := &httpserver.OrderHTTP{Svc: svc}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(m.Middleware())
	e.Use(echomw.CORS())

	var auth *authclient.Client
	if cfg.AuthHTTPURL != "" {
		auth = authclient.NewClient(cfg.AuthHTTPURL)
	}

	var webhook *httpserver.PaymentWebhookHTTP
	if len(cfg.PaymentWebhookSecret) > 0 {
		webhook = &httpserver.PaymentWebhookHTTP{Orders: handler, Secret: cfg.PaymentWebhookSecret}
	} else {
		logger.Warn("payment_webhook_disabled", "reason", "PAYMENT_WEBHOOK_SECRET is empty")
	}

	httpserver.Register(e, &httpserver.Deps{
		OrderHandler:   handler,
		WebhookHandler: webhook,
		JWTSecret:      cfg.JWTAccessSecret,
		AuthClient:     auth,
		Gatherer:       reg,
		Ready: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("order_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_error", "error", err)
	}

	// in-flight notifications still use the producer
	svc.Wait()
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db_close_error", "error", err)
	}

	logger.Info("order_stopped")
}
