package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/sales_backend/config"
	"github.com/mmdatafocus/sales_backend/middlewares"
	"github.com/mmdatafocus/sales_backend/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// PubSubMessage is the push-subscription envelope.
type PubSubMessage struct {
	Message struct {
		Data []byte `json:"data,omitempty"`
		ID   string `json:"id"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// jobPubSubHandler is the Pub/Sub wakeup path: a pushed message triggers one
// immediate polling pass. The durable queue remains the source of truth, so a
// dropped or duplicated push changes nothing.
func jobPubSubHandler(processor *JobProcessor) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			config.LogError(logger, "server.go", "jobPubSubHandler", "io.ReadAll", nil, err)
			// malformed body: ack to avoid infinite redelivery
			c.Status(http.StatusNoContent)
			return
		}

		var envelope PubSubMessage
		if err := json.Unmarshal(body, &envelope); err != nil {
			config.LogError(logger, "server.go", "jobPubSubHandler", "UnmarshalEnvelope", string(body), err)
			c.Status(http.StatusNoContent)
			return
		}
		var msg config.JobMessage
		if err := json.Unmarshal(envelope.Message.Data, &msg); err != nil {
			config.LogError(logger, "server.go", "jobPubSubHandler", "UnmarshalJobMessage", string(envelope.Message.Data), err)
			c.Status(http.StatusNoContent)
			return
		}

		logger.WithFields(logrus.Fields{
			"job_id":         msg.JobId,
			"job_type":       msg.JobType,
			"correlation_id": msg.CorrelationId,
		}).Info("[job.pubsub]")

		processor.processOnce(c.Request.Context())
		c.Status(http.StatusNoContent)
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server before dependencies are up so the startup probe
	// passes; app endpoints return 503 until the database is ready.
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// In production require an explicit allowlist; allow all elsewhere.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	// Optional Redis-backed rate limiting.
	// Env: RATE_LIMIT_ENABLED, RATE_LIMIT_WINDOW_SECONDS, RATE_LIMIT_MAX_REQUESTS.
	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		client := redis.NewClient(&redis.Options{Addr: os.Getenv("REDIS_ADDRESS")})
		limit := int64(600)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_MAX_REQUESTS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				limit = n
			}
		}
		windowSec := int64(60)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_WINDOW_SECONDS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				windowSec = n
			}
		}
		rateLimiter := NewRateLimiter(client, limit, time.Duration(windowSec)*time.Second)
		r.Use(rateLimiter.RateLimitMiddleware)
	}

	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	processor := NewJobProcessor(nil, logger)

	api := r.Group("/", middlewares.AuthMiddleware())
	{
		api.POST("/inventory/adjust", adjustStockHandler())
		api.GET("/inventory/low-stock", lowStockHandler())
		api.GET("/inventory/transactions", inventoryTransactionsHandler())

		api.POST("/stock/stock-in", createStockInHandler())
		api.POST("/stock/stock-out", createStockOutHandler())
		api.POST("/stock/stocktaking", createStocktakingHandler())
		api.POST("/stock/stocktaking/:id/complete", completeStocktakingHandler())
		api.GET("/stock/stocktaking/:id", getStocktakingHandler())

		api.POST("/orders", createOrderHandler())
		api.GET("/orders/:id", getOrderHandler())

		api.POST("/purchase-orders", createPurchaseOrderHandler())
		api.POST("/purchase-orders/:id/receive", receivePurchaseOrderHandler())
		api.GET("/purchase-orders/:id", getPurchaseOrderHandler())

		api.POST("/debt/customers/:id/pay", payCustomerDebtHandler())
		api.POST("/debt/suppliers/:id/pay", paySupplierDebtHandler())
		api.GET("/debt/customers/:id", debtBalanceHandler(models.DebtEntityTypeCustomer))
		api.GET("/debt/suppliers/:id", debtBalanceHandler(models.DebtEntityTypeSupplier))

		api.POST("/reconciliation", createReconciliationHandler())
		api.GET("/reconciliation/:id", getReconciliationHandler())
		api.POST("/reconciliation/:id/confirm", confirmReconciliationHandler())
		api.POST("/reconciliation/:id/approve", approveReconciliationHandler())
		api.POST("/reconciliation/:id/pay", payReconciliationHandler())

		api.POST("/reconciliation-upload/upload", settlementUploadHandler())
		api.GET("/reconciliation-upload/uploads/:id", getUploadHandler())

		api.POST("/uploads/images", productImageUploadHandler())
	}

	// Pub/Sub push endpoint is authenticated at the infrastructure level.
	r.POST("/pubsub", jobPubSubHandler(processor))
	r.NoRoute(customNotFoundHandler)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can run blocking DDL; allow running it as a separate job.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		if err := models.AutoMigrate(db); err != nil {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Panic(err.Error())
		}
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	processor.DB = db

	processorCtx, cancelProcessor := context.WithCancel(context.Background())
	defer cancelProcessor()
	if shouldRunJobProcessor() {
		go processor.Run(processorCtx)
	}

	if config.PubSubConfigured() {
		if _, err := config.EnsureJobTopic(context.Background()); err != nil {
			config.LogError(logger, "server.go", "main", "EnsureJobTopic", nil, err)
		}
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port)
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	// Stop the worker first so it doesn't start new work while draining.
	cancelProcessor()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

// customErrorLogger logs only requests that attached errors.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	key := c.ClientIP()

	exists, err := rl.client.Exists(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	if exists == 0 {
		err := rl.client.Set(c.Request.Context(), key, 1, rl.window).Err()
		if err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
		c.Next()
		return
	}

	count, err := rl.client.Incr(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", int(rl.window.Seconds())),
		})
		return
	}

	c.Next()
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
