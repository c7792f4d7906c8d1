package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	httpadp "rentbook-backend/internal/adapter/http"
	"rentbook-backend/internal/adapter/middleware"
	repo "rentbook-backend/internal/adapter/repository/mysql"
	"rentbook-backend/internal/config"
	invoiceDomain "rentbook-backend/internal/domain/invoice"
	leaseDomain "rentbook-backend/internal/domain/lease"
	paymentDomain "rentbook-backend/internal/domain/payment"
	"rentbook-backend/internal/gateway/momo"
	"rentbook-backend/internal/infrastructure/cache"
	"rentbook-backend/internal/infrastructure/db"
	"rentbook-backend/internal/notify"
	invoiceuc "rentbook-backend/internal/usecase/invoice"
	leaseuc "rentbook-backend/internal/usecase/lease"
	paymentuc "rentbook-backend/internal/usecase/payment"
	"rentbook-backend/internal/usecase/reconcile"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	if err := gdb.AutoMigrate(
		&leaseDomain.Lease{},
		&leaseDomain.StatusEvent{},
		&paymentDomain.Payment{},
		&paymentDomain.ApprovalEvent{},
		&paymentDomain.GatewayEvent{},
		&invoiceDomain.Invoice{},
		&invoiceDomain.Item{},
		&invoiceDomain.PaymentRecord{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	gw := momo.New(momo.Config{
		BaseURL:         cfg.MomoBaseURL,
		SubscriptionKey: cfg.MomoSubscriptionKey,
		APIUser:         cfg.MomoAPIUser,
		APIKey:          cfg.MomoAPIKey,
		TargetEnv:       cfg.MomoTargetEnv,
		Timeout:         cfg.MomoTimeout,
	}, momo.NewRedisTokenCache(rdb))

	leases := repo.NewLeaseRepository(gdb)
	payments := repo.NewPaymentRepository(gdb)
	invoices := repo.NewInvoiceRepository(gdb)
	tx := repo.NewGormUoW(gdb)
	notifier := notify.LogDispatcher{}

	leaseUC := leaseuc.NewUsecase(leases, tx, notifier)
	invoiceUC := invoiceuc.NewUsecase(invoices, leases, tx, notifier)
	paymentUC := paymentuc.NewUsecase(payments, leases, invoices, tx, gw).
		WithCooldown(cfg.PaymentCooldown)
	co := reconcile.NewCoordinator(paymentUC, invoiceUC, leaseUC, payments, leases, gw, notifier, cfg.WebhookSecret)

	h := httpadp.NewHandler()
	leaseH := httpadp.NewLeaseHandler(leaseUC)
	paymentH := httpadp.NewPaymentHandler(paymentUC, co)
	invoiceH := httpadp.NewInvoiceHandler(invoiceUC)
	webhookH := httpadp.NewWebhookHandler(co)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	e.GET("/health", h.Health)

	// Provider callbacks authenticate with an HMAC signature, not the
	// client headers the idempotency middleware demands.
	e.POST("/v1/gateway/webhook", webhookH.GatewayWebhook)

	v1 := e.Group("/v1")
	v1.Use(middleware.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))

	v1.POST("/leases", leaseH.CreateLease)
	v1.GET("/leases/:lease_id", leaseH.GetLease)
	v1.GET("/leases/:lease_id/history", leaseH.LeaseHistory)
	v1.POST("/leases/:lease_id/send", leaseH.SendForSignature)
	v1.POST("/leases/:lease_id/sign", leaseH.SignLease)
	v1.POST("/leases/:lease_id/activate", leaseH.ForceActivate)
	v1.POST("/leases/:lease_id/deactivate", leaseH.Deactivate)
	v1.POST("/leases/:lease_id/terminate", leaseH.Terminate)
	v1.POST("/leases/:lease_id/expire", leaseH.MarkExpired)
	v1.POST("/leases/:lease_id/invoices/generate", invoiceH.GenerateInvoice)

	v1.POST("/payments", paymentH.SubmitPayment)
	v1.GET("/payments/:receipt_number", paymentH.GetPayment)
	v1.GET("/payments/:receipt_number/history", paymentH.PaymentHistory)
	v1.POST("/payments/:receipt_number/approve", paymentH.ApprovePayment)
	v1.POST("/payments/:receipt_number/reject", paymentH.RejectPayment)
	v1.POST("/payments/:receipt_number/cancel", paymentH.CancelPayment)
	v1.POST("/payments/:receipt_number/poll", paymentH.PollPayment)

	v1.POST("/invoices", invoiceH.CreateInvoice)
	v1.GET("/invoices/:invoice_number", invoiceH.GetInvoice)
	v1.POST("/invoices/:invoice_number/send", invoiceH.SendInvoice)
	v1.POST("/invoices/:invoice_number/overdue", invoiceH.MarkOverdue)
	v1.POST("/invoices/:invoice_number/cancel", invoiceH.CancelInvoice)

	addr := ":" + cfg.AppPort
	log.Printf("listening on %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
