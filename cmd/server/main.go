package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/peoplehub/hr-backend/internal/auth"
	"github.com/peoplehub/hr-backend/internal/config"
	"github.com/peoplehub/hr-backend/internal/database"
	"github.com/peoplehub/hr-backend/internal/handler"
	"github.com/peoplehub/hr-backend/internal/polish"
	"github.com/peoplehub/hr-backend/internal/queue"
	"github.com/peoplehub/hr-backend/internal/repository"
	"github.com/peoplehub/hr-backend/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	absences := repository.NewAbsenceRepo(db)
	feedback := repository.NewFeedbackRepo(db)
	audit := repository.NewAuditRepo(db)

	// NewSigner enforces the minimum key length; a weak JWT_SECRET is a
	// startup failure, not a runtime surprise.
	signer, err := auth.NewSigner([]byte(cfg.JWTSecret), time.Duration(cfg.AccessTTLMin)*time.Minute)
	if err != nil {
		log.Fatalf("jwt: %v", err)
	}
	authenticator := auth.NewAuthenticator(users)
	sessions := auth.NewSessionManager(authenticator, users, tokens, signer,
		time.Duration(cfg.RefreshTTLDays)*24*time.Hour)

	// Without an API key the mock polisher echoes content back, which
	// keeps local development working with no external account.
	var polisher polish.Polisher = polish.Mock{}
	if cfg.PolishAPIKey != "" {
		polisher = polish.NewHTTPPolisher(cfg.PolishEndpoint, cfg.PolishAPIKey, cfg.PolishModel)
	}
	go queue.StartPolishConsumer(polisher, feedback)

	rdb := config.NewRedisClient() // nil when Redis is unreachable; limiter fails open
	rlCfg := config.LoadRateLimitConfig()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Handlers{
		Auth:     handler.NewAuthHandler(sessions),
		Users:    handler.NewUserHandler(cfg, users, audit),
		Absences: handler.NewAbsenceHandler(users, absences, audit),
		Feedback: handler.NewFeedbackHandler(users, feedback, audit, cfg.PolishModel),
		Admin:    handler.NewAdminHandler(audit),
	}, signer, rlCfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
