package main

import (
	"context"
	"database/sql"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"solicitud-system/internal/routes"
	"solicitud-system/migrations"
	"solicitud-system/pkg/config"
	"solicitud-system/pkg/customvalidator"
	"solicitud-system/pkg/database/postgresql"
	"solicitud-system/pkg/logger"
)

func main() {
	cfg := config.New()
	zapLogger := logger.NewLogger()
	defer zapLogger.Sync()

	pool := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer pool.Close()

	runMigrations(cfg.Postgres.DSN, zapLogger)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		zapLogger.Warn("redis no disponible, el cache de actores queda inactivo", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	v := validator.New()
	if err := customvalidator.RegisterCustomValidations(v); err != nil {
		log.Fatalf("registrando validaciones: %v", err)
	}
	e.Validator = customvalidator.NewEchoValidator(v)

	routes.InitRoutes(e, pool, redisClient, cfg, zapLogger)

	zapLogger.Info("servidor iniciado", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		zapLogger.Fatal("el servidor terminó con error", zap.Error(err))
	}
}

func runMigrations(dsn string, zapLogger *zap.Logger) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("abriendo conexión para migraciones: %v", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("configurando goose: %v", err)
	}
	if err := goose.Up(db, "."); err != nil {
		log.Fatalf("aplicando migraciones: %v", err)
	}
	zapLogger.Info("migraciones aplicadas")
}
