package postgresql

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

func ConnectDB(dsn string) *pgxpool.Pool {
	dbpool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatalf("error creando el pool de conexiones: %v", err)
	}

	if err := dbpool.Ping(context.Background()); err != nil {
		log.Fatalf("no se pudo contactar la base de datos: %v", err)
	}

	return dbpool
}
