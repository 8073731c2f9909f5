package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"matchhub/internal/config"
	"matchhub/internal/handler/api"
	"matchhub/internal/handler/auth"
	"matchhub/internal/handler/middleware"
	wshandler "matchhub/internal/handler/websocket"
	"matchhub/internal/infrastructure/lock"
	"matchhub/internal/infrastructure/repository"
	"matchhub/internal/usecase"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	_ "github.com/lib/pq"
)

// initDB — initialize database connection
func initDB(dsn string) *sqlx.DB {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		slog.Error("connect to PostgreSQL", "error", err)
		os.Exit(1)
	}

	db.MustExec(
		`
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username VARCHAR(255) UNIQUE NOT NULL,
			password VARCHAR(255) NOT NULL
		);
	`,
	)
	slog.Info("Database initialized")
	return db
}

// initRedis — initialize the shared matchmaking store
func initRedis(addr string) *redis.Client {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		slog.Error("connect to Redis", "addr", addr, "error", err)
		os.Exit(1)
	}
	slog.Info("Redis initialized", "addr", addr)
	return rdb
}

func main() {
	slog.SetDefault(
		slog.New(
			slog.NewTextHandler(
				os.Stdout, &slog.HandlerOptions{
					AddSource: true,
					Level:     slog.LevelDebug,
					ReplaceAttr: func(_ []string, att slog.Attr) slog.Attr {
						if att.Key == "msg" {
							att.Key = "message"
						}

						return att
					},
				},
			),
		),
	)

	cfg := config.Load()
	db := initDB(cfg.DatabaseDSN)
	rdb := initRedis(cfg.RedisAddr)

	locks := lock.NewRedisProvider(rdb, lock.DefaultLease)
	players := repository.NewPlayerRedisRepo(rdb)
	rooms := repository.NewRoomRedisRepo(rdb, locks)
	users := repository.NewUserPostgresRepo(db)
	conns := repository.NewWsConnRepo()

	matchmaker := usecase.NewMatchmakingUC(players, rooms, locks, conns, cfg.MaxPlayers, cfg.MinReady)

	tm := auth.NewJWTTokenManager([]byte(cfg.JWTSecret), time.Hour*24)
	userHandler := api.NewUserHandler(users, tm)
	roomHandler := api.NewRoomHandler(rooms)
	wsHandler := wshandler.NewWsHandler(matchmaker, users, conns)

	mux := http.NewServeMux()
	mux.Handle("POST /register", http.HandlerFunc(userHandler.RegisterUser))
	mux.Handle("POST /login", http.HandlerFunc(userHandler.LoginUser))
	mux.Handle("GET /rooms", middleware.AuthMiddleware(tm, http.HandlerFunc(roomHandler.RoomsList)))
	mux.Handle("/ws", middleware.AuthMiddleware(tm, http.HandlerFunc(wsHandler.HandleWS)))

	srv := http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	slog.Info("Server started", "addr", cfg.ListenAddr)
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("Server error", "error", err)
	}
}
