package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attendance/tracker/foundation/web"
	"attendance/tracker/internal/auth"
	"attendance/tracker/internal/commands"
	"attendance/tracker/internal/pkg/config"
	"attendance/tracker/internal/pkg/repository/postgresql"
	"attendance/tracker/internal/pkg/storage"
	"attendance/tracker/internal/repository/store"
	"attendance/tracker/internal/router"
	"attendance/tracker/internal/service/attendance"

	"github.com/ardanlabs/conf"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

func main() {
	log := log.New(os.Stdout, "ATTENDANCE : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	if err := run(log); err != nil {
		log.Println("main: error:", err)
		os.Exit(1)
	}
}

func run(log *log.Logger) error {

	// =========================================================================
	// Configuration

	if err := godotenv.Load(); err != nil {
		log.Println("main: no .env file found, relying on environment variables")
	}

	var cfg struct {
		Web struct {
			APIHost         string        `conf:"default:0.0.0.0:8080"`
			ReadTimeout     time.Duration `conf:"default:10s"`
			WriteTimeout    time.Duration `conf:"default:30s"`
			ShutdownTimeout time.Duration `conf:"default:10s"`
			Release         bool          `conf:"default:false"`
		}
		Config string `conf:"default:config.yaml"`
	}

	if err := conf.Parse(os.Args[1:], "ATTENDANCE", &cfg); err != nil {
		if err == conf.ErrHelpWanted {
			usage, err := conf.Usage("ATTENDANCE", &cfg)
			if err != nil {
				return errors.Wrap(err, "generating config usage")
			}
			fmt.Println(usage)
			return nil
		}
		return errors.Wrap(err, "parsing config")
	}

	out, err := conf.String(&cfg)
	if err != nil {
		return errors.Wrap(err, "generating config for output")
	}
	log.Printf("main: Config :\n%v\n", out)

	appCfg, err := config.NewConfig(cfg.Config)
	if err != nil {
		return errors.Wrap(err, "loading application config")
	}

	ctx := context.Background()

	// =========================================================================
	// Storage

	var rdb *redis.Client
	if appCfg.Storage.Driver == config.DriverRedis || appCfg.Auth.SessionDriver == config.DriverRedis {
		rdb = redis.NewClient(&redis.Options{
			Addr:     appCfg.Redis.Addr,
			Password: appCfg.Redis.Password,
			DB:       appCfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return errors.Wrap(err, "connecting to redis")
		}
		defer rdb.Close()
	}

	st, err := openStorage(ctx, appCfg, rdb, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Printf("main: closing storage: %v", err)
		}
	}()
	log.Printf("main: using %s storage", appCfg.Storage.Driver)

	repo, err := store.New(ctx, st, log)
	if err != nil {
		return errors.Wrap(err, "opening store")
	}

	// =========================================================================
	// Services

	var sessions auth.SessionStore = auth.NewMemorySessions()
	if appCfg.Auth.SessionDriver == config.DriverRedis {
		sessions = auth.NewRedisSessions(rdb, "attendance:session:")
	}
	a := auth.New(appCfg.Auth.JWTKey, appCfg.Auth.TokenTTL, repo, sessions)

	svc := attendance.NewService(repo, attendance.WithOffice(attendance.Office{
		Latitude:  appCfg.Office.Latitude,
		Longitude: appCfg.Office.Longitude,
		Radius:    appCfg.Office.Radius,
	}))

	// =========================================================================
	// API

	if cfg.Web.Release {
		gin.SetMode(gin.ReleaseMode)
	}

	app := web.NewApp(log)
	router.NewRouter(app, repo, svc, a, appCfg.Origins, appCfg.Auth.HashPasswords).Init()

	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      app,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("main: API listening on %s", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return errors.Wrap(err, "server error")

	case sig := <-shutdown:
		log.Printf("main: %v : start shutdown", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := web.Shutdown(ctx, &api); err != nil {
			return errors.Wrap(err, "could not stop server gracefully")
		}
		log.Printf("main: %v : shutdown complete", sig)
	}

	return nil
}

func openStorage(ctx context.Context, cfg *config.Config, rdb *redis.Client, log *log.Logger) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return storage.NewMemory(), nil

	case config.DriverRedis:
		return storage.NewRedis(rdb, "attendance:"), nil

	case config.DriverPostgres:
		db := postgresql.NewDB(cfg.Storage)
		if err := db.Ping(ctx); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "connecting to postgres")
		}
		if err := commands.MigrateUP(ctx, db, log); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "migrating database")
		}
		return storage.NewPostgres(db), nil

	default:
		st, err := storage.NewFile(cfg.Storage.Dir)
		if err != nil {
			return nil, errors.Wrap(err, "opening file storage")
		}
		return st, nil
	}
}
