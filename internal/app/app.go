package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/exaring/otelpgx"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/metinatakli/theatre-reservation-system/internal/auth"
	"github.com/metinatakli/theatre-reservation-system/internal/booking"
	"github.com/metinatakli/theatre-reservation-system/internal/domain"
	"github.com/metinatakli/theatre-reservation-system/internal/events"
	"github.com/metinatakli/theatre-reservation-system/internal/mailer"
	"github.com/metinatakli/theatre-reservation-system/internal/repository"
	"github.com/metinatakli/theatre-reservation-system/internal/storage"
	appvalidator "github.com/metinatakli/theatre-reservation-system/internal/validator"
	"github.com/metinatakli/theatre-reservation-system/internal/vcs"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const serviceName = "theatre-reservation-api"

var (
	version = vcs.Version()
)

type Application struct {
	config         Config
	logger         *slog.Logger
	db             *pgxpool.Pool
	redis          redis.UniversalClient
	validator      *validator.Validate
	mailer         mailer.Mailer
	sessionManager *scs.SessionManager
	tokens         *auth.TokenIssuer
	images         *storage.LocalStorage
	booking        *booking.Service
	limiter        *clientLimiter

	userRepo        domain.UserRepository
	hallRepo        domain.HallRepository
	actorRepo       domain.ActorRepository
	genreRepo       domain.GenreRepository
	playRepo        domain.PlayRepository
	performanceRepo domain.PerformanceRepository
	ticketRepo      domain.TicketRepository
	reservationRepo domain.ReservationRepository
}

// Repositories groups the read side of the store used by the handlers.
type Repositories struct {
	Users        domain.UserRepository
	Halls        domain.HallRepository
	Actors       domain.ActorRepository
	Genres       domain.GenreRepository
	Plays        domain.PlayRepository
	Performances domain.PerformanceRepository
	Tickets      domain.TicketRepository
	Reservations domain.ReservationRepository
}

type Config struct {
	Port              int
	Env               string
	DB                DBConfig
	Redis             RedisConfig
	SMTP              SMTPConfig
	JWT               auth.Config
	RabbitMQ          RabbitMQConfig
	Storage           StorageConfig
	Limiter           LimiterConfig
	ReservationCutoff time.Duration
	OtelCollectorUrl  string
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type RabbitMQConfig struct {
	URL   string
	Queue string
}

type StorageConfig struct {
	Dir          string
	MaxImageSize int64
}

type LimiterConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
}

func Run() error {
	// a missing .env file is not an error, the environment may be set already
	_ = godotenv.Load()

	var cfg Config

	flag.IntVar(&cfg.Port, "port", envInt("PORT", 3000), "server port")
	flag.StringVar(&cfg.Env, "env", envString("ENV", "dev"), "Environment (dev|staging|prod)")

	flag.StringVar(&cfg.DB.DSN, "db-dsn", envString("DB_DSN", ""), "PostgreSQL DSN")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.Redis.URL, "redis-url", envString("REDIS_URL", ""), "Redis URL")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.SMTP.Host, "smtp-host", envString("SMTP_HOST", "sandbox.smtp.mailtrap.io"), "SMTP host")
	flag.IntVar(&cfg.SMTP.Port, "smtp-port", envInt("SMTP_PORT", 2525), "SMTP port")
	flag.StringVar(&cfg.SMTP.Username, "smtp-username", envString("SMTP_USERNAME", ""), "SMTP username")
	flag.StringVar(&cfg.SMTP.Password, "smtp-password", envString("SMTP_PASSWORD", ""), "SMTP password")
	flag.StringVar(&cfg.SMTP.Sender, "smtp-sender", envString("SMTP_SENDER", "Theatre <no-reply@theatre.example.com>"), "SMTP sender")

	flag.StringVar(&cfg.JWT.Secret, "jwt-secret", envString("JWT_SECRET", ""), "JWT signing secret")
	flag.StringVar(&cfg.JWT.Issuer, "jwt-issuer", envString("JWT_ISSUER", serviceName), "JWT issuer")
	flag.DurationVar(&cfg.JWT.AccessTTL, "jwt-access-ttl", envDuration("JWT_ACCESS_TTL", 5*time.Minute), "JWT access token lifetime")
	flag.DurationVar(&cfg.JWT.RefreshTTL, "jwt-refresh-ttl", envDuration("JWT_REFRESH_TTL", 24*time.Hour), "JWT refresh token lifetime")

	flag.StringVar(&cfg.RabbitMQ.URL, "rabbitmq-url", envString("RABBITMQ_URL", ""), "RabbitMQ URL, events are only logged when empty")
	flag.StringVar(&cfg.RabbitMQ.Queue, "rabbitmq-queue", envString("RABBITMQ_QUEUE", events.DefaultQueue), "RabbitMQ queue for reservation events")

	flag.StringVar(&cfg.Storage.Dir, "storage-dir", envString("STORAGE_DIR", "./uploads"), "Directory for uploaded images")
	flag.Int64Var(&cfg.Storage.MaxImageSize, "storage-max-image-size", storage.DefaultMaxImageSize, "Maximum image size in bytes")

	flag.BoolVar(&cfg.Limiter.Enabled, "limiter-enabled", true, "Enable rate limiter")
	flag.Float64Var(&cfg.Limiter.RPS, "limiter-rps", 4, "Rate limiter maximum requests per second")
	flag.IntVar(&cfg.Limiter.Burst, "limiter-burst", 8, "Rate limiter maximum burst")

	flag.DurationVar(&cfg.ReservationCutoff, "reservation-cutoff", envDuration("RESERVATION_CUTOFF", booking.DefaultReservationCutoff), "How long before the show time reservations close, 0 disables")
	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", envString("OTEL_COLLECTOR_URL", ""), "OpenTelemetry collector endpoint")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	if cfg.JWT.Secret == "" {
		return errors.New("jwt secret must be set")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	shutdownTelemetry, err := InitTelemetry(cfg, logger)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	if cfg.OtelCollectorUrl != "" {
		logger = slog.New(NewMultiHandler(logger.Handler(), otelslog.NewHandler(serviceName)))
	}

	_, err = loadSpec()
	if err != nil {
		return err
	}

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	var publisher domain.EventPublisher = events.NewLogPublisher(logger)
	if cfg.RabbitMQ.URL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			return err
		}
		defer rabbit.Close()

		publisher = rabbit
	}

	images, err := storage.NewLocalStorage(cfg.Storage.Dir, cfg.Storage.MaxImageSize, domain.SystemClock{})
	if err != nil {
		return err
	}

	bookingService := booking.NewService(
		repository.NewPostgresBookingStore(db),
		publisher,
		logger,
		booking.WithReservationCutoff(cfg.ReservationCutoff),
	)

	app := NewApp(
		cfg,
		logger,
		db,
		redisClient,
		appvalidator.NewValidator(),
		mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender),
		NewSessionManager(redisClient),
		auth.NewTokenIssuer(cfg.JWT, domain.SystemClock{}),
		images,
		bookingService,
		Repositories{
			Users:        repository.NewPostgresUserRepository(db),
			Halls:        repository.NewPostgresHallRepository(db),
			Actors:       repository.NewPostgresActorRepository(db),
			Genres:       repository.NewPostgresGenreRepository(db),
			Plays:        repository.NewPostgresPlayRepository(db),
			Performances: repository.NewPostgresPerformanceRepository(db),
			Tickets:      repository.NewPostgresTicketRepository(db),
			Reservations: repository.NewPostgresReservationRepository(db),
		},
	)

	return app.run()
}

func NewApp(
	cfg Config,
	logger *slog.Logger,
	db *pgxpool.Pool,
	redis redis.UniversalClient,
	validator *validator.Validate,
	mailer mailer.Mailer,
	sessionManager *scs.SessionManager,
	tokens *auth.TokenIssuer,
	images *storage.LocalStorage,
	booking *booking.Service,
	repos Repositories) *Application {

	app := &Application{
		config:          cfg,
		logger:          logger,
		db:              db,
		redis:           redis,
		validator:       validator,
		mailer:          mailer,
		sessionManager:  sessionManager,
		tokens:          tokens,
		images:          images,
		booking:         booking,
		userRepo:        repos.Users,
		hallRepo:        repos.Halls,
		actorRepo:       repos.Actors,
		genreRepo:       repos.Genres,
		playRepo:        repos.Plays,
		performanceRepo: repos.Performances,
		ticketRepo:      repos.Tickets,
		reservationRepo: repos.Reservations,
	}

	if cfg.Limiter.Enabled {
		app.limiter = newClientLimiter(cfg.Limiter.RPS, cfg.Limiter.Burst)
	}

	return app
}

func NewSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	err := errors.Join(redisotel.InstrumentTracing(rdb), redisotel.InstrumentMetrics(rdb))
	if err != nil {
		rdb.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		shutdownError <- srv.Shutdown(ctx)
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}

	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return v
}
