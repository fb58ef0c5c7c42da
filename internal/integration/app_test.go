package integration_test

import (
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/theatre-reservation-system/internal/app"
	"github.com/metinatakli/theatre-reservation-system/internal/auth"
	"github.com/metinatakli/theatre-reservation-system/internal/booking"
	"github.com/metinatakli/theatre-reservation-system/internal/domain"
	"github.com/metinatakli/theatre-reservation-system/internal/events"
	"github.com/metinatakli/theatre-reservation-system/internal/mailer"
	"github.com/metinatakli/theatre-reservation-system/internal/repository"
	"github.com/metinatakli/theatre-reservation-system/internal/storage"
	appvalidator "github.com/metinatakli/theatre-reservation-system/internal/validator"
)

type TestApp struct {
	App     *app.Application
	DB      *pgxpool.Pool
	Mailer  *mailer.MockMailer
	Tokens  *auth.TokenIssuer
	Booking *booking.Service
	Users   domain.UserRepository
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	validator := appvalidator.NewValidator()
	mailer := mailer.NewMockMailer()

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	sessionManager := app.NewSessionManager(redisClient)
	tokens := auth.NewTokenIssuer(cfg.JWT, domain.SystemClock{})

	images, err := storage.NewLocalStorage(cfg.Storage.Dir, cfg.Storage.MaxImageSize, domain.SystemClock{})
	if err != nil {
		db.Close()
		return nil, err
	}

	bookingService := booking.NewService(
		repository.NewPostgresBookingStore(db),
		events.NewLogPublisher(logger),
		logger,
		booking.WithReservationCutoff(cfg.ReservationCutoff),
	)

	repos := app.Repositories{
		Users:        repository.NewPostgresUserRepository(db),
		Halls:        repository.NewPostgresHallRepository(db),
		Actors:       repository.NewPostgresActorRepository(db),
		Genres:       repository.NewPostgresGenreRepository(db),
		Plays:        repository.NewPostgresPlayRepository(db),
		Performances: repository.NewPostgresPerformanceRepository(db),
		Tickets:      repository.NewPostgresTicketRepository(db),
		Reservations: repository.NewPostgresReservationRepository(db),
	}

	application := app.NewApp(
		cfg,
		logger,
		db,
		redisClient,
		validator,
		mailer,
		sessionManager,
		tokens,
		images,
		bookingService,
		repos,
	)

	return &TestApp{
		App:     application,
		DB:      db,
		Mailer:  mailer,
		Tokens:  tokens,
		Booking: bookingService,
		Users:   repos.Users,
	}, nil
}
