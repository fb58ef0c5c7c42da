package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/metinatakli/theatre-reservation-system/internal/domain"
)

type constraintViolation struct {
	field  string
	reason string
}

var uniqueViolations = map[string]constraintViolation{
	"theatre_halls_name_key": {"name", "a theatre hall with this name already exists"},
	"genres_name_key":        {"name", "a genre with this name already exists"},
	"plays_title_key":        {"title", "a play with this title already exists"},
	"performances_slot_key":  {"showTime", "the play is already scheduled in this hall at this time"},
	"tickets_place_key":      {"seat", "this seat is already taken for the performance"},
	"play_actors_pkey":       {"actors", "an actor is listed more than once"},
	"play_genres_pkey":       {"genres", "a genre is listed more than once"},
}

var foreignKeyViolations = map[string]constraintViolation{
	"play_actors_actor_id_fkey":         {"actors", "actor does not exist"},
	"play_genres_genre_id_fkey":         {"genres", "genre does not exist"},
	"performances_play_id_fkey":         {"play", "play does not exist"},
	"performances_theatre_hall_id_fkey": {"theatreHall", "theatre hall does not exist"},
	"tickets_performance_id_fkey":       {"performance", "performance does not exist"},
	"tickets_reservation_fkey":          {"tickets", "ticket belongs to another performance"},
	"reservations_performance_id_fkey":  {"performance", "performance does not exist"},
}

// translateError maps constraint violations reported by PostgreSQL to
// domain errors. Any other error is returned unchanged.
func translateError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrRecordNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		if pgErr.ConstraintName == "users_email_key" {
			return domain.ErrUserAlreadyExists
		}

		if v, ok := uniqueViolations[pgErr.ConstraintName]; ok {
			return &domain.ConflictError{Field: v.field, Reason: v.reason}
		}

		return &domain.ConflictError{Reason: "record already exists"}
	case pgerrcode.ForeignKeyViolation:
		if v, ok := foreignKeyViolations[pgErr.ConstraintName]; ok {
			return &domain.ValidationError{Field: v.field, Reason: v.reason}
		}

		return &domain.ValidationError{Reason: "referenced record does not exist"}
	case pgerrcode.CheckViolation:
		return &domain.ValidationError{Field: pgErr.ColumnName, Reason: "value violates a check constraint"}
	}

	return err
}
