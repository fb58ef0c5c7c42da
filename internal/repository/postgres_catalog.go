package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/theatre-reservation-system/internal/domain"
)

type PostgresHallRepository struct {
	db *pgxpool.Pool
}

func NewPostgresHallRepository(db *pgxpool.Pool) *PostgresHallRepository {
	return &PostgresHallRepository{
		db: db,
	}
}

func (p *PostgresHallRepository) Create(ctx context.Context, hall *domain.Hall) error {
	query := `INSERT INTO theatre_halls (name, rows, seats_in_row)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := p.db.QueryRow(ctx, query, hall.Name, hall.Rows, hall.SeatsInRow).Scan(&hall.ID)
	if err != nil {
		return translateError(err)
	}

	return nil
}

func (p *PostgresHallRepository) GetAll(ctx context.Context) ([]domain.Hall, error) {
	rows, err := p.db.Query(ctx, `SELECT id, name, rows, seats_in_row FROM theatre_halls ORDER BY id`)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Hall, error) {
		var h domain.Hall
		err := row.Scan(&h.ID, &h.Name, &h.Rows, &h.SeatsInRow)
		return h, err
	})
}

type PostgresActorRepository struct {
	db *pgxpool.Pool
}

func NewPostgresActorRepository(db *pgxpool.Pool) *PostgresActorRepository {
	return &PostgresActorRepository{
		db: db,
	}
}

func (p *PostgresActorRepository) Create(ctx context.Context, actor *domain.Actor) error {
	query := `INSERT INTO actors (first_name, last_name)
		VALUES ($1, $2)
		RETURNING id`

	err := p.db.QueryRow(ctx, query, actor.FirstName, actor.LastName).Scan(&actor.ID)
	if err != nil {
		return translateError(err)
	}

	return nil
}

func (p *PostgresActorRepository) GetAll(ctx context.Context) ([]domain.Actor, error) {
	rows, err := p.db.Query(ctx, `SELECT id, first_name, last_name FROM actors ORDER BY id`)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, scanActor)
}

func scanActor(row pgx.CollectableRow) (domain.Actor, error) {
	var a domain.Actor
	err := row.Scan(&a.ID, &a.FirstName, &a.LastName)
	return a, err
}

type PostgresGenreRepository struct {
	db *pgxpool.Pool
}

func NewPostgresGenreRepository(db *pgxpool.Pool) *PostgresGenreRepository {
	return &PostgresGenreRepository{
		db: db,
	}
}

func (p *PostgresGenreRepository) Create(ctx context.Context, genre *domain.Genre) error {
	err := p.db.QueryRow(ctx, `INSERT INTO genres (name) VALUES ($1) RETURNING id`, genre.Name).Scan(&genre.ID)
	if err != nil {
		return translateError(err)
	}

	return nil
}

func (p *PostgresGenreRepository) GetAll(ctx context.Context) ([]domain.Genre, error) {
	rows, err := p.db.Query(ctx, `SELECT id, name FROM genres ORDER BY id`)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, scanGenre)
}

func scanGenre(row pgx.CollectableRow) (domain.Genre, error) {
	var g domain.Genre
	err := row.Scan(&g.ID, &g.Name)
	return g, err
}

type PostgresPlayRepository struct {
	db *pgxpool.Pool
}

func NewPostgresPlayRepository(db *pgxpool.Pool) *PostgresPlayRepository {
	return &PostgresPlayRepository{
		db: db,
	}
}

func (p *PostgresPlayRepository) Create(ctx context.Context, play *domain.Play, actorIDs, genreIDs []int) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `INSERT INTO plays (title, description, duration)
			VALUES ($1, $2, $3)
			RETURNING id`

		err := tx.QueryRow(ctx, query, play.Title, play.Description, play.Duration).Scan(&play.ID)
		if err != nil {
			return translateError(err)
		}

		err = copyMembership(ctx, tx, "play_actors", "actor_id", play.ID, actorIDs)
		if err != nil {
			return err
		}

		err = copyMembership(ctx, tx, "play_genres", "genre_id", play.ID, genreIDs)
		if err != nil {
			return err
		}

		play.Actors, err = selectPlayActors(ctx, tx, play.ID)
		if err != nil {
			return err
		}

		play.Genres, err = selectPlayGenres(ctx, tx, play.ID)
		return err
	})
}

func copyMembership(ctx context.Context, tx pgx.Tx, table, column string, playID int, ids []int) error {
	if len(ids) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, []any{playID, id})
	}

	_, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{table},
		[]string{"play_id", column},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return translateError(err)
	}

	return nil
}

func selectPlayActors(ctx context.Context, q querier, playID int) ([]domain.Actor, error) {
	query := `
		SELECT a.id, a.first_name, a.last_name
		FROM actors a
		JOIN play_actors pa ON pa.actor_id = a.id
		WHERE pa.play_id = $1
		ORDER BY a.id`

	rows, err := q.Query(ctx, query, playID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, scanActor)
}

func selectPlayGenres(ctx context.Context, q querier, playID int) ([]domain.Genre, error) {
	query := `
		SELECT g.id, g.name
		FROM genres g
		JOIN play_genres pg ON pg.genre_id = g.id
		WHERE pg.play_id = $1
		ORDER BY g.id`

	rows, err := q.Query(ctx, query, playID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, scanGenre)
}

func (p *PostgresPlayRepository) GetAll(ctx context.Context) ([]domain.Play, error) {
	rows, err := p.db.Query(ctx, `SELECT id, title, description, duration FROM plays ORDER BY id`)
	if err != nil {
		return nil, err
	}

	plays, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Play, error) {
		var pl domain.Play
		err := row.Scan(&pl.ID, &pl.Title, &pl.Description, &pl.Duration)
		return pl, err
	})
	if err != nil {
		return nil, err
	}

	for i := range plays {
		plays[i].Actors, err = selectPlayActors(ctx, p.db, plays[i].ID)
		if err != nil {
			return nil, err
		}

		plays[i].Genres, err = selectPlayGenres(ctx, p.db, plays[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return plays, nil
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}
