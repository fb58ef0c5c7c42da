package domain

import (
	"context"
	"strings"
)

type Hall struct {
	ID         int
	Name       string
	Rows       int
	SeatsInRow int
}

func (h Hall) Capacity() int {
	return h.Rows * h.SeatsInRow
}

// ValidateHall checks the attributes a hall must have before it is stored.
func ValidateHall(h Hall) error {
	if strings.TrimSpace(h.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be blank"}
	}
	if h.Rows < 1 {
		return &ValidationError{Field: "rows", Reason: "must be greater than zero"}
	}
	if h.SeatsInRow < 1 {
		return &ValidationError{Field: "seatsInRow", Reason: "must be greater than zero"}
	}

	return nil
}

type Actor struct {
	ID        int
	FirstName string
	LastName  string
}

func (a Actor) FullName() string {
	return a.FirstName + " " + a.LastName
}

type Genre struct {
	ID   int
	Name string
}

type Play struct {
	ID          int
	Title       string
	Description string
	Duration    int
	Actors      []Actor
	Genres      []Genre
}

type HallRepository interface {
	Create(ctx context.Context, hall *Hall) error
	GetAll(ctx context.Context) ([]Hall, error)
}

type ActorRepository interface {
	Create(ctx context.Context, actor *Actor) error
	GetAll(ctx context.Context) ([]Actor, error)
}

type GenreRepository interface {
	Create(ctx context.Context, genre *Genre) error
	GetAll(ctx context.Context) ([]Genre, error)
}

type PlayRepository interface {
	// Create stores the play and its actor and genre memberships. Unknown
	// actor or genre ids are reported as a ValidationError.
	Create(ctx context.Context, play *Play, actorIDs, genreIDs []int) error
	GetAll(ctx context.Context) ([]Play, error)
}
