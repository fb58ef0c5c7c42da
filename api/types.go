// Package api holds the request and response bodies of the HTTP API and
// the OpenAPI document describing them.
package api

import (
	"time"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type SystemInfo struct {
	Environment string `json:"environment"`
	Version     string `json:"version"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type Metadata struct {
	CurrentPage  int `json:"currentPage"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required,notblank,max=100"`
	LastName  string `json:"lastName" validate:"required,notblank,max=100"`
	Password  string `json:"password" validate:"required,password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AlreadyLoggedInResponse struct {
	Message string `json:"message"`
}

type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,notblank,max=100"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,notblank,max=100"`
	Password  *string `json:"password,omitempty" validate:"omitempty,password"`
}

type UserResponse struct {
	Id        int       `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	IsStaff   bool      `json:"isStaff"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int       `json:"version"`
}

type TokenPairResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type RefreshTokenRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type AccessTokenResponse struct {
	Access string `json:"access"`
}

type VerifyTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type TheatreHall struct {
	Id         int    `json:"id"`
	Name       string `json:"name"`
	Rows       int    `json:"rows"`
	SeatsInRow int    `json:"seatsInRow"`
	Capacity   int    `json:"capacity"`
}

type CreateTheatreHallRequest struct {
	Name       string `json:"name" validate:"required,notblank,max=255"`
	Rows       int    `json:"rows" validate:"gt=0"`
	SeatsInRow int    `json:"seatsInRow" validate:"gt=0"`
}

type Actor struct {
	Id        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	FullName  string `json:"fullName"`
}

type CreateActorRequest struct {
	FirstName string `json:"firstName" validate:"required,notblank,max=255"`
	LastName  string `json:"lastName" validate:"required,notblank,max=255"`
}

type Genre struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
}

type CreateGenreRequest struct {
	Name string `json:"name" validate:"required,notblank,max=255"`
}

type Play struct {
	Id          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Duration    int     `json:"duration"`
	Actors      []Actor `json:"actors"`
	Genres      []Genre `json:"genres"`
}

type CreatePlayRequest struct {
	Title       string `json:"title" validate:"required,notblank,max=255"`
	Description string `json:"description"`
	Duration    int    `json:"duration" validate:"gt=0"`
	Actors      []int  `json:"actors" validate:"unique,dive,gt=0"`
	Genres      []int  `json:"genres" validate:"unique,dive,gt=0"`
}

type Place struct {
	Row  int `json:"row"`
	Seat int `json:"seat"`
}

type PerformanceListItem struct {
	Id                  int       `json:"id"`
	PlayId              int       `json:"playId"`
	PlayTitle           string    `json:"playTitle"`
	TheatreHallId       int       `json:"theatreHallId"`
	TheatreHallName     string    `json:"theatreHallName"`
	TheatreHallCapacity int       `json:"theatreHallCapacity"`
	ShowTime            time.Time `json:"showTime"`
	Image               string    `json:"image,omitempty"`
	TicketsAvailable    int       `json:"ticketsAvailable"`
}

type PerformancesResponse struct {
	Performances []PerformanceListItem `json:"performances"`
}

type PlayReference struct {
	Id    int    `json:"id"`
	Title string `json:"title"`
}

type AvailableTicket struct {
	Id   int `json:"id"`
	Row  int `json:"row"`
	Seat int `json:"seat"`
}

type PerformanceDetail struct {
	Id               int               `json:"id"`
	Play             PlayReference     `json:"play"`
	TheatreHall      TheatreHall       `json:"theatreHall"`
	ShowTime         time.Time         `json:"showTime"`
	Image            string            `json:"image,omitempty"`
	TicketsAvailable int               `json:"ticketsAvailable"`
	TakenPlaces      []Place           `json:"takenPlaces"`
	AvailableTickets []AvailableTicket `json:"availableTickets"`
}

type Performance struct {
	Id          int       `json:"id"`
	Play        int       `json:"play"`
	TheatreHall int       `json:"theatreHall"`
	ShowTime    time.Time `json:"showTime"`
	Image       string    `json:"image,omitempty"`
}

type PerformanceRequest struct {
	Play        int       `json:"play" validate:"gt=0"`
	TheatreHall int       `json:"theatreHall" validate:"gt=0"`
	ShowTime    time.Time `json:"showTime" validate:"required"`
}

type GetPerformancesParams struct {
	Play        *int    `json:"play,omitempty" validate:"omitempty,gt=0"`
	TheatreHall *int    `json:"theatreHall,omitempty" validate:"omitempty,gt=0"`
	Date        *string `json:"date,omitempty"`
}

type Ticket struct {
	Id               int    `json:"id"`
	Row              int    `json:"row"`
	Seat             int    `json:"seat"`
	Performance      int    `json:"performance"`
	PerformanceTitle string `json:"performanceTitle"`
	Reservation      *int   `json:"reservation"`
}

type TicketsResponse struct {
	Tickets []Ticket `json:"tickets"`
}

type TicketRequest struct {
	Row         int `json:"row" validate:"gt=0"`
	Seat        int `json:"seat" validate:"gt=0"`
	Performance int `json:"performance" validate:"gt=0"`
}

type ReservationRequest struct {
	Performance int   `json:"performance" validate:"gt=0"`
	Tickets     []int `json:"tickets" validate:"required,min=1,unique,dive,gt=0"`
}

type Reservation struct {
	Id          int       `json:"id"`
	Performance int       `json:"performance"`
	Tickets     []Ticket  `json:"tickets"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ReservationsResponse struct {
	Reservations []Reservation `json:"reservations"`
	Metadata     Metadata      `json:"metadata"`
}

type GetReservationsParams struct {
	Page     *int `json:"page,omitempty" validate:"omitempty,min=1"`
	PageSize *int `json:"pageSize,omitempty" validate:"omitempty,min=1,max=100"`
}

type ImageResponse struct {
	Id    int    `json:"id"`
	Image string `json:"image"`
}
