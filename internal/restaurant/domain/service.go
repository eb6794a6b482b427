package domain

import (
	"context"
	"errors"
)

type CreateRestaurantRequest struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Cuisines []string `json:"cuisines"`
}

type Service interface {
	Create(ctx context.Context, req CreateRestaurantRequest) (Restaurant, error)
	List(ctx context.Context) ([]Restaurant, error)
	GetByID(ctx context.Context, id string) (Restaurant, error)
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
	ErrSlugTaken    = errors.New("slug_taken")
)
