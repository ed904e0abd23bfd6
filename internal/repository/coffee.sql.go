package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const findCoffeeById = `-- name: FindCoffeeById :one
SELECT id, name, description, price, image_url, created_at, updated_at
FROM coffees
WHERE id = $1`

func (q *Queries) FindCoffeeById(c context.Context, id uuid.UUID) (Coffee, error) {
	row := q.db.QueryRow(c, findCoffeeById, id)
	var i Coffee
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.ImageUrl,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const insertCoffee = `-- name: InsertCoffee :one
INSERT INTO coffees (id, name, description, price, image_url)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, name, description, price, image_url, created_at, updated_at`

type InsertCoffeeParams struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       pgtype.Numeric
	ImageUrl    string
}

func (q *Queries) InsertCoffee(c context.Context, arg InsertCoffeeParams) (Coffee, error) {
	row := q.db.QueryRow(c, insertCoffee,
		arg.ID,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.ImageUrl,
	)
	var i Coffee
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.ImageUrl,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
