package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"charity-events/internal/model"
)

type CategoryRepository interface {
	List(ctx context.Context) ([]*model.Category, error)
}

type CategoryRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &CategoryRepositoryImpl{pool: pool}
}

func (r *CategoryRepositoryImpl) List(ctx context.Context) ([]*model.Category, error) {
	query := `
		SELECT id, name, description
		FROM categories
		ORDER BY name ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]*model.Category, 0)
	for rows.Next() {
		var category model.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Description); err != nil {
			return nil, err
		}
		categories = append(categories, &category)
	}
	return categories, rows.Err()
}
