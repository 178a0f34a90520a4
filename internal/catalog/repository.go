package catalog

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrTypeNotFound = errors.New("membership type not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListTypes(ctx context.Context) ([]MembershipType, error) {
	query := `
		SELECT id, name, monthly_price_cents, access_to_all_locations,
		       group_class_sessions_included, personal_training_included,
		       specialized_spaces_included, created_at
		FROM membership_types
		ORDER BY monthly_price_cents ASC
	`

	var types []MembershipType
	err := r.db.SelectContext(ctx, &types, query)
	if err != nil {
		return nil, err
	}

	return types, nil
}

func (r *repository) GetType(ctx context.Context, id int) (*MembershipType, error) {
	query := `
		SELECT id, name, monthly_price_cents, access_to_all_locations,
		       group_class_sessions_included, personal_training_included,
		       specialized_spaces_included, created_at
		FROM membership_types
		WHERE id = $1
	`

	var t MembershipType
	err := r.db.GetContext(ctx, &t, query, id)
	if err != nil {
		return nil, ErrTypeNotFound
	}

	return &t, nil
}

func (r *repository) FindByName(ctx context.Context, name TypeName) (*MembershipType, error) {
	query := `
		SELECT id, name, monthly_price_cents, access_to_all_locations,
		       group_class_sessions_included, personal_training_included,
		       specialized_spaces_included, created_at
		FROM membership_types
		WHERE name = $1
	`

	var t MembershipType
	err := r.db.GetContext(ctx, &t, query, name)
	if err != nil {
		return nil, ErrTypeNotFound
	}

	return &t, nil
}
