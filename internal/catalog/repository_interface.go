package catalog

import "context"

type Repository interface {
	ListTypes(ctx context.Context) ([]MembershipType, error)
	GetType(ctx context.Context, id int) (*MembershipType, error)
	FindByName(ctx context.Context, name TypeName) (*MembershipType, error)
}
