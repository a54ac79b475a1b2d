package user

import "context"

type Repository interface {
	Create(ctx context.Context, name, email, passwordHash string, role Role) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, id, name, email, passwordHash string) (*User, error)
	ListAll(ctx context.Context) ([]User, error)
	ListByRole(ctx context.Context, role Role) ([]User, error)
}
