package ports

import "context"

// UpdateUserInput carries a partial overwrite. Empty fields keep the stored
// value; an empty Password never replaces the stored hash.
type UpdateUserInput struct {
	Email    string
	Name     string
	City     string
	Role     string
	Password string
}

type UserService interface {
	GetAllUsers(ctx context.Context) Result
	GetUserByID(ctx context.Context, id int64) Result
	UpdateUser(ctx context.Context, id int64, in UpdateUserInput) Result
	DeleteUser(ctx context.Context, id int64) Result
	GetMyInfo(ctx context.Context, email string) Result
}
