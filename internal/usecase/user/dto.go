package user

// CreateUserRequest represents the request payload for creating a new user.
// Only presence is checked; the email address is stored as given.
type CreateUserRequest struct {
	Name         string `validate:"required"`
	EmailAddress string `validate:"required"`
}

// UpdateUserRequest represents the request payload for updating an existing user.
// Nil fields keep their stored value.
type UpdateUserRequest struct {
	ID           string `validate:"required"`
	Name         *string
	EmailAddress *string
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID string `validate:"required"`
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID string `validate:"required"`
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users []User
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID           string
	Name         string
	EmailAddress string
}
