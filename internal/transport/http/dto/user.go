package dto

import (
	"time"

	"eventhub/internal/domain/models"

	"github.com/google/uuid"
)

// UserResponse is the public view of a user. It has no password or session fields.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"fname"`
	LastName  string    `json:"lname"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
