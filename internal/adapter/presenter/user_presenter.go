package presenter

import (
	"github.com/johnquangdev/meeting-whisperer/internal/adapter/dto/user"
	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
)

// ToUserResponse converts a User entity to UserResponse DTO
func ToUserResponse(u *entities.User) *user.UserResponse {
	if u == nil {
		return nil
	}
	return &user.UserResponse{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  u.Name,
		Role:  string(u.Role),
	}
}
