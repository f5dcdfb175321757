package handler

import (
	"github.com/msomdec/user-registry/internal/domain"
)

// UserDTO is the JSON representation of a user. It has no password field.
type UserDTO struct {
	ID        int64  `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Age       *int   `json:"age"`
	Email     string `json:"email"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Age:       u.Age,
		Email:     u.Email,
	}
}

func toUserDTOs(users []domain.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i := range users {
		dtos[i] = toUserDTO(&users[i])
	}
	return dtos
}

// CreatedUserDTO confirms a new account.
type CreatedUserDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
