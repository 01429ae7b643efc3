package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles, in increasing privilege.
const (
	RolOperador      = "operador"
	RolGerente       = "gerente"
	RolAdministrador = "administrador"
)

// Usuario stores operators with role-based access.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Nome         string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Rol          string `gorm:"type:varchar(20);not null"`
	Ativo        bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *Usuario) BeforeCreate(*gorm.DB) error {
	novoID(&u.ID)
	return nil
}
