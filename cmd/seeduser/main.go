// Command seeduser creates or updates the initial administrador.
// Usage: SEED_USERNAME=admin SEED_PASSWORD=... go run ./cmd/seeduser
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/silvioaquino/Gestao-PDV/internal/config"
	"github.com/silvioaquino/Gestao-PDV/internal/infra"
	"github.com/silvioaquino/Gestao-PDV/internal/model"
	"github.com/silvioaquino/Gestao-PDV/internal/repository"
	"github.com/silvioaquino/Gestao-PDV/internal/service"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	username := envOr("SEED_USERNAME", "admin")
	password := os.Getenv("SEED_PASSWORD")
	if len(password) < 8 {
		log.Fatal("SEED_PASSWORD deve ter ao menos 8 caracteres")
	}
	nome := envOr("SEED_NOME", "Administrador")

	hash, err := bcrypt.GenerateFromPassword([]byte(password), service.BcryptCost)
	if err != nil {
		log.Fatalf("bcrypt error: %v", err)
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	repo := repository.NewUsuarioRepository(db)
	ctx := context.Background()

	// Inactive users are looked up too so a re-seed reactivates them
	u := &model.Usuario{}
	err = db.WithContext(ctx).Where("username = ?", username).First(u).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		u = &model.Usuario{Username: username}
	case err != nil:
		log.Fatalf("lookup error: %v", err)
	}
	u.Nome = nome
	u.PasswordHash = string(hash)
	u.Rol = model.RolAdministrador
	u.Ativo = true

	if u.ID == uuid.Nil {
		err = repo.Create(ctx, u)
	} else {
		err = repo.Update(ctx, u)
	}
	if err != nil {
		log.Fatalf("save error: %v", err)
	}
	fmt.Printf("✅ Usuário '%s' criado/atualizado com papel %s\n", username, u.Rol)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
