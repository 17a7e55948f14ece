package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/videotube-api/config"
	"github.com/oksasatya/videotube-api/internal/domain/entity"
	"github.com/oksasatya/videotube-api/internal/domain/repository"
	"github.com/oksasatya/videotube-api/internal/infrastructure/mongodb"
	"github.com/oksasatya/videotube-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	client, err := mongodb.NewClient(ctx, cfg.MongoURI, cfg.MongoMaxPool, cfg.MongoTimeout)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	users := mongodb.NewUserRepository(client.Database(cfg.MongoDB))

	email := "demo@videotube.dev"
	username := "demouser"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	u := &entity.User{
		Username: username,
		Email:    email,
		FullName: "Demo User",
		Avatar:   "https://placehold.co/256x256?text=demo",
		Password: hash,
	}
	err = users.Create(ctx, u)
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		existing, err := users.GetByUsernameOrEmail(ctx, username, email)
		if err != nil {
			log.Fatalf("failed to load existing user: %v", err)
		}
		fmt.Printf("user already seeded: id=%s username=%s\n", existing.ID.Hex(), existing.Username)
		return
	case err != nil:
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s username=%s email=%s password=%s\n", u.ID.Hex(), username, email, password)
}
