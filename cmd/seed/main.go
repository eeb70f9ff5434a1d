package main

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/goblogdev/goblog/config"
	"github.com/goblogdev/goblog/models"
	"github.com/goblogdev/goblog/repository"
	"github.com/goblogdev/goblog/utils"
)

// Seeds the database with an admin account and a few published articles.
// Safe to run repeatedly: unique-constraint conflicts are skipped.
func main() {
	cfg := config.Load()
	if err := utils.InitLogger(cfg); err != nil {
		log.Fatalf("logger init failed: %v", err)
	}

	db := config.InitDatabase(&models.User{}, &models.Article{}, &models.Comment{}, &models.Like{})
	ctx := context.Background()

	users := repository.NewUserRepository(db)
	articles := repository.NewArticleRepository(db)

	hash, err := utils.HashPassword("change-me-please")
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	admin := models.User{
		Name:         "Administrator",
		Email:        "admin@goblog.local",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	switch err := users.Create(ctx, &admin); {
	case err == nil:
		log.Printf("created admin user %s", admin.Email)
	case errors.Is(err, repository.ErrConflict):
		log.Printf("admin user %s already exists, skipping", admin.Email)
	default:
		log.Fatalf("create admin: %v", err)
	}

	now := time.Now()
	seedArticles := []models.Article{
		{
			Title:       "Welcome to the Blog",
			Slug:        "welcome-to-the-blog",
			Content:     "This is the first article on this blog. It exists so the frontend has something to render while real content is being written.",
			Author:      "Administrator",
			Tags:        models.TagList{"meta"},
			IsPublished: true,
			PublishedAt: &now,
		},
		{
			Title:       "Writing Good Comments",
			Slug:        "writing-good-comments",
			Content:     "Comments work best when they add context the article is missing. Keep them on topic, reply to the thread you mean, and remember anonymous comments need a name and an email address.",
			Author:      "Administrator",
			Tags:        models.TagList{"meta", "community"},
			IsPublished: true,
			PublishedAt: &now,
		},
		{
			Title:       "Test Slug",
			Slug:        "test-slug",
			Content:     "A published article reserved for end-to-end testing of comments, likes and view counting. Feel free to poke it with curl.",
			Author:      "Administrator",
			Tags:        models.TagList{"testing"},
			IsPublished: true,
			PublishedAt: &now,
		},
	}
	for i := range seedArticles {
		a := &seedArticles[i]
		if a.Excerpt == "" {
			a.Excerpt = utils.Excerpt(a.Content)
		}
		switch err := articles.Create(ctx, a); {
		case err == nil:
			log.Printf("created article %q", a.Slug)
		case errors.Is(err, repository.ErrConflict):
			log.Printf("article %q already exists, skipping", a.Slug)
		default:
			log.Fatalf("create article %q: %v", a.Slug, err)
		}
	}

	log.Println("seeding complete")
}
