// Command seed fills a dev database with a handful of users, groups,
// posts, comments, and follow edges.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/plumekit/plume/internal/auth"
	"github.com/plumekit/plume/internal/db"
	"github.com/plumekit/plume/internal/model"
	"github.com/plumekit/plume/internal/repository"
)

func main() {
	dsn := flag.String("dsn", "plume.db", "database dsn (postgres:// url or sqlite path)")
	users := flag.Int("users", 5, "number of users")
	postsPer := flag.Int("posts", 8, "posts per user")
	flag.Parse()

	log, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	gdb, err := db.Open(*dsn)
	if err != nil {
		log.Fatal("open db", zap.Error(err))
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gdb)
	groupRepo := repository.NewGroupRepository(gdb)
	postRepo := repository.NewPostRepository(gdb)
	commentRepo := repository.NewCommentRepository(gdb)
	followRepo := repository.NewFollowRepository(gdb)

	groups := []model.Group{
		{Title: "Go", Slug: "go", Description: "All things Go"},
		{Title: "Cooking", Slug: "cooking", Description: "Recipes and kitchen notes"},
		{Title: "Travel", Slug: "travel", Description: "Trip reports"},
	}
	for i := range groups {
		if err := groupRepo.Create(ctx, &groups[i]); err != nil {
			log.Fatal("create group", zap.Error(err))
		}
	}

	hash, err := auth.HashPassword("password")
	if err != nil {
		log.Fatal("hash password", zap.Error(err))
	}

	var created []model.User
	for i := 0; i < *users; i++ {
		u := model.User{
			Username:     fmt.Sprintf("writer%d", i+1),
			Email:        fmt.Sprintf("writer%d@example.com", i+1),
			PasswordHash: hash,
		}
		if err := userRepo.Create(ctx, &u); err != nil {
			log.Fatal("create user", zap.Error(err))
		}
		created = append(created, u)
	}

	var posts []model.Post
	for _, u := range created {
		for j := 0; j < *postsPer; j++ {
			p := model.Post{
				Text:     fmt.Sprintf("Post %d by %s", j+1, u.Username),
				AuthorID: u.ID,
			}
			if j%2 == 0 {
				p.GroupID = &groups[rand.Intn(len(groups))].ID
			}
			if err := postRepo.Create(ctx, &p); err != nil {
				log.Fatal("create post", zap.Error(err))
			}
			posts = append(posts, p)
		}
	}

	for _, u := range created {
		for _, p := range posts {
			if p.AuthorID != u.ID && rand.Intn(10) == 0 {
				c := model.Comment{PostID: p.ID, AuthorID: u.ID, Text: "Nice one!"}
				if err := commentRepo.Create(ctx, &c); err != nil {
					log.Fatal("create comment", zap.Error(err))
				}
			}
		}
		for _, other := range created {
			if other.ID != u.ID && rand.Intn(2) == 0 {
				if err := followRepo.Create(ctx, u.ID, other.ID); err != nil {
					log.Fatal("create follow", zap.Error(err))
				}
			}
		}
	}

	log.Info("seeded",
		zap.Int("users", len(created)),
		zap.Int("groups", len(groups)),
		zap.Int("posts", len(posts)),
	)
}
