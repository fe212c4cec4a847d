// Command seed fills the configured database with demo content.
package main

import (
	"context"
	"flag"
	"log"

	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/seed"
)

func main() {
	presetPath := flag.String("preset", "", "YAML preset file; defaults are used when empty")
	users := flag.Int("users", 0, "Override the number of users")
	posts := flag.Int("posts", 0, "Override the number of posts")
	clean := flag.Bool("clean", false, "Delete all existing content first")
	flag.Parse()

	opts := seed.DefaultOptions()
	if *presetPath != "" {
		loaded, err := seed.LoadPreset(*presetPath)
		if err != nil {
			log.Fatalf("Failed to load preset: %v", err)
		}
		opts = loaded
	}
	if *users > 0 {
		opts.Users = *users
	}
	if *posts > 0 {
		opts.Posts = *posts
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	s := seed.NewSeeder(db, opts)
	if *clean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}
	summary, err := s.Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Created %d users, %d posts, %d comments. Password for all accounts: %s",
		summary.Users, summary.Posts, summary.Comments, seed.DefaultPassword)
}
