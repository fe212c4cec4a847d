// Command admin manages administrator roles and account blocks from the shell.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/models"
	"folio/internal/repository"
	"folio/internal/service"
)

const usage = `Usage:
  admin promote <user_id|email>     - Grant the administrator role
  admin demote <user_id|email>      - Revoke the administrator role
  admin block <user_id|email>       - Block an account
  admin unblock <user_id|email>     - Unblock an account
  admin list-admins                 - List all administrators`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}
	if err := run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeLastAdmin {
			log.Fatalf("Refused: %s", appErr.Message)
		}
		log.Fatal(err)
	}
}

func run(ctx context.Context, command string, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	users := repository.NewUserRepository(db)
	svc := service.NewUserService(users, repository.NewUserDataRepository(db), service.NewAdminGuard(users), cfg.PageSize)

	if command == "list-admins" {
		return listAdmins(ctx, users)
	}

	if len(args) < 1 {
		return fmt.Errorf("%s requires a user id or email\n%s", command, usage)
	}
	user, err := lookup(ctx, users, args[0])
	if err != nil {
		return err
	}

	switch command {
	case "promote":
		err = svc.SetAdmin(ctx, user, true)
	case "demote":
		err = svc.SetAdmin(ctx, user, false)
	case "block":
		err = svc.SetBlocked(ctx, user, true)
	case "unblock":
		err = svc.SetBlocked(ctx, user, false)
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s (ID: %d) admin=%v blocked=%v\n", command, user.Email, user.ID, user.IsAdmin(), user.IsBlocked())
	return nil
}

func lookup(ctx context.Context, users repository.UserRepository, ref string) (*models.User, error) {
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		return users.GetByID(ctx, uint(id))
	}
	user, err := users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(ref)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s not found", ref)
	}
	return user, nil
}

func listAdmins(ctx context.Context, users repository.UserRepository) error {
	admins, err := users.ListAdmins(ctx)
	if err != nil {
		return fmt.Errorf("fetch admins: %w", err)
	}
	if len(admins) == 0 {
		fmt.Println("No admins found")
		return nil
	}
	for _, admin := range admins {
		fmt.Printf("ID: %d | Email: %s | Blocked: %v\n", admin.ID, admin.Email, admin.IsBlocked())
	}
	return nil
}
