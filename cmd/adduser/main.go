// Command adduser creates a user account from the terminal. It goes through
// the same service path as the HTTP API, so validation, password hashing,
// and duplicate detection all apply.
//
// Usage:
//
//	adduser -d postgres://... -u alice
//
// The password is prompted twice without echo.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/avolkov/authgate/internal/common"
	"github.com/avolkov/authgate/internal/flagx"
	"github.com/avolkov/authgate/internal/server/config"
	"github.com/avolkov/authgate/internal/server/repositories/repomanager"
	"github.com/avolkov/authgate/internal/server/services"
	"github.com/avolkov/authgate/internal/server/tokens"
	"golang.org/x/term"
)

// readPassword is a seam for term.ReadPassword.
var readPassword = term.ReadPassword

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	first, err := readPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}

	fmt.Print("Password (again): ")
	second, err := readPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

func parseUsername() string {
	var username string

	args := flagx.FilterArgs(os.Args[1:], []string{"-u", "-username"})

	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.StringVar(&username, "username", "", "username to create")
	fs.StringVar(&username, "u", "", "username to create (short)")
	_ = fs.Parse(args)

	return username
}

func run(ctx context.Context) error {
	cfg := config.LoadConfig()

	username := parseUsername()
	if username == "" {
		return errors.New("username is required (-u)")
	}

	password, err := promptPassword()
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	svc := services.NewAuthService(db, rm, tokens.NewJWTIssuer(cfg))

	user, err := svc.CreateUser(ctx, username, password)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return fmt.Errorf("user %q already exists", username)
		}
		return err
	}

	fmt.Printf("created user %s (id %s)\n", user.UserName, user.ID)
	return nil
}

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatal(err)
	}
}
