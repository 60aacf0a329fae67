// authctl registers an account directly against the database, for operators
// seeding an environment. It goes through the same validation and hashing
// path as the HTTP API.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/authcore/authcore/internal/passwd"
	"github.com/authcore/authcore/internal/server/models"
	"github.com/authcore/authcore/internal/server/repositories/repomanager"
	"github.com/authcore/authcore/internal/validate"
	"golang.org/x/term"
)

func main() {

	dsn := flag.String("d", "", "PostgreSQL DSN")
	username := flag.String("u", "", "username")
	email := flag.String("e", "", "email")
	firstName := flag.String("f", "", "first name")
	lastName := flag.String("l", "", "last name")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("database DSN is required (-d)")
	}

	password, confirm, err := readPasswords()
	if err != nil {
		log.Fatalf("reading password: %v", err)
	}

	if err := validate.Registration(validate.RegistrationInput{
		Username:        *username,
		Email:           *email,
		FirstName:       *firstName,
		LastName:        *lastName,
		Password:        password,
		ConfirmPassword: confirm,
	}); err != nil {
		log.Fatalf("invalid input: %v", err)
	}

	hasher, err := passwd.NewHasher(nil)
	if err != nil {
		log.Fatalf("hasher init: %v", err)
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		log.Fatalf("hashing password: %v", err)
	}

	ctx := context.Background()

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatalf("running migrations: %v", err)
	}

	account, err := rm.Accounts(db).Create(ctx, &models.Account{
		Username:     *username,
		Email:        *email,
		FirstName:    *firstName,
		LastName:     *lastName,
		PasswordHash: hash,
	})
	if err != nil {
		log.Fatalf("creating account: %v", err)
	}

	fmt.Printf("created account %s (%s)\n", account.ID, account.Username)
}

func readPasswords() (string, string, error) {
	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", "", err
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", "", err
	}

	return string(password), string(confirm), nil
}
