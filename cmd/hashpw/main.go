// Command hashpw prints a bcrypt hash for a password read from the terminal.
// With -email, -usuario and -nome it also inserts the account into the
// database named by DATABASE_URL.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iamasit07/fazenda-financeiro/backend/internal/config"
	"github.com/iamasit07/fazenda-financeiro/backend/internal/domain"
	"github.com/iamasit07/fazenda-financeiro/backend/internal/repository/postgres"
	"github.com/iamasit07/fazenda-financeiro/backend/pkg/auth"
	"github.com/joho/godotenv"
	"golang.org/x/term"
)

func main() {
	var (
		nome    = flag.String("nome", "", "display name of the account to create")
		email   = flag.String("email", "", "email of the account to create")
		usuario = flag.String("usuario", "", "username of the account to create")
		force   = flag.Bool("force", false, "accept a password that fails the strength check")
	)
	flag.Parse()

	if err := run(*nome, *email, *usuario, *force); err != nil {
		fmt.Fprintln(os.Stderr, "hashpw:", err)
		os.Exit(1)
	}
}

func run(nome, email, usuario string, force bool) error {
	password, err := readPassword(os.Stdin, os.Stderr)
	if err != nil {
		return err
	}
	if password == "" {
		return errors.New("empty password")
	}
	if err := auth.ValidatePasswordStrength(password); err != nil && !force {
		return fmt.Errorf("%w (use -force to override)", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if email == "" && usuario == "" {
		fmt.Println(hash)
		return nil
	}
	if nome == "" || email == "" || usuario == "" {
		return errors.New("-nome, -email and -usuario are all required to create an account")
	}

	_ = godotenv.Load()
	dsn := config.GetEnv("DATABASE_URL", "")
	if dsn == "" {
		return errors.New("DATABASE_URL is not set")
	}

	ctx := context.Background()
	db, err := postgres.Open(ctx, dsn, postgres.PoolOptions{MaxOpenConns: 1, MaxIdleConns: 1, ConnMaxLifetimeMin: 1})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.RunMigrations(ctx, db); err != nil {
		return err
	}

	id, err := postgres.NewUserRepo(db).CreateUser(ctx, &domain.User{
		Nome:      nome,
		Email:     email,
		Usuario:   usuario,
		SenhaHash: hash,
	})
	if errors.Is(err, domain.ErrUserExists) {
		return fmt.Errorf("an account with email %q or username %q already exists", email, usuario)
	}
	if err != nil {
		return err
	}
	fmt.Printf("created user %d (%s)\n", id, email)
	return nil
}

// readPassword prompts twice on a terminal, or reads one line from a pipe.
func readPassword(in *os.File, prompt io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(prompt, "Senha: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", err
	}
	fmt.Fprint(prompt, "Confirme a senha: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
