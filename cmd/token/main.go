// Command token signs an API bearer token for a treasurer or a client app,
// using AUTH_JWT_SECRET from the environment.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/infaq/internal/config"
	"github.com/MrJamesThe3rd/infaq/internal/http/auth"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := run(os.Args[1:], cfg.Auth.JWTSecret, os.Stdout); err != nil {
		slog.Error("failed to issue token", "error", err)
		os.Exit(1)
	}
}

func run(args []string, secret string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	id := fs.String("id", "", "actor id, stored as created_by")
	name := fs.String("name", "", "actor display name")
	ttl := fs.Duration("ttl", 30*24*time.Hour, "token lifetime")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *id == "" {
		return errors.New("-id is required")
	}

	if *ttl <= 0 {
		return errors.New("-ttl must be positive")
	}

	token, err := auth.New(secret, auth.Actor{}).Issue(auth.Actor{ID: *id, Name: *name}, *ttl)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, token)

	return err
}
