// Command medibook is a terminal client for the booking platform's auth
// endpoints: sign in, sign up, inspect and drop locally persisted sessions.
// One session per role can be held at a time; signing out one role leaves
// the others signed in.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/medibook/go-client/authapi"
	"github.com/medibook/go-client/client"
	"github.com/medibook/go-client/internal/config"
	"github.com/medibook/go-client/kv"
	"github.com/medibook/go-client/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := run(log); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func run(log zerolog.Logger) error {
	if len(os.Args) < 2 {
		usage()
		return errors.New("no command given")
	}

	cfg := config.New()
	manager, err := newManager(cfg, log)
	if err != nil {
		return errors.Wrap(err, "[run] newManager")
	}

	ctx := context.Background()
	args := os.Args[2:]

	switch os.Args[1] {
	case "login":
		return loginCmd(ctx, manager, args)
	case "register":
		return registerCmd(ctx, manager, args)
	case "whoami":
		return whoamiCmd(manager, args)
	case "token":
		return tokenCmd(manager, args)
	case "logout":
		return logoutCmd(manager, args)
	default:
		usage()
		return errors.Errorf("unknown command %q", os.Args[1])
	}
}

func newManager(cfg config.Config, log zerolog.Logger) (*client.Manager, error) {
	backend, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}

	store, err := session.NewStore(backend, session.WithLogger(log))
	if err != nil {
		return nil, err
	}

	api, err := authapi.New(cfg.GetAPIBaseURL(),
		authapi.WithHTTPClient(&http.Client{Timeout: cfg.GetHTTPTimeout()}),
		authapi.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	return client.NewManager(api, store, client.WithLogger(log))
}

func newBackend(cfg config.Config) (kv.KV, error) {
	switch cfg.GetStoreBackend() {
	case "memory":
		return kv.NewInMemory(), nil
	case "sqlite":
		return kv.OpenSQLite(filepath.Join(cfg.GetDataFolder(), "sessions.db"))
	case "file":
		var options []kv.FileOption
		if secret := cfg.GetStoreSecret(); secret != "" {
			options = append(options, kv.WithEncryptionSecret([]byte(secret)))
		}
		return kv.OpenFile(filepath.Join(cfg.GetDataFolder(), "sessions.json"), options...)
	default:
		return nil, errors.Errorf("unknown store backend %q", cfg.GetStoreBackend())
	}
}

func loginCmd(ctx context.Context, manager *client.Manager, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	fs.Parse(args)

	if *username == "" || *password == "" {
		return errors.New("login requires -u and -p")
	}

	sess, err := manager.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s (%s)\n", sess.FullName, sess.Role)
	return nil
}

func registerCmd(ctx context.Context, manager *client.Manager, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("u", "", "username")
	email := fs.String("e", "", "email")
	password := fs.String("p", "", "password")
	fullName := fs.String("name", "", "full name")
	phone := fs.String("phone", "", "phone number")
	role := fs.String("role", "", "role (defaults to PATIENT server-side)")
	fs.Parse(args)

	if *username == "" || *email == "" || *password == "" {
		return errors.New("register requires -u, -e and -p")
	}

	sess, err := manager.Register(ctx, authapi.RegisterRequest{
		Username: *username,
		Email:    *email,
		Password: *password,
		FullName: *fullName,
		Phone:    *phone,
		Role:     *role,
	})
	if err != nil {
		return err
	}
	fmt.Printf("registered and signed in as %s (%s)\n", sess.Username, sess.Role)
	return nil
}

func whoamiCmd(manager *client.Manager, args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	role := fs.String("role", "", "restrict to one role")
	fs.Parse(args)

	sess := manager.SessionFor(session.Role(*role))
	if sess == nil {
		fmt.Println("not signed in")
		return nil
	}
	out, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[whoamiCmd] marshal")
	}
	fmt.Println(string(out))
	return nil
}

func tokenCmd(manager *client.Manager, args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	role := fs.String("role", "", "restrict to one role")
	fs.Parse(args)

	tok := manager.TokenFor(session.Role(*role))
	if tok == "" {
		return errors.New("not signed in")
	}
	fmt.Println(tok)
	return nil
}

func logoutCmd(manager *client.Manager, args []string) error {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	role := fs.String("role", "", "sign out one role only")
	all := fs.Bool("all", false, "sign out every role")
	fs.Parse(args)

	if *all || *role == "" {
		if err := manager.LogoutAll(); err != nil {
			return err
		}
		fmt.Println("signed out of every role")
		return nil
	}
	if err := manager.Logout(session.Role(*role)); err != nil {
		return err
	}
	fmt.Printf("signed out of %s\n", session.Role(*role).Normalize())
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: medibook <command> [flags]

commands:
  login    -u <username> -p <password>
  register -u <username> -e <email> -p <password> [-name] [-phone] [-role]
  whoami   [-role ADMIN|DOCTOR|PATIENT]
  token    [-role ADMIN|DOCTOR|PATIENT]
  logout   [-role ADMIN|DOCTOR|PATIENT | -all]`)
}
