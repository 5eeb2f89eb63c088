package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jstrand/bt/internal/api"
	"github.com/jstrand/bt/internal/serverdb"
)

func runAdmin(args []string) {
	if len(args) == 0 {
		printAdminUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "create-user":
		runAdminCreateUser(args[1:])
	case "create-key":
		runAdminCreateKey(args[1:])
	case "set-premium":
		runAdminSetPremium(args[1:])
	case "list-users":
		runAdminListUsers(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown admin command: %s\n", args[0])
		printAdminUsage()
		os.Exit(1)
	}
}

func printAdminUsage() {
	fmt.Fprintln(os.Stderr, `Usage: bt-sync admin <command> [flags]

Commands:
  create-user  Create a user account
  create-key   Create an API key for a user
  set-premium  Set or clear a user's premium tier
  list-users   List all registered users`)
}

func openDB(dbPath string) *serverdb.ServerDB {
	if dbPath == "" {
		cfg := api.LoadConfig()
		dbPath = cfg.ServerDBPath
	}
	store, err := serverdb.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: open database: %v\n", err)
		os.Exit(1)
	}
	return store
}

func runAdminCreateUser(args []string) {
	fs := flag.NewFlagSet("admin create-user", flag.ExitOnError)
	email := fs.String("email", "", "user email address")
	dbPath := fs.String("db", "", "path to server.db (default: from BT_SYNC_DB_PATH or ./data/server.db)")
	fs.Parse(args)

	if *email == "" {
		fmt.Fprintln(os.Stderr, "error: --email is required")
		fs.Usage()
		os.Exit(1)
	}

	store := openDB(*dbPath)
	defer store.Close()

	u, err := store.CreateUser(*email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("created user %s (%s)\n", u.ID, u.Email)
}

func runAdminCreateKey(args []string) {
	fs := flag.NewFlagSet("admin create-key", flag.ExitOnError)
	email := fs.String("email", "", "user email address")
	name := fs.String("name", "admin-issued", "key name")
	dbPath := fs.String("db", "", "path to server.db (default: from BT_SYNC_DB_PATH or ./data/server.db)")
	fs.Parse(args)

	if *email == "" {
		fmt.Fprintln(os.Stderr, "error: --email is required")
		fs.Usage()
		os.Exit(1)
	}

	store := openDB(*dbPath)
	defer store.Close()

	u, err := store.GetUserByEmail(*email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if u == nil {
		fmt.Fprintf(os.Stderr, "error: no user with email %s\n", *email)
		os.Exit(1)
	}

	plaintext, ak, err := store.GenerateAPIKey(u.ID, *name, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("created key %s for %s\n", ak.ID, u.Email)
	fmt.Printf("api key (shown once): %s\n", plaintext)
}

func runAdminSetPremium(args []string) {
	fs := flag.NewFlagSet("admin set-premium", flag.ExitOnError)
	email := fs.String("email", "", "user email address")
	premium := fs.Bool("premium", true, "premium tier on or off")
	dbPath := fs.String("db", "", "path to server.db (default: from BT_SYNC_DB_PATH or ./data/server.db)")
	fs.Parse(args)

	if *email == "" {
		fmt.Fprintln(os.Stderr, "error: --email is required")
		fs.Usage()
		os.Exit(1)
	}

	store := openDB(*dbPath)
	defer store.Close()

	u, err := store.GetUserByEmail(*email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if u == nil {
		fmt.Fprintf(os.Stderr, "error: no user with email %s\n", *email)
		os.Exit(1)
	}

	if err := store.SetPremium(u.ID, *premium); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("set premium=%v for %s\n", *premium, u.Email)
}

func runAdminListUsers(args []string) {
	fs := flag.NewFlagSet("admin list-users", flag.ExitOnError)
	dbPath := fs.String("db", "", "path to server.db (default: from BT_SYNC_DB_PATH or ./data/server.db)")
	fs.Parse(args)

	store := openDB(*dbPath)
	defer store.Close()

	users, err := store.ListUsers()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	for _, u := range users {
		tier := "free"
		if u.Premium {
			tier = "premium"
		}
		fmt.Printf("%s  %-30s %s\n", u.ID, u.Email, tier)
	}
}
