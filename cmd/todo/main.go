// Command todo is a terminal client for the todo-board service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"todo-board/internal/client"
)

func main() {
	_ = godotenv.Load()

	server := flag.String("server", envOr("TODO_SERVER", "http://localhost:8080"), "server base URL")
	email := flag.String("email", os.Getenv("TODO_EMAIL"), "account email")
	password := flag.String("password", os.Getenv("TODO_PASSWORD"), "account password")
	register := flag.Bool("register", false, "create the account before signing in")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "email and password are required (flags or TODO_EMAIL/TODO_PASSWORD)")
		os.Exit(2)
	}

	api := client.New(*server)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if *register {
		if err := api.Register(ctx, *email, *password); err != nil {
			fmt.Fprintf(os.Stderr, "register: %v\n", err)
			os.Exit(1)
		}
	} else {
		if err := api.Login(ctx, *email, *password); err != nil {
			fmt.Fprintf(os.Stderr, "login: %v\n", err)
			os.Exit(1)
		}
	}

	store := client.NewStore(api)

	p := tea.NewProgram(newModel(store), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "run ui: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
