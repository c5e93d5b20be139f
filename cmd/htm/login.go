package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/false0brian/hometypemap/internal/prefstore"
	"github.com/false0brian/hometypemap/pkg/api"
)

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// runLoginWizard walks through sign-in or sign-up, exchanges credentials
// for a session token, and persists it for subsequent runs.
func runLoginWizard(client *api.Client, store *prefstore.Store) error {
	var (
		mode     = "login"
		email    string
		password string
		name     string
	)

	form := newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Account").
				Options(
					huh.NewOption("Sign in", "login"),
					huh.NewOption("Create an account", "signup"),
				).
				Value(&mode),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Validate(func(s string) error {
					if !strings.Contains(s, "@") {
						return errors.New("enter a valid email address")
					}
					return nil
				}).
				Value(&email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Validate(func(s string) error {
					if len(s) < 8 {
						return errors.New("password must be at least 8 characters")
					}
					return nil
				}).
				Value(&password),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	if mode == "signup" {
		nameForm := newForm(huh.NewGroup(
			huh.NewInput().Title("Display name").Value(&name),
		))
		if err := nameForm.Run(); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var (
		session api.Session
		err     error
	)
	if mode == "signup" {
		session, err = client.Signup(ctx, email, password, name)
	} else {
		session, err = client.Login(ctx, email, password)
	}
	if err != nil {
		if errors.Is(err, api.ErrUnauthenticated) {
			return errors.New("email or password rejected")
		}
		return err
	}

	if err := store.SetAuthToken(session.Token); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}
	who := session.Name
	if who == "" {
		who = email
	}
	fmt.Printf("Signed in as %s.\n", who)
	return nil
}
