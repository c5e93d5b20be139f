// Command htm is a terminal client for browsing geographically anchored
// renovation portfolios: a map of complexes on the left, portfolio cards
// and a floor-plan pin layer on the right.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/false0brian/hometypemap/internal/prefstore"
	"github.com/false0brian/hometypemap/pkg/api"
	"github.com/false0brian/hometypemap/pkg/config"
	"github.com/false0brian/hometypemap/pkg/debug"
	"github.com/false0brian/hometypemap/pkg/geoloc"
	"github.com/false0brian/hometypemap/pkg/ui"
	"github.com/false0brian/hometypemap/pkg/version"
	"github.com/false0brian/hometypemap/pkg/watcher"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: XDG config dir)")
	apiURL := flag.String("api", "", "Override the API base URL")
	operator := flag.Bool("operator", false, "Enable the pin editor")
	login := flag.Bool("login", false, "Sign in (or sign up) and exit")
	logout := flag.Bool("logout", false, "Clear the stored session and exit")
	versionFlag := flag.Bool("version", false, "Show version")
	debugFlag := flag.Bool("debug", false, "Write debug logs to stderr (same as HTM_DEBUG=1)")
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *debugFlag {
		debug.SetEnabled(true)
	}

	if *help {
		fmt.Println("Usage: htm [options]")
		fmt.Println("\nA map-driven browser for renovation portfolios.")
		flag.PrintDefaults()
		os.Exit(0)
	}
	if *versionFlag {
		fmt.Printf("htm %s\n", version.Version)
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *apiURL != "" {
		cfg.API.BaseURL = *apiURL
	}

	store, err := prefstore.OpenDefault(config.StateDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening preferences: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	token, err := store.AuthToken()
	if err != nil {
		debug.Log("reading stored token: %v", err)
	}
	client := api.New(cfg.API.BaseURL, api.WithToken(token))

	// os.Exit skips the deferred Close, so the short-circuit paths close
	// the store themselves before exiting.
	if *logout {
		err := store.SetAuthToken("")
		store.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing session: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Signed out.")
		os.Exit(0)
	}
	if *login {
		err := runLoginWizard(client, store)
		store.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Sign-in failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Startup work that can overlap: revalidating the stored session and
	// warming the preference reads.
	g, ctx := errgroup.WithContext(context.Background())
	if client.Authenticated() {
		g.Go(func() error {
			_, err := client.Revalidate(ctx)
			if errors.Is(err, api.ErrUnauthenticated) {
				// server rejected the token; drop it locally too
				return store.SetAuthToken("")
			}
			if errors.Is(err, api.ErrNetwork) {
				debug.Log("session revalidation deferred: %v", err)
				return nil
			}
			return err
		})
	}
	g.Go(func() error {
		_, err := store.FavoritePrefs()
		return err
	})
	if err := g.Wait(); err != nil {
		store.Close()
		fmt.Fprintf(os.Stderr, "Startup failed: %v\n", err)
		os.Exit(1)
	}

	// Live config reload: edits to the config file apply without restart.
	var w *watcher.Watcher
	cfgFile := *configPath
	if cfgFile == "" {
		cfgFile = config.ConfigPath()
	}
	if cfgFile != "" {
		if ww, err := watcher.New(cfgFile); err == nil {
			if err := ww.Start(); err == nil {
				w = ww
				defer w.Stop()
			} else {
				debug.Log("config watcher: %v", err)
			}
		} else {
			debug.Log("config watcher: %v", err)
		}
	}

	locator := geoloc.NewHTTPLocator(cfg.Locator.URL, cfg.LocatorEnabled())

	m := ui.NewModel(ui.Options{
		Fetcher:    client,
		Locator:    locator,
		Prefs:      store,
		Config:     cfg,
		ConfigPath: cfgFile,
		Watcher:    w,
		Operator:   *operator,
	})

	if err := runTUIProgram(m); err != nil {
		if w != nil {
			w.Stop()
		}
		store.Close()
		fmt.Fprintf(os.Stderr, "Error running htm: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(filepath.Clean(path))
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set HTM_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("HTM_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	return err
}
