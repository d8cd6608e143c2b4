package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/theme"
	"github.com/tartampluch/go-partners/internal/appearance"
	"github.com/tartampluch/go-partners/internal/catalog"
	"github.com/tartampluch/go-partners/internal/config"
	"github.com/tartampluch/go-partners/internal/partner"
	"github.com/tartampluch/go-partners/internal/server"
	"github.com/tartampluch/go-partners/internal/session"
	"github.com/tartampluch/go-partners/internal/storage"
	"github.com/tartampluch/go-partners/internal/ui"
)

func main() {
	os.Exit(runMain())
}

// runMain returns the exit code instead of exiting so that defers run.
func runMain() int {
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	backend := flag.String(config.FlagStorage, config.DefaultBackend, config.FlagDescStorage)
	dbPath := flag.String(config.FlagDBPath, "", config.FlagDescDBPath)
	flag.Parse()

	if *showVersion {
		printVersion(os.Stdout)
		return config.ExitCodeSuccess
	}

	if logFile := setupLogging(*debugMode); logFile != nil {
		defer func() { _ = logFile.Close() }()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo(*backend)

	if err := run(ctx, *backend, *dbPath); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run opens the partner store, wires the services and blocks in the UI loop.
func run(ctx context.Context, backend, dbPath string) (err error) {
	a := app.NewWithID(config.AppID)

	a.Preferences().SetString(config.PrefLastRun, config.Version)

	if backend == config.BackendSQLite && dbPath == "" {
		if dbPath, err = defaultDBPath(); err != nil {
			return err
		}
	}
	kv, closer, err := storage.Open(backend, a.Preferences(), dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closer.Close(); cerr != nil {
			slog.Error(config.ErrStorageClose, config.LogKeyComponent, config.CompMain, config.LogKeyError, cerr)
		}
	}()
	slog.Info(config.MsgStorageOpen,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyBackend, backend)

	store := partner.NewStore(kv)
	defer func() {
		if cerr := store.Close(); cerr != nil {
			slog.Error(config.ErrStorageClose, config.LogKeyComponent, config.CompMain, config.LogKeyError, cerr)
		}
	}()
	store.Load(ctx)

	look := appearance.NewController(kv)
	look.Load(ctx, a.Settings().ThemeVariant() == theme.VariantDark)
	a.Settings().SetTheme(look.Theme())

	sess := session.New(store, look, catalog.New())
	port := a.Preferences().StringWithFallback(config.PrefServerPort, config.DefaultPort)
	gui := ui.NewPartnersApp(a, ctx, sess, server.NewFeedServer(port))

	// SIGINT/SIGTERM close the UI, which unwinds the defers above.
	go func() {
		<-ctx.Done()
		slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
		a.Quit()
	}()

	// Blocks until the partners window closes.
	gui.Run()
	return nil
}

// appDir returns <base>/<AppID>, creating it user-private.
func appDir(base func() (string, error), errMsg string) (string, error) {
	root, err := base()
	if err != nil {
		return "", fmt.Errorf("%s: %w", errMsg, err)
	}
	dir := filepath.Join(root, config.AppID)
	if err := os.MkdirAll(dir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}
	return dir, nil
}

// defaultDBPath places the SQLite file next to the other user settings.
func defaultDBPath() (string, error) {
	dir, err := appDir(os.UserConfigDir, config.ErrConfigDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, config.DBFileName), nil
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

func logStartupInfo(backend string) {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyBackend, backend,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging installs a JSON slog handler writing to stdout and, when the
// cache directory is usable, to a log file that is truncated on each start.
// The returned file is nil when only stdout is used.
func setupLogging(debugMode bool) *os.File {
	out := io.Writer(os.Stdout)
	logFile, err := openLogFile()
	if err != nil {
		fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, config.LogFileName, err)
	} else {
		out = io.MultiWriter(os.Stdout, logFile)
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	})))
	return logFile
}

func openLogFile() (*os.File, error) {
	dir, err := appDir(os.UserCacheDir, config.ErrCacheDir)
	if err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, config.LogFileName), os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
}
