package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Joseda-hg/lazyreminder/internal/config"
	"github.com/Joseda-hg/lazyreminder/internal/db"
	"github.com/Joseda-hg/lazyreminder/internal/grocery"
	"github.com/Joseda-hg/lazyreminder/internal/logging"
	"github.com/Joseda-hg/lazyreminder/internal/tasks"
	"github.com/Joseda-hg/lazyreminder/internal/tui"
	"github.com/Joseda-hg/lazyreminder/internal/web"
)

func main() {
	configPathFlag := flag.String("config", "", "config file path")
	tasksPathFlag := flag.String("tasks", "", "task file path")
	dbPathFlag := flag.String("db", "", "sqlite snapshot db path")
	webFlag := flag.Bool("web", false, "enable web server")
	webOnlyFlag := flag.Bool("web-only", false, "run web server only")
	portFlag := flag.Int("port", 0, "web server port")
	logLevelFlag := flag.String("log-level", "", "log level (debug, info, warn, error)")
	flag.Parse()

	bootLogger := logging.New(os.Stderr, "info", "text")

	cfgPath, err := resolveConfigPath(*configPathFlag)
	if err != nil {
		bootLogger.Fatal("resolve config path", "err", err)
	}

	stored, cfg, err := config.Layered(cfgPath, func(c *config.Config) {
		if *tasksPathFlag != "" {
			c.TasksPath = *tasksPathFlag
		}
		if *dbPathFlag != "" {
			c.DBPath = *dbPathFlag
		}
		if *webFlag || *webOnlyFlag {
			c.WebEnabled = true
		}
		if *portFlag != 0 {
			c.WebPort = *portFlag
		}
		if *logLevelFlag != "" {
			c.LogLevel = *logLevelFlag
		}
	}, ".env")
	if err != nil {
		bootLogger.Fatal("load config", "path", cfgPath, "err", err)
	}

	if err := config.Save(cfgPath, stored); err != nil {
		bootLogger.Fatal("save config", "path", cfgPath, "err", err)
	}

	logger, closeLog, err := openLogger(cfg, *webOnlyFlag)
	if err != nil {
		bootLogger.Fatal("open log", "path", cfg.LogPath, "err", err)
	}
	defer closeLog.Close()

	var snapshots *db.Store
	if cfg.Snapshots || cfg.WebEnabled {
		snapshots, err = openStore(cfg.DBPath)
		if err != nil {
			logger.Error("open snapshot db", "path", cfg.DBPath, "err", err)
			if *webOnlyFlag {
				os.Exit(1)
			}
		}
	}

	if cfg.WebEnabled && snapshots != nil {
		addr := fmt.Sprintf(":%d", cfg.WebPort)
		handler := web.NewServer(snapshots, logger).Handler()
		if *webOnlyFlag {
			logger.Info("web server running", "url", "http://localhost"+addr)
			if err := http.ListenAndServe(addr, handler); err != nil {
				logger.Error("web server error", "err", err)
				os.Exit(1)
			}
			return
		}

		go func() {
			logger.Info("web server running", "url", "http://localhost"+addr)
			if err := http.ListenAndServe(addr, handler); err != nil {
				logger.Error("web server error", "err", err)
			}
		}()
	}

	if *webOnlyFlag {
		return
	}

	opts, err := loadCollections(cfg, logger)
	if err != nil {
		logger.Error("load collections", "err", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cfg.Snapshots {
		opts.Snapshots = snapshots
		seedSnapshot(snapshots, opts, logger)
	}

	if err := tui.Run(opts); err != nil {
		logger.Error("ui stopped", "err", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}

// openLogger writes to stderr in web-only mode and to the log file while the
// terminal belongs to the UI.
func openLogger(cfg config.Config, webOnly bool) (*log.Logger, io.Closer, error) {
	if webOnly {
		return logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat), io.NopCloser(nil), nil
	}
	if err := config.EnsureDir(cfg.LogPath); err != nil {
		return nil, nil, err
	}
	return logging.OpenFile(cfg.LogPath, cfg.LogLevel, cfg.LogFormat)
}

func openStore(dbPath string) (*db.Store, error) {
	if dbPath != ":memory:" {
		if err := config.EnsureDir(dbPath); err != nil {
			return nil, err
		}
	}

	sqlDB, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}

	return db.NewStore(sqlDB), nil
}

// loadCollections loads the three default files, recreating any that are
// missing. A task file that fails to load is left on disk and the UI starts
// with an untitled list so it can not be overwritten by accident.
func loadCollections(cfg config.Config, logger *log.Logger) (tui.Options, error) {
	taskStore := tasks.NewStore()
	types := grocery.NewTypeManager()
	items := grocery.NewItemManager()

	var recovered, notes []string
	tasksPath := cfg.TasksPath
	if ok, err := taskStore.LoadDefault(cfg.TasksPath); err != nil {
		var loadErr *tasks.LoadError
		if !errors.As(err, &loadErr) {
			return tui.Options{}, err
		}
		logger.Warn("task file left untouched", "path", cfg.TasksPath, "err", err)
		notes = append(notes, fmt.Sprintf("could not load %s: %v; started an untitled list", filepath.Base(cfg.TasksPath), err))
		taskStore = tasks.NewStore()
		tasksPath = ""
	} else if ok {
		recovered = append(recovered, filepath.Base(cfg.TasksPath))
	}
	if ok, err := types.LoadDefault(cfg.GroceryTypesPath); err != nil {
		return tui.Options{}, err
	} else if ok {
		recovered = append(recovered, filepath.Base(cfg.GroceryTypesPath))
	}
	if ok, err := items.LoadDefault(cfg.GroceryListPath); err != nil {
		return tui.Options{}, err
	} else if ok {
		recovered = append(recovered, filepath.Base(cfg.GroceryListPath))
	}

	if len(recovered) > 0 {
		notes = append(notes, "Recreated "+strings.Join(recovered, ", "))
		logger.Warn("recreated default files", "files", recovered)
	}
	logger.Info("loaded collections", "tasks", taskStore.Len(), "types", types.Len(), "items", items.Len())

	return tui.Options{
		Tasks:            taskStore,
		Types:            types,
		Items:            items,
		TasksPath:        tasksPath,
		GroceryTypesPath: cfg.GroceryTypesPath,
		GroceryListPath:  cfg.GroceryListPath,
		Logger:           logger,
		Status:           strings.Join(notes, "; "),
	}, nil
}

// seedSnapshot records the collections as loaded at startup so the web view
// has something to show before the first save.
func seedSnapshot(store *db.Store, opts tui.Options, logger *log.Logger) {
	if store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// An untitled task list means the file failed to load; keep the last
	// good snapshot.
	if opts.TasksPath != "" {
		if err := store.SaveTasks(ctx, opts.TasksPath, opts.Tasks.Tasks()); err != nil {
			logger.Warn("seed snapshot", "collection", db.CollectionTasks, "err", err)
		}
	}
	if err := store.SaveGroceryTypes(ctx, opts.GroceryTypesPath, opts.Types.Types()); err != nil {
		logger.Warn("seed snapshot", "collection", db.CollectionGroceryTypes, "err", err)
	}
	if err := store.SaveGroceryItems(ctx, opts.GroceryListPath, opts.Items.Items()); err != nil {
		logger.Warn("seed snapshot", "collection", db.CollectionGroceryItems, "err", err)
	}
}
