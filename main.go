// main.go
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/vitrinelabs/vitrine/internal/actor"
	"github.com/vitrinelabs/vitrine/internal/config"
	"github.com/vitrinelabs/vitrine/internal/editor"
	"github.com/vitrinelabs/vitrine/internal/files"
	"github.com/vitrinelabs/vitrine/internal/preview"
	"github.com/vitrinelabs/vitrine/internal/storage"
	"github.com/vitrinelabs/vitrine/internal/util"
	"github.com/vitrinelabs/vitrine/internal/viewer"
)

var (
	cfgPath  = flag.String("config", "vitrine.json", "Path to the config file")
	showHelp = flag.Bool("h", false, "Show help")
	version  = flag.Bool("version", false, "Show version")
)

// appVersion is set at build time via -ldflags "-X main.appVersion=x.y.z"
var appVersion = "dev"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("Vitrine v%s\n", appVersion)
		return
	}
	if *showHelp {
		showUsage()
		return
	}

	absCfg, err := filepath.Abs(*cfgPath)
	if err != nil {
		log.Fatalf("Invalid config path: %v", err)
	}
	cfg, created, err := config.Ensure(absCfg)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if created {
		log.Printf("MAIN: wrote default config to %s", absCfg)
	}

	baseDir := filepath.Dir(absCfg)
	dataDir := util.ResolvePath(baseDir, cfg.Paths.DataDir)
	uploadsDir := util.ResolvePath(baseDir, cfg.Paths.UploadsDir)

	db, err := storage.Open(dataDir)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fileStore, err := files.NewDiskStore(uploadsDir, "/uploads")
	if err != nil {
		log.Fatalf("Failed to prepare uploads directory: %v", err)
	}

	actors := actor.NewManager(db, time.Duration(cfg.Session.TTLHours)*time.Hour)
	sessions := editor.NewManager()
	sessions.SetAttachPolicy(preview.AttachPolicy{
		Interval: time.Duration(cfg.Preview.AttachRetryMS) * time.Millisecond,
		MaxTries: cfg.Preview.AttachRetryMax,
	})
	defer sessions.CloseAll()

	assetsDir := ""
	if cfg.Dev.WatchAssets {
		assetsDir = util.ResolvePath(baseDir, cfg.Dev.AssetsDir)
	}

	printBanner(absCfg, dataDir, cfg)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		sessions.CloseAll()
		db.Close()
		os.Exit(0)
	}()

	if err := viewer.Start(cfg.Server.HTTPAddr, viewer.Viewer{
		DB:         db,
		Actors:     actors,
		Sessions:   sessions,
		Files:      fileStore,
		BaseURL:    cfg.Server.BaseURL,
		CookieName: cfg.Session.CookieName,
		DemoData:   cfg.Preview.DemoData,
		AssetsDir:  assetsDir,
	}); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func showUsage() {
	fmt.Println("Vitrine - storefront builder with a live theme editor")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  vitrine [-config path]    Run the server")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -config   Path to the config file (default vitrine.json,")
	fmt.Println("            created with defaults when missing)")
	fmt.Println("  -h        Show this help message")
	fmt.Println("  -version  Show version information")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # First run, writes vitrine.json and data/ next to it")
	fmt.Println("  vitrine")
	fmt.Println()
	fmt.Println("  # Run against an existing install")
	fmt.Println("  vitrine -config /srv/vitrine/vitrine.json")
}

func printBanner(cfgPath, dataDir string, cfg config.Config) {
	fmt.Println("Vitrine server")
	fmt.Printf("Config File: %s\n", cfgPath)
	fmt.Printf("Data Dir:    %s\n", dataDir)

	addr := cfg.Server.HTTPAddr
	if addr[0] == ':' {
		addr = "http://127.0.0.1" + addr
	} else {
		addr = "http://" + addr
	}
	fmt.Printf("Listening:   %s\n", addr)
	if cfg.Server.BaseURL != "" {
		fmt.Printf("Base URL:    %s\n", cfg.Server.BaseURL)
	}
	fmt.Println("Starting... (Press Ctrl+C to stop)")
	fmt.Println()
}
