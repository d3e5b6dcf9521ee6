// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package main is the entry point for the scan orchestrator server.
// It initializes all dependencies, configures the server, and starts the HTTP service.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/clamguard/backend/internal/clamav"
	"github.com/clamguard/backend/internal/handler"
	"github.com/clamguard/backend/internal/history"
	"github.com/clamguard/backend/internal/pkg/logger"
	"github.com/clamguard/backend/internal/quarantine"
	"github.com/clamguard/backend/internal/router"
	"github.com/clamguard/backend/internal/scanengine"
	"github.com/clamguard/backend/internal/scanservice"
	"github.com/clamguard/backend/internal/types"
	"github.com/clamguard/backend/internal/update"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd is the root command for the CLI application.
var rootCmd = &cobra.Command{
	Use:   "clamguard-server",
	Short: "ClamGuard scan orchestrator - on-demand antivirus daemon with an HTTP control plane",
	Long:  `A long-lived service that owns a ClamAV engine instance, runs filesystem scans, and exposes an HTTP control plane.`,
	Run:   runServer,
}

// init initializes command-line flags and environment variable bindings.
func init() {
	rootCmd.Flags().String("host", "0.0.0.0", "Server host")
	rootCmd.Flags().IntP("port", "p", 8080, "Server port")
	rootCmd.Flags().StringSlice("cors-allowed-origins", []string{"*"}, "CORS allowed origins")

	rootCmd.Flags().String("app-home", "/lzcapp", "Application home directory")
	rootCmd.Flags().String("data-roots", "/lzcapp/var/data", "Colon-separated data roots, first wins")
	rootCmd.Flags().String("config-dir", "/lzcapp/var/config", "Directory holding the settings file")
	rootCmd.Flags().String("var-dir", "/lzcapp/var", "Directory holding the history database and vault")
	rootCmd.Flags().String("temp-dir", "/tmp", "Scratch directory for transient work")

	rootCmd.Flags().Int("quarantine-retention-days", 30, "Days to retain a quarantined file (0 disables cleanup)")
	rootCmd.Flags().String("freshclam-path", "freshclam", "Path to the freshclam binary (stored in the config only; the updater always runs \"freshclam\" from PATH)")

	viper.BindPFlags(rootCmd.Flags())

	// Set environment variable prefix to "CLAMGUARD"
	viper.SetEnvPrefix("CLAMGUARD")
	viper.AutomaticEnv()
	// Replace hyphens with underscores in environment variable names
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

// runServer is the main server execution function.
func runServer(cmd *cobra.Command, args []string) {
	paths := types.NewPathConfig(
		viper.GetString("app-home"),
		viper.GetString("data-roots"),
		viper.GetString("config-dir"),
		viper.GetString("var-dir"),
		viper.GetString("temp-dir"),
	)

	cfg := &types.Config{
		Server: types.ServerConfig{
			Host: viper.GetString("host"),
			Port: viper.GetInt("port"),
		},
		CORS: types.CORSConfig{
			AllowedOrigins: viper.GetStringSlice("cors-allowed-origins"),
		},
		Paths: paths,
		Quarantine: types.QuarantineConfig{
			RetentionDays: viper.GetInt("quarantine-retention-days"),
		},
		Update: types.UpdateConfig{
			FreshclamPath: viper.GetString("freshclam-path"),
		},
	}

	log := logger.New()

	log.Info("Starting ClamGuard scan orchestrator")
	log.Info("=================================")
	log.Info("Signature dir: %s", cfg.Paths.SignatureDir)
	log.Info("Vault dir: %s", cfg.Paths.VaultDir)
	log.Info("History DB: %s", cfg.Paths.HistoryDB)
	log.Info("Settings file: %s", cfg.Paths.SettingsFile)

	store, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		log.Error("Failed to open history store: %v", err)
		return
	}

	mgr := clamav.NewManager(cfg.Paths.SignatureDir, "", clamav.NewNative)
	if err := mgr.Initialize(); err != nil {
		log.Error("Engine initialization failed, starting in degraded state: %v", err)
	}

	engine := scanengine.New(mgr)
	defer engine.Shutdown()

	vault := quarantine.New(cfg.Paths.VaultDir)

	scanSvc := scanservice.New(engine, store, vault, cfg.Quarantine.RetentionDays)
	if err := scanSvc.Start(); err != nil {
		log.Error("Failed to start scan service: %v", err)
		return
	}
	defer scanSvc.Stop()

	updater := update.New(update.NewExecutor(), cfg.Paths.SignatureDir, store)

	statusHandler := handler.NewStatusHandler(mgr, scanSvc, cfg.Paths.SignatureDir, log)
	scanHandler := handler.NewScanHandler(scanSvc, store, log)
	updateHandler := handler.NewUpdateHandler(updater, store, cfg.Paths.SignatureDir, log)
	threatHandler := handler.NewThreatHandler(store, vault, log)
	quarantineHandler := handler.NewQuarantineHandler(vault, store, log)
	configHandler := handler.NewConfigHandler(cfg.Paths.SettingsFile, log)

	r := router.New(statusHandler, scanHandler, updateHandler, threatHandler, quarantineHandler, configHandler)
	ginEngine := r.Setup(cfg)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("=================================")
	log.Info("Server listening on %s", addr)
	log.Info("Press Ctrl+C to stop")

	go func() {
		if err := ginEngine.Run(addr); err != nil {
			log.Error("Server failed: %v", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	log.Info("Shutting down server...")
	log.Info("Goodbye!")
}

// main is the application entry point.
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
