package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sanji-IO/sanji-bundle-routes/internal/config"
	"github.com/Sanji-IO/sanji-bundle-routes/internal/daemon"
	"github.com/Sanji-IO/sanji-bundle-routes/internal/logger"
	"github.com/Sanji-IO/sanji-bundle-routes/internal/netprims"
	"github.com/Sanji-IO/sanji-bundle-routes/internal/routes"
	"github.com/Sanji-IO/sanji-bundle-routes/internal/store"
)

var (
	configFile  string
	silentMode  bool
	verboseMode bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "routed",
		Short: "Default route manager with cellular uplink priority",
		Long:  `Manages the host default route across multiple interfaces, giving a cellular uplink exclusive default-route rights while it is connected.`,
		Run:   runDaemon,
	}

	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the route manager daemon",
		Long:  `Run the route manager as a foreground daemon with the HTTP control API and link monitor.`,
		Run:   runDaemon,
	}

	applyCmd := &cobra.Command{
		Use:   "apply <interface> [gateway]",
		Short: "Set the default route once",
		Long:  `Set the default route to the given interface (and optional gateway) and persist it, then exit.`,
		Args:  cobra.RangeArgs(1, 2),
		Run:   applyDefault,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the default route",
		Long:  `Remove the default route and drop the persisted record.`,
		Run:   clearDefault,
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show route and service status",
		Long:  `Show the persisted default route, the interfaces currently up, and the systemd service state.`,
		Run:   showStatus,
	}

	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install as system service",
		Long:  `Install the route manager as a systemd service.`,
		Run:   installService,
	}

	uninstallCmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Uninstall system service",
		Long:  `Uninstall the route manager systemd service.`,
		Run:   uninstallService,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Show version and system details.`,
		Run:   showVersion,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&silentMode, "silent", "s", false, "Silent mode (no output)")
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false, "Verbose mode (debug level logging)")

	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if silentMode {
		cfg.SilentMode = true
	}
	if verboseMode {
		cfg.LogLevel = "debug"
	}
	return cfg
}

// newLogger respects silent mode by raising the level past everything the
// one-shot commands emit.
func newLogger(cfg *config.Config) *logger.Logger {
	if cfg.SilentMode {
		return logger.New("error")
	}
	return logger.New(cfg.LogLevel)
}

// newSwitcher builds the one-shot core stack for CLI commands.
func newSwitcher(cfg *config.Config, log *logger.Logger) *routes.Switcher {
	st, err := store.Open(cfg.DataDir, log)
	if err != nil {
		log.Error("Failed to open route store", "error", err)
		os.Exit(1)
	}

	prims, err := netprims.New()
	if err != nil {
		log.Error("Failed to create network primitives", "error", err)
		os.Exit(1)
	}

	return routes.NewSwitcher(prims, st, routes.NewRegistry(), log)
}

func runDaemon(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	log := logger.New(cfg.LogLevel)

	sm, err := daemon.NewServiceManager(cfg, log)
	if err != nil {
		log.Error("Failed to create service manager", "error", err)
		os.Exit(1)
	}

	if err := sm.Start(); err != nil {
		log.Error("Failed to start service", "error", err)
		os.Exit(1)
	}

	if err := sm.Wait(); err != nil {
		log.Error("Service error", "error", err)
		os.Exit(1)
	}
}

func applyDefault(_ *cobra.Command, args []string) {
	cfg := loadConfig()
	log := newLogger(cfg)

	req := routes.Request{Interface: args[0]}
	if len(args) > 1 {
		req.Gateway = args[1]
	}

	switcher := newSwitcher(cfg, log)
	persisted, err := switcher.SetDefault(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set default route: %v\n", err)
		os.Exit(1)
	}

	if !cfg.SilentMode {
		fmt.Printf("Default route set to %s\n", persisted.Default)
	}
}

func clearDefault(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	log := newLogger(cfg)

	switcher := newSwitcher(cfg, log)
	if _, err := switcher.SetDefault(routes.Request{}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to clear default route: %v\n", err)
		os.Exit(1)
	}

	if !cfg.SilentMode {
		fmt.Println("Default route cleared")
	}
}

func showStatus(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	log := logger.New("error")

	switcher := newSwitcher(cfg, log)

	current := switcher.CurrentDefault()
	if current.Interface == "" {
		fmt.Println("Default route: none")
	} else if current.Gateway == "" {
		fmt.Printf("Default route: %s\n", current.Interface)
	} else {
		fmt.Printf("Default route: %s via %s\n", current.Interface, current.Gateway)
	}

	if up, err := switcher.ActiveInterfaces(); err == nil {
		fmt.Printf("Interfaces up: %s\n", strings.Join(up, ", "))
	}

	service := daemon.NewPlatformService("", "")
	status, err := service.Status()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get service status: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Service status: %s\n", status)
	fmt.Printf("Service installed: %t\n", service.IsInstalled())
}

func installService(_ *cobra.Command, _ []string) {
	if os.Getuid() != 0 {
		fmt.Fprintf(os.Stderr, "Error: Root privileges required for installation\n")
		os.Exit(1)
	}

	execPath, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get executable path: %v\n", err)
		os.Exit(1)
	}

	configPath := "/etc/sanji/route/config.json"
	if configFile != "" {
		configPath = configFile
	}

	service := daemon.NewPlatformService(execPath, configPath)
	if err := service.Install(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to install service: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Service installed successfully (%s)\n", runtime.GOOS)
}

func uninstallService(_ *cobra.Command, _ []string) {
	if os.Getuid() != 0 {
		fmt.Fprintf(os.Stderr, "Error: Root privileges required for uninstallation\n")
		os.Exit(1)
	}

	service := daemon.NewPlatformService("", "")
	if err := service.Uninstall(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to uninstall service: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Service uninstalled successfully")
}

func showVersion(_ *cobra.Command, _ []string) {
	fmt.Printf("Sanji Route Bundle v%s\n", daemon.Version)
	fmt.Printf("Runtime: %s\n", runtime.Version())
	fmt.Printf("Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
