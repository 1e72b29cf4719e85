package logger

import (
	"log/slog"
	"os"
	"strings"
)

type Logger struct {
	*slog.Logger
}

func New(logLevel string) *Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLogLevel(logLevel),
		AddSource: logLevel == "debug",
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)

	return &Logger{
		Logger: slog.New(handler),
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", component),
	}
}

func (l *Logger) WithFields(fields ...interface{}) *Logger {
	return &Logger{
		Logger: l.Logger.With(fields...),
	}
}

func (l *Logger) RouteApplied(iface, gateway string) {
	l.Info("Default route applied",
		slog.String("interface", iface),
		slog.String("gateway", gateway))
}

func (l *Logger) RouteCleared() {
	l.Info("Default route cleared")
}

func (l *Logger) RouteRollback(iface, gateway string, err error) {
	if err != nil {
		l.Warn("Failed to restore previous default route",
			slog.String("interface", iface),
			slog.String("gateway", gateway),
			slog.Any("error", err))
		return
	}
	l.Info("Previous default route restored",
		slog.String("interface", iface),
		slog.String("gateway", gateway))
}

func (l *Logger) CellularSignal(name string, up bool) {
	l.Info("Cellular signal received",
		slog.String("interface", name),
		slog.Bool("up", up))
}

func (l *Logger) ServiceStart(version, pid string) {
	l.Info("Service starting",
		slog.String("version", version),
		slog.String("pid", pid))
}

func (l *Logger) ServiceStop() {
	l.Info("Service stopping")
}

func (l *Logger) ConfigLoaded(file string, hasDefault bool, defaultIface string) {
	l.Info("Route configuration loaded",
		slog.String("config_file", file),
		slog.Bool("has_default", hasDefault),
		slog.String("default_interface", defaultIface))
}

func (l *Logger) MonitorStart(interval string) {
	l.Info("Link monitor started",
		slog.String("poll_interval", interval))
}

func (l *Logger) MonitorStop() {
	l.Info("Link monitor stopped")
}

func (l *Logger) LinkChange(iface string, up bool) {
	l.Info("Link state changed",
		slog.String("interface", iface),
		slog.Bool("up", up))
}
