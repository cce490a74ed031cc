package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
)

// Launcher opens URLs (character portraits) in an external program
type Launcher struct {
	command string   // configured viewer command, empty for system default
	args    []string // additional arguments placed before the URL
	goos    string
	start   func(*exec.Cmd) error
	logger  *slog.Logger
}

// launchPath is one way to hand a URL to the desktop
type launchPath struct {
	command string
	args    []string // placed before the URL
}

// systemOpeners lists the default handlers to try per platform, in order
var systemOpeners = map[string][]launchPath{
	"darwin":  {{command: "open"}},
	"windows": {{command: "rundll32", args: []string{"url.dll,FileProtocolHandler"}}, {command: "cmd", args: []string{"/c", "start", ""}}},
	"linux":   {{command: "xdg-open"}, {command: "gio", args: []string{"open"}}, {command: "sensible-browser"}},
}

// NewLauncher creates a Launcher. An empty command falls back to the
// platform's default URL handler.
func NewLauncher(cfg OpenerConfig, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command: cfg.Command,
		args:    cfg.Args,
		goos:    runtime.GOOS,
		start:   func(cmd *exec.Cmd) error { return cmd.Start() },
		logger:  logger,
	}
}

// Open hands url to the configured program or the system default
func (l *Launcher) Open(url string) error {
	if url == "" {
		return errors.New("nothing to open")
	}

	// Tier 1: user configured a specific viewer
	if l.command != "" {
		l.logger.Info("opening with configured command", "command", l.command, "url", url)
		return l.tryLaunch(launchPath{command: l.command, args: l.args}, url)
	}

	// Tier 2: platform default chain
	paths, ok := systemOpeners[l.goos]
	if !ok {
		paths = systemOpeners["linux"]
	}
	var errs []error
	for _, lp := range paths {
		err := l.tryLaunch(lp, url)
		if err == nil {
			l.logger.Info("opened with system default", "os", l.goos, "command", lp.command, "url", url)
			return nil
		}
		l.logger.Debug("opener not available", "command", lp.command, "error", err)
		errs = append(errs, err)
	}
	return fmt.Errorf("no URL handler found: %w", errors.Join(errs...))
}

// tryLaunch starts the command if it exists in PATH without waiting for it
func (l *Launcher) tryLaunch(lp launchPath, url string) error {
	path, err := exec.LookPath(lp.command)
	if err != nil {
		return err
	}
	args := append(append([]string{}, lp.args...), url)
	return l.start(exec.Command(path, args...))
}
