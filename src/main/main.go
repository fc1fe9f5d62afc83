package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mouse-overlay/src/config"
	"mouse-overlay/src/display"
	"mouse-overlay/src/eventloop"
	"mouse-overlay/src/input"
	"mouse-overlay/src/logutil"
	"mouse-overlay/src/panel"
	"mouse-overlay/src/render"
	"mouse-overlay/src/scene"
	"mouse-overlay/src/singleinstance"
	"mouse-overlay/src/tray"
)

type mainOptions struct {
	configPath string
	verbose    bool
}

func main() {
	if err := runWithArgs(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"mouse-overlay"}
	}
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mouse-overlay",
		Short:         "Show mouse clicks, drags and keys on top of everything",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResident(*opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to the settings file (default: config.json beside the executable)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")

	cmd.AddCommand(newPanelCmd(opts), newCtlCmd(opts))
	return cmd
}

func newPanelCmd(opts *mainOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "panel",
		Short: "Open the control panel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := setup(*opts)
			return panel.Run(config.ResolvePath(firstNonEmpty(opts.configPath, env.ConfigPath)))
		},
	}
}

func newCtlCmd(opts *mainOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ctl <ping|reload|toggle EFFECT|visible|quit>",
		Short: "Send a command to the running overlay",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setup(*opts)
			ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
			defer cancel()
			return runCtl(ctx, singleinstance.NewClient(), args, cmd.OutOrStdout())
		},
	}
}

// runCtl delivers one control command and prints the resident's reply.
func runCtl(ctx context.Context, client singleinstance.Client, args []string, out io.Writer) error {
	command, err := singleinstance.ParseCommand(strings.Join(args, " "))
	if err != nil {
		return err
	}
	reply, err := client.Send(ctx, command)
	if err != nil {
		return fmt.Errorf("%s: %w", strings.ToLower(command.Verb), err)
	}
	if reply != "" {
		fmt.Fprintln(out, reply)
	}
	return nil
}

// setup loads .env and configures logging; it is shared by all commands.
func setup(opts mainOptions) config.Env {
	env := config.LoadEnv()
	logutil.Setup(logutil.Options{File: env.EnableFileLogging, Verbose: opts.verbose, Dir: exeDir()})
	return env
}

func exeDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func runResident(opts mainOptions) error {
	env := setup(opts)
	// Ensure DPI awareness before creating any windows or querying metrics
	enableDPIAwareness()
	logMonitorConfiguration()

	path := config.ResolvePath(firstNonEmpty(opts.configPath, env.ConfigPath))
	cfg := config.Load(path)
	log.Printf("Settings: %s", path)

	layout, err := display.Detect()
	if err != nil {
		return fmt.Errorf("detect displays: %w", err)
	}
	log.Printf("Virtual desktop %v, primary %v", layout.Virtual, layout.Primary)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := singleinstance.NewServer()
	if err := srv.Start(ctx); err != nil {
		start, _ := singleinstance.ControlPorts()
		return fmt.Errorf("an overlay is already running (port %d busy): %w", start, err)
	}
	defer srv.Close()
	log.Printf("Resident listening on 127.0.0.1:%d", srv.Port())

	sc := scene.New(cfg, layout)

	var trayIcon *tray.Tray
	loop := eventloop.New(sc, eventloop.Options{
		Source:     input.NewHookSource(),
		Server:     srv,
		ConfigPath: path,
		Watch:      true,
		Cancel:     cancel,
		OnChange: func(s eventloop.State) {
			trayIcon.Update(s.Effects, s.Visible)
		},
	})
	trayIcon = tray.New(tray.Config{
		Title:      "Mouse Overlay",
		Tooltip:    tooltip(cfg),
		Effects:    cfg.Effects,
		Controller: loop,
		OpenPanel:  func() error { return spawnPanel(path) },
	})
	go trayIcon.Run()
	defer trayIcon.Quit()

	// Handle SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ch:
			log.Printf("Signal received, shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	go func() {
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("event loop stopped: %v", err)
		}
		cancel()
	}()

	// ebiten owns the main goroutine until the context is cancelled
	return render.New(ctx, sc, layout, input.SystemPointer).Run()
}

func tooltip(cfg *config.Config) string {
	if cfg.ExitHotkey == "" {
		return "Mouse Overlay"
	}
	return fmt.Sprintf("Mouse Overlay - %s to quit", cfg.ExitHotkey)
}

func panelArgs(path string) []string {
	return []string{"panel", "--config", path}
}

// spawnPanel starts the control panel as its own process; fyne and ebiten
// both want the main thread.
func spawnPanel(path string) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	cmd := exec.Command(exe, panelArgs(path)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start control panel: %w", err)
	}
	log.Printf("Control panel started (pid %d)", cmd.Process.Pid)
	go func() { _ = cmd.Wait() }()
	return nil
}
