package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Kristof1273/3D-builder/command"
	"github.com/Kristof1273/3D-builder/config"
	"github.com/Kristof1273/3D-builder/editor"
	"github.com/Kristof1273/3D-builder/logging"
	"github.com/Kristof1273/3D-builder/materials"
	"github.com/Kristof1273/3D-builder/timeline"
	"github.com/Kristof1273/3D-builder/transport"
	"github.com/Kristof1273/3D-builder/tui"
)

const (
	minClipDuration = 0.1
	shutdownTimeout = 5 * time.Second
	sendTimeout     = 10 * time.Second
)

var (
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "builder",
	Short: "Command-driven editor client for the 3D world engine",
	Long: `builder keeps a local copy of the engine's world, turns typed commands
into engine commands, and serves the editor state to a renderer over HTTP.

Run without a subcommand to start headless. Use "builder tui" for the
terminal editor.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		opts := logging.Options{Level: cfg.Log.Level, Verbose: verbose}
		// The terminal UI owns the screen.
		if cmd.Name() == tuiCmd.Name() {
			opts.File = cfg.Log.File
		}
		logger, err = logging.New(opts)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runHeadless,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the terminal editor",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

var sendCmd = &cobra.Command{
	Use:   "send <command...>",
	Short: "Send one command to the engine and exit",
	Long: `send runs the arguments through the command preprocessor and publishes
the result once. Material names cannot be resolved here since there is no
world to scan; local commands such as showindexes are refused.`,
	Example: `  builder send 'AddToCollection(fal, [p3...p5])'`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runSend,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: "+config.DefaultPath+" if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(sendCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newTransport(cfg config.Config, logger *zap.Logger) (transport.Transport, func() error) {
	logger = logger.Named("transport")
	if cfg.Transport == config.TransportWebsocket {
		return transport.NewWebsocket(cfg.Websocket.URL, logger), func() error { return nil }
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return transport.NewRedis(rdb, cfg.Redis.CommandChannel, cfg.Redis.WorldChannel, logger), rdb.Close
}

func newSession(outbox chan<- string, broker *Broker) *editor.Session {
	return editor.NewSession(editor.Options{
		Outbox: outbox,
		Prices: materials.PriceList(cfg.Prices),
		Timeline: timeline.Config{
			MaxTime:     cfg.Timeline.MaxTime,
			LabelGutter: cfg.Timeline.LabelGutter,
			MinDuration: minClipDuration,
		},
		Logger:   logger,
		OnChange: broker.Publish,
	})
}

func newServer(driver editor.Driver, broker *Broker) *http.Server {
	return &http.Server{
		Addr:              cfg.Address(),
		Handler:           setCors(cfg.Origin, newRouter(driver, broker, logger.Named("http"))),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// serve runs srv until ctx is done, then shuts it down.
func serve(ctx context.Context, srv *http.Server) error {
	errs := make(chan error, 1)
	go func() { errs <- srv.ListenAndServe() }()
	logger.Info("listening", zap.String("addr", srv.Addr), zap.String("origin", cfg.Origin))

	select {
	case err := <-errs:
		return fmt.Errorf("http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http: %w", err)
	}
	return nil
}

func runHeadless(cmd *cobra.Command, _ []string) error {
	tr, closeTransport := newTransport(cfg, logger)
	defer closeTransport()

	outbox := make(chan string, cfg.OutboxSize)
	inbox := make(chan []byte)
	broker := NewBroker(logger.Named("http"))
	loop := editor.NewLoop(newSession(outbox, broker), inbox, logger.Named("editor"))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error { return loop.Run(ctx) })
	g.Go(func() error { return broker.Run(ctx) })
	g.Go(func() error { return tr.Run(ctx, outbox, inbox) })
	g.Go(func() error { return serve(ctx, newServer(loop, broker)) })
	return g.Wait()
}

func runTUI(cmd *cobra.Command, _ []string) error {
	tr, closeTransport := newTransport(cfg, logger)
	defer closeTransport()

	outbox := make(chan string, cfg.OutboxSize)
	inbox := make(chan []byte)
	broker := NewBroker(logger.Named("http"))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	p, driver, err := tui.Program(ctx, newSession(outbox, broker), tui.WithLogger(logger.Named("tui")))
	if err != nil {
		return err
	}

	g.Go(func() error {
		defer cancel()
		defer driver.Stop()
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("tui: %w", err)
		}
		return nil
	})
	g.Go(func() error { return driver.Forward(ctx, inbox) })
	g.Go(func() error { return broker.Run(ctx) })
	g.Go(func() error { return tr.Run(ctx, outbox, inbox) })
	g.Go(func() error { return serve(ctx, newServer(driver, broker)) })
	return g.Wait()
}

var errNotSendable = errors.New("local commands only affect a running editor")

func runSend(cmd *cobra.Command, args []string) error {
	c := command.NewPreprocessor(nil).Rewrite(strings.Join(args, " "))
	if c == nil {
		return errors.New("empty command")
	}
	if command.IsLocal(c) {
		return fmt.Errorf("%s: %w", c.Name(), errNotSendable)
	}

	tr, closeTransport := newTransport(cfg, logger)
	defer closeTransport()

	ctx, cancel := context.WithTimeout(cmd.Context(), sendTimeout)
	defer cancel()
	if err := tr.Publish(ctx, c.Wire()); err != nil {
		return err
	}
	logger.Debug("sent", zap.String("command", c.Wire()))
	fmt.Fprintln(cmd.OutOrStdout(), c.Wire())
	return nil
}
