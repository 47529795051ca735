package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/slaymom/internal/api"
	"github.com/kalambet/slaymom/internal/bot"
	"github.com/kalambet/slaymom/internal/broadcast"
	"github.com/kalambet/slaymom/internal/clock"
	"github.com/kalambet/slaymom/internal/config"
	"github.com/kalambet/slaymom/internal/content"
	"github.com/kalambet/slaymom/internal/discord"
	"github.com/kalambet/slaymom/internal/flow"
	"github.com/kalambet/slaymom/internal/profile"
	"github.com/kalambet/slaymom/internal/storage"
)

// maxAPIConns caps concurrent connections to the management API.
const maxAPIConns = 32

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the bot and the management API (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show bot status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd.Context())
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "slaymom.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func logLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func runServer() error {
	printBanner()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.Log.Level)})))

	apiToken, err := config.GetAPIToken(config.NewKeychain())
	if err != nil {
		return fmt.Errorf("initializing API token: %w", err)
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("slaymom is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("slaymom is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			printWarning("closing storage: %v", err)
		}
	}()

	if err := content.Init(cfg.Storage.DataDir); err != nil {
		return fmt.Errorf("initializing content: %w", err)
	}
	lib := content.NewLibrary(cfg.Storage.DataDir)
	watcher := content.NewWatcher(lib)

	profiles := profile.NewManager(store)
	flows := flow.NewRegistry(clock.Real())

	adapter, err := discord.New(cfg.Discord.Token)
	if err != nil {
		return err
	}

	svc := bot.New(bot.Config{
		Prefix:         cfg.Bot.Prefix,
		ConfirmTimeout: cfg.Flow.ConfirmTimeout,
		VentTimeout:    cfg.Flow.VentTimeout,
		VentReplyDelay: cfg.Flow.VentReplyDelay,
	}, bot.Deps{
		Platform: adapter,
		Profiles: profiles,
		Flows:    flows,
		Content:  lib,
		Warnings: store,
	})
	defer svc.Close()

	if cfg.Affirmation.ChannelID == "" {
		printWarning("affirmation.channel_id not set, daily affirmations go to subscribers by DM only")
	}
	bc, err := newBroadcaster(cfg, adapter, lib, profiles, clock.Real())
	if err != nil {
		return err
	}

	if err := adapter.Start(svc); err != nil {
		return err
	}
	defer func() {
		if err := adapter.Close(); err != nil {
			slog.Warn("closing discord session", "error", err)
		}
	}()
	printSuccess("Connected to Discord (prefix %q)", svc.Prefix())

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler: api.NewAppHandler(api.AppDeps{
			Store:    store,
			Profiles: profiles,
			Flows:    flows,
			Schedule: bc,
			Token:    apiToken,
			Version:  version,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		printStep("management API listening on %s", addr)
		if err := srv.Serve(netutil.LimitListener(ln, maxAPIConns)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return watcher.Run(gctx)
	})

	g.Go(func() error {
		return bc.Run(gctx)
	})

	if cfg.MCP.Stdio {
		mcpSrv := api.NewMCPServer(api.MCPDeps{
			Profiles: profiles,
			Content:  lib,
			Version:  version,
		})
		g.Go(func() error {
			slog.Info("MCP server started (stdio transport)")
			err := server.NewStdioServer(mcpSrv).Listen(gctx, os.Stdin, os.Stdout)
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		})
	}

	err = g.Wait()
	printStep("shutting down...")
	return err
}

// newBroadcaster builds the daily affirmation schedule. It runs even
// without a channel so members who opted in still get their DM.
func newBroadcaster(cfg config.Config, sender broadcast.Sender, pool broadcast.Pool, profiles *profile.Manager, c clock.Clock) (*broadcast.Broadcaster, error) {
	at, err := broadcast.ParseTimeOfDay(cfg.Affirmation.Time)
	if err != nil {
		return nil, err
	}
	return broadcast.New(broadcast.Config{
		ChannelID: cfg.Affirmation.ChannelID,
		At:        at,
		Subscribers: func() ([]string, error) {
			return profiles.Subscribers(profile.PrefDailyAffirmation)
		},
	}, sender, pool, c), nil
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("slaymom is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop slaymom (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to slaymom (PID %d)", pid)
	return nil
}

func showStatus(ctx context.Context) error {
	client, err := newAPIClient()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	resp, err := client.get(ctx, "/status")
	if err != nil {
		printStatus("Bot", "stopped")
		return nil
	}
	var st api.StatusResponse
	if err := decodeJSON(resp, &st); err != nil {
		printStatus("Bot", "error (%v)", err)
		return nil
	}

	printStatus("Bot", "running (version %s)", st.Version)
	printStatus("Profiles", "%d", st.Profiles)
	printStatus("Pending flows", "%d", len(st.PendingFlows))
	for _, f := range st.PendingFlows {
		fmt.Fprintf(stderr, "    %s %s user=%s expires=%s\n", f.Kind, f.ID, f.UserID, f.Deadline.Local().Format(time.Kitchen))
	}
	if st.NextBroadcast != nil {
		printStatus("Next affirmation", "%s", st.NextBroadcast.Local().Format(time.RFC1123))
	} else {
		printStatus("Next affirmation", "disabled")
	}
	return nil
}
