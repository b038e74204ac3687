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
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mtgalog/mtgalog-go/internal/hub"
	"github.com/mtgalog/mtgalog-go/pkg/mtgalog"
)

const (
	defaultListenAddr = "127.0.0.1:8787"
	shutdownTimeout   = 5 * time.Second
)

var (
	// serve flags
	serveFlags    watchFlags
	serveListen   string
	serveLogLines bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Monitor MTGA logs and broadcast events over a websocket",
	Long: `Monitor the MTG Arena log and broadcast decoded events to websocket
clients connected at ws://<listen>/ws.

Each frame is a JSON object {"channel": ..., "payload": ...} on one of:
  mtga:rpc-call      completed RPC calls
  mtga:interpreted   interpreted responses
  mtga:game-action   game actions derived from match traffic
  mtga:status        watcher status (log opened, rotated, truncated, errors)
  mtga:log-line      every raw log line (only with --log-lines)

Examples:
  # Serve on the default address
  mtgalog serve

  # Listen on all interfaces and replay the current log
  mtgalog serve --listen :8787 --replay-last 0`,
	RunE: runServe,
}

func init() {
	serveFlags.register(serveCmd)
	serveCmd.Flags().StringVar(&serveListen, "listen", defaultListenAddr,
		"Address to listen on (env MTGALOG_LISTEN_ADDR)")
	serveCmd.Flags().BoolVar(&serveLogLines, "log-lines", false,
		"Broadcast every raw log line on mtga:log-line")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	watchOpts, err := serveFlags.options(cmd, logger)
	if err != nil {
		return err
	}

	listen := appConfig.ListenAddr
	if cmd.Flags().Changed("listen") || listen == "" {
		listen = serveListen
	}

	h := hub.New(logger)
	watchOpts = append(watchOpts, mtgalog.WithNoticeHandler(func(n mtgalog.WatchNotice) {
		broadcast(logger, h, hub.ChannelStatus, noticeStatus(n))
	}))
	if serveLogLines {
		watchOpts = append(watchOpts, mtgalog.WithLineHandler(func(line mtgalog.RawLine) {
			broadcast(logger, h, hub.ChannelLogLine, line)
		}))
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher, err := mtgalog.NewWatcher(watchOpts...)
	if err != nil {
		return err
	}
	defer watcher.Close()

	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", listen, err)
	}
	fmt.Fprintf(os.Stderr, "serving ws://%s/ws (log dir: %s)\n", ln.Addr(), watcher.LogDir())

	events, errs, err := watcher.Watch(ctx)
	if err != nil {
		ln.Close()
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		h.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return pump(gctx, logger, h, events, errs)
	})

	return g.Wait()
}

// pump forwards watcher output to the hub until ctx is done. A watcher that
// stops on its own is reported as an error so the server shuts down.
func pump(ctx context.Context, logger *slog.Logger, h *hub.Hub, events <-chan mtgalog.Event, errs <-chan error) error {
	var lastErr error
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				if lastErr != nil {
					return fmt.Errorf("watcher stopped: %w", lastErr)
				}
				return errors.New("watcher stopped")
			}
			channel, payload := channelFor(ev)
			broadcast(logger, h, channel, payload)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			lastErr = err
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			broadcast(logger, h, hub.ChannelStatus, hub.Status{
				Level:   hub.StatusWarning,
				Message: "watcher error",
				Detail:  err.Error(),
			})

		case <-ctx.Done():
			return nil
		}
	}
}

// channelFor picks the hub channel and payload for an event.
func channelFor(ev mtgalog.Event) (string, any) {
	switch {
	case ev.Call != nil:
		return hub.ChannelRPCCall, ev.Call
	case ev.Interpreted != nil:
		return hub.ChannelInterpreted, ev.Interpreted
	case ev.Action != nil:
		return hub.ChannelGameAction, ev.Action
	case ev.Text != nil:
		return hub.ChannelEvent, ev.Text
	}
	return hub.ChannelStatus, hub.Status{Level: hub.StatusWarning, Message: "unrecognized event", Detail: string(ev.Type)}
}

func noticeStatus(n mtgalog.WatchNotice) hub.Status {
	var msg string
	switch n.Kind {
	case mtgalog.NoticeOpened:
		msg = "watching log file"
	case mtgalog.NoticeRotated:
		msg = "log file rotated"
	case mtgalog.NoticeTruncated:
		msg = "log file truncated"
	default:
		msg = string(n.Kind)
	}
	return hub.Status{Level: hub.StatusInfo, Message: msg, Detail: n.Path}
}

func broadcast(logger *slog.Logger, h *hub.Hub, channel string, payload any) {
	if err := h.Broadcast(channel, payload); err != nil {
		logger.Warn("broadcast failed", "channel", channel, "error", err)
	}
}
