package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"keyrelay/client"
	"keyrelay/config"
	"keyrelay/logging"
	"keyrelay/server"
)

// keyrelay 入口：-role client 运行终端输入控制器，-role server 运行开发用玩家状态服务
func main() {
	var role, cfgPath, addr string
	flag.StringVar(&role, "role", "client", "client | server")
	flag.StringVar(&cfgPath, "config", "", "config file path (default ./keyrelay.yaml if present)")
	flag.StringVar(&addr, "addr", "", "server listen address, overrides server.addr, e.g. :3000")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	// 使用 zap 日志写入文件（带滚动）
	if err := logging.InitLogger(logging.Options{
		File:       cfg.Log.File,
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logging.SyncLogger()

	// 优雅退出（Ctrl+C）
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch role {
	case "server":
		err = runServer(ctx, cfg.Server)
	case "client":
		err = runClient(ctx, cfg.Client)
	default:
		err = fmt.Errorf("unknown role %q", role)
	}
	if err != nil {
		logging.Log.Errorf("%s exited: %v", role, err)
		fmt.Fprintln(os.Stderr, err)
		logging.SyncLogger()
		os.Exit(1)
	}
}

func runServer(ctx context.Context, cfg config.ServerConfig) error {
	world := server.NewWorld(server.Config{
		Width:       cfg.Width,
		Height:      cfg.Height,
		MaxVelocity: cfg.MaxVelocity,
		Step:        cfg.Step,
		Tick:        cfg.TickInterval(),
		InputBuffer: cfg.InputBuffer,
	})
	world.StartTicker(ctx)

	srv := &http.Server{Addr: cfg.Addr, Handler: server.NewServer(world).Routes()}
	errCh := make(chan error, 1)
	go func() {
		logging.Log.Infof("keyrelay server listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logging.Log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runClient(ctx context.Context, cfg config.ClientConfig) error {
	scheme, err := client.ParseScheme(cfg.Scheme)
	if err != nil {
		return err
	}
	policy, err := client.ParseReleasePolicy(cfg.ReleasePolicy)
	if err != nil {
		return err
	}

	ch, err := client.NewHTTPChannel(cfg.ServerURL, scheme.WireFormat(), cfg.RequestTimeout(), nil)
	if err != nil {
		return err
	}

	vp, closeTerm, err := client.OpenTerminal()
	if err != nil {
		return err
	}
	defer closeTerm()

	nav, err := client.NewJoinNavigator(cfg.ServerURL, vp, cfg.RequestTimeout())
	if err != nil {
		return err
	}
	app := &client.App{
		Channel:  ch,
		Joiner:   nav,
		Sink:     &client.TermboxScreen{},
		Options:  client.Options{Scheme: scheme, ReleasePolicy: policy, SuppressRepeat: cfg.SuppressRepeat},
		PlayerID: client.PlayerID(cfg.PlayerID),
		Viewport: vp,
		Metrics:  &client.Metrics{},
	}
	if cfg.Watch {
		if app.Watcher, err = client.NewWatcher(cfg.ServerURL); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	src := client.NewTermboxSource(cfg.ReleaseAfter())
	go src.Run(ctx)

	err = app.Run(ctx, src)
	logging.Log.Infof("client metrics: %v", app.Metrics.Snapshot())
	return err
}
