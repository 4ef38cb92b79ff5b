package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/davarch/pipeline-watcher/internal/application"
	"github.com/davarch/pipeline-watcher/internal/domain"
	"github.com/davarch/pipeline-watcher/internal/infrastructure/bitbucket_http"
	"github.com/davarch/pipeline-watcher/internal/infrastructure/cache_fs"
	"github.com/davarch/pipeline-watcher/internal/infrastructure/config"
	"github.com/davarch/pipeline-watcher/internal/infrastructure/control_http"
	"github.com/davarch/pipeline-watcher/internal/infrastructure/display_term"
	"github.com/davarch/pipeline-watcher/internal/infrastructure/history_sqlite"
	"github.com/davarch/pipeline-watcher/internal/infrastructure/logging"
	"github.com/davarch/pipeline-watcher/internal/infrastructure/notify_libnotify"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const reloadDebounce = 300 * time.Millisecond

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline monitor",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		log := logging.New()
		defer func() { _ = log.Sync() }()

		cfg, err := config.Load(cfgPath)
		if err != nil {
			log.Fatal("config", zap.Error(err))
		}

		state := application.NewState(cfg.Credentials(), cfg.MonitoredPipelines, cfg.Interval())

		disp := display_term.New(os.Stdout)
		disp.SetTrayState(domain.TrayUnconfigured)
		disp.SetTooltip(application.TooltipLoading)

		var cache domain.StatusCache
		if cfg.Cache.Path != "" {
			cache = cache_fs.New(cfg.Cache.Path)
		}

		var notes []domain.Notifier
		if !cfg.Notify.Disabled {
			notes = append(notes, notify_libnotify.NewSoft())
		}
		if cfg.History.Path != "" {
			store, err := history_sqlite.Open(cfg.History.Path)
			if err != nil {
				log.Warn("history disabled", zap.String("path", cfg.History.Path), zap.Error(err))
			} else {
				defer func() { _ = store.Close() }()
				notes = append(notes, store)
			}
		}

		clients := bitbucket_http.Factory(cfg.Bitbucket.BaseURL, cfg.Bitbucket.Timeout)
		uc := application.NewPollUseCase(log, state, clients, disp, cache, notes...)
		sched := application.NewScheduler(log, uc, state, cfg.Poll.PauseFile)

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		triggerOnSignal(ctx, sched)
		watchAndReload(ctx, cfgPath, log, sched)

		if cfg.Server.Addr != "" {
			srv := control_http.New(log, state, sched, disp, nil)
			go func() {
				if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
					log.Warn("control server stopped", zap.String("addr", cfg.Server.Addr), zap.Error(err))
				}
			}()
		}

		log.Info("start",
			zap.String("version", version),
			zap.Int("pipelines", len(cfg.MonitoredPipelines)),
			zap.Duration("every", cfg.Interval()),
			zap.String("cache", cfg.Cache.Path),
			zap.String("bitbucket", cfg.Bitbucket.BaseURL),
			zap.String("pause_file", cfg.Poll.PauseFile),
			zap.String("control", cfg.Server.Addr),
		)
		sched.Run(ctx)
		log.Info("stopped")
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// triggerOnSignal turns SIGUSR1 into a manual refresh.
func triggerOnSignal(ctx context.Context, sched *application.Scheduler) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGUSR1)

	go func() {
		defer signal.Stop(sig)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sig:
				sched.Trigger()
			}
		}
	}()
}

// watchAndReload re-reads the config when config.yaml or the credentials
// file changes and asks for an immediate check with the new settings.
func watchAndReload(ctx context.Context, cfgPath string, log *zap.Logger, sched *application.Scheduler) {
	if cfgPath == "" {
		return
	}

	dir := filepath.Dir(cfgPath)
	watched := map[string]bool{
		filepath.Base(cfgPath):  true,
		config.CredentialsFile: true,
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn("fsnotify init failed", zap.Error(err))
		return
	}
	if err := w.Add(dir); err != nil {
		log.Warn("fsnotify add dir failed", zap.String("dir", dir), zap.Error(err))
		_ = w.Close()
		return
	}

	fire := func() {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			log.Warn("config reload failed", zap.Error(err))
			return
		}
		if len(cfg.MonitoredPipelines) == 0 {
			log.Warn("config reload: no monitored pipelines")
		}
		sched.Reload(cfg.Credentials(), cfg.MonitoredPipelines, cfg.Interval())
		sched.Trigger()
	}

	go func() {
		defer func() { _ = w.Close() }()

		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !watched[filepath.Base(ev.Name)] {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if timer == nil {
					timer = time.AfterFunc(reloadDebounce, fire)
				} else {
					timer.Reset(reloadDebounce)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("fsnotify error", zap.Error(err))
			}
		}
	}()
}
