package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Guliveer/devicescope/internal/app"
	"github.com/Guliveer/devicescope/internal/category"
	"github.com/Guliveer/devicescope/internal/config"
	"github.com/Guliveer/devicescope/internal/events"
	"github.com/Guliveer/devicescope/internal/lifecycle"
	"github.com/Guliveer/devicescope/internal/models"
	"github.com/Guliveer/devicescope/internal/render"
	"github.com/Guliveer/devicescope/internal/search"
	"github.com/Guliveer/devicescope/internal/theme"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var jsonFlag = &cli.BoolFlag{
	Name:  "json",
	Usage: "print JSON instead of styled text",
}

var bucketFlag = &cli.StringFlag{
	Name:    "bucket",
	Aliases: []string{"b"},
	Usage:   "restrict to a bucket (all, hardware, software, network, battery, display)",
	Value:   string(category.All),
}

func writeJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}

// withService opens the service, runs fn and closes it.
func (rt *runtime) withService(ctx context.Context, fn func(*app.Service) error) (err error) {
	svc, err := rt.service(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(svc)
}

func parseBucket(idx *category.Index, name string) (category.Bucket, error) {
	b := category.Bucket(strings.ToLower(name))
	if _, ok := idx.Eligible(b); !ok {
		return "", fmt.Errorf("unknown bucket %q", name)
	}
	return b, nil
}

func snapshotCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Collect device attributes once and print them by category",
		Flags: []cli.Flag{jsonFlag, bucketFlag},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return rt.withService(ctx, func(svc *app.Service) error {
				bucket, err := parseBucket(svc.Categories(), cmd.String("bucket"))
				if err != nil {
					return err
				}
				snap := svc.Refresh(ctx)
				if _, err := svc.History().SaveSnapshot(ctx, snap); err != nil {
					rt.logger.Warn("Failed to save snapshot", zap.Error(err))
				}
				if cmd.Bool("json") {
					return writeJSON(snap)
				}
				r := rt.renderer(svc)
				r.Status(snap, false)
				fmt.Println()
				r.Results(snap, svc.Filter(search.Query{Bucket: bucket}), "")
				return nil
			})
		},
	}
}

func searchCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Filter device attributes by text",
		ArgsUsage: "<text>",
		Flags: []cli.Flag{
			bucketFlag,
			&cli.BoolFlag{Name: "suggest", Usage: "print search suggestions instead of results"},
			&cli.BoolFlag{Name: "recent", Usage: "print recent searches"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			text := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
			return rt.withService(ctx, func(svc *app.Service) error {
				if cmd.Bool("recent") {
					for _, term := range svc.RecentSearches() {
						fmt.Println(term)
					}
					return nil
				}
				bucket, err := parseBucket(svc.Categories(), cmd.String("bucket"))
				if err != nil {
					return err
				}
				snap := svc.Refresh(ctx)
				if cmd.Bool("suggest") {
					for _, s := range svc.Suggest(text) {
						fmt.Println(s)
					}
					return nil
				}

				matches := svc.Filter(search.Query{Text: text, Bucket: bucket})
				svc.RecordSearch(ctx, text)

				r := rt.renderer(svc)
				r.Summary(text, search.Count(matches))
				r.Results(snap, matches, text)
				if len(matches) == 0 && text != "" {
					if near := svc.Corrections(text); len(near) > 0 {
						fmt.Println("\nDid you mean: " + strings.Join(near, ", "))
					}
					fmt.Println("\nTry: " + strings.Join(svc.Suggest(text), ", "))
				}
				return nil
			})
		},
	}
}

func watchCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Refresh attributes periodically and sample performance until interrupted",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "metrics-listen",
				Usage:   "serve Prometheus metrics on this address (e.g. :9464)",
				Sources: cli.EnvVars("DS_METRICS_LISTEN"),
			},
			&cli.DurationFlag{Name: "interval", Usage: "live refresh interval"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if d := cmd.Duration("interval"); d > 0 {
				rt.cfg.Collection.LiveInterval.Duration = d
			}
			if addr := cmd.String("metrics-listen"); addr != "" {
				rt.cfg.Metrics.Listen = addr
			}
			return rt.withService(ctx, func(svc *app.Service) error {
				return rt.watch(ctx, svc)
			})
		},
	}
}

func (rt *runtime) watch(ctx context.Context, svc *app.Service) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	watcher := lifecycle.Watch(svc.Lifecycle(), rt.logger.Named("lifecycle"))
	defer watcher.Stop()

	if addr := rt.cfg.Metrics.Listen; addr != "" {
		srv := &http.Server{Addr: addr, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				rt.logger.Error("Metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			_ = srv.Shutdown(shutdownCtx)
		}()
		rt.logger.Info("Serving metrics", zap.String("addr", addr))
	}

	updates, unsubscribe := svc.Subscribe()
	defer unsubscribe()

	persisted := make(chan struct{})
	go func() {
		defer close(persisted)
		svc.Run(ctx)
	}()
	defer func() {
		cancel()
		<-persisted
	}()

	r := rt.renderer(svc)
	svc.StartSampler()
	svc.SetLiveMode(true)
	drawStatus(r, svc, svc.Refresh(ctx))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-updates:
			if !ok {
				return nil
			}
			switch ev.Kind {
			case events.SnapshotUpdated:
				drawStatus(r, svc, ev.Snapshot)
			case events.SampleAdded:
				m := svc.AverageMetrics()
				rt.logger.Debug("Sample",
					zap.Float64("fps", ev.Sample.FPS),
					zap.Float64("memory_mb", ev.Sample.MemoryMB),
					zap.Float64("avg_fps", m.AvgFPS))
			case events.SamplerStateChanged:
				state := "paused"
				if ev.Enabled {
					state = "running"
				}
				fmt.Printf("Performance sampler %s\n", state)
			}
		}
	}
}

// drawStatus prints the status line and counts it as a rendered frame.
func drawStatus(r *render.Renderer, svc *app.Service, snap *models.Snapshot) {
	r.Status(snap, svc.LiveMode())
	svc.MarkFrame()
}

func perfCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "perf",
		Usage: "Sample frame rate and memory estimates for a while and print the summary",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "duration", Aliases: []string{"d"}, Usage: "how long to sample", Value: 5 * time.Second},
			jsonFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return rt.withService(ctx, func(svc *app.Service) error {
				svc.StartSampler()
				select {
				case <-ctx.Done():
				case <-time.After(cmd.Duration("duration")):
				}
				svc.StopSampler()

				window := svc.CurrentWindow()
				metrics := svc.AverageMetrics()
				if cmd.Bool("json") {
					return writeJSON(map[string]any{"samples": window.Samples(), "metrics": metrics})
				}
				rt.renderer(svc).Performance(window.Samples(), metrics)
				return nil
			})
		},
	}
}

func historyCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect, export or clear stored snapshots and preferences",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List stored snapshots, newest first",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return rt.withService(ctx, func(svc *app.Service) error {
						for _, e := range svc.History().History(ctx) {
							fmt.Printf("%s  %016x  %d attributes\n",
								time.UnixMilli(e.Timestamp).Format(time.DateTime), e.Fingerprint, e.Data.Len())
						}
						return nil
					})
				},
			},
			{
				Name:  "info",
				Usage: "Show which keys are stored and their size",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return rt.withService(ctx, func(svc *app.Service) error {
						info := svc.History().Info(ctx)
						fmt.Printf("Keys: %d (%s)\n", info.TotalKeys, info.HumanSize())
						for _, k := range info.Keys {
							fmt.Println("  " + k)
						}
						return nil
					})
				},
			},
			{
				Name:  "export",
				Usage: "Write everything stored as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "file to write (default: stdout)"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return rt.withService(ctx, func(svc *app.Service) error {
						export := svc.History().ExportAll(ctx)
						out := cmd.String("output")
						if out == "" {
							return writeJSON(export)
						}
						data, err := json.MarshalIndent(export, "", "  ")
						if err != nil {
							return err
						}
						return os.WriteFile(out, data, 0640)
					})
				},
			},
			{
				Name:  "clear",
				Usage: "Delete stored history, preferences and offline data",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return rt.withService(ctx, func(svc *app.Service) error {
						return svc.History().ClearAll(ctx)
					})
				},
			},
		},
	}
}

func themeCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:      "theme",
		Usage:     "Show or change the color theme",
		ArgsUsage: "[light|dark|system|toggle]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return rt.withService(ctx, func(svc *app.Service) error {
				tm := svc.Theme()
				switch arg := cmd.Args().First(); arg {
				case "":
				case "toggle":
					if _, err := tm.Toggle(ctx); err != nil {
						return err
					}
				default:
					mode, err := theme.ParseMode(arg)
					if err != nil {
						return err
					}
					if err := tm.Set(ctx, mode); err != nil {
						return err
					}
				}
				shade := "light"
				if tm.IsDark() {
					shade = "dark"
				}
				fmt.Printf("%s (%s palette)\n", tm.Mode(), shade)
				return nil
			})
		},
	}
}

func configCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show or write the effective configuration",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the effective configuration as YAML",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					data, err := yaml.Marshal(rt.cfg)
					if err != nil {
						return err
					}
					_, err = os.Stdout.Write(data)
					return err
				},
			},
			{
				Name:  "path",
				Usage: "Print the config file in use",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if rt.configPath == "" {
						fmt.Println("(none: embedded defaults)")
						return nil
					}
					fmt.Println(rt.configPath)
					return nil
				},
			},
			{
				Name:      "init",
				Usage:     "Write the effective configuration to a file",
				ArgsUsage: "<path>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					path := cmd.Args().First()
					if path == "" {
						return errors.New("config init: path required")
					}
					if err := config.WriteConfig(rt.cfg, path); err != nil {
						return err
					}
					fmt.Println("Wrote " + path)
					return nil
				},
			},
		},
	}
}
