package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/ichaly/ideabase/erd"
	"github.com/ichaly/ideabase/ioc"
	"github.com/ichaly/ideabase/log"
	"github.com/ichaly/ideabase/std"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	configFlag  = "config"
	noLiveFlag  = "no-live"
	verboseFlag = "verbose"
)

// 命令行参数对应的配置键，只有显式设置的参数才会覆盖配置
var flagKeys = map[string]string{
	"output":     "output",
	"main-color": "graph.main-color",
	"bg-color":   "graph.bg-color",
	"font-size":  "graph.font-size",
	"dsn":        "source.dsn",
	"base":       "source.bases",
	"strict":     "strict",
	"host":       "live.host",
	"port":       "live.port",
	"log-file":   "log.file",
}

var errNoInput = errors.New("至少需要一个模型文件或 --dsn")

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "erd [flags] <path_of_models_file>...",
		Short:        "Draw ER diagram based on gorm models.",
		Version:      std.Version,
		SilenceUsage: true,
		RunE:         run,
	}

	f := cmd.Flags()
	f.StringP("output", "o", "", "Save generated diagram to file (disables live view).")
	f.String("main-color", "#0b7285", "Main color used for models background and fields names.")
	f.String("bg-color", "#e3fafc", "Background of models.")
	f.Int("font-size", 12, "Font size.")
	f.StringP(configFlag, "c", "", "YAML config file, watched in live view.")
	f.String("dsn", "", "Load models from a database: postgres://, mysql://, sqlite://.")
	f.StringSlice("base", nil, "Extra base models, importpath.Type or a local type name. Structs embedding neither gorm.Model nor one of these are not models.")
	f.Bool("strict", false, "Fail when a foreign key points to a model that is not loaded.")
	f.Bool(noLiveFlag, false, "Open the diagram in the system viewer instead of the live preview.")
	f.String("host", "127.0.0.1", "Live preview host.")
	f.Int("port", 0, "Live preview port, 0 picks a free one.")
	f.BoolP(verboseFlag, "v", false, "Verbose logging.")
	f.String("log-file", "", "Also write logs to this file.")
	return cmd
}

// overrides 收集显式设置的参数
func overrides(flags *pflag.FlagSet, args []string) map[string]interface{} {
	values := make(map[string]interface{})
	flags.Visit(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}
		switch f.Value.Type() {
		case "stringSlice":
			values[key], _ = flags.GetStringSlice(f.Name)
		case "int":
			values[key], _ = flags.GetInt(f.Name)
		case "bool":
			values[key], _ = flags.GetBool(f.Name)
		default:
			values[key] = f.Value.String()
		}
	})
	if v, _ := flags.GetBool(noLiveFlag); v {
		values["live.enabled"] = false
	}
	if v, _ := flags.GetBool(verboseFlag); v {
		values["log.level"] = "debug"
	}
	if len(args) > 0 {
		values["paths"] = args
	}
	return values
}

// load 构建配置管理器与配置
func load(cmd *cobra.Command, args []string) (*std.Konfig, *std.Config, error) {
	opts := []std.KonfigOption{std.WithOverrides(overrides(cmd.Flags(), args))}
	if file, _ := cmd.Flags().GetString(configFlag); file != "" {
		opts = append(opts, std.WithFilePath(file))
	}
	k, err := std.NewKonfig(opts...)
	if err != nil {
		return nil, nil, err
	}
	v, err := std.NewValidator()
	if err != nil {
		return nil, nil, err
	}
	c, err := std.NewConfig(k, v)
	if err != nil {
		return nil, nil, err
	}
	if len(c.Paths) == 0 && c.Source.Dsn == "" {
		return nil, nil, errNoInput
	}
	return k, c, nil
}

// setupLogger 按配置调整全局日志
func setupLogger(c *std.Config) {
	level := log.ParseLevel(c.Log.Level)
	if c.Log.File != "" {
		l := log.NewRotateLogger(log.WithFilename(c.Log.File), log.WithConsole(os.Stderr))
		l.SetLevel(level)
		log.SetDefault(l)
		return
	}
	log.SetLevel(level)
}

func run(cmd *cobra.Command, args []string) error {
	k, c, err := load(cmd, args)
	if err != nil {
		return err
	}
	setupLogger(c)
	ctx := cmd.Context()

	// 指定输出文件：绘制一次后退出
	if c.Output != "" {
		drawer, err := erd.NewDrawerFromConfig(c)
		if err != nil {
			return err
		}
		return drawer.Draw(ctx, c.Output, false, true)
	}

	dir, err := os.MkdirTemp("", "erd-")
	if err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(dir) }()
	output := filepath.Join(dir, uuid.NewString()+".svg")

	if !c.IsLive() {
		return static(ctx, c, output)
	}
	verbose, _ := cmd.Flags().GetBool(verboseFlag)
	return liveView(ctx, k, output, verbose)
}

// static 用系统查看器打开，直到被中断
func static(ctx context.Context, c *std.Config, output string) error {
	drawer, err := erd.NewDrawerFromConfig(c)
	if err != nil {
		return err
	}
	if err := drawer.Draw(ctx, output, true, false); err != nil {
		return err
	}
	log.Info().Str("output", output).Msg("按 Ctrl+C 退出")
	<-ctx.Done()
	return nil
}

// liveView 启动预览服务，页面关闭或收到信号时退出
func liveView(ctx context.Context, k *std.Konfig, output string, verbose bool) error {
	app := ioc.New(verbose, ioc.Supply(k, ioc.Target(output)))
	if err := app.Err(); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case sig := <-app.Wait():
		log.Debug().Str("signal", fmt.Sprint(sig.Signal)).Msg("收到退出信号")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	return app.Stop(stopCtx)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
