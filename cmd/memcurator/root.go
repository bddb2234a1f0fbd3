package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BaSui01/memcurator/config"
)

// app 持有所有子命令共享的配置与日志
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
}

// load 加载配置并构建日志。一次性命令把日志写到 stderr，保证 stdout 只有结果。
func (a *app) load(cliMode bool) error {
	if a.cfg != nil {
		return nil
	}
	loader := config.NewLoader()
	if a.configPath != "" {
		loader = loader.WithConfigPath(a.configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logCfg := cfg.Log
	if cliMode {
		logCfg.OutputPaths = []string{"stderr"}
		if a.logLevel == "" {
			logCfg.Level = "warn"
		}
	}
	a.cfg = cfg
	a.logger = initLogger(logCfg)
	return nil
}

func (a *app) sync() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "memcurator",
		Short:         "Curate agent session transcripts into addressable memory documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}
	root.SetVersionTemplate("memcurator {{.Version}}\n")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config file (YAML)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log level: debug, info, warn, error")

	root.AddCommand(
		newCurateCommand(a),
		newTriggersCommand(a),
		newAnchorCommand(a),
		newServeCommand(a),
		newMigrateCommand(a),
		newHealthCommand(),
		newVersionCommand(),
	)
	return root
}

// readInput 读取文件内容，"-" 表示 stdin
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("--input is required")
	}
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// =============================================================================
// 📋 版本
// =============================================================================

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "memcurator %s\n", Version)
			fmt.Fprintf(out, "  Build Time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git Commit: %s\n", GitCommit)
		},
	}
}
