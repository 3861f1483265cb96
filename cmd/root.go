package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/MimeLyc/transcript-panel/internal/config"
	"github.com/MimeLyc/transcript-panel/pkg/log"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	fileLogger *log.FileLogger
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if err := config.LoadDotEnv(); err != nil {
			c.configErr = err
			return
		}

		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}

		var opts []config.Option
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			level := strings.TrimSpace(*c.logLevelFlag)
			opts = append(opts, func(cfg *config.Config) { cfg.Log.Level = level })
		}

		cfg, err := config.Load(path, opts...)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// setupLogging installs the global logger described by the configuration.
func (c *commandContext) setupLogging(cfg *config.Config) error {
	level := log.ParseLevel(cfg.Log.Level)
	if cfg.Log.File == "" {
		log.InitLogger(level)
		return nil
	}

	fl, err := log.NewFileLogger(cfg.Log.File, level, true)
	if err != nil {
		return err
	}
	c.fileLogger = fl
	log.SetLogger(fl.Logger)
	return nil
}

func (c *commandContext) close() {
	if c.fileLogger != nil {
		_ = c.fileLogger.Close()
		c.fileLogger = nil
	}
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string

	ctx := newCommandContext(&configFlag, &logLevelFlag)

	rootCmd := &cobra.Command{
		Use:           "transcript",
		Short:         "Interactive transcript panel server and tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return ctx.setupLogging(cfg)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newSearchCommand(ctx))
	rootCmd.AddCommand(newActiveCommand(ctx))
	rootCmd.AddCommand(newTracksCommand(ctx))
	rootCmd.AddCommand(newHotspotsCommand(ctx))

	return rootCmd
}
