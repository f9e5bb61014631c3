package cmd

import (
	"bytes"
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configFiles      []string
	level, logFormat string
	version          string
)

var log = zap.NewNop()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "brick",
	Short:         "generate lazy and eager view model accessors",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		if hint := errors.FlattenHints(err); hint != "" {
			fields = append(fields, zap.String("hint", hint))
		}
		log.Error("command failed", fields...)
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVarP(&level, "level", "l", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log encoding (console, json)")
	rootCmd.PersistentFlags().StringSliceVar(&configFiles, "config", []string{}, "config file(s) - multiple config files are merged with last specified file having highest priority")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	l, err := newLogger(level, logFormat)
	if err != nil {
		panic(err.Error())
	}
	setLogger(l)

	if len(configFiles) > 0 {
		// Use config file from the flag.
		viper.SetConfigFile(configFiles[0])
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/brick")
		viper.SetConfigType("yaml")
		viper.SetConfigName("brick")
	}

	viper.SetEnvPrefix("brick")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info("using config file(s)", zap.String("config", viper.ConfigFileUsed()))
	} else {
		log.Debug("unable to use config file(s)", zap.Error(err), zap.String("config", viper.ConfigFileUsed()))
	}
	if len(configFiles) > 1 {
		for _, file := range configFiles[1:] {
			if configBytes, err := os.ReadFile(file); err == nil {
				if err = viper.MergeConfig(bytes.NewReader(configBytes)); err != nil {
					log.Warn("failed to merge config file", zap.Error(err), zap.String("file", file))
				} else {
					log.Info("merged config file", zap.String("file", file))
				}
			}
		}
	}
	if len(version) > 0 {
		viper.Set("version", version)
	}

	// flags win over the config file
	flags := rootCmd.PersistentFlags()
	lvl, format := level, logFormat
	if !flags.Changed("level") && viper.IsSet("common.log.level") {
		lvl = viper.GetString("common.log.level")
	}
	if !flags.Changed("log-format") && viper.IsSet("common.log.format") {
		format = viper.GetString("common.log.format")
	}
	if lvl != level || format != logFormat {
		l, err := newLogger(lvl, format)
		if err != nil {
			panic(err.Error())
		}
		setLogger(l)
	}
}

func setLogger(l *zap.Logger) {
	log = l
	zap.ReplaceGlobals(l)
}

// newLogger builds a JSON production logger or a console development logger.
// "trace" is accepted as an alias of debug.
func newLogger(lvl, format string) (*zap.Logger, error) {
	if strings.EqualFold(lvl, "trace") {
		lvl = "debug"
	}
	atomic, err := zap.ParseAtomicLevel(lvl)
	if err != nil {
		return nil, err
	}

	var cfg zap.Config
	switch strings.ToLower(format) {
	case "json":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.DisableStacktrace = true
	}
	cfg.Level = atomic
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
