package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "SELECT2"

type config struct {
	Addr        string
	LogLevel    string
	Definitions string
	OpenAPI     string
	Schema      string
	BasePath    string
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "select2",
		Short:         "Multi-choice widget demo server and terminal preview",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindConfig(v, cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (yaml, json or toml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("definitions", "", "directory of field definition files (built-in demo fields when empty)")
	flags.String("openapi", "", "OpenAPI document path or URL providing an enum field")
	flags.String("schema", "", "component schema holding the enum used with --openapi")

	root.AddCommand(newServeCmd(v), newPickCmd(v))
	return root
}

func bindConfig(v *viper.Viper, cmd *cobra.Command) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return nil
}

func loadConfig(v *viper.Viper) config {
	return config{
		Addr:        v.GetString("addr"),
		LogLevel:    v.GetString("log-level"),
		Definitions: v.GetString("definitions"),
		OpenAPI:     v.GetString("openapi"),
		Schema:      v.GetString("schema"),
		BasePath:    v.GetString("base-path"),
	}
}

func newLogger(level string, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if strings.TrimSpace(level) == "" {
		level = "info"
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(parsed)
	return logger, nil
}
