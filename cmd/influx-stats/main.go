package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rowjay/influx-utility/internal/config"
	"github.com/rowjay/influx-utility/internal/influx"
	"github.com/rowjay/influx-utility/internal/logging"
	"github.com/rowjay/influx-utility/internal/stats"
	"github.com/rowjay/influx-utility/internal/version"
)

type rootFlags struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

type statsFlags struct {
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	Detailed           bool
	SSL                bool
	InsecureSkipVerify bool
	Timeout            time.Duration
}

func main() {
	root := &rootFlags{}
	flags := &statsFlags{}

	rootCmd := &cobra.Command{
		Use:   "influx-stats",
		Short: "Report database and measurement statistics from an InfluxDB server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, root, flags)
			if err != nil {
				return err
			}
			logger := logging.Configure(cfg.Global.LogLevel, cfg.Global.LogFormat)

			client, err := influx.Connect(cfg.Influx)
			if err != nil {
				return err
			}
			defer client.Close()

			reporter := &stats.Reporter{
				Client:   client,
				Log:      logger,
				Detailed: cfg.Stats.Detailed,
				Database: cfg.Influx.Database,
			}
			return reporter.Run(os.Stdout)
		},
	}

	rootCmd.PersistentFlags().StringVar(&root.ConfigPath, "config", "", "Path to config file (yaml/toml/json or .enc)")
	rootCmd.PersistentFlags().StringVar(&root.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&root.LogFormat, "log-format", "", "Log format (json, console)")

	rootCmd.Flags().StringVar(&flags.Host, "host", "", "InfluxDB host (default localhost)")
	rootCmd.Flags().IntVar(&flags.Port, "port", 0, "InfluxDB port (default 8086)")
	rootCmd.Flags().StringVar(&flags.User, "user", "", "InfluxDB username")
	rootCmd.Flags().StringVar(&flags.Password, "password", "", "InfluxDB password")
	rootCmd.Flags().StringVar(&flags.Database, "database", "", "Specific database to report (default: all databases)")
	rootCmd.Flags().BoolVar(&flags.Detailed, "detailed", false, "Show detailed statistics including point counts and time ranges")
	rootCmd.Flags().BoolVar(&flags.SSL, "ssl", false, "Use SSL connection")
	rootCmd.Flags().BoolVar(&flags.InsecureSkipVerify, "insecure-skip-verify", false, "Skip TLS certificate verification")
	rootCmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "HTTP timeout for ping and queries (default 10s)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, root *rootFlags, flags *statsFlags) (*config.Config, error) {
	cfg, err := config.Load(root.ConfigPath)
	if err != nil {
		return nil, err
	}
	applyOverrides(cfg, cmd, root, flags)
	return cfg, nil
}

func applyOverrides(cfg *config.Config, cmd *cobra.Command, root *rootFlags, flags *statsFlags) {
	if root.LogLevel != "" {
		cfg.Global.LogLevel = root.LogLevel
	}
	if root.LogFormat != "" {
		cfg.Global.LogFormat = root.LogFormat
	}

	if flags.Host != "" {
		cfg.Influx.Host = flags.Host
	}
	if flags.Port != 0 {
		cfg.Influx.Port = flags.Port
	}
	if flags.User != "" {
		cfg.Influx.Username = flags.User
	}
	if flags.Password != "" {
		cfg.Influx.Password = flags.Password
	}
	if flags.Database != "" {
		cfg.Influx.Database = flags.Database
	}
	if flags.Timeout > 0 {
		cfg.Influx.Timeout = flags.Timeout
	}
	if cmd.Flags().Changed("detailed") {
		cfg.Stats.Detailed = flags.Detailed
	}
	if cmd.Flags().Changed("ssl") {
		cfg.Influx.SSL = flags.SSL
	}
	if cmd.Flags().Changed("insecure-skip-verify") {
		cfg.Influx.InsecureSkipVerify = flags.InsecureSkipVerify
	}
}

func newConfigCmd() *cobra.Command {
	var input string
	var output string
	var key string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Config utilities",
	}

	encrypt := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" || output == "" || key == "" {
				return fmt.Errorf("--input, --output, and --key are required")
			}
			return config.EncryptConfigFile(input, output, key)
		},
	}
	encrypt.Flags().StringVar(&input, "input", "", "Input config file")
	encrypt.Flags().StringVar(&output, "output", "", "Output encrypted config file")
	encrypt.Flags().StringVar(&key, "key", "", "Encryption key (base64 or hex)")

	cmd.AddCommand(encrypt)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("influx-stats %s (commit %s, built %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
