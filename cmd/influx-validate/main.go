package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rowjay/influx-utility/internal/backup"
	"github.com/rowjay/influx-utility/internal/config"
	"github.com/rowjay/influx-utility/internal/logging"
	"github.com/rowjay/influx-utility/internal/remote"
	"github.com/rowjay/influx-utility/internal/version"
)

type rootFlags struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

type validateFlags struct {
	Verbose       bool
	WorkDir       string
	DecryptionKey string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3Region      string
	S3UseSSL      bool
	S3PathStyle   bool
}

func main() {
	root := &rootFlags{}
	flags := &validateFlags{}

	rootCmd := &cobra.Command{
		Use:   "influx-validate <backup_path>",
		Short: "Validate the structure of an InfluxDB backup directory or archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, root, flags)
			if err != nil {
				return err
			}
			logger := logging.Configure(cfg.Global.LogLevel, cfg.Global.LogFormat)

			target := args[0]
			if remote.IsS3URL(target) {
				ctx, cancel := context.WithTimeout(context.Background(), cfg.Global.OperationTimeout)
				defer cancel()
				local, cleanup, err := remote.Fetch(ctx, cfg.Storage.S3, target)
				if err != nil {
					return err
				}
				defer cleanup()
				logger.Info().Str("url", target).Str("local", local).Msg("downloaded backup for validation")
				target = local
			}

			report := backup.ValidateTarget(target, backup.Options{
				WorkDir:       cfg.Validate.WorkDir,
				DecryptionKey: cfg.Validate.DecryptionKey,
				Log:           logger,
			})
			report.Render(os.Stdout, cfg.Validate.Verbose)
			if !report.OK() {
				// Exit status carries the verdict; the report already
				// names the failing checks.
				cmd.SilenceErrors = true
				cmd.SilenceUsage = true
				return fmt.Errorf("backup validation failed")
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&root.ConfigPath, "config", "", "Path to config file (yaml/toml/json or .enc)")
	rootCmd.PersistentFlags().StringVar(&root.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&root.LogFormat, "log-format", "", "Log format (json, console)")

	rootCmd.Flags().BoolVar(&flags.Verbose, "verbose", false, "Print warnings and every discovered file with its size")
	rootCmd.Flags().StringVar(&flags.WorkDir, "work-dir", "", "Fixed extraction workspace (temp dir when unset)")
	rootCmd.Flags().StringVar(&flags.DecryptionKey, "decryption-key", "", "Key (base64 or hex) for .enc archives")
	rootCmd.Flags().StringVar(&flags.S3Endpoint, "s3-endpoint", "", "S3 endpoint for s3:// targets (MinIO/OSS)")
	rootCmd.Flags().StringVar(&flags.S3AccessKey, "s3-access-key", "", "S3 access key")
	rootCmd.Flags().StringVar(&flags.S3SecretKey, "s3-secret-key", "", "S3 secret key")
	rootCmd.Flags().StringVar(&flags.S3Region, "s3-region", "", "S3 region")
	rootCmd.Flags().BoolVar(&flags.S3UseSSL, "s3-ssl", false, "Use SSL for S3 endpoint")
	rootCmd.Flags().BoolVar(&flags.S3PathStyle, "s3-path-style", false, "Force path-style S3")

	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, root *rootFlags, flags *validateFlags) (*config.Config, error) {
	cfg, err := config.Load(root.ConfigPath)
	if err != nil {
		return nil, err
	}
	applyOverrides(cfg, cmd, root, flags)
	return cfg, nil
}

func applyOverrides(cfg *config.Config, cmd *cobra.Command, root *rootFlags, flags *validateFlags) {
	if root.LogLevel != "" {
		cfg.Global.LogLevel = root.LogLevel
	}
	if root.LogFormat != "" {
		cfg.Global.LogFormat = root.LogFormat
	}

	if cmd.Flags().Changed("verbose") {
		cfg.Validate.Verbose = flags.Verbose
	}
	if flags.WorkDir != "" {
		cfg.Validate.WorkDir = flags.WorkDir
	}
	if flags.DecryptionKey != "" {
		cfg.Validate.DecryptionKey = flags.DecryptionKey
	}

	if flags.S3Endpoint != "" {
		cfg.Storage.S3.Endpoint = flags.S3Endpoint
	}
	if flags.S3AccessKey != "" {
		cfg.Storage.S3.AccessKey = flags.S3AccessKey
	}
	if flags.S3SecretKey != "" {
		cfg.Storage.S3.SecretKey = flags.S3SecretKey
	}
	if flags.S3Region != "" {
		cfg.Storage.S3.Region = flags.S3Region
	}
	if cmd.Flags().Changed("s3-ssl") {
		cfg.Storage.S3.UseSSL = flags.S3UseSSL
	}
	if cmd.Flags().Changed("s3-path-style") {
		cfg.Storage.S3.ForcePathStyle = flags.S3PathStyle
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("influx-validate %s (commit %s, built %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
