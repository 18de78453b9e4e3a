package main

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/rowjay/influx-utility/internal/config"
)

func overrideCmd(flags *validateFlags) *cobra.Command {
	cmd := &cobra.Command{Use: "influx-validate"}
	cmd.Flags().BoolVar(&flags.Verbose, "verbose", false, "")
	cmd.Flags().BoolVar(&flags.S3UseSSL, "s3-ssl", false, "")
	cmd.Flags().BoolVar(&flags.S3PathStyle, "s3-path-style", false, "")
	return cmd
}

func TestApplyOverridesS3Flags(t *testing.T) {
	flags := &validateFlags{}
	cmd := overrideCmd(flags)
	if err := cmd.Flags().Parse([]string{"--s3-ssl=false", "--s3-path-style"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg := &config.Config{}
	cfg.Storage.S3.UseSSL = true
	applyOverrides(cfg, cmd, &rootFlags{}, flags)

	if cfg.Storage.S3.UseSSL {
		t.Fatalf("explicit --s3-ssl=false must override the config value")
	}
	if !cfg.Storage.S3.ForcePathStyle {
		t.Fatalf("--s3-path-style not applied")
	}
}

func TestApplyOverridesLeavesUnsetFlagsAlone(t *testing.T) {
	flags := &validateFlags{}
	cmd := overrideCmd(flags)
	if err := cmd.Flags().Parse(nil); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg := &config.Config{}
	cfg.Storage.S3.UseSSL = true
	cfg.Validate.Verbose = true
	applyOverrides(cfg, cmd, &rootFlags{}, flags)

	if !cfg.Storage.S3.UseSSL {
		t.Fatalf("unset --s3-ssl must not clobber the config value")
	}
	if !cfg.Validate.Verbose {
		t.Fatalf("unset --verbose must not clobber the config value")
	}
}
