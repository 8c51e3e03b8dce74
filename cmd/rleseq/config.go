package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bsm/rleseq"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configName = ".rleseq"
	configType = "yaml"
	envPrefix  = "RLESEQ"

	defaultMaxMetadata = 1 << 16
)

// flagKeys maps config keys to command line flags.
var flagKeys = map[string]string{
	"compression":  "compression",
	"max_metadata": "max-metadata",
	"max_chunks":   "max-chunks",
	"verbose":      "verbose",
}

type config struct {
	Compression rleseq.Compression
	MaxMetadata int
	MaxChunks   uint64
	Logger      log.Logger
}

// loadConfig resolves settings from flags, RLESEQ_* environment variables,
// an optional config file and defaults, in that order.
func loadConfig(cmd *cobra.Command) (*config, error) {
	v := viper.New()
	v.SetDefault("compression", rleseq.NoCompression.String())
	v.SetDefault("max_metadata", defaultMaxMetadata)
	v.SetDefault("max_chunks", 0)
	v.SetDefault("verbose", false)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	flags := cmd.Flags()
	for key, name := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	if path, _ := flags.GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	codec, err := rleseq.ParseCompression(v.GetString("compression"))
	if err != nil {
		return nil, fmt.Errorf("invalid compression %q: %w", v.GetString("compression"), err)
	}

	maxMeta := v.GetInt("max_metadata")
	if maxMeta < 1 {
		return nil, fmt.Errorf("invalid max-metadata %d: must be positive", maxMeta)
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(cmd.ErrOrStderr()))
	if v.GetBool("verbose") {
		logger = level.NewFilter(logger, level.AllowDebug())
	} else {
		logger = level.NewFilter(logger, level.AllowInfo())
	}

	return &config{
		Compression: codec,
		MaxMetadata: maxMeta,
		MaxChunks:   v.GetUint64("max_chunks"),
		Logger:      logger,
	}, nil
}

func (c *config) readFile(name string) (*rleseq.Container[int32], []int32, error) {
	return rleseq.ReadFile[int32](name, &rleseq.ReaderOptions{
		Compression: c.Compression,
		MaxMetadata: c.MaxMetadata,
		MaxChunks:   c.MaxChunks,
		Logger:      c.Logger,
	})
}

// writeFile replaces a file atomically.
func (c *config) writeFile(name string, seq *rleseq.Container[int32], meta []int32) error {
	f, err := os.CreateTemp(filepath.Dir(name), filepath.Base(name)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := errors.Join(f.Chmod(0o644), f.Close()); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := rleseq.WriteFile(tmp, seq, meta, &rleseq.WriterOptions{
		Compression: c.Compression,
		Logger:      c.Logger,
	}); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, name); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
