package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	sgns "github.com/n0madic/go-sgns"
	"github.com/n0madic/go-sgns/internal/config"
	"github.com/n0madic/go-sgns/internal/logging"
	"github.com/n0madic/go-sgns/internal/store"
)

// ConfigEnv names the config file when --config is not given.
const ConfigEnv = "SGNS_CONFIG"

func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sgns",
		Short:         "Skip-gram negative sampling word embeddings",
		Long:          `Train word embeddings with skip-gram negative sampling and query word similarities.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)

	rootCmd.AddCommand(
		NewTrainCmd(),
		NewSimilarityCmd(),
		NewNeighborsCmd(),
		NewTokenizeCmd(),
		NewServeCmd(),
		NewModelsCmd(),
	)

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "Config file (default $"+ConfigEnv+")")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().String("store", "", "Model store backend (dir|sqlite)")
	cmd.PersistentFlags().String("store-path", "", "Model store directory or database file")
}

// env is the configuration and logger shared by every subcommand.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}

	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
	}
	if backend, _ := cmd.Flags().GetString("store"); backend != "" {
		cfg.Storage.Backend = backend
	}
	if storePath, _ := cmd.Flags().GetString("store-path"); storePath != "" {
		cfg.Storage.Path = storePath
	}

	logger, err := logging.NewLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return &env{cfg: cfg, logger: logger}, nil
}

func (e *env) modelOptions() []sgns.ModelOption {
	return []sgns.ModelOption{
		sgns.WithModelLogger(logging.Named(e.logger, "model")),
		sgns.WithOOVValue(e.cfg.Similarity.OOVValue),
	}
}

func (e *env) openStore() (store.Store, error) {
	return store.Open(e.cfg.Storage.Backend, e.cfg.Storage.Path, e.modelOptions()...)
}

// loadModel reads the --vectors text file when it is set and the stored model
// named by --model otherwise.
func (e *env) loadModel(cmd *cobra.Command) (*sgns.Model, error) {
	name, _ := cmd.Flags().GetString("model")
	vectorsPath, _ := cmd.Flags().GetString("vectors")
	if vectorsPath != "" {
		header, _ := cmd.Flags().GetBool("vectors-header")
		f, err := os.Open(vectorsPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return sgns.LoadVectors(f, header, e.modelOptions()...)
	}

	st, err := e.openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.Load(cmd.Context(), name)
}

func addModelSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("model", "default", "Name of the stored model")
	cmd.Flags().String("vectors", "", "Read vectors from a text file instead of the store")
	cmd.Flags().Bool("vectors-header", false, "The vectors file starts with a \"words dim\" header line")
}
