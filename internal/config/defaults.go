package config

import sgns "github.com/n0madic/go-sgns"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	t := &cfg.Training
	if t.EmbeddingDim == 0 {
		t.EmbeddingDim = sgns.EMBEDDING_DIM
	}
	if t.WindowSize == nil {
		w := sgns.WINDOW_SIZE
		t.WindowSize = &w
	}
	if t.NegativeRate == 0 {
		t.NegativeRate = sgns.NEGATIVE_RATE
	}
	if t.MinCount == nil {
		m := sgns.MIN_COUNT
		t.MinCount = &m
	}
	if t.BatchSize == 0 {
		t.BatchSize = sgns.BATCH_SIZE
	}
	if t.Epochs == 0 {
		t.Epochs = sgns.EPOCHS
	}
	if t.LearningRate == 0 {
		t.LearningRate = sgns.LEARNING_RATE
	}
	if t.Epsilon == 0 {
		t.Epsilon = sgns.EPSILON
	}
	if cfg.Similarity.OOVValue == 0 {
		cfg.Similarity.OOVValue = sgns.OOV_VALUE
	}
	if cfg.Similarity.TopK == 0 {
		cfg.Similarity.TopK = 10
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "dir"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "./models"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
}
