package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

type AppConfig struct {
	HTTPAddr string `toml:"http_addr"`

	RedisURL    string `toml:"redis_url"`
	DatabaseURL string `toml:"database_url"`

	LessonMaxChapters    int `toml:"lesson_max_chapters"`
	LessonMaxPGNLength   int `toml:"lesson_max_pgn_length"`
	LessonMaxTitleLength int `toml:"lesson_max_title_length"`

	PGNCacheSize int `toml:"pgn_cache_size"`

	// JudgementThresholdsFile replaces the built-in band policy when set.
	JudgementThresholdsFile string `toml:"judgement_thresholds_file"`
	OpeningBookPath         string `toml:"opening_book_path"`

	StockfishPath    string `toml:"stockfish_path"`
	EnginePoolSize   int    `toml:"engine_pool_size"`
	EngineThreads    int    `toml:"engine_threads"`
	EngineHashMB     int    `toml:"engine_hash_mb"`
	EngineMultiPV    int    `toml:"engine_multipv"`
	EngineDepth      int    `toml:"engine_depth"`
	EngineMoveTimeMS int    `toml:"engine_movetime_ms"`
}

func defaults() *AppConfig {
	return &AppConfig{
		HTTPAddr:             ":8080",
		LessonMaxChapters:    50,
		LessonMaxPGNLength:   20000,
		LessonMaxTitleLength: 100,
		PGNCacheSize:         256,
		EnginePoolSize:       2,
		EngineThreads:        1,
		EngineHashMB:         64,
		EngineMultiPV:        3,
		EngineDepth:          16,
	}
}

// Load reads defaults, then the TOML file named by TRAINER_CONFIG, then the
// environment. A missing file is skipped.
func Load() (*AppConfig, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("TRAINER_CONFIG")); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.StockfishPath, "STOCKFISH_PATH")
	setString(&cfg.JudgementThresholdsFile, "JUDGEMENT_THRESHOLDS_FILE")
	setString(&cfg.OpeningBookPath, "OPENING_BOOK_PATH")

	setPositive(&cfg.LessonMaxChapters, "LESSON_MAX_CHAPTERS")
	setPositive(&cfg.LessonMaxPGNLength, "LESSON_MAX_PGN_LENGTH")
	setPositive(&cfg.LessonMaxTitleLength, "LESSON_MAX_TITLE_LENGTH")
	setPositive(&cfg.PGNCacheSize, "PGN_CACHE_SIZE")
	setPositive(&cfg.EnginePoolSize, "ENGINE_POOL_SIZE")
	setPositive(&cfg.EngineThreads, "ENGINE_THREADS")
	setPositive(&cfg.EngineHashMB, "ENGINE_HASH_MB")
	setPositive(&cfg.EngineMultiPV, "ENGINE_MULTIPV")
	setPositive(&cfg.EngineDepth, "ENGINE_DEPTH")
	setPositive(&cfg.EngineMoveTimeMS, "ENGINE_MOVETIME_MS")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	if c.LessonMaxChapters <= 0 || c.LessonMaxPGNLength <= 0 || c.LessonMaxTitleLength <= 0 {
		return errors.New("lesson limits must be positive")
	}
	if c.EngineMultiPV < 2 {
		return fmt.Errorf("ENGINE_MULTIPV must be at least 2: %d", c.EngineMultiPV)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// setPositive ignores unparsable or non-positive values.
func setPositive(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}
