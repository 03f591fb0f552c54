// Package trainerbuilder wires the trainer components from configuration.
package trainerbuilder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/park285/cheese-opening-trainer/internal/completion"
	"github.com/park285/cheese-opening-trainer/internal/config"
	"github.com/park285/cheese-opening-trainer/internal/engine/uci"
	"github.com/park285/cheese-opening-trainer/internal/httpapi"
	"github.com/park285/cheese-opening-trainer/internal/judgement"
	"github.com/park285/cheese-opening-trainer/internal/lesson"
	"github.com/park285/cheese-opening-trainer/internal/msgcat"
	"github.com/park285/cheese-opening-trainer/internal/openings"
	"github.com/park285/cheese-opening-trainer/internal/pgntree"
	"github.com/park285/cheese-opening-trainer/internal/review"
)

// Deps holds the built components. Engine, Review and Book are nil when
// their configuration is absent.
type Deps struct {
	Cache      *pgntree.Cache
	Classifier *judgement.Classifier
	Limits     lesson.Limits
	Lessons    lesson.Repository
	Progress   completion.Store
	Book       *openings.Book
	Engine     *uci.Pool
	Review     *review.Service
	Catalog    *msgcat.Catalog

	db    *sql.DB
	redis *completion.RedisStore
}

// New builds Deps from cfg. Without DATABASE_URL lessons are kept in memory,
// without REDIS_URL progress is too.
func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Deps{
		Limits: lesson.Limits{
			MaxChapters:    cfg.LessonMaxChapters,
			MaxPGNLength:   cfg.LessonMaxPGNLength,
			MaxTitleLength: cfg.LessonMaxTitleLength,
		},
	}
	if err := d.build(ctx, cfg, logger); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

func (d *Deps) build(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) error {
	var err error
	if d.Cache, err = pgntree.NewCache(cfg.PGNCacheSize); err != nil {
		return err
	}

	thresholds := judgement.DefaultThresholds()
	if path := strings.TrimSpace(cfg.JudgementThresholdsFile); path != "" {
		if thresholds, err = judgement.LoadThresholds(path); err != nil {
			return fmt.Errorf("load thresholds: %w", err)
		}
	}
	if d.Classifier, err = judgement.NewClassifier(thresholds); err != nil {
		return err
	}

	if d.Catalog, err = msgcat.New(""); err != nil {
		return err
	}

	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		if d.db, err = lesson.OpenPostgres(ctx, cfg.DatabaseURL); err != nil {
			return err
		}
		if err := lesson.EnsureSchema(ctx, d.db); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		d.Lessons = lesson.NewRepository(d.db)
	} else {
		logger.Warn("DATABASE_URL not set; lessons are kept in memory")
		d.Lessons = lesson.NewMemoryRepository()
	}

	if strings.TrimSpace(cfg.RedisURL) != "" {
		if d.redis, err = completion.NewRedisStoreFromURL(ctx, cfg.RedisURL); err != nil {
			return err
		}
		d.Progress = d.redis
	} else {
		logger.Warn("REDIS_URL not set; progress is kept in memory")
		d.Progress = completion.NewMemoryStore()
	}

	if path := strings.TrimSpace(cfg.OpeningBookPath); path != "" {
		if d.Book, err = openings.LoadBook(path); err != nil {
			return fmt.Errorf("load opening book: %w", err)
		}
	}

	if path := strings.TrimSpace(cfg.StockfishPath); path != "" {
		d.Engine, err = uci.NewPool(uci.PoolConfig{
			BinaryPath: path,
			Capacity:   cfg.EnginePoolSize,
			Options: uci.Options{
				Threads: cfg.EngineThreads,
				HashMB:  cfg.EngineHashMB,
				MultiPV: cfg.EngineMultiPV,
			},
			Logger: logger.Named("uci"),
		})
		if err != nil {
			return fmt.Errorf("init engine: %w", err)
		}
		opts := []review.Option{review.WithLimits(uci.Limits{Depth: cfg.EngineDepth, MoveTimeMillis: cfg.EngineMoveTimeMS})}
		if d.Book != nil {
			opts = append(opts, review.WithBook(d.Book))
		}
		d.Review = review.NewService(d.Engine, d.Classifier, logger.Named("review"), opts...)
	}
	return nil
}

// HTTPDeps adapts d for httpapi.New.
func (d *Deps) HTTPDeps(logger *zap.Logger) httpapi.Deps {
	hd := httpapi.Deps{
		Cache:      d.Cache,
		Classifier: d.Classifier,
		Limits:     d.Limits,
		Lessons:    d.Lessons,
		Progress:   d.Progress,
		Catalog:    d.Catalog,
		Logger:     logger,
	}
	if d.Review != nil {
		hd.Reviewer = d.Review
	}
	return hd
}

func (d *Deps) Close() error {
	var errs []error
	if d.Engine != nil {
		errs = append(errs, d.Engine.Close())
	}
	if d.redis != nil {
		errs = append(errs, d.redis.Close())
	}
	if d.db != nil {
		errs = append(errs, d.db.Close())
	}
	return errors.Join(errs...)
}
