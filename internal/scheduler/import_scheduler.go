package scheduler

import (
	"context"
	"errors"
	"sync"

	"github.com/booktime/booktime/config"
	"github.com/booktime/booktime/internal/app/service"
	"github.com/booktime/booktime/pkg/logger"
	"github.com/robfig/cron/v3"
)

var ErrNoImportSource = errors.New("import schedule set without an import source")

// ImportScheduler runs the product import on a cron schedule.
type ImportScheduler struct {
	cron          *cron.Cron
	importService service.ImportService
	cfg           config.ImportConfig
	log           *logger.Logger

	mu      sync.Mutex
	running bool
}

func NewImportScheduler(importService service.ImportService, cfg config.ImportConfig) *ImportScheduler {
	return &ImportScheduler{
		cron:          cron.New(),
		importService: importService,
		cfg:           cfg,
		log:           logger.Named("scheduler"),
	}
}

// Start registers the import job. An empty schedule leaves the scheduler idle.
func (s *ImportScheduler) Start() error {
	if s.cfg.Schedule == "" {
		s.log.Info("Scheduled import disabled")
		return nil
	}
	if s.cfg.Source == "" {
		return ErrNoImportSource
	}

	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.RunOnce); err != nil {
		s.log.Error("Failed to add cron job for product import", err, map[string]interface{}{
			"schedule": s.cfg.Schedule,
		})
		return err
	}

	s.cron.Start()
	s.log.Info("Import scheduler started", map[string]interface{}{
		"schedule":  s.cfg.Schedule,
		"source":    s.cfg.Source,
		"image_dir": s.cfg.ImageDir,
	})
	return nil
}

// RunOnce imports the configured source. Overlapping runs are skipped.
func (s *ImportScheduler) RunOnce() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.log.Warn("Previous scheduled import still running, skipping")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	s.log.Info("Starting scheduled product import", map[string]interface{}{
		"source": s.cfg.Source,
	})

	report, err := s.importService.Import(context.Background(), s.cfg.Source, s.cfg.ImageDir)
	if err != nil {
		s.log.Error("Scheduled product import failed", err, map[string]interface{}{
			"source": s.cfg.Source,
		})
		return
	}

	s.log.Info("Scheduled product import finished", map[string]interface{}{
		"products_processed": report.ProductsProcessed,
		"products_created":   report.ProductsCreated,
		"tags_processed":     report.TagsProcessed,
		"tags_created":       report.TagsCreated,
		"images_processed":   report.ImagesProcessed,
		"warnings":           len(report.Warnings),
	})
}

// Stop waits for a running import to finish.
func (s *ImportScheduler) Stop() {
	s.log.Info("Stopping import scheduler...")
	<-s.cron.Stop().Done()
	s.log.Info("Import scheduler stopped")
}
