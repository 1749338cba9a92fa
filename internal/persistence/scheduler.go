package persistence

import (
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"signalkit/internal/persistence/interfaces"
	"signalkit/internal/providers"
	"signalkit/internal/structures"
)

type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	fileManager *FileManager
	metrics     providers.MetricsProviderInterface
	cron        *gron.Cron
	opsMu       sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	interval := max(s.config.Persistence.SaveInterval, time.Second)

	s.cron.AddFunc(gron.Every(interval), func() {
		if err := s.save(); err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
			return
		}
		s.logger.Debugf(providers.TypeApp, "Persisted options to file %s", s.config.Persistence.FilePath)
	})

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	return s.fileManager.LoadFromFile(s.config.Persistence.FilePath)
}

func (s *Scheduler) Persist() error {
	s.logger.Infof(providers.TypeApp, "Persisting options to file...")
	err := s.save()
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
		return err
	}
	return nil
}

// Close releases the compressor. It waits for an in-flight save; the
// scheduler must not be used afterwards.
func (s *Scheduler) Close() {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()
	s.fileManager.Close()
}

func (s *Scheduler) save() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	start := time.Now()
	err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
	s.metrics.ObservePersistenceDuration(time.Since(start))
	return err
}

func NewScheduler(config *structures.Config, logger providers.Logger, fileManager *FileManager, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		fileManager: fileManager,
		metrics:     metrics,
	}
}
