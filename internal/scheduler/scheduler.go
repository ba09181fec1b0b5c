package scheduler

import (
	"context"
	"fmt"
	"time"

	"kafe-backend/internal/config"
	"kafe-backend/internal/export"
	appmetrics "kafe-backend/prometheus"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler - günde bir kez "dün" için export tetikler. Başarısız bir gün
// sonraki günleri engellemez; idempotent replace sayesinde her gün manuel
// olarak yeniden export edilebilir.
type Scheduler struct {
	cron     *cron.Cron
	exporter *export.Exporter
	cfg      *config.Config
	loc      *time.Location
	logger   *zap.Logger
}

func NewScheduler(cfg *config.Config, exporter *export.Exporter, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone yüklenemedi (%s): %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		exporter: exporter,
		cfg:      cfg,
		loc:      loc,
		logger:   logger,
	}, nil
}

func (s *Scheduler) Start() {
	spec := fmt.Sprintf("%d %d * * *", s.cfg.ExportMinute, s.cfg.ExportHour)
	if _, err := s.cron.AddFunc(spec, s.exportYesterday); err != nil {
		s.logger.Error("export job zamanlanamadı", zap.Error(err))
		return
	}

	s.cron.Start()
	s.logger.Info("scheduler başlatıldı", zap.String("spec", spec), zap.String("tz", s.cfg.Timezone))

	// Açılışta best-effort catch-up: süreç gece çökmüşse dünün verisi
	// yine de yayınlanır. Aynı gün daha önce export edildiyse replace
	// sonucu değiştirmez.
	if s.cfg.ExportOnStartup {
		go s.exportYesterday()
	}
}

func (s *Scheduler) Stop() {
	s.logger.Info("scheduler durduruluyor")
	s.cron.Stop()
}

func (s *Scheduler) exportYesterday() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	yesterday := exportTarget(time.Now(), s.loc)
	s.logger.Info("günlük export başlıyor", zap.String("date", yesterday.Format("2006-01-02")))

	start := time.Now()
	err := s.exporter.ExportDay(ctx, yesterday, nil)
	appmetrics.ExportDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		appmetrics.ExportRunsTotal.WithLabelValues("failed").Inc()
		s.logger.Error("günlük export başarısız", zap.Error(err))
		return
	}
	appmetrics.ExportRunsTotal.WithLabelValues("ok").Inc()
}

// exportTarget - cron'un çalıştığı dilimde "dün". Sunucu saati UTC iken ileri
// bir dilimde gece yarısından hemen sonraki tetik sistem saatine göre hala
// önceki takvim günündedir; gün sistem saatine göre değil zamanlanan dilime
// göre hesaplanır.
func exportTarget(now time.Time, loc *time.Location) time.Time {
	return now.In(loc).AddDate(0, 0, -1)
}
