package expirer

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// ReservationExpirer интерфейс сервиса, умеющего истекать просроченные брони
type ReservationExpirer interface {
	ExpireOverduePending(ctx context.Context, graceMinutes int) (int64, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Worker фоновая джоба истечения pending-броней.
// Бронь, не подтвержденная в течение grace-периода после начала слота,
// переводится в expired и освобождает свое окно.
type Worker struct {
	service      ReservationExpirer
	schedule     string
	graceMinutes int
	runTimeout   time.Duration
	logger       Logger

	cron *cron.Cron
}

// NewWorker создает джобу истечения броней.
// schedule - cron-выражение (например, "* * * * *" - раз в минуту).
func NewWorker(service ReservationExpirer, schedule string, graceMinutes int, runTimeout time.Duration, logger Logger) *Worker {
	return &Worker{
		service:      service,
		schedule:     schedule,
		graceMinutes: graceMinutes,
		runTimeout:   runTimeout,
		logger:       logger,
	}
}

// Start регистрирует джобу и запускает планировщик
func (w *Worker) Start() error {
	w.cron = cron.New()

	if _, err := w.cron.AddFunc(w.schedule, w.run); err != nil {
		return err
	}

	w.cron.Start()
	w.logger.Info("Expirer worker started (schedule=%q, grace=%dm)", w.schedule, w.graceMinutes)
	return nil
}

// Stop останавливает планировщик и дожидается завершения текущего прохода
func (w *Worker) Stop() {
	if w.cron == nil {
		return
	}
	<-w.cron.Stop().Done()
	w.logger.Info("Expirer worker stopped")
}

// run один проход джобы
func (w *Worker) run() {
	ctx, cancel := context.WithTimeout(context.Background(), w.runTimeout)
	defer cancel()

	expired, err := w.service.ExpireOverduePending(ctx, w.graceMinutes)
	if err != nil {
		w.logger.Error("Expirer run failed: %v", err)
		return
	}

	if expired > 0 {
		w.logger.Info("Expirer run finished: %d reservations expired", expired)
	}
}
