package scheduler

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

var (
	ErrEmptyJobName    = errors.New("scheduler: job name is required")
	ErrEmptyCronExpr   = errors.New("scheduler: cron expression is required")
	ErrInvalidInterval = errors.New("scheduler: interval must be positive")
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Service обёртка над gocron для фоновых задач сервиса
// Задачи одного имени не перекрываются: следующий запуск ждёт завершения предыдущего
type Service struct {
	scheduler gocron.Scheduler
	logger    Logger

	stopOnce sync.Once
	stopErr  error
}

// New создает планировщик. Паника в задаче логируется и не роняет процесс
func New(logger Logger) (*Service, error) {
	sched, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(
			gocron.WithSingletonMode(gocron.LimitModeWait),
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					logger.Error("Scheduler: job %s (%s) panicked: %v", jobName, jobID, recoverData)
				}),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	return &Service{scheduler: sched, logger: logger}, nil
}

// Start запускает выполнение задач
func (s *Service) Start() {
	s.logger.Info("Scheduler: starting with %d jobs", len(s.scheduler.Jobs()))
	s.scheduler.Start()
}

// Stop останавливает планировщик и дожидается текущих задач
func (s *Service) Stop() error {
	s.stopOnce.Do(func() {
		s.logger.Info("Scheduler: stopping")
		s.stopErr = s.scheduler.Shutdown()
	})
	return s.stopErr
}

// AddJob регистрирует задачу по cron-выражению
func (s *Service) AddJob(name, cronExpr string, task func()) (gocron.Job, error) {
	if strings.TrimSpace(cronExpr) == "" {
		return nil, ErrEmptyCronExpr
	}
	return s.add(name, gocron.CronJob(cronExpr, false), task, "cron "+cronExpr)
}

// AddIntervalJob регистрирует задачу с фиксированным интервалом
func (s *Service) AddIntervalJob(name string, interval time.Duration, task func()) (gocron.Job, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}
	return s.add(name, gocron.DurationJob(interval), task, "every "+interval.String())
}

func (s *Service) add(name string, definition gocron.JobDefinition, task func(), schedule string) (gocron.Job, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyJobName
	}

	job, err := s.scheduler.NewJob(definition, gocron.NewTask(task), gocron.WithName(name))
	if err != nil {
		s.logger.Error("Scheduler: failed to register job %s (%s): %v", name, schedule, err)
		return nil, fmt.Errorf("register job %s: %w", name, err)
	}

	s.logger.Info("Scheduler: registered job %s (%s)", name, schedule)
	return job, nil
}
