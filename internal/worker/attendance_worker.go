package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/repository"
)

// schedulerState is the lifecycle of the attendance scheduler.
type schedulerState int

const (
	stateStopped schedulerState = iota
	stateRunning
)

// AttendanceEngine evaluates every active promotion's students against the
// configured rules and dispatches alerts. The engine is stateless between
// runs: each run is a full rescan, so reruns are idempotent at the alerting
// level and overlapping runs are harmless (both read, neither writes).
type AttendanceEngine struct {
	promotionRepo  *repository.PromotionRepository
	attendanceRepo *repository.AttendanceRepository
	eventRepo      *repository.EventRepository
	dispatcher     Dispatcher
	cfg            RuleConfig
	log            zerolog.Logger
}

// NewAttendanceEngine creates an AttendanceEngine.
func NewAttendanceEngine(
	promotionRepo *repository.PromotionRepository,
	attendanceRepo *repository.AttendanceRepository,
	eventRepo *repository.EventRepository,
	dispatcher Dispatcher,
	cfg RuleConfig,
	log zerolog.Logger,
) *AttendanceEngine {
	return &AttendanceEngine{
		promotionRepo:  promotionRepo,
		attendanceRepo: attendanceRepo,
		eventRepo:      eventRepo,
		dispatcher:     dispatcher,
		cfg:            cfg,
		log:            log.With().Str("component", "attendance_engine").Logger(),
	}
}

// RunFullScan evaluates all rules for every active promotion. A failure in
// one promotion is logged and does not abort the scan of the rest.
func (e *AttendanceEngine) RunFullScan(ctx context.Context) {
	started := time.Now()
	e.log.Info().Msg("attendance scan started")

	promotions, err := e.promotionRepo.ListActive(ctx)
	if err != nil {
		e.log.Error().Err(err).Msg("listing active promotions failed, scan aborted")
		return
	}

	var alerts int
	for _, p := range promotions {
		n, err := e.scanPromotion(ctx, p)
		if err != nil {
			e.log.Error().Err(err).
				Int("promotion_id", p.ID).
				Str("code", p.Code).
				Msg("promotion scan failed, continuing with remaining promotions")
			continue
		}
		alerts += n
	}

	e.log.Info().
		Int("promotions", len(promotions)).
		Int("alerts", alerts).
		Dur("elapsed", time.Since(started)).
		Msg("attendance scan finished")
}

// RunMissingAttendanceSweep flags completed private events with no attendance
// records past the grace period and notifies the organizer.
func (e *AttendanceEngine) RunMissingAttendanceSweep(ctx context.Context) {
	now := time.Now()
	cutoff := now.Add(-e.cfg.MissingRecordGrace)

	events, err := e.eventRepo.FindUnrecorded(ctx, cutoff)
	if err != nil {
		e.log.Error().Err(err).Msg("unrecorded event query failed")
		return
	}

	for _, ev := range events {
		alert := EvaluateMissingAttendance(e.cfg, ev, now)
		if alert == nil {
			continue
		}
		if err := e.dispatcher.Dispatch(ctx, *alert); err != nil {
			e.log.Error().Err(err).Str("event_id", ev.ID.String()).Msg("alert dispatch failed")
		}
	}

	e.log.Info().Int("events", len(events)).Msg("missing attendance sweep finished")
}

func (e *AttendanceEngine) scanPromotion(ctx context.Context, p model.Promotion) (int, error) {
	now := time.Now()
	var alerts []model.Alert

	for _, studentID := range p.StudentIDs {
		attended, total, err := e.attendanceRepo.CountByStudent(ctx, p.ID, studentID)
		if err != nil {
			return 0, fmt.Errorf("count for student %d: %w", studentID, err)
		}
		if a := EvaluateLowAttendance(e.cfg, p.ID, studentID, attended, total, now); a != nil {
			alerts = append(alerts, *a)
		}

		recent, err := e.attendanceRepo.ListByStudent(ctx, p.ID, studentID, e.cfg.ConsecutiveLookback)
		if err != nil {
			return 0, fmt.Errorf("recent records for student %d: %w", studentID, err)
		}
		if a := EvaluateConsecutiveAbsences(e.cfg, p.ID, studentID, recent, now); a != nil {
			alerts = append(alerts, *a)
		}
	}

	windowStart := now.Add(-e.cfg.TrendWindow)
	windowRecords, err := e.attendanceRepo.ListByPromotionSince(ctx, p.ID, windowStart)
	if err != nil {
		return 0, fmt.Errorf("trend window records: %w", err)
	}
	if a := EvaluateDecliningTrend(e.cfg, p.ID, windowRecords, windowStart, now); a != nil {
		alerts = append(alerts, *a)
	}

	for _, a := range alerts {
		if a.RecipientID == 0 {
			a.RecipientID = p.CoordinatorID
		}
		if err := e.dispatcher.Dispatch(ctx, a); err != nil {
			e.log.Error().Err(err).
				Str("type", string(a.Type)).
				Int("promotion_id", p.ID).
				Msg("alert dispatch failed")
		}
	}
	return len(alerts), nil
}

// Scheduler owns the cron instance driving the attendance engine. It is
// constructed once at startup and holds its job handles in an owned map;
// Start and Stop are idempotent, guarded by an explicit state enum.
type Scheduler struct {
	mu     sync.Mutex
	state  schedulerState
	cron   *cron.Cron
	jobs   map[string]cron.EntryID
	engine *AttendanceEngine
	log    zerolog.Logger
}

// NewScheduler creates a stopped Scheduler with the given cron specs
// registered. Invalid specs fail construction.
func NewScheduler(engine *AttendanceEngine, scanSpec, missingSpec string, log zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(),
		jobs:   make(map[string]cron.EntryID),
		engine: engine,
		log:    log.With().Str("component", "attendance_scheduler").Logger(),
	}

	ctx := context.Background()
	scanID, err := s.cron.AddFunc(scanSpec, func() { engine.RunFullScan(ctx) })
	if err != nil {
		return nil, fmt.Errorf("register scan job %q: %w", scanSpec, err)
	}
	s.jobs["full_scan"] = scanID

	missingID, err := s.cron.AddFunc(missingSpec, func() { engine.RunMissingAttendanceSweep(ctx) })
	if err != nil {
		return nil, fmt.Errorf("register missing-attendance job %q: %w", missingSpec, err)
	}
	s.jobs["missing_attendance"] = missingID

	return s, nil
}

// Start begins cron scheduling. Calling Start on a running scheduler is a
// no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == stateRunning {
		return
	}
	s.cron.Start()
	s.state = stateRunning
	s.log.Info().Int("jobs", len(s.jobs)).Msg("attendance scheduler started")
}

// Stop halts scheduling and waits for any in-flight job to finish. Calling
// Stop on a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == stateStopped {
		return
	}
	<-s.cron.Stop().Done()
	s.state = stateStopped
	s.log.Info().Msg("attendance scheduler stopped")
}
