package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"roombridge/internal/config"
	"roombridge/internal/logger"
	"roombridge/internal/models"
	"roombridge/internal/repository"
	"roombridge/internal/transport"
)

// ControlService runs the compensation loop: read the room sensor, read the
// thermostat, and nudge the active setpoint toward the desired temperature.
// It writes at most one setpoint update per tick and never aborts the loop
// for a transient vendor failure.
type ControlService struct {
	cfg        config.Config
	statusRepo repository.StatusRepo
	eventRepo  repository.EventRepo
	sensor     SensorClient
	thermostat ThermostatClient
	policy     SetpointPolicy
	log        *logger.Logger
	paused     atomic.Bool

	// lastApplied remembers the most recent successful write and the inputs
	// that produced it. Vendors apply writes with some lag; without this
	// memory two ticks seeing the same stale snapshot would issue the same
	// write twice. Only touched from RunOnce, which runs on the single loop
	// goroutine.
	lastApplied *appliedWrite
}

// appliedWrite is one issued setpoint pair plus the observation it was
// decided from.
type appliedWrite struct {
	heat, cool       float64 // pair sent to the thermostat
	obsHeat, obsCool float64 // thermostat setpoints at decision time
	obsTemp          float64 // sensor reading at decision time
}

func NewControlService(cfg config.Config, statusRepo repository.StatusRepo, eventRepo repository.EventRepo, sensor SensorClient, thermostat ThermostatClient, log *logger.Logger) *ControlService {
	if log == nil {
		log = logger.Nop()
	}
	return &ControlService{
		cfg:        cfg,
		statusRepo: statusRepo,
		eventRepo:  eventRepo,
		sensor:     sensor,
		thermostat: thermostat,
		policy:     policyFor(cfg.StepPolicy),
		log:        log,
	}
}

// Run executes one tick immediately, then one per interval until ctx is
// canceled. Only unrecoverable failures (exhausted credentials) end the loop
// early; everything else is journaled and retried next tick.
func (s *ControlService) Run(ctx context.Context, tick time.Duration) error {
	if err := s.RunOnce(ctx); err != nil {
		return err
	}
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if err := s.RunOnce(ctx); err != nil {
				return err
			}
		}
	}
}

// RunOnce performs a single fetch-decide-apply cycle. The returned error is
// nil unless the failure is fatal for the whole bridge.
func (s *ControlService) RunOnce(ctx context.Context) error {
	// The window is configured in local wall-clock time; journal timestamps
	// stay UTC.
	local := time.Now()
	now := local.UTC()

	if s.paused.Load() {
		s.record(ctx, now, decision{outcome: models.OutcomeSkipped, reason: models.SkipPaused}, models.Reading{}, models.ThermostatState{}, nil)
		return nil
	}
	if !s.cfg.Window.Contains(local) {
		s.record(ctx, now, decision{outcome: models.OutcomeSkipped, reason: models.SkipOutsideWindow}, models.Reading{}, models.ThermostatState{}, map[string]any{
			"resumes_in_s": int(s.cfg.Window.UntilTransition(local).Seconds()),
		})
		return nil
	}

	reading, state, readErr, stateErr := s.fetch(ctx)

	if readErr != nil {
		if transport.IsFatal(readErr) {
			return readErr
		}
		s.log.Warnw("sensor read failed, skipping tick", "error", readErr)
		s.record(ctx, now, decision{outcome: models.OutcomeSkipped, reason: models.SkipSensorFailure}, models.Reading{}, state, map[string]any{"error": readErr.Error()})
		return nil
	}
	if stateErr != nil {
		if transport.IsFatal(stateErr) {
			return stateErr
		}
		s.log.Warnw("thermostat read failed, skipping tick", "error", stateErr)
		s.record(ctx, now, decision{outcome: models.OutcomeSkipped, reason: models.SkipThermostatError}, reading, models.ThermostatState{}, map[string]any{"error": stateErr.Error()})
		return nil
	}

	d := decide(s.cfg, s.policy, reading, state)
	meta := map[string]any{
		"sensor_temp": reading.Temperature,
		"delta":       s.cfg.DesiredTemperature - reading.Temperature,
		"mode":        state.Mode,
	}

	if d.outcome == models.OutcomeApplied && s.alreadyApplied(d, reading, state) {
		d.outcome = models.OutcomeNoop
		d.reason = "write already issued"
	}

	if d.outcome == models.OutcomeApplied {
		err := s.thermostat.SetSetpoints(ctx, s.cfg.ThermostatDeviceID, d.heat, d.cool, s.cfg.OverrideDuration)
		if err != nil {
			if transport.IsFatal(err) {
				return err
			}
			s.log.Errorw("setpoint write failed", "error", err, "from", d.current, "to", d.target)
			d.outcome = models.OutcomeError
			d.reason = writeFailureReason(err)
			meta["error"] = err.Error()
		} else {
			s.lastApplied = &appliedWrite{
				heat: d.heat, cool: d.cool,
				obsHeat: state.HeatSetpoint, obsCool: state.CoolSetpoint,
				obsTemp: reading.Temperature,
			}
			s.log.Infow("setpoint adjusted",
				"mode", state.Mode, "from", d.current, "to", d.target, "sensor_temp", reading.Temperature)
		}
	}

	s.record(ctx, now, d, reading, state, meta)
	return nil
}

// Pause suspends setpoint writes until Resume. Ticks still run and are
// journaled as skipped.
func (s *ControlService) Pause(ctx context.Context) {
	if s.paused.Swap(true) {
		return
	}
	s.log.Infow("control loop paused")
	s.append(ctx, models.TickEvent{
		Outcome:     models.OutcomePaused,
		Description: "control loop paused by operator",
	})
}

// Resume re-enables setpoint writes.
func (s *ControlService) Resume(ctx context.Context) {
	if !s.paused.Swap(false) {
		return
	}
	s.log.Infow("control loop resumed")
	s.append(ctx, models.TickEvent{
		Outcome:     models.OutcomeResumed,
		Description: "control loop resumed by operator",
	})
}

func (s *ControlService) Paused() bool { return s.paused.Load() }

// alreadyApplied reports whether the decided write repeats the last
// successful one with the sensor reading and thermostat snapshot unchanged
// since that write. Any change in the observed inputs re-arms the write.
func (s *ControlService) alreadyApplied(d decision, reading models.Reading, state models.ThermostatState) bool {
	la := s.lastApplied
	return la != nil &&
		la.heat == d.heat && la.cool == d.cool &&
		la.obsHeat == state.HeatSetpoint && la.obsCool == state.CoolSetpoint &&
		la.obsTemp == reading.Temperature
}

// fetch reads the sensor and the thermostat concurrently. Both vendors are
// independent; neither read should wait on the other's retry budget.
func (s *ControlService) fetch(ctx context.Context) (models.Reading, models.ThermostatState, error, error) {
	var (
		wg       sync.WaitGroup
		reading  models.Reading
		state    models.ThermostatState
		readErr  error
		stateErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		reading, readErr = s.sensor.GetTemperature(ctx, s.cfg.SensorDeviceID)
	}()
	go func() {
		defer wg.Done()
		state, stateErr = s.thermostat.GetState(ctx, s.cfg.ThermostatDeviceID)
	}()
	wg.Wait()
	return reading, state, readErr, stateErr
}

// decision is the outcome of one tick before any write happens.
type decision struct {
	outcome string
	reason  string
	current float64 // active setpoint before the tick
	target  float64 // active setpoint after the tick (APPLIED only)
	heat    float64 // full pair written to the thermostat
	cool    float64
}

// decide computes what this tick should do from the sensor reading and the
// thermostat snapshot. Pure; all I/O stays in RunOnce.
func decide(cfg config.Config, pol SetpointPolicy, reading models.Reading, state models.ThermostatState) decision {
	current, side, ok := state.ActiveSetpoint()
	if !ok {
		return decision{outcome: models.OutcomeSkipped, reason: models.SkipModeOff}
	}

	delta := cfg.DesiredTemperature - reading.Temperature
	if math.Abs(delta) <= cfg.Tolerance {
		return decision{outcome: models.OutcomeNoop, reason: "within tolerance", current: current, target: current}
	}

	// A heating setpoint cannot pull the room down, nor a cooling one up.
	if (state.Mode == models.ModeHeat && delta < 0) || (state.Mode == models.ModeCool && delta > 0) {
		return decision{outcome: models.OutcomeSkipped, reason: models.SkipModeIncompatible, current: current}
	}

	next := clamp(current+pol.Step(delta, cfg.StepSize), cfg.MinSetpoint, cfg.MaxSetpoint)
	if next == current {
		return decision{outcome: models.OutcomeNoop, reason: "setpoint pinned at bound", current: current, target: current}
	}

	d := decision{outcome: models.OutcomeApplied, current: current, target: next, heat: state.HeatSetpoint, cool: state.CoolSetpoint}
	if side == models.ModeHeat {
		d.heat = next
	} else {
		d.cool = next
	}
	return d
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// writeFailureReason condenses a failed write into a journal reason.
func writeFailureReason(err error) string {
	var vErr *transport.ValidationError
	if errors.As(err, &vErr) {
		return "write rejected by thermostat"
	}
	return models.SkipThermostatError
}

// record journals the tick and refreshes the status snapshot. Persistence
// failures are logged and swallowed; the loop itself never depends on them.
func (s *ControlService) record(ctx context.Context, now time.Time, d decision, reading models.Reading, state models.ThermostatState, meta map[string]any) {
	s.append(ctx, models.TickEvent{
		OccurredAt:  now,
		Outcome:     d.outcome,
		Description: tickDescription(d),
		Metadata:    meta,
	})
	st := models.BridgeStatus{
		ID:          1,
		Outcome:     d.outcome,
		Reason:      d.reason,
		SensorTemp:  reading.Temperature,
		Mode:        state.Mode,
		Setpoint:    d.current,
		NewSetpoint: d.target,
		Paused:      s.paused.Load(),
		UpdatedAt:   now,
	}
	if err := s.statusRepo.Save(ctx, st); err != nil {
		s.log.Warnw("status save failed", "error", err)
	}
}

// append writes one journal entry. The repo assigns the event id and
// timestamp when they are empty.
func (s *ControlService) append(ctx context.Context, e models.TickEvent) {
	if err := s.eventRepo.Append(ctx, e); err != nil {
		s.log.Warnw("journal append failed", "error", err)
	}
}

func tickDescription(d decision) string {
	switch d.outcome {
	case models.OutcomeApplied:
		return "setpoint adjusted"
	case models.OutcomeNoop, models.OutcomeError:
		return d.reason
	default:
		return "tick skipped: " + d.reason
	}
}
