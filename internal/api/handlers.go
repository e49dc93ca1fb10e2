package api

import (
	"context"
	"fmt"
	"mower-core/internal/common/constants"
	"mower-core/internal/config"
	"mower-core/internal/interfaces"
	"mower-core/internal/models"
	"mower-core/internal/state"
	"mower-core/internal/utils"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Executor runs fn on the control loop and waits for it.
type Executor interface {
	Do(ctx context.Context, fn func()) error
}

// Modes is the part of the state controller the API drives.
type Modes interface {
	SetState(mode state.Mode)
	SetUserChangeableState(name string) bool
	UserModes() []string
}

// StatusSource provides the current snapshot. Only read on the loop.
type StatusSource interface {
	Current() models.Status
}

// HistorySource provides the battery voltage history.
type HistorySource interface {
	BatteryHistory(ctx context.Context) ([]models.BatterySample, error)
}

// TelemetrySource provides archived status records, newest first.
type TelemetrySource interface {
	Recent(ctx context.Context, limit int) ([]models.TelemetryRecord, error)
}

// LogSource provides the retained log lines.
type LogSource interface {
	Messages() []string
}

// Deps are the collaborators of Handler. History and Telemetry may be nil.
type Deps struct {
	Loop      Executor
	Modes     Modes
	Status    StatusSource
	Wheels    interfaces.WheelController
	Cutter    interfaces.Cutter
	Clock     interfaces.Clock
	History   HistorySource
	Telemetry TelemetrySource
	Logs      LogSource
	MowerID   string
	Tuning    config.Tuning
}

const (
	defaultTelemetryLimit = 50
	maxTelemetryLimit     = 500
)

// Handler serves the /api/v1 surface.
type Handler struct {
	deps Deps
}

func NewHandler(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// GetStatus returns the current status snapshot with flat keys.
func (h *Handler) GetStatus(c echo.Context) error {
	var current models.Status
	if err := h.deps.Loop.Do(c.Request().Context(), func() {
		current = h.deps.Status.Current()
	}); err != nil {
		return loopError(c, err)
	}
	return c.JSON(http.StatusOK, current)
}

// PutState changes the mode by user name.
func (h *Handler) PutState(c echo.Context) error {
	var cmd models.StateCommand
	if err := c.Bind(&cmd); err != nil || cmd.State == nil {
		return fail(c, http.StatusBadRequest, "Invalid request body, expected {\"state\":\"<NAME>\"}")
	}

	var accepted bool
	if err := h.deps.Loop.Do(c.Request().Context(), func() {
		accepted = h.deps.Modes.SetUserChangeableState(*cmd.State)
	}); err != nil {
		return loopError(c, err)
	}

	if !accepted {
		utils.Logger.Infof("Rejected state change to %s", *cmd.State)
		return fail(c, http.StatusUnprocessableEntity, fmt.Sprintf("%v: %s", state.ErrUnknownMode, *cmd.State))
	}

	utils.Logger.Infof("State change requested: %s", *cmd.State)
	return c.JSON(http.StatusOK, SuccessResponse("State changed", map[string]string{"state": *cmd.State}))
}

// GetModes lists the accepted state names.
func (h *Handler) GetModes(c echo.Context) error {
	var names []string
	if err := h.deps.Loop.Do(c.Request().Context(), func() {
		names = h.deps.Modes.UserModes()
	}); err != nil {
		return loopError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse("Available states", map[string]interface{}{"states": names}))
}

func (h *Handler) ManualForward(c echo.Context) error {
	return h.drive(c, "forward", h.deps.Wheels.Forward)
}

func (h *Handler) ManualBackward(c echo.Context) error {
	return h.drive(c, "backward", h.deps.Wheels.Backward)
}

func (h *Handler) drive(c echo.Context, direction string, move func(turnRate, speed int, smooth bool)) error {
	var cmd models.DriveCommand
	if err := c.Bind(&cmd); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if missing := cmd.Missing(); missing != "" {
		return fail(c, http.StatusBadRequest, fmt.Sprintf("Missing required field: %s", missing))
	}

	return h.manual(c, "Driving "+direction, func() {
		move(*cmd.TurnRate, *cmd.Speed, *cmd.Smooth)
	})
}

func (h *Handler) ManualStop(c echo.Context) error {
	return h.manual(c, "Stopped", func() {
		h.deps.Wheels.Stop(true)
	})
}

func (h *Handler) ManualCutterOn(c echo.Context) error {
	return h.manual(c, "Cutter started", h.deps.Cutter.Start)
}

func (h *Handler) ManualCutterOff(c echo.Context) error {
	return h.manual(c, "Cutter stopped", func() {
		h.deps.Cutter.Stop(true)
	})
}

// manual switches to MANUAL before running fn, both on the loop.
func (h *Handler) manual(c echo.Context, message string, fn func()) error {
	if err := h.deps.Loop.Do(c.Request().Context(), func() {
		h.deps.Modes.SetState(state.Manual)
		fn()
	}); err != nil {
		return loopError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse(message, nil))
}

// GetSystem describes the running instance.
func (h *Handler) GetSystem(c echo.Context) error {
	var uptime uint32
	if h.deps.Clock != nil {
		uptime = h.deps.Clock.Uptime()
	}

	t := h.deps.Tuning
	return c.JSON(http.StatusOK, map[string]interface{}{
		"name":    constants.AppName,
		"version": constants.AppVersion,
		"mowerId": h.deps.MowerID,
		"uptime":  uptime,
		"settings": map[string]interface{}{
			"batteryFullVoltage": t.BatteryFullVoltage,
			"batteryLowVoltage":  t.BatteryLowVoltage,
			"tiltAngleMax":       t.TiltAngleMaxDeg,
			"declination":        t.DeclinationDeg,
			"medianSamples":      t.MedianSamples,
			"throttleSeconds":    t.ThrottleSeconds,
		},
	})
}

func (h *Handler) GetLogLevel(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"level": utils.LogLevel()})
}

func (h *Handler) PutLogLevel(c echo.Context) error {
	var cmd models.LogLevelCommand
	if err := c.Bind(&cmd); err != nil || cmd.Level == nil {
		return fail(c, http.StatusBadRequest, "Invalid request body, expected {\"level\":\"<LEVEL>\"}")
	}

	previous := utils.LogLevel()
	if !utils.SetupLogger(*cmd.Level) {
		utils.SetupLogger(previous)
		return fail(c, http.StatusBadRequest, fmt.Sprintf("Unknown log level: %s", *cmd.Level))
	}

	utils.Logger.Infof("Log level set to %s", utils.LogLevel())
	return c.JSON(http.StatusOK, map[string]string{"level": utils.LogLevel()})
}

func (h *Handler) GetLogMessages(c echo.Context) error {
	messages := []string{}
	if h.deps.Logs != nil {
		messages = append(messages, h.deps.Logs.Messages()...)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"messages": messages})
}

// GetBatteryHistory returns oldest-first samples; empty without a history store.
func (h *Handler) GetBatteryHistory(c echo.Context) error {
	times := []int64{}
	voltages := []float64{}

	if h.deps.History != nil {
		samples, err := h.deps.History.BatteryHistory(c.Request().Context())
		if err != nil {
			utils.Logger.Errorf("Failed to read battery history: %v", err)
			return fail(c, http.StatusInternalServerError, "Failed to read battery history")
		}
		for _, s := range samples {
			times = append(times, s.Time)
			voltages = append(voltages, s.BatteryVoltage)
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"samples": map[string]interface{}{
			"time":  times,
			"value": voltages,
		},
	})
}

// GetTelemetryHistory returns the newest archived records; ?limit= caps the count.
func (h *Handler) GetTelemetryHistory(c echo.Context) error {
	limit := defaultTelemetryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return fail(c, http.StatusBadRequest, fmt.Sprintf("Invalid limit: %s", raw))
		}
		limit = min(n, maxTelemetryLimit)
	}

	records := []models.TelemetryRecord{}
	if h.deps.Telemetry != nil {
		recent, err := h.deps.Telemetry.Recent(c.Request().Context(), limit)
		if err != nil {
			utils.Logger.Errorf("Failed to read telemetry: %v", err)
			return fail(c, http.StatusInternalServerError, "Failed to read telemetry")
		}
		records = append(records, recent...)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":   len(records),
		"records": records,
	})
}
