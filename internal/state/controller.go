// internal/state/controller.go
package state

import (
	"context"
	"errors"
	"mower-core/internal/interfaces"
	"mower-core/internal/utils"

	"github.com/looplab/fsm"
)

// ErrUnknownMode 알 수 없는 모드 이름
var ErrUnknownMode = errors.New("unknown state")

const eventPrefix = "set_"

// Controller는 현재 운영 모드의 유일한 소유자입니다. 모드마다 하나의 Behavior를
// 생성 시점에 만들고 프로세스가 끝날 때까지 재사용합니다.
type Controller struct {
	FSM     *fsm.FSM
	lookup  [modeCount]Behavior
	current Behavior

	// 전환 관찰자 (상태 푸시 등). 전환 콜백 안에서 호출됩니다.
	onChange func(from, to Mode)
}

// NewController는 모든 모드의 Behavior를 만들고 initial 모드로 진입합니다.
func NewController(initial Mode, res interfaces.Resources, opts Options) *Controller {
	c := &Controller{}

	b := func(m Mode) base { return base{mode: m, sm: c, res: res, opts: opts} }
	c.lookup = [modeCount]Behavior{
		Docked:    &docked{b(Docked)},
		Launching: &launching{base: b(Launching)},
		Mowing:    &mowing{b(Mowing)},
		Docking:   &docking{b(Docking)},
		Charging:  &charging{b(Charging)},
		Stuck:     &stuck{b(Stuck)},
		Flipped:   &flipped{b(Flipped)},
		Paused:    &paused{b(Paused)},
		Demo:      &demo{b(Demo)},
		Manual:    &manual{b(Manual)},
	}

	if !initial.Valid() {
		initial = Docked
	}
	c.initializeFSM(initial)

	c.current = c.lookup[initial]
	c.current.Enter()
	utils.Logger.Infof("State controller initialized in %s", initial)

	return c
}

// initializeFSM은 모든 모드에서 모든 모드로 가는 이벤트를 등록합니다.
// 전환 정책은 호출자의 몫이므로 여기서는 막지 않습니다.
func (c *Controller) initializeFSM(initial Mode) {
	all := make([]string, 0, modeCount)
	for _, m := range AllModes() {
		all = append(all, m.String())
	}

	events := make(fsm.Events, 0, modeCount)
	for _, m := range AllModes() {
		events = append(events, fsm.EventDesc{Name: eventPrefix + m.String(), Src: all, Dst: m.String()})
	}

	c.FSM = fsm.NewFSM(
		initial.String(),
		events,
		fsm.Callbacks{
			"leave_state": c.onLeaveState,
			"enter_state": c.onEnterState,
		},
	)
}

func (c *Controller) onLeaveState(ctx context.Context, e *fsm.Event) {
	if from, ok := ParseMode(e.Src); ok {
		c.lookup[from].Exit()
	}
}

func (c *Controller) onEnterState(ctx context.Context, e *fsm.Event) {
	to, ok := ParseMode(e.Dst)
	if !ok {
		return
	}
	from, _ := ParseMode(e.Src)

	c.current = c.lookup[to]
	c.current.Enter()

	utils.Logger.Infof("STATE: %s -> %s", e.Src, e.Dst)
	if c.onChange != nil {
		c.onChange(from, to)
	}
}

// OnChange registers an observer called after every real transition.
func (c *Controller) OnChange(fn func(from, to Mode)) {
	c.onChange = fn
}

// SetState replaces the active mode unconditionally. Setting the mode that is
// already active is a no-op.
func (c *Controller) SetState(mode Mode) {
	if !mode.Valid() {
		utils.Logger.Warnf("Ignoring invalid mode %d", int(mode))
		return
	}

	err := c.FSM.Event(context.Background(), eventPrefix+mode.String())
	if err == nil {
		return
	}

	var noTransition fsm.NoTransitionError
	if errors.As(err, &noTransition) {
		return
	}

	// every event is reachable from every state, so this only happens if a
	// behavior hook tried to transition from inside a transition
	utils.Logger.Errorf("STATE: transition to %s failed: %v", mode, err)
}

// SetUserChangeableState resolves a user supplied name and switches to it.
// Unknown names, and modes users may not select, leave the mode unchanged.
func (c *Controller) SetUserChangeableState(name string) bool {
	mode, ok := ParseMode(name)
	if !ok || !c.lookup[mode].UserSelectable() {
		return false
	}
	c.SetState(mode)
	return true
}

// StateInstance returns the active behavior.
func (c *Controller) StateInstance() Behavior {
	return c.current
}

// Current returns the active mode.
func (c *Controller) Current() Mode {
	return c.current.Mode()
}

// Behavior returns the registered behavior for mode.
func (c *Controller) Behavior(mode Mode) Behavior {
	if !mode.Valid() {
		return nil
	}
	return c.lookup[mode]
}

// Tick runs one control step of the active behavior.
func (c *Controller) Tick() {
	c.current.Process()
}

// UserModes lists the names SetUserChangeableState accepts.
func (c *Controller) UserModes() []string {
	names := make([]string, 0, modeCount)
	for _, b := range c.lookup {
		if b.UserSelectable() {
			names = append(names, b.Name())
		}
	}
	return names
}

// ModeName reports the active mode name for status reporting.
func (c *Controller) ModeName() string {
	return c.current.Name()
}
