package debugger

import (
	"fmt"
	"sync"

	"github.com/crtdll/py-ppc-xex/vm"
)

// Watchpoint monitors a GPR or a stack-region byte offset for a value
// change, triggering the same way regardless of whether the change came
// from a load/store or an arithmetic handler: there is no separate
// read/write memory trap, only value-change detection.
type Watchpoint struct {
	ID         int
	Expression string // display label, e.g. "gpr3" or "stack[0x20]"
	IsRegister bool
	Register   int // GPR number, if IsRegister
	StackIndex int // stack byte offset, if !IsRegister
	Enabled    bool
	LastValue  uint64
	HitCount   int
}

// WatchpointManager manages all watchpoints.
type WatchpointManager struct {
	mu          sync.RWMutex
	watchpoints map[int]*Watchpoint
	nextID      int
}

// NewWatchpointManager creates a new watchpoint manager.
func NewWatchpointManager() *WatchpointManager {
	return &WatchpointManager{
		watchpoints: make(map[int]*Watchpoint),
		nextID:      1,
	}
}

// AddRegisterWatchpoint watches a GPR for value changes.
func (wm *WatchpointManager) AddRegisterWatchpoint(register int) *Watchpoint {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp := &Watchpoint{
		ID:         wm.nextID,
		Expression: fmt.Sprintf("gpr%d", register),
		IsRegister: true,
		Register:   register,
		Enabled:    true,
	}
	wm.watchpoints[wp.ID] = wp
	wm.nextID++
	return wp
}

// AddStackWatchpoint watches a stack-region byte offset for value changes.
func (wm *WatchpointManager) AddStackWatchpoint(stackIndex int) *Watchpoint {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp := &Watchpoint{
		ID:         wm.nextID,
		Expression: fmt.Sprintf("stack[0x%X]", stackIndex),
		StackIndex: stackIndex,
		Enabled:    true,
	}
	wm.watchpoints[wp.ID] = wp
	wm.nextID++
	return wp
}

// DeleteWatchpoint removes a watchpoint by ID.
func (wm *WatchpointManager) DeleteWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	if _, exists := wm.watchpoints[id]; !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	delete(wm.watchpoints, id)
	return nil
}

// GetAllWatchpoints returns all watchpoints.
func (wm *WatchpointManager) GetAllWatchpoints() []*Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	result := make([]*Watchpoint, 0, len(wm.watchpoints))
	for _, wp := range wm.watchpoints {
		result = append(result, wp)
	}
	return result
}

// Clear removes all watchpoints.
func (wm *WatchpointManager) Clear() {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wm.watchpoints = make(map[int]*Watchpoint)
}

// Count returns the number of watchpoints.
func (wm *WatchpointManager) Count() int {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return len(wm.watchpoints)
}

func (wm *WatchpointManager) currentValue(machine *vm.VM, wp *Watchpoint) uint64 {
	if wp.IsRegister {
		return machine.Regs.GetGPR(wp.Register)
	}
	if wp.StackIndex < 0 || wp.StackIndex+4 > len(machine.Memory.Stack) {
		return wp.LastValue
	}
	return machine.Memory.ReadWidth(0, uint64(wp.StackIndex), 0, 4)
}

// CheckWatchpoints returns the first enabled watchpoint whose value changed
// since the last check.
func (wm *WatchpointManager) CheckWatchpoints(machine *vm.VM) (*Watchpoint, bool) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	for _, wp := range wm.watchpoints {
		if !wp.Enabled {
			continue
		}
		current := wm.currentValue(machine, wp)
		if current != wp.LastValue {
			wp.HitCount++
			wp.LastValue = current
			return wp, true
		}
	}
	return nil, false
}

// InitializeWatchpoint primes LastValue so the first CheckWatchpoints call
// after creation doesn't spuriously fire on the initial read.
func (wm *WatchpointManager) InitializeWatchpoint(id int, machine *vm.VM) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	wp.LastValue = wm.currentValue(machine, wp)
	return nil
}
