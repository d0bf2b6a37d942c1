package debugger

import (
	"testing"

	"github.com/crtdll/py-ppc-xex/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVM() *vm.VM {
	image := make([]byte, 64)
	return vm.NewVM(image, 0x1000, 0)
}

func TestAddRegisterWatchpoint(t *testing.T) {
	wm := NewWatchpointManager()
	wp := wm.AddRegisterWatchpoint(3)

	assert.True(t, wp.IsRegister)
	assert.Equal(t, 3, wp.Register)
	assert.Equal(t, "gpr3", wp.Expression)
}

func TestAddStackWatchpoint(t *testing.T) {
	wm := NewWatchpointManager()
	wp := wm.AddStackWatchpoint(0x20)

	assert.False(t, wp.IsRegister)
	assert.Equal(t, 0x20, wp.StackIndex)
}

func TestCheckWatchpointsDetectsRegisterChange(t *testing.T) {
	wm := NewWatchpointManager()
	machine := newTestVM()
	wp := wm.AddRegisterWatchpoint(3)

	require.NoError(t, wm.InitializeWatchpoint(wp.ID, machine))

	_, changed := wm.CheckWatchpoints(machine)
	assert.False(t, changed, "should not fire before any change")

	machine.Regs.SetGPR(3, 42)
	hit, changed := wm.CheckWatchpoints(machine)
	require.True(t, changed, "should fire after gpr3 changed")
	assert.Equal(t, wp.ID, hit.ID)
	assert.Equal(t, 1, hit.HitCount)
}

func TestCheckWatchpointsDisabledIgnored(t *testing.T) {
	wm := NewWatchpointManager()
	machine := newTestVM()
	wp := wm.AddRegisterWatchpoint(4)
	wp.Enabled = false

	machine.Regs.SetGPR(4, 1)
	_, changed := wm.CheckWatchpoints(machine)
	assert.False(t, changed, "disabled watchpoint should not fire")
}

func TestDeleteWatchpoint(t *testing.T) {
	wm := NewWatchpointManager()
	wp := wm.AddRegisterWatchpoint(5)

	require.NoError(t, wm.DeleteWatchpoint(wp.ID))
	assert.Error(t, wm.DeleteWatchpoint(wp.ID), "deleting twice should error")
}

func TestWatchpointCountAndClear(t *testing.T) {
	wm := NewWatchpointManager()
	wm.AddRegisterWatchpoint(1)
	wm.AddRegisterWatchpoint(2)

	assert.Equal(t, 2, wm.Count())
	wm.Clear()
	assert.Equal(t, 0, wm.Count())
}
