package debugger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCommandHistoryDefaultCapacity(t *testing.T) {
	h := NewCommandHistory()
	assert.Equal(t, 1000, h.maxSize)
}

func TestNewCommandHistoryWithCapacity(t *testing.T) {
	h := NewCommandHistoryWithCapacity(5)
	assert.Equal(t, 5, h.maxSize)
}

func TestNewCommandHistoryWithCapacityClampsNonPositive(t *testing.T) {
	h := NewCommandHistoryWithCapacity(0)
	assert.Equal(t, 1000, h.maxSize, "non-positive capacity should fall back to 1000")
}

func TestCommandHistoryAddAndGetAll(t *testing.T) {
	h := NewCommandHistory()
	h.Add("step")
	h.Add("continue")

	assert.Equal(t, []string{"step", "continue"}, h.GetAll())
}

func TestCommandHistorySkipsDuplicateOfLast(t *testing.T) {
	h := NewCommandHistory()
	h.Add("step")
	h.Add("step")

	assert.Equal(t, 1, h.Size(), "duplicate of last should not be added")
}

func TestCommandHistoryTrimsToMaxSize(t *testing.T) {
	h := NewCommandHistoryWithCapacity(2)
	h.Add("a")
	h.Add("b")
	h.Add("c")

	assert.Equal(t, []string{"b", "c"}, h.GetAll())
}

func TestCommandHistoryPreviousNext(t *testing.T) {
	h := NewCommandHistory()
	h.Add("step")
	h.Add("continue")

	assert.Equal(t, "continue", h.Previous())
	assert.Equal(t, "step", h.Previous())
	assert.Equal(t, "continue", h.Next())
}

func TestCommandHistoryClear(t *testing.T) {
	h := NewCommandHistory()
	h.Add("step")
	h.Clear()

	assert.Equal(t, 0, h.Size())
}

func TestCommandHistorySearch(t *testing.T) {
	h := NewCommandHistory()
	h.Add("break 0x10")
	h.Add("break 0x20")
	h.Add("step")

	assert.Len(t, h.Search("break"), 2)
}
