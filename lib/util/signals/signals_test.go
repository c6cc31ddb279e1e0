package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlersRunInRegistrationOrder(t *testing.T) {
	t.Cleanup(func() {
		mu.Lock()
		reloaders = nil
		interrupters = nil
		mu.Unlock()
	})

	var order []int
	RegisterInterruptHandler(func() { order = append(order, 1) })
	RegisterInterruptHandler(func() { order = append(order, 2) })
	RegisterReloadHandler(func() { order = append(order, 3) })

	handleInterrupted()
	assert.Equal(t, []int{1, 2}, order)

	handleReload()
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestPanickingHandlerDoesNotStopOthers(t *testing.T) {
	t.Cleanup(func() {
		mu.Lock()
		interrupters = nil
		mu.Unlock()
	})

	var ran bool
	RegisterInterruptHandler(func() { panic("boom") })
	RegisterInterruptHandler(func() { ran = true })

	assert.NotPanics(t, handleInterrupted)
	assert.True(t, ran)
}

func TestNilHandlersIgnored(t *testing.T) {
	RegisterInterruptHandler(nil)
	RegisterReloadHandler(nil)
}
