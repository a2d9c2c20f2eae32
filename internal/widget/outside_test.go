package widget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/osk/internal/mousectl"
)

// outsideClick simulates a press and release in another window.
func (f *fixture) outsideClick() {
	f.host.buttonsDown = true
	f.sched.Advance(outsidePollInterval)
	f.host.buttonsDown = false
	f.sched.Advance(outsidePollInterval)
}

func TestOutsideClickReleasesLatchedKeys(t *testing.T) {
	shift := at(shiftKey(), 0, 0)
	f := newFixture(t, nil, shift)

	f.click(5, 5)
	require.True(t, shift.Latched)

	f.w.Leave()
	require.True(t, f.w.OutsidePolling())
	f.sched.Advance(time.Second)
	assert.True(t, shift.Latched)

	f.outsideClick()
	assert.False(t, shift.Latched)
	assert.Empty(t, f.kb.LatchedKeys())
	assert.Equal(t, 0, f.kb.Mods().Count(shift.Modifier))
	assert.False(t, f.w.OutsidePolling())
}

func TestOutsideClickKeepsModifiersForMappedClick(t *testing.T) {
	shift := at(shiftKey(), 0, 0)
	secondary := at(buttonKey("secondaryclick"), 10, 0)
	f := newFixture(t, nil, shift, secondary)

	f.click(5, 5)
	f.click(15, 5)
	require.Equal(t, mousectl.Secondary, f.kb.ClickMapper().ClickButton())
	require.True(t, shift.Latched)

	f.w.Leave()
	f.outsideClick()
	assert.True(t, shift.Latched)
}

func TestOutsidePollingTimesOut(t *testing.T) {
	shift := at(shiftKey(), 0, 0)
	f := newFixture(t, nil, shift)
	f.click(5, 5)

	f.w.Leave()
	f.sched.Advance(outsidePollTimeout)
	assert.False(t, f.w.OutsidePolling())

	f.outsideClick()
	assert.True(t, shift.Latched)
}

func TestOutsidePollingNeedsSomethingToDismiss(t *testing.T) {
	f := newFixture(t, nil, at(charKey("b", "b"), 0, 0))

	f.w.Leave()
	assert.False(t, f.w.OutsidePolling())
}

func TestEnterStopsOutsidePolling(t *testing.T) {
	shift := at(shiftKey(), 0, 0)
	f := newFixture(t, nil, shift)
	f.click(5, 5)

	f.w.Leave()
	f.w.Enter()
	assert.False(t, f.w.OutsidePolling())

	f.outsideClick()
	assert.True(t, shift.Latched)
}

func TestOutsideClickClosesPopup(t *testing.T) {
	e := at(charKey("e", "e"), 0, 20)
	f := newFixture(t, nil, e)
	f.w.ShowAlternatives(e, []string{"é"})

	f.w.Leave()
	require.True(t, f.w.OutsidePolling())
	f.outsideClick()
	assert.Nil(t, f.w.Popup())
	assert.Empty(t, f.rec.Typed())
}
