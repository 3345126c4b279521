package banner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prebid/prebid-mediation/errortypes"
)

func TestHostCallbackKeepsFirstOutcome(t *testing.T) {
	host := newHostCallback()
	first := errortypes.NewAdError("first", 1, "first", nil)

	host.OnFailure(first)
	host.OnFailure(errortypes.NewAdError("second", 2, "second", nil))

	outcome := <-host.outcome
	assert.Same(t, first, outcome.err)
	assert.Empty(t, host.outcome)
}

func TestHostCallbackAwaitCountIgnoresEarlierEvents(t *testing.T) {
	host := newHostCallback()
	host.ReportAdImpression()
	before, _ := host.count(eventImpression)

	go func() {
		time.Sleep(10 * time.Millisecond)
		host.ReportAdClicked()
		host.ReportAdImpression()
	}()

	assert.True(t, host.awaitCount(eventImpression, before+1, time.After(time.Second)))
	assert.Equal(t, []string{eventImpression, eventClicked, eventImpression}, host.Events())
}

func TestHostCallbackAwaitCountTimesOut(t *testing.T) {
	host := newHostCallback()
	host.ReportAdImpression()

	assert.False(t, host.awaitCount(eventImpression, 2, time.After(10*time.Millisecond)))
	assert.True(t, host.awaitCount(eventImpression, 1, time.After(10*time.Millisecond)))
}
