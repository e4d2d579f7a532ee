package messaging

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ficben/achievebot/internal/domain/shared"
)

func TestEventBus_SyncDelivery(t *testing.T) {
	bus := NewEventBus(EventBusConfig{AsyncMode: false})
	defer bus.Close()

	var got []string
	bus.Subscribe(shared.EventRankChanged, func(event shared.Event) error {
		got = append(got, event.AggregateID())
		return nil
	})

	require.NoError(t, bus.Publish(shared.NewRankChangedEvent(7, map[string]string{"messages": "🗨 Болтун"}, -100, 1)))
	require.NoError(t, bus.Publish(shared.NewRankChangedEvent(8, nil, -100, 2)))

	assert.Equal(t, []string{"7", "8"}, got)
}

func TestEventBus_TypeFiltering(t *testing.T) {
	bus := NewEventBus(EventBusConfig{AsyncMode: false})
	defer bus.Close()

	var rankEvents, awardEvents int
	bus.Subscribe(shared.EventRankChanged, func(shared.Event) error {
		rankEvents++
		return nil
	})
	bus.Subscribe(shared.EventAchievementAwarded, func(shared.Event) error {
		awardEvents++
		return nil
	})

	require.NoError(t, bus.Publish(shared.NewAchievementAwardedEvent(7, "first_chapter", "auto")))

	assert.Equal(t, 0, rankEvents)
	assert.Equal(t, 1, awardEvents)
}

func TestEventBus_AsyncDelivery(t *testing.T) {
	bus := NewEventBus(EventBusConfig{AsyncMode: true, WorkerPoolSize: 2})

	var mu sync.Mutex
	delivered := 0
	bus.Subscribe(shared.EventMemberRegistered, func(shared.Event) error {
		mu.Lock()
		delivered++
		mu.Unlock()
		return nil
	})

	for i := 0; i < 20; i++ {
		require.NoError(t, bus.Publish(shared.NewMemberRegisteredEvent(int64(i+1), "reader", -100)))
	}

	// Close ждёт завершения всех обработчиков.
	require.NoError(t, bus.Close())
	assert.Equal(t, 20, delivered)
}

func TestEventBus_HandlerPanicDoesNotStopDelivery(t *testing.T) {
	bus := NewEventBus(EventBusConfig{AsyncMode: false})
	defer bus.Close()

	var survived int
	bus.Subscribe(shared.EventRankChanged, func(shared.Event) error {
		panic("boom")
	})
	bus.Subscribe(shared.EventRankChanged, func(shared.Event) error {
		survived++
		return nil
	})

	require.NoError(t, bus.Publish(shared.NewRankChangedEvent(7, nil, -100, 1)))
	assert.Equal(t, 1, survived)
}

func TestEventBus_AsyncHandlerPanicRecovered(t *testing.T) {
	bus := NewEventBus(EventBusConfig{AsyncMode: true, WorkerPoolSize: 2})

	bus.Subscribe(shared.EventMemberRegistered, func(shared.Event) error {
		panic("boom")
	})

	require.NoError(t, bus.Publish(shared.NewMemberRegisteredEvent(1, "reader", -100)))
	// Close ждёт воркеров; паника обработчика не должна уронить процесс.
	require.NoError(t, bus.Close())
}

func TestEventBus_PublishAfterClose(t *testing.T) {
	bus := NewEventBus(EventBusConfig{AsyncMode: false})
	require.NoError(t, bus.Close())

	err := bus.Publish(shared.NewMemberRegisteredEvent(1, "reader", -100))
	assert.ErrorIs(t, err, ErrEventBusClosed)
}
