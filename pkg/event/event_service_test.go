package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eventpulse/eventpulse/internal/event_bus"
	"github.com/eventpulse/eventpulse/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService() (*EventServiceImpl, *StubEventRepository, *event_bus.EventBus, *utils.MockClock) {
	repo := &StubEventRepository{}
	bus := event_bus.NewEventBus()
	clock := utils.NewMockClock(filterNow)
	return NewEventService(repo, bus, clock), repo, bus, clock
}

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("Defaults price and attendees", func(t *testing.T) {
		service, repo, _, _ := setupService()

		created, err := service.CreateEvent(ctx, Event{
			Id:        42,
			Title:     "Board Games",
			Date:      filterNow.Add(time.Hour),
			Location:  "Cafe",
			Category:  "arts",
			Organizer: "Meeples",
			Attendees: 10,
		})

		require.NoError(t, err)
		assert.Equal(t, 1, created.Id)
		assert.Equal(t, DefaultPrice, created.Price)
		assert.Equal(t, 0, created.Attendees)
		assert.Equal(t, filterNow, created.CreatedAt)
		assert.Len(t, repo.Events, 1)
	})

	t.Run("Normalizes price and empty optionals", func(t *testing.T) {
		service, _, _, _ := setupService()

		created, err := service.CreateEvent(ctx, Event{
			Title:       "Concert",
			Price:       "20.00",
			Description: strPtr(""),
			ImageUrl:    strPtr(""),
		})

		require.NoError(t, err)
		assert.Equal(t, "20", created.Price)
		assert.Nil(t, created.Description)
		assert.Nil(t, created.ImageUrl)
	})

	t.Run("Rejects unparseable price", func(t *testing.T) {
		service, repo, _, _ := setupService()

		_, err := service.CreateEvent(ctx, Event{Title: "Concert", Price: "cheap"})

		assert.Error(t, err)
		assert.Empty(t, repo.Events)
	})

	t.Run("Publishes EventCreated", func(t *testing.T) {
		service, _, bus, _ := setupService()
		var published []event_bus.EventCreated
		event_bus.SubscribeTyped(bus, event_bus.EventCreatedType, func(_ context.Context, e event_bus.EventCreated) error {
			published = append(published, e)
			return nil
		})

		created, err := service.CreateEvent(ctx, Event{Title: "Meetup", Category: "technology", Price: "5"})

		require.NoError(t, err)
		require.Len(t, published, 1)
		assert.Equal(t, created.Id, published[0].Id)
		assert.Equal(t, "technology", published[0].Category)
		assert.False(t, published[0].Free)
	})

	t.Run("Subscriber failure does not fail creation", func(t *testing.T) {
		service, repo, bus, _ := setupService()
		bus.Subscribe(event_bus.EventCreatedType, func(event_bus.Event) error {
			return errors.New("subscriber down")
		})

		_, err := service.CreateEvent(ctx, Event{Title: "Meetup"})

		assert.NoError(t, err)
		assert.Len(t, repo.Events, 1)
	})

	t.Run("Repository error is returned", func(t *testing.T) {
		service, repo, _, _ := setupService()
		repo.Err = errors.New("db down")

		_, err := service.CreateEvent(ctx, Event{Title: "Meetup"})

		assert.EqualError(t, err, "db down")
	})
}

func TestGetAllEvents_SortedByDate(t *testing.T) {
	ctx := context.Background()
	service, _, _, _ := setupService()
	t1 := filterNow.Add(48 * time.Hour)

	music, err := service.CreateEvent(ctx, Event{Title: "Music", Category: "music", Date: t1})
	require.NoError(t, err)
	tech, err := service.CreateEvent(ctx, Event{Title: "Tech", Category: "tech", Price: "20", Date: t1.Add(-time.Hour)})
	require.NoError(t, err)

	events, err := service.GetAllEvents(ctx)

	require.NoError(t, err)
	assert.Equal(t, []int{tech.Id, music.Id}, ids(events))
}

func TestFindEvents_UsesClock(t *testing.T) {
	ctx := context.Background()
	service, _, _, clock := setupService()
	_, err := service.CreateEvent(ctx, Event{Title: "Soon", Date: filterNow.Add(24 * time.Hour)})
	require.NoError(t, err)
	state := DefaultFilterState()
	state.DateFilter = ThisWeek

	found, err := service.FindEvents(ctx, state)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	clock.Set(filterNow.Add(-30 * 24 * time.Hour))
	found, err = service.FindEvents(ctx, state)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestGetEvent_NotFound(t *testing.T) {
	service, _, _, _ := setupService()

	_, err := service.GetEvent(context.Background(), 7)

	assert.ErrorIs(t, err, ErrEventNotFound)
}
