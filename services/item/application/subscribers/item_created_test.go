package subscribers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/mall/pkg/cache"
	"github.com/ghuser/mall/pkg/config"
	"github.com/ghuser/mall/pkg/events"
	"github.com/ghuser/mall/pkg/logger"
	domainevents "github.com/ghuser/mall/services/item/domain/events"
)

type memCache struct {
	items map[uuid.UUID]*cache.CachedItem
	err   error
}

func (m *memCache) Set(_ context.Context, item *cache.CachedItem) error {
	if m.err != nil {
		return m.err
	}
	m.items[item.ID] = item
	return nil
}

func TestHandleItemCreated(t *testing.T) {
	log := logger.New(&config.Config{LogLevel: "error"})
	evt := domainevents.ItemCreatedEvent{
		EventID:    uuid.New(),
		Version:    1,
		ItemID:     uuid.New(),
		Name:       "Vitamin D",
		Price:      decimal.RequireFromString("8.80"),
		Type:       "functional_food",
		Images:     []string{"/d.png"},
		OccurredAt: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
	}
	msg, err := events.NewJSONMessage(evt)
	if err != nil {
		t.Fatalf("NewJSONMessage: %v", err)
	}

	tests := []struct {
		name    string
		msg     *message.Message
		setErr  error
		wantErr bool
		wantSet bool
	}{
		{"warms cache", msg, nil, false, true},
		{"cache down is retried", msg, errors.New("timeout"), true, false},
		{"poison message acked", message.NewMessage(uuid.NewString(), []byte("[]")), nil, false, false},
		{"missing id acked", message.NewMessage(uuid.NewString(), []byte(`{"name":"x"}`)), nil, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &memCache{items: map[uuid.UUID]*cache.CachedItem{}, err: tt.setErr}
			err := HandleItemCreated(c, log)(context.Background(), tt.msg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			got, ok := c.items[evt.ItemID]
			if ok != tt.wantSet {
				t.Fatalf("cached = %v, want %v", ok, tt.wantSet)
			}
			if ok && (got.Name != "Vitamin D" || !got.Price.Equal(evt.Price) || len(got.Images) != 1) {
				t.Fatalf("unexpected cached item: %+v", got)
			}
		})
	}
}
