package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/mall/pkg/database"
	"github.com/ghuser/mall/pkg/events"
	domainevents "github.com/ghuser/mall/services/item/domain/events"
	"github.com/ghuser/mall/services/item/domain/models"
)

// ItemRepository implements repositories.ItemRepository against PostgreSQL.
// Every error it returns is a *database.Error.
type ItemRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewItemRepository returns a repository that publishes item.created through
// bus in the insert transaction. bus may be nil.
func NewItemRepository(db *database.Database, bus *events.EventBus) *ItemRepository {
	return &ItemRepository{db: db, bus: bus}
}

// Save inserts the item. A name already used for the same type is a
// Duplicate error.
func (r *ItemRepository) Save(ctx context.Context, item *models.Item) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO items (id, name, price, type, images, description, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			item.ID,
			item.Name.String(),
			item.Price,
			item.Type.String(),
			item.Images,
			item.Description,
			item.CreatedAt,
			item.UpdatedAt,
		); err != nil {
			return database.Classify(fmt.Errorf("insert item: %w", err))
		}

		if r.bus != nil {
			if err := r.publishCreated(ctx, tx, item); err != nil {
				return database.Classify(fmt.Errorf("publish item created: %w", err))
			}
		}
		return nil
	})
}

// GetByID loads one item.
func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var (
		name        string
		price       decimal.Decimal
		typ         string
		images      []string
		description *string
		createdAt   time.Time
		updatedAt   time.Time
	)
	err := r.db.Pool().QueryRow(ctx, `
		SELECT name, price, type, images, description, created_at, updated_at
		FROM items WHERE id = $1`, id,
	).Scan(&name, &price, &typ, &images, &description, &createdAt, &updatedAt)
	if err != nil {
		return nil, database.Classify(err)
	}

	itemType, err := models.ParseItemType(typ)
	if err != nil {
		return nil, database.Classify(fmt.Errorf("item %s: %w", id, err))
	}
	if images == nil {
		images = []string{}
	}

	return &models.Item{
		ID:          id,
		Name:        models.ItemName(name),
		Price:       price,
		Type:        itemType,
		Images:      images,
		Description: description,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func (r *ItemRepository) publishCreated(ctx context.Context, tx *sql.Tx, item *models.Item) error {
	event := domainevents.ItemCreatedEvent{
		EventID:     uuid.New(),
		Version:     1,
		ItemID:      item.ID,
		Name:        item.Name.String(),
		Price:       item.Price,
		Type:        item.Type.String(),
		Images:      item.Images,
		Description: item.Description,
		OccurredAt:  item.CreatedAt,
	}
	msg, err := events.NewJSONMessage(event)
	if err != nil {
		return err
	}
	msg.Metadata.Set("event_id", event.EventID.String())
	msg.Metadata.Set("event_version", "1")
	events.InjectTrace(ctx, msg)

	p, err := r.bus.NewTxPublisher(tx)
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}
	return p.Publish(domainevents.TopicItemCreated, msg)
}
