package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ghuser/mall/pkg/database"
	"github.com/ghuser/mall/pkg/events"
	domainevents "github.com/ghuser/mall/services/cart/domain/events"
	"github.com/ghuser/mall/services/cart/domain/models"
)

const cartColumns = `id, owner_id, items_price, total_price, status, expires_at, created_at, updated_at`

// CartRepository implements repositories.CartRepository against PostgreSQL.
// Every error it returns is a *database.Error.
type CartRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewCartRepository returns a repository that also publishes cart.updated and
// cart.deleted through bus inside the writing transaction. bus may be nil.
func NewCartRepository(db *database.Database, bus *events.EventBus) *CartRepository {
	return &CartRepository{db: db, bus: bus}
}

// Save upserts the cart row, replaces its lines and records the cart.updated
// event in one transaction.
func (r *CartRepository) Save(ctx context.Context, cart *models.Cart) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO carts (`+cartColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
				owner_id    = EXCLUDED.owner_id,
				items_price = EXCLUDED.items_price,
				total_price = EXCLUDED.total_price,
				status      = EXCLUDED.status,
				expires_at  = EXCLUDED.expires_at,
				updated_at  = EXCLUDED.updated_at`,
			cart.ID.String(),
			cart.OwnerID,
			nullDecimal(cart.ItemsPrice),
			nullDecimal(cart.TotalPrice),
			cart.Status.String(),
			cart.ExpiresAt,
			cart.CreatedAt,
			cart.UpdatedAt,
		); err != nil {
			return database.Classify(fmt.Errorf("upsert cart: %w", err))
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cart.ID.String()); err != nil {
			return database.Classify(fmt.Errorf("clear cart lines: %w", err))
		}

		if len(cart.Items) > 0 {
			ids, quantities := lineColumns(cart.Items)
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO cart_items (cart_id, item_id, quantity)
				SELECT $1, line.item_id, line.quantity
				FROM unnest($2::text[], $3::bigint[]) AS line(item_id, quantity)`,
				cart.ID.String(), ids, quantities,
			); err != nil {
				return database.Classify(fmt.Errorf("insert cart lines: %w", err))
			}
		}

		if r.bus != nil {
			if err := r.publishUpdated(ctx, tx, cart); err != nil {
				return database.Classify(fmt.Errorf("publish cart updated: %w", err))
			}
		}
		return nil
	})
}

// GetByID loads the cart and its lines.
func (r *CartRepository) GetByID(ctx context.Context, id models.CartID) (*models.Cart, error) {
	row := r.db.Pool().QueryRow(ctx, `SELECT `+cartColumns+` FROM carts WHERE id = $1`, id.String())
	return r.load(ctx, row)
}

// GetActiveByOwner loads the most recently updated active cart of ownerID.
func (r *CartRepository) GetActiveByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Cart, error) {
	row := r.db.Pool().QueryRow(ctx, `
		SELECT `+cartColumns+` FROM carts
		WHERE owner_id = $1 AND status = $2
		ORDER BY updated_at DESC
		LIMIT 1`,
		ownerID, models.CartStatusActive.String(),
	)
	return r.load(ctx, row)
}

// Delete removes the cart, its lines going with it through the foreign key,
// and records cart.deleted in the same transaction when a row existed.
func (r *CartRepository) Delete(ctx context.Context, id models.CartID) (bool, error) {
	var existed bool
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, id.String())
		if err != nil {
			return database.Classify(fmt.Errorf("delete cart: %w", err))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return database.Classify(fmt.Errorf("delete cart: %w", err))
		}
		existed = n > 0

		if existed && r.bus != nil {
			event := NewCartDeletedEvent(id, time.Now().UTC())
			if err := r.publish(ctx, tx, domainevents.TopicCartDeleted, event.EventID, event); err != nil {
				return database.Classify(fmt.Errorf("publish cart deleted: %w", err))
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return existed, nil
}

func (r *CartRepository) load(ctx context.Context, row pgx.Row) (*models.Cart, error) {
	cart, err := scanCart(row)
	if err != nil {
		return nil, database.Classify(err)
	}

	rows, err := r.db.Pool().Query(ctx,
		`SELECT item_id, quantity FROM cart_items WHERE cart_id = $1`, cart.ID.String())
	if err != nil {
		return nil, database.Classify(fmt.Errorf("query cart lines: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var (
			itemID   string
			quantity int64
		)
		if err := rows.Scan(&itemID, &quantity); err != nil {
			return nil, database.Classify(fmt.Errorf("scan cart line: %w", err))
		}
		cart.Items[models.ItemID(itemID)] = uint32(quantity)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Classify(fmt.Errorf("iterate cart lines: %w", err))
	}
	return cart, nil
}

func scanCart(row pgx.Row) (*models.Cart, error) {
	var (
		id         string
		ownerID    *uuid.UUID
		itemsPrice decimal.NullDecimal
		totalPrice decimal.NullDecimal
		status     string
		expiresAt  *time.Time
		createdAt  time.Time
		updatedAt  time.Time
	)
	if err := row.Scan(&id, &ownerID, &itemsPrice, &totalPrice, &status, &expiresAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	cartStatus, err := models.ParseCartStatus(status)
	if err != nil {
		return nil, fmt.Errorf("cart %s: %w", id, err)
	}

	return &models.Cart{
		ID:         models.CartID(id),
		OwnerID:    ownerID,
		Items:      make(map[models.ItemID]uint32),
		ItemsPrice: decimalPtr(itemsPrice),
		TotalPrice: decimalPtr(totalPrice),
		Status:     cartStatus,
		ExpiresAt:  expiresAt,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}, nil
}

func (r *CartRepository) publishUpdated(ctx context.Context, tx *sql.Tx, cart *models.Cart) error {
	event := NewCartUpdatedEvent(cart, time.Now().UTC())
	return r.publish(ctx, tx, domainevents.TopicCartUpdated, event.EventID, event)
}

// publish records event on topic through the outbox inside tx.
func (r *CartRepository) publish(ctx context.Context, tx *sql.Tx, topic string, eventID uuid.UUID, payload any) error {
	msg, err := events.NewJSONMessage(payload)
	if err != nil {
		return err
	}
	msg.Metadata.Set("event_id", eventID.String())
	msg.Metadata.Set("event_version", "1")
	events.InjectTrace(ctx, msg)

	p, err := r.bus.NewTxPublisher(tx)
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}
	return p.Publish(topic, msg)
}

// NewCartDeletedEvent records the deletion of id.
func NewCartDeletedEvent(id models.CartID, at time.Time) domainevents.CartDeletedEvent {
	return domainevents.CartDeletedEvent{
		EventID:    uuid.New(),
		Version:    1,
		CartID:     id.String(),
		OccurredAt: at,
	}
}

// NewCartUpdatedEvent snapshots cart as a cart.updated event.
func NewCartUpdatedEvent(cart *models.Cart, at time.Time) domainevents.CartUpdatedEvent {
	ids, quantities := lineColumns(cart.Items)
	lines := make([]domainevents.CartLine, len(ids))
	for i := range ids {
		lines[i] = domainevents.CartLine{ItemID: ids[i], Quantity: uint32(quantities[i])}
	}
	return domainevents.CartUpdatedEvent{
		EventID:    uuid.New(),
		Version:    1,
		CartID:     cart.ID.String(),
		OwnerID:    cart.OwnerID,
		Status:     cart.Status.String(),
		Lines:      lines,
		ItemsPrice: cart.ItemsPrice,
		TotalPrice: cart.TotalPrice,
		ExpiresAt:  cart.ExpiresAt,
		CreatedAt:  cart.CreatedAt,
		UpdatedAt:  cart.UpdatedAt,
		OccurredAt: at,
	}
}

// lineColumns splits the line map into parallel arrays sorted by item id.
func lineColumns(items map[models.ItemID]uint32) ([]string, []int64) {
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id.String())
	}
	slices.Sort(ids)

	quantities := make([]int64, len(ids))
	for i, id := range ids {
		quantities[i] = int64(items[models.ItemID(id)])
	}
	return ids, quantities
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	return &d.Decimal
}
