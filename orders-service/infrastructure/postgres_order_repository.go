package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/draftea/order-system/orders-service/domain"
	"github.com/draftea/order-system/shared/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var _ domain.OrderRepository = (*PostgresOrderRepository)(nil)

const uniqueViolation = "23505"

// PostgresOrderRepository implements OrderRepository using PostgreSQL
type PostgresOrderRepository struct {
	db *sqlx.DB
}

// NewPostgresOrderRepository creates a new PostgresOrderRepository
func NewPostgresOrderRepository(db *sqlx.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

// postgresOrder represents an order row
type postgresOrder struct {
	ID            string          `db:"id"`
	CustomerID    string          `db:"customer_id"`
	CustomerName  string          `db:"customer_name"`
	CustomerCPF   string          `db:"customer_cpf"`
	CardNumber    string          `db:"card_number"`
	Status        string          `db:"status"`
	PaymentID     sql.NullString  `db:"payment_id"`
	PaymentStatus string          `db:"payment_status"`
	PaymentAmount decimal.Decimal `db:"payment_amount"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
	Version       int             `db:"version"`
}

// postgresOrderItem represents an order_items row
type postgresOrderItem struct {
	OrderID   string              `db:"order_id"`
	Position  int                 `db:"position"`
	SKU       string              `db:"sku"`
	ProductID string              `db:"product_id"`
	Name      string              `db:"name"`
	Quantity  int                 `db:"quantity"`
	Price     decimal.NullDecimal `db:"price"`
}

const selectOrderColumns = `
	SELECT id, customer_id, customer_name, customer_cpf, card_number, status,
		   payment_id, payment_status, payment_amount, created_at, updated_at, version
	FROM orders`

// Save inserts new orders and updates existing ones with an optimistic version check.
// Orders and their items are written in a single transaction.
func (r *PostgresOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	if order.IsNew() {
		return r.insertOrder(ctx, order)
	}
	return r.updateOrder(ctx, order)
}

func (r *PostgresOrderRepository) insertOrder(ctx context.Context, order *domain.Order) error {
	next := order.Version.Next()
	pgOrder, pgItems := toPostgres(order, next)

	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO orders (
				id, customer_id, customer_name, customer_cpf, card_number, status,
				payment_id, payment_status, payment_amount, created_at, updated_at, version
			) VALUES (
				:id, :customer_id, :customer_name, :customer_cpf, :card_number, :status,
				:payment_id, :payment_status, :payment_amount, :created_at, :updated_at, :version
			)`

		if _, err := tx.NamedExecContext(ctx, query, pgOrder); err != nil {
			if isUniqueViolation(err) {
				return domain.WrapError(domain.KindDuplicate, err, fmt.Sprintf("order %s already exists", order.ID))
			}
			return errors.Wrap(err, "failed to insert order")
		}

		return insertItems(ctx, tx, pgItems)
	})
	if err != nil {
		return err
	}

	order.Version = next
	return nil
}

func (r *PostgresOrderRepository) updateOrder(ctx context.Context, order *domain.Order) error {
	next := order.Version.Next()
	pgOrder, pgItems := toPostgres(order, next)

	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE orders
			SET customer_name = :customer_name, customer_cpf = :customer_cpf, status = :status,
				payment_id = :payment_id, payment_status = :payment_status,
				payment_amount = :payment_amount, updated_at = :updated_at, version = :version
			WHERE id = :id AND version = :old_version`

		res, err := tx.NamedExecContext(ctx, query, map[string]interface{}{
			"id":             pgOrder.ID,
			"customer_name":  pgOrder.CustomerName,
			"customer_cpf":   pgOrder.CustomerCPF,
			"status":         pgOrder.Status,
			"payment_id":     pgOrder.PaymentID,
			"payment_status": pgOrder.PaymentStatus,
			"payment_amount": pgOrder.PaymentAmount,
			"updated_at":     pgOrder.UpdatedAt,
			"version":        next.Value,
			"old_version":    order.Version.Value,
		})
		if err != nil {
			return errors.Wrap(err, "failed to update order")
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "failed to read affected rows")
		}
		if affected == 0 {
			return domain.NewError(domain.KindVersionConflict,
				fmt.Sprintf("order %s was modified concurrently (version %d)", order.ID, order.Version.Value))
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, pgOrder.ID); err != nil {
			return errors.Wrap(err, "failed to delete order items")
		}

		return insertItems(ctx, tx, pgItems)
	})
	if err != nil {
		return err
	}

	order.Version = next
	return nil
}

func insertItems(ctx context.Context, tx *sqlx.Tx, items []postgresOrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (order_id, position, sku, product_id, name, quantity, price)
		VALUES (:order_id, :position, :sku, :product_id, :name, :quantity, :price)`

	if _, err := tx.NamedExecContext(ctx, query, items); err != nil {
		return errors.Wrap(err, "failed to insert order items")
	}
	return nil
}

// FindByID finds an order by ID
func (r *PostgresOrderRepository) FindByID(ctx context.Context, id models.ID) (*domain.Order, error) {
	return r.findOne(ctx, selectOrderColumns+` WHERE id = $1`, id.String(),
		fmt.Sprintf("order %s not found", id))
}

// FindByPaymentID finds the order paid by paymentID
func (r *PostgresOrderRepository) FindByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error) {
	return r.findOne(ctx, selectOrderColumns+` WHERE payment_id = $1`, paymentID,
		fmt.Sprintf("order with payment %s not found", paymentID))
}

// FindAll returns every order, newest first
func (r *PostgresOrderRepository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	var pgOrders []postgresOrder
	if err := r.db.SelectContext(ctx, &pgOrders, selectOrderColumns+` ORDER BY created_at DESC`); err != nil {
		return nil, errors.Wrap(err, "failed to find orders")
	}
	if len(pgOrders) == 0 {
		return []*domain.Order{}, nil
	}

	ids := make([]string, len(pgOrders))
	for i, pgOrder := range pgOrders {
		ids[i] = pgOrder.ID
	}

	var pgItems []postgresOrderItem
	err := r.db.SelectContext(ctx, &pgItems, `
		SELECT order_id, position, sku, product_id, name, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position`, pq.Array(ids))
	if err != nil {
		return nil, errors.Wrap(err, "failed to find order items")
	}

	itemsByOrder := make(map[string][]postgresOrderItem, len(pgOrders))
	for _, item := range pgItems {
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}

	orders := make([]*domain.Order, len(pgOrders))
	for i := range pgOrders {
		orders[i] = toDomain(&pgOrders[i], itemsByOrder[pgOrders[i].ID])
	}

	return orders, nil
}

func (r *PostgresOrderRepository) findOne(ctx context.Context, query string, arg interface{}, notFound string) (*domain.Order, error) {
	var pgOrder postgresOrder
	if err := r.db.GetContext(ctx, &pgOrder, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError(notFound)
		}
		return nil, errors.Wrap(err, "failed to find order")
	}

	var pgItems []postgresOrderItem
	err := r.db.SelectContext(ctx, &pgItems, `
		SELECT order_id, position, sku, product_id, name, quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY position`, pgOrder.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find order items")
	}

	return toDomain(&pgOrder, pgItems), nil
}

func (r *PostgresOrderRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// toPostgres converts a domain order to rows stamped with version
func toPostgres(order *domain.Order, version models.Version) (*postgresOrder, []postgresOrderItem) {
	pgOrder := &postgresOrder{
		ID:            order.ID.String(),
		CustomerID:    order.CustomerID,
		CustomerName:  order.CustomerName,
		CustomerCPF:   order.CustomerCPF,
		CardNumber:    order.CardNumber,
		Status:        order.Status.String(),
		PaymentID:     sql.NullString{String: order.PaymentID, Valid: order.PaymentID != ""},
		PaymentStatus: order.PaymentStatus.String(),
		PaymentAmount: order.PaymentAmount,
		CreatedAt:     order.Timestamps.CreatedAt,
		UpdatedAt:     order.Timestamps.UpdatedAt,
		Version:       version.Value,
	}

	pgItems := make([]postgresOrderItem, len(order.Items))
	for i, item := range order.Items {
		quantity := 0
		if item.Quantity != nil {
			quantity = *item.Quantity
		}
		price := decimal.NullDecimal{}
		if item.Price != nil {
			price = decimal.NewNullDecimal(*item.Price)
		}
		pgItems[i] = postgresOrderItem{
			OrderID:   pgOrder.ID,
			Position:  i,
			SKU:       item.SKU,
			ProductID: item.ID,
			Name:      item.Name,
			Quantity:  quantity,
			Price:     price,
		}
	}

	return pgOrder, pgItems
}

// toDomain converts rows back to a domain order
func toDomain(pgOrder *postgresOrder, pgItems []postgresOrderItem) *domain.Order {
	items := make([]domain.Item, len(pgItems))
	for i, pgItem := range pgItems {
		quantity := pgItem.Quantity
		var price *decimal.Decimal
		if pgItem.Price.Valid {
			p := pgItem.Price.Decimal
			price = &p
		}
		items[i] = domain.Item{
			ID:       pgItem.ProductID,
			Name:     pgItem.Name,
			SKU:      pgItem.SKU,
			Quantity: &quantity,
			Price:    price,
		}
	}

	return &domain.Order{
		ID:            models.ID(pgOrder.ID),
		CustomerID:    pgOrder.CustomerID,
		CustomerName:  pgOrder.CustomerName,
		CustomerCPF:   pgOrder.CustomerCPF,
		CardNumber:    pgOrder.CardNumber,
		Items:         items,
		Status:        domain.OrderStatus(pgOrder.Status),
		PaymentID:     pgOrder.PaymentID.String,
		PaymentStatus: domain.PaymentStatus(pgOrder.PaymentStatus),
		PaymentAmount: pgOrder.PaymentAmount,
		Timestamps: models.Timestamps{
			CreatedAt: pgOrder.CreatedAt,
			UpdatedAt: pgOrder.UpdatedAt,
		},
		Version: models.Version{Value: pgOrder.Version},
	}
}
