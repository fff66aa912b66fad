package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/example/swiftrun/internal/lifecycle"
	"github.com/example/swiftrun/internal/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) SaveOrder(ctx context.Context, o *models.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO orders(id, order_number, customer_id, driver_id, store_id, items,
			subtotal, delivery_fee, service_fee, tax, discount, total, currency,
			payment_method, payment_status, status, contact_name, contact_phone,
			delivery_address, dropoff_lat, dropoff_lon, created_at, updated_at)
		VALUES($1,$2,$3,NULLIF($4,''),$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)`,
		o.ID, o.Number, o.CustomerID, o.DriverID, o.StoreID, items,
		o.Subtotal, o.DeliveryFee, o.ServiceFee, o.Tax, o.Discount, o.Total, o.Currency,
		o.PayMethod, o.PayStatus, o.Status, o.ContactName, o.ContactPhone,
		o.Address, o.Dropoff.Lat, o.Dropoff.Lon, o.CreatedAt, o.UpdatedAt)
	return err
}

func (p *PostgresStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	var driver sql.NullString
	var items []byte
	err := p.db.QueryRowContext(ctx, `
		SELECT id, order_number, customer_id, COALESCE(driver_id, ''), store_id, items,
			subtotal, delivery_fee, service_fee, tax, discount, total, currency,
			payment_method, payment_status, COALESCE(payment_ref, ''), status,
			COALESCE(contact_name, ''), COALESCE(contact_phone, ''), delivery_address,
			dropoff_lat, dropoff_lon, created_at, updated_at
		FROM orders WHERE id = $1`, id).Scan(
		&o.ID, &o.Number, &o.CustomerID, &driver, &o.StoreID, &items,
		&o.Subtotal, &o.DeliveryFee, &o.ServiceFee, &o.Tax, &o.Discount, &o.Total, &o.Currency,
		&o.PayMethod, &o.PayStatus, &o.PayRef, &o.Status,
		&o.ContactName, &o.ContactPhone, &o.Address,
		&o.Dropoff.Lat, &o.Dropoff.Lon, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.DriverID = driver.String
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("unmarshal items: %w", err)
		}
	}
	return &o, nil
}

func (p *PostgresStore) UpdateOrderStatus(ctx context.Context, id, status, stampColumn string, at time.Time) error {
	return p.updateStatus(ctx, "orders", id, status, stampColumn, at)
}

func (p *PostgresStore) AssignOrder(ctx context.Context, id, driverID string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE orders SET driver_id = $1, updated_at = $2 WHERE id = $3 AND driver_id IS NULL`,
		driverID, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *PostgresStore) UpdateOrderPayment(ctx context.Context, id, payStatus, payRef string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE orders SET payment_status = $1, payment_ref = NULLIF($2, ''), updated_at = $3 WHERE id = $4`,
		payStatus, payRef, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *PostgresStore) SaveErrand(ctx context.Context, e *models.Errand) error {
	var scheduled sql.NullTime
	if !e.ScheduledFor.IsZero() {
		scheduled = sql.NullTime{Time: e.ScheduledFor, Valid: true}
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO errands(id, errand_number, customer_id, runner_id, category_id, subcategory_id,
			pickup_address, dropoff_address, pickup_lat, pickup_lon, dropoff_lat, dropoff_lon,
			instructions, notes, description, asap, scheduled_for,
			base_price, distance_fee, complexity_fee, total_price,
			payment_method, status, created_at, updated_at)
		VALUES($1,$2,$3,NULLIF($4,''),$5,NULLIF($6,''),$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)`,
		e.ID, e.Number, e.CustomerID, e.RunnerID, e.CategoryID, e.SubcategoryID,
		e.PickupAddr, e.DropoffAddr, e.Pickup.Lat, e.Pickup.Lon, e.Dropoff.Lat, e.Dropoff.Lon,
		e.Instructions, e.Notes, e.Description, e.ASAP, scheduled,
		e.BasePrice, e.DistanceFee, e.ComplexityFee, e.Total,
		e.PayMethod, e.Status, e.CreatedAt, e.UpdatedAt)
	return err
}

func (p *PostgresStore) GetErrand(ctx context.Context, id string) (*models.Errand, error) {
	var e models.Errand
	var runner, subcat sql.NullString
	var scheduled sql.NullTime
	err := p.db.QueryRowContext(ctx, `
		SELECT id, errand_number, customer_id, COALESCE(runner_id, ''), category_id, COALESCE(subcategory_id, ''),
			pickup_address, dropoff_address, pickup_lat, pickup_lon, dropoff_lat, dropoff_lon,
			instructions, notes, description, asap, scheduled_for,
			base_price, distance_fee, complexity_fee, total_price,
			payment_method, status, created_at, updated_at
		FROM errands WHERE id = $1`, id).Scan(
		&e.ID, &e.Number, &e.CustomerID, &runner, &e.CategoryID, &subcat,
		&e.PickupAddr, &e.DropoffAddr, &e.Pickup.Lat, &e.Pickup.Lon, &e.Dropoff.Lat, &e.Dropoff.Lon,
		&e.Instructions, &e.Notes, &e.Description, &e.ASAP, &scheduled,
		&e.BasePrice, &e.DistanceFee, &e.ComplexityFee, &e.Total,
		&e.PayMethod, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.RunnerID = runner.String
	e.SubcategoryID = subcat.String
	if scheduled.Valid {
		e.ScheduledFor = scheduled.Time
	}
	return &e, nil
}

func (p *PostgresStore) UpdateErrandStatus(ctx context.Context, id, status, stampColumn string, at time.Time) error {
	return p.updateStatus(ctx, "errands", id, status, stampColumn, at)
}

func (p *PostgresStore) AssignErrand(ctx context.Context, id, runnerID string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE errands SET runner_id = $1, updated_at = $2 WHERE id = $3 AND runner_id IS NULL`,
		runnerID, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (p *PostgresStore) ListCategories(ctx context.Context) ([]models.ErrandCategory, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(description, ''), COALESCE(icon, ''),
			COALESCE(base_price, 0), COALESCE(estimated_mins, 0)
		FROM errand_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.ErrandCategory{}
	for rows.Next() {
		var c models.ErrandCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Icon, &c.BasePrice, &c.EstimatedMins); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// updateStatus writes the new status and stamps its transition column. The
// column name comes from the lifecycle stamp table, never from request
// input, so interpolating it is safe; it is still re-checked here.
func (p *PostgresStore) updateStatus(ctx context.Context, table, id, status, stampColumn string, at time.Time) error {
	q := fmt.Sprintf(`UPDATE %s SET status = $1, updated_at = $2 WHERE id = $3`, table)
	if stampColumn != "" {
		if !knownStamp(stampColumn) {
			return fmt.Errorf("unknown stamp column %q", stampColumn)
		}
		q = fmt.Sprintf(`UPDATE %s SET status = $1, updated_at = $2, %s = $2 WHERE id = $3`, table, stampColumn)
	}
	res, err := p.db.ExecContext(ctx, q, status, at, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func knownStamp(column string) bool {
	for _, s := range []lifecycle.Status{
		lifecycle.StatusConfirmed, lifecycle.StatusAccepted, lifecycle.StatusPurchasing,
		lifecycle.StatusPreparing, lifecycle.StatusReadyForPickup, lifecycle.StatusPickedUp,
		lifecycle.StatusInTransit, lifecycle.StatusDelivered, lifecycle.StatusAtPickup,
		lifecycle.StatusPickupComplete, lifecycle.StatusEnRoute, lifecycle.StatusCompleted,
		lifecycle.StatusCancelled,
	} {
		if lifecycle.StampColumn(s) == column {
			return true
		}
	}
	return false
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
