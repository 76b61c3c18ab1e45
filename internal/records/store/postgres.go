package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"opsdesk/internal/compliance"
	"opsdesk/internal/records"
	"opsdesk/pkg/domain"
	"opsdesk/pkg/platform/sentinel"
	txcontext "opsdesk/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresStore persists records in PostgreSQL through database/sql with the
// pgx stdlib driver. Document lists use text[] columns.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return sentinel.ErrConflict
	}
	return err
}

func nullText(t compliance.Text) sql.NullString {
	return sql.NullString{String: string(t), Valid: t != ""}
}

func docArray(d compliance.DocList) any {
	if d == nil {
		return nil
	}
	return pq.Array([]string(d))
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func (s *PostgresStore) CreateShipment(ctx context.Context, sh *records.Shipment) error {
	var weight sql.NullFloat64
	if w, ok := sh.Weight.Get(); ok {
		weight = sql.NullFloat64{Float64: w, Valid: true}
	}
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO shipments (
			id, reference, customer, port, weight_kg, docs, documents,
			hs_code, commodity, shipper, consignee, eta, arrival_date,
			promised_date, isf_filed, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`,
		uuid.UUID(sh.ID),
		sh.Reference,
		sh.Customer,
		nullText(sh.Port),
		weight,
		docArray(sh.Docs),
		docArray(sh.Documents),
		nullText(sh.HSCode),
		nullText(sh.Commodity),
		nullText(sh.Shipper),
		nullText(sh.Consignee),
		nullText(sh.ETA),
		nullText(sh.ArrivalDate),
		nullText(sh.PromisedDate),
		bool(sh.ISFFiled),
		sh.CreatedAt,
		sh.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert shipment: %w", mapWriteError(err))
	}
	return nil
}

const selectShipments = `
	SELECT id, reference, customer, port, weight_kg, docs, documents,
		   hs_code, commodity, shipper, consignee, eta, arrival_date,
		   promised_date, isf_filed, created_at, updated_at
	FROM shipments
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShipment(row rowScanner) (*records.Shipment, error) {
	var (
		id                                      uuid.UUID
		sh                                      records.Shipment
		port, hs, commodity, shipper, consignee sql.NullString
		eta, arrival, promised                  sql.NullString
		weight                                  sql.NullFloat64
		docs, documents                         pq.StringArray
		isf                                     bool
	)
	err := row.Scan(
		&id, &sh.Reference, &sh.Customer, &port, &weight, &docs, &documents,
		&hs, &commodity, &shipper, &consignee, &eta, &arrival,
		&promised, &isf, &sh.CreatedAt, &sh.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	sh.ID = domain.ShipmentID(id)
	sh.Port = compliance.Text(port.String)
	if weight.Valid {
		sh.Weight = compliance.Kg(weight.Float64)
	}
	if docs != nil {
		sh.Docs = compliance.DocList(docs)
	}
	if documents != nil {
		sh.Documents = compliance.DocList(documents)
	}
	sh.HSCode = compliance.Text(hs.String)
	sh.Commodity = compliance.Text(commodity.String)
	sh.Shipper = compliance.Text(shipper.String)
	sh.Consignee = compliance.Text(consignee.String)
	sh.ETA = compliance.Text(eta.String)
	sh.ArrivalDate = compliance.Text(arrival.String)
	sh.PromisedDate = compliance.Text(promised.String)
	sh.ISFFiled = compliance.Flag(isf)
	return &sh, nil
}

func (s *PostgresStore) GetShipment(ctx context.Context, id domain.ShipmentID) (*records.Shipment, error) {
	row := txcontext.Conn(ctx, s.db).QueryRowContext(ctx, selectShipments+`WHERE id = $1`, uuid.UUID(id))
	sh, err := scanShipment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get shipment: %w", err)
	}
	return sh, nil
}

func (s *PostgresStore) ListShipments(ctx context.Context) ([]*records.Shipment, error) {
	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx, selectShipments+`ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	defer rows.Close()

	var out []*records.Shipment
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shipment: %w", err)
		}
		out = append(out, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shipments: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CreateDeal(ctx context.Context, d *records.Deal) error {
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO deals (
			id, name, customer, stage, value, currency, champion_identified,
			quote_sent, competitor_count, last_contact_at, expected_close_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		uuid.UUID(d.ID),
		d.Name,
		d.Customer,
		string(d.Stage),
		d.Value,
		d.Currency,
		d.ChampionIdentified,
		d.QuoteSent,
		d.CompetitorCount,
		nullTime(d.LastContactAt),
		nullTime(d.ExpectedCloseAt),
		d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert deal: %w", mapWriteError(err))
	}
	return nil
}

const selectDeals = `
	SELECT id, name, customer, stage, value, currency, champion_identified,
		   quote_sent, competitor_count, last_contact_at, expected_close_at, created_at
	FROM deals
`

func scanDeal(row rowScanner) (*records.Deal, error) {
	var (
		id               uuid.UUID
		d                records.Deal
		stage            string
		lastContact, due sql.NullTime
	)
	err := row.Scan(
		&id, &d.Name, &d.Customer, &stage, &d.Value, &d.Currency, &d.ChampionIdentified,
		&d.QuoteSent, &d.CompetitorCount, &lastContact, &due, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.ID = domain.DealID(id)
	d.Stage = domain.DealStage(stage)
	d.LastContactAt = timePtr(lastContact)
	d.ExpectedCloseAt = timePtr(due)
	return &d, nil
}

func (s *PostgresStore) GetDeal(ctx context.Context, id domain.DealID) (*records.Deal, error) {
	row := txcontext.Conn(ctx, s.db).QueryRowContext(ctx, selectDeals+`WHERE id = $1`, uuid.UUID(id))
	d, err := scanDeal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get deal: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) ListDeals(ctx context.Context) ([]*records.Deal, error) {
	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx, selectDeals+`ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	defer rows.Close()

	var out []*records.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deal: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deals: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CreateCommunication(ctx context.Context, c *records.Communication) error {
	var shipmentID, dealID uuid.NullUUID
	if c.ShipmentID != nil {
		shipmentID = uuid.NullUUID{UUID: uuid.UUID(*c.ShipmentID), Valid: true}
	}
	if c.DealID != nil {
		dealID = uuid.NullUUID{UUID: uuid.UUID(*c.DealID), Valid: true}
	}
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO communications (
			id, shipment_id, deal_id, direction, channel, sender,
			subject, body, sent_at, responded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		uuid.UUID(c.ID),
		shipmentID,
		dealID,
		string(c.Direction),
		string(c.Channel),
		c.From,
		c.Subject,
		c.Body,
		c.SentAt,
		nullTime(c.RespondedAt),
	)
	if err != nil {
		return fmt.Errorf("insert communication: %w", mapWriteError(err))
	}
	return nil
}

func (s *PostgresStore) ListCommunications(ctx context.Context, filter records.CommunicationFilter) ([]*records.Communication, error) {
	query := `
		SELECT id, shipment_id, deal_id, direction, channel, sender,
			   subject, body, sent_at, responded_at
		FROM communications
		WHERE ($1::uuid IS NULL OR shipment_id = $1)
		  AND ($2::uuid IS NULL OR deal_id = $2)
		ORDER BY sent_at, id
	`
	var shipmentID, dealID uuid.NullUUID
	if filter.ShipmentID != nil {
		shipmentID = uuid.NullUUID{UUID: uuid.UUID(*filter.ShipmentID), Valid: true}
	}
	if filter.DealID != nil {
		dealID = uuid.NullUUID{UUID: uuid.UUID(*filter.DealID), Valid: true}
	}

	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx, query, shipmentID, dealID)
	if err != nil {
		return nil, fmt.Errorf("list communications: %w", err)
	}
	defer rows.Close()

	var out []*records.Communication
	for rows.Next() {
		var (
			id               uuid.UUID
			c                records.Communication
			sid, did         uuid.NullUUID
			direction, chann string
			responded        sql.NullTime
		)
		if err := rows.Scan(&id, &sid, &did, &direction, &chann, &c.From, &c.Subject, &c.Body, &c.SentAt, &responded); err != nil {
			return nil, fmt.Errorf("scan communication: %w", err)
		}
		c.ID = domain.CommunicationID(id)
		if sid.Valid {
			v := domain.ShipmentID(sid.UUID)
			c.ShipmentID = &v
		}
		if did.Valid {
			v := domain.DealID(did.UUID)
			c.DealID = &v
		}
		c.Direction = records.Direction(direction)
		c.Channel = records.Channel(chann)
		c.RespondedAt = timePtr(responded)
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate communications: %w", err)
	}
	return out, nil
}
