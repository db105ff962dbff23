// README: Shipment and goods catalog store backed by PostgreSQL.
package shipment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cargoshare/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const shipmentColumns = `
    shipment_id, posted_at, company, goods_type, source, destination,
    source_lat, source_lon, dest_lat, dest_lon,
    units, truck_type, storage_left, truck_capacity,
    temp_min, temp_max, eta, priority, scheduled_delivery_time,
    carbon_footprint_per_km, total_emissions`

func (s *Store) Create(ctx context.Context, sh Shipment) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO shipments (`+shipmentColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
        ON CONFLICT (shipment_id) DO UPDATE SET
            storage_left = EXCLUDED.storage_left,
            scheduled_delivery_time = EXCLUDED.scheduled_delivery_time,
            eta = EXCLUDED.eta`,
		string(sh.ID), sh.Timestamp, sh.Company, string(sh.GoodsType), sh.Source, sh.Destination,
		sh.SourcePos.Lat, sh.SourcePos.Lng, sh.DestPos.Lat, sh.DestPos.Lng,
		sh.Units, sh.TruckType, sh.StorageLeft, sh.TruckCapacity,
		sh.Temp.Min, sh.Temp.Max, sh.ETA, string(sh.Priority), sh.ScheduledDelivery,
		sh.CarbonFootprintPerKm, sh.TotalEmissions,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (Shipment, error) {
	row := s.db.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE shipment_id = $1`, string(id))
	sh, err := scanShipment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Shipment{}, ErrNotFound
	}
	return sh, err
}

// ListAll returns every stored shipment ordered by posting time, the order the pool is scanned in.
func (s *Store) ListAll(ctx context.Context) ([]Shipment, error) {
	rows, err := s.db.Query(ctx, `SELECT `+shipmentColumns+` FROM shipments ORDER BY posted_at, shipment_id`)
	if err != nil {
		return nil, fmt.Errorf("query shipments: %w", err)
	}
	defer rows.Close()

	var out []Shipment
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shipment: %w", err)
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

// LoadCatalog reads goods categories and their declared compatibility edges.
// An empty result means no catalog is stored.
func (s *Store) LoadCatalog(ctx context.Context) (Catalog, error) {
	rows, err := s.db.Query(ctx, `SELECT name, temp_min, temp_max FROM goods_types ORDER BY position, name`)
	if err != nil {
		return nil, fmt.Errorf("query goods types: %w", err)
	}
	var catalog Catalog
	index := make(map[GoodsType]int)
	for rows.Next() {
		var g GoodsCategory
		if err := rows.Scan(&g.Name, &g.Temp.Min, &g.Temp.Max); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan goods type: %w", err)
		}
		index[g.Name] = len(catalog)
		catalog = append(catalog, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	edges, err := s.db.Query(ctx, `SELECT goods_type, compatible_with FROM goods_compatibility ORDER BY goods_type, position`)
	if err != nil {
		return nil, fmt.Errorf("query goods compatibility: %w", err)
	}
	defer edges.Close()
	for edges.Next() {
		var from, to GoodsType
		if err := edges.Scan(&from, &to); err != nil {
			return nil, fmt.Errorf("scan goods compatibility: %w", err)
		}
		i, ok := index[from]
		if !ok {
			continue
		}
		catalog[i].Compatible = append(catalog[i].Compatible, to)
	}
	return catalog, edges.Err()
}

func scanShipment(row pgx.Row) (Shipment, error) {
	var sh Shipment
	var id, goods, priority string
	var truckType *string
	var eta, delivery *time.Time
	err := row.Scan(
		&id, &sh.Timestamp, &sh.Company, &goods, &sh.Source, &sh.Destination,
		&sh.SourcePos.Lat, &sh.SourcePos.Lng, &sh.DestPos.Lat, &sh.DestPos.Lng,
		&sh.Units, &truckType, &sh.StorageLeft, &sh.TruckCapacity,
		&sh.Temp.Min, &sh.Temp.Max, &eta, &priority, &delivery,
		&sh.CarbonFootprintPerKm, &sh.TotalEmissions,
	)
	if err != nil {
		return Shipment{}, err
	}
	sh.ID = types.ID(id)
	sh.GoodsType = GoodsType(goods)
	sh.Priority = Priority(priority)
	if truckType != nil {
		sh.TruckType = *truckType
	}
	sh.ETA = eta
	sh.ScheduledDelivery = delivery
	return sh, nil
}
