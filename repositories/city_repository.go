package repositories

import (
	"context"

	"github.com/jackc/pgx/v4"

	"github.com/dcode-github/realestate_console/models"
)

type CityRepository interface {
	// Create inserts the city with a zero count; the Recalculator sets the
	// real value inside the same transaction.
	Create(ctx context.Context, c *models.City) error

	GetByID(ctx context.Context, id int64) (*models.City, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.City, error)
	ListAll(ctx context.Context) ([]*models.City, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*models.City, error)

	// UpdateDetails writes name and image only. availableProperties is left
	// to SetAvailableProperties.
	UpdateDetails(ctx context.Context, c *models.City) error
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)

	// LockByName returns the ids of cities whose trimmed, lower-cased name
	// equals the trimmed, lower-cased argument, locking those rows.
	LockByName(ctx context.Context, name string) ([]int64, error)
	SetAvailableProperties(ctx context.Context, ids []int64, count int) error

	Count(ctx context.Context) (int, error)
}

type cityRepo struct {
	db DB
}

func NewCityRepository(db DB) CityRepository {
	return &cityRepo{db: db}
}

func (r *cityRepo) Create(ctx context.Context, c *models.City) error {
	row := r.db.QueryRow(ctx, `
        INSERT INTO cities (city_name, available_properties, image_url, updated_date)
        VALUES ($1, 0, $2, NOW())
        RETURNING id, available_properties, updated_date
    `, c.CityName, c.ImageURL)
	return mapWriteError(row.Scan(&c.ID, &c.AvailableProperties, &c.UpdatedAt))
}

func (r *cityRepo) GetByID(ctx context.Context, id int64) (*models.City, error) {
	return scanCity(r.db.QueryRow(ctx, baseSelectCity()+" WHERE id=$1", id))
}

func (r *cityRepo) GetByIDForUpdate(ctx context.Context, id int64) (*models.City, error) {
	return scanCity(r.db.QueryRow(ctx, baseSelectCity()+" WHERE id=$1 FOR UPDATE", id))
}

func (r *cityRepo) ListAll(ctx context.Context) ([]*models.City, error) {
	return r.list(ctx, baseSelectCity()+" ORDER BY updated_date DESC, id DESC")
}

func (r *cityRepo) ListByIDs(ctx context.Context, ids []int64) ([]*models.City, error) {
	return r.list(ctx, baseSelectCity()+" WHERE id = ANY($1) ORDER BY id", ids)
}

func (r *cityRepo) list(ctx context.Context, sql string, args ...any) ([]*models.City, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*models.City{}
	for rows.Next() {
		c, err := scanCity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *cityRepo) UpdateDetails(ctx context.Context, c *models.City) error {
	row := r.db.QueryRow(ctx, `
        UPDATE cities SET city_name=$1, image_url=$2, updated_date=NOW()
        WHERE id=$3
        RETURNING updated_date
    `, c.CityName, c.ImageURL, c.ID)
	if err := row.Scan(&c.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return ErrNoRowsUpdated
		}
		return mapWriteError(err)
	}
	return nil
}

func (r *cityRepo) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM cities WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *cityRepo) LockByName(ctx context.Context, name string) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id FROM cities
        WHERE `+nameKey("city_name")+` = `+nameKey("$1::text")+`
        ORDER BY id
        FOR UPDATE
    `, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *cityRepo) SetAvailableProperties(ctx context.Context, ids []int64, count int) error {
	_, err := r.db.Exec(ctx, `UPDATE cities SET available_properties=$1 WHERE id = ANY($2)`, count, ids)
	return err
}

func (r *cityRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM cities`).Scan(&n)
	return n, err
}

func baseSelectCity() string {
	return `
        SELECT id, city_name, available_properties, image_url, updated_date
        FROM cities
    `
}

func scanCity(row pgx.Row) (*models.City, error) {
	var c models.City
	err := row.Scan(&c.ID, &c.CityName, &c.AvailableProperties, &c.ImageURL, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
