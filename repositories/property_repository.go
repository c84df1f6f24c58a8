package repositories

import (
	"context"

	"github.com/jackc/pgx/v4"

	"github.com/dcode-github/realestate_console/models"
)

type PropertyRepository interface {
	Create(ctx context.Context, p *models.Property) error

	GetByID(ctx context.Context, id int64) (*models.Property, error)
	// GetByIDForUpdate locks the row until the enclosing transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Property, error)
	ListAll(ctx context.Context) ([]*models.Property, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*models.Property, error)
	// ListMentioning returns properties whose location details or
	// description contain name, ignoring case.
	ListMentioning(ctx context.Context, name string) ([]*models.Property, error)

	Update(ctx context.Context, p *models.Property) error
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)

	CountMentioning(ctx context.Context, name string) (int, error)
	Count(ctx context.Context) (int, error)
}

type propertyRepo struct {
	db DB
}

func NewPropertyRepository(db DB) PropertyRepository {
	return &propertyRepo{db: db}
}

func (r *propertyRepo) Create(ctx context.Context, p *models.Property) error {
	if p.ImageURLs == nil {
		p.ImageURLs = []string{}
	}
	row := r.db.QueryRow(ctx, `
        INSERT INTO properties (
            property_type, full_name, phone_number, property_name,
            commercial_type, rental_type,
            num_of_rooms, num_of_bedrooms, num_of_toilets, num_of_villa_rooms,
            location_details, description, plot_size, budget, image_urls,
            updated_date
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15, NOW())
        RETURNING id, updated_date
    `,
		string(p.PropertyType),
		p.FullName,
		p.PhoneNumber,
		nullIfEmpty(p.PropertyName),
		nullIfEmpty(p.CommercialType),
		nullIfEmpty(p.RentalType),
		p.NumOfRooms,
		p.NumOfBedRooms,
		p.NumOfToilets,
		p.NumOfVillaRooms,
		p.LocationDetails,
		nullIfEmpty(p.Description),
		p.PlotSize,
		p.Budget,
		p.ImageURLs,
	)
	return mapWriteError(row.Scan(&p.ID, &p.UpdatedAt))
}

func (r *propertyRepo) GetByID(ctx context.Context, id int64) (*models.Property, error) {
	return scanProperty(r.db.QueryRow(ctx, baseSelectProperty()+" WHERE id=$1", id))
}

func (r *propertyRepo) GetByIDForUpdate(ctx context.Context, id int64) (*models.Property, error) {
	return scanProperty(r.db.QueryRow(ctx, baseSelectProperty()+" WHERE id=$1 FOR UPDATE", id))
}

func (r *propertyRepo) ListAll(ctx context.Context) ([]*models.Property, error) {
	return r.list(ctx, baseSelectProperty()+" ORDER BY updated_date DESC, id DESC")
}

func (r *propertyRepo) ListByIDs(ctx context.Context, ids []int64) ([]*models.Property, error) {
	return r.list(ctx, baseSelectProperty()+" WHERE id = ANY($1) ORDER BY id", ids)
}

func (r *propertyRepo) ListMentioning(ctx context.Context, name string) ([]*models.Property, error) {
	return r.list(ctx, baseSelectProperty()+` 
        WHERE location_details ILIKE $1 ESCAPE '\' OR description ILIKE $1 ESCAPE '\'
        ORDER BY updated_date DESC, id DESC`, likePattern(name))
}

func (r *propertyRepo) list(ctx context.Context, sql string, args ...any) ([]*models.Property, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*models.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *propertyRepo) Update(ctx context.Context, p *models.Property) error {
	if p.ImageURLs == nil {
		p.ImageURLs = []string{}
	}
	row := r.db.QueryRow(ctx, `
        UPDATE properties SET
            property_type=$1, full_name=$2, phone_number=$3, property_name=$4,
            commercial_type=$5, rental_type=$6,
            num_of_rooms=$7, num_of_bedrooms=$8, num_of_toilets=$9, num_of_villa_rooms=$10,
            location_details=$11, description=$12, plot_size=$13, budget=$14,
            image_urls=$15, updated_date=NOW()
        WHERE id=$16
        RETURNING updated_date
    `,
		string(p.PropertyType),
		p.FullName,
		p.PhoneNumber,
		nullIfEmpty(p.PropertyName),
		nullIfEmpty(p.CommercialType),
		nullIfEmpty(p.RentalType),
		p.NumOfRooms,
		p.NumOfBedRooms,
		p.NumOfToilets,
		p.NumOfVillaRooms,
		p.LocationDetails,
		nullIfEmpty(p.Description),
		p.PlotSize,
		p.Budget,
		p.ImageURLs,
		p.ID,
	)
	if err := row.Scan(&p.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return ErrNoRowsUpdated
		}
		return mapWriteError(err)
	}
	return nil
}

func (r *propertyRepo) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM properties WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *propertyRepo) CountMentioning(ctx context.Context, name string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
        SELECT COUNT(*) FROM properties
        WHERE location_details ILIKE $1 ESCAPE '\' OR description ILIKE $1 ESCAPE '\'
    `, likePattern(name)).Scan(&n)
	return n, err
}

func (r *propertyRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM properties`).Scan(&n)
	return n, err
}

func baseSelectProperty() string {
	return `
        SELECT
            id, property_type, full_name, phone_number, property_name,
            commercial_type, rental_type,
            num_of_rooms, num_of_bedrooms, num_of_toilets, num_of_villa_rooms,
            location_details, description, plot_size, budget, image_urls,
            updated_date
        FROM properties
    `
}

func scanProperty(row pgx.Row) (*models.Property, error) {
	var (
		p                                        models.Property
		propertyType                             string
		propertyName, commercialType, rentalType *string
		description                              *string
	)
	err := row.Scan(
		&p.ID,
		&propertyType,
		&p.FullName,
		&p.PhoneNumber,
		&propertyName,
		&commercialType,
		&rentalType,
		&p.NumOfRooms,
		&p.NumOfBedRooms,
		&p.NumOfToilets,
		&p.NumOfVillaRooms,
		&p.LocationDetails,
		&description,
		&p.PlotSize,
		&p.Budget,
		&p.ImageURLs,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	p.PropertyType = models.PropertyType(propertyType)
	p.PropertyName = derefString(propertyName)
	p.CommercialType = derefString(commercialType)
	p.RentalType = derefString(rentalType)
	p.Description = derefString(description)
	if p.ImageURLs == nil {
		p.ImageURLs = []string{}
	}
	return &p, nil
}
