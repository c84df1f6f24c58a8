package repositories

import (
	"context"

	"github.com/dcode-github/realestate_console/models"
)

type SellingInfoRepository interface {
	Create(ctx context.Context, s *models.SellingInfo) error
	List(ctx context.Context) ([]*models.SellingInfo, error)
	Count(ctx context.Context) (int, error)
	ImageURLsByIDs(ctx context.Context, ids []int64) ([]string, error)
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
}

type sellingInfoRepo struct {
	db DB
}

func NewSellingInfoRepository(db DB) SellingInfoRepository {
	return &sellingInfoRepo{db: db}
}

func (r *sellingInfoRepo) Create(ctx context.Context, s *models.SellingInfo) error {
	if s.ImageURLs == nil {
		s.ImageURLs = []string{}
	}
	row := r.db.QueryRow(ctx, `
        INSERT INTO selling_info (
            full_name, phone, property_type, property_name, commercial_type, rental_type,
            num_of_rooms, num_of_bedrooms, num_of_toilets,
            location_details, plot_size, budget, description, image_urls, updated_date
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14, NOW())
        RETURNING id, updated_date
    `,
		s.FullName, s.Phone, s.PropertyType, nullIfEmpty(s.PropertyName),
		nullIfEmpty(s.CommercialType), nullIfEmpty(s.RentalType),
		s.NumOfRooms, s.NumOfBedRooms, s.NumOfToilets,
		nullIfEmpty(s.LocationDetails), nullIfEmpty(s.PlotSize), nullIfEmpty(s.Budget),
		nullIfEmpty(s.Description), s.ImageURLs,
	)
	return row.Scan(&s.ID, &s.UpdatedAt)
}

func (r *sellingInfoRepo) List(ctx context.Context) ([]*models.SellingInfo, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, full_name, phone, property_type, property_name, commercial_type, rental_type,
               num_of_rooms, num_of_bedrooms, num_of_toilets,
               location_details, plot_size, budget, description, image_urls, updated_date
        FROM selling_info ORDER BY updated_date DESC, id DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*models.SellingInfo{}
	for rows.Next() {
		var (
			s                                        models.SellingInfo
			propertyName, commercialType, rentalType *string
			location, plotSize, budget, description  *string
		)
		if err := rows.Scan(
			&s.ID, &s.FullName, &s.Phone, &s.PropertyType, &propertyName, &commercialType, &rentalType,
			&s.NumOfRooms, &s.NumOfBedRooms, &s.NumOfToilets,
			&location, &plotSize, &budget, &description, &s.ImageURLs, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		s.PropertyName = derefString(propertyName)
		s.CommercialType = derefString(commercialType)
		s.RentalType = derefString(rentalType)
		s.LocationDetails = derefString(location)
		s.PlotSize = derefString(plotSize)
		s.Budget = derefString(budget)
		s.Description = derefString(description)
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *sellingInfoRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM selling_info`).Scan(&n)
	return n, err
}

func (r *sellingInfoRepo) ImageURLsByIDs(ctx context.Context, ids []int64) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT image_urls FROM selling_info WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var urls []string
		if err := rows.Scan(&urls); err != nil {
			return nil, err
		}
		out = append(out, urls...)
	}
	return out, rows.Err()
}

func (r *sellingInfoRepo) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM selling_info WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
