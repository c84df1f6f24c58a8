package repositories

import (
	"context"

	"github.com/dcode-github/realestate_console/models"
)

type EnquiryRepository interface {
	Create(ctx context.Context, e *models.Enquiry) error
	List(ctx context.Context) ([]*models.Enquiry, error)
	Count(ctx context.Context) (int, error)
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
}

type enquiryRepo struct {
	db DB
}

func NewEnquiryRepository(db DB) EnquiryRepository {
	return &enquiryRepo{db: db}
}

func (r *enquiryRepo) Create(ctx context.Context, e *models.Enquiry) error {
	row := r.db.QueryRow(ctx, `
        INSERT INTO enquiry (
            full_name, phone, property_type, commercial_type, rental_type,
            num_of_rooms, num_of_bedrooms, num_of_toilets,
            location_details, plot_size, budget, description, submitted_date
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12, NOW())
        RETURNING id, submitted_date
    `,
		e.FullName, e.Phone, e.PropertyType,
		nullIfEmpty(e.CommercialType), nullIfEmpty(e.RentalType),
		e.NumOfRooms, e.NumOfBedRooms, e.NumOfToilets,
		nullIfEmpty(e.LocationDetails), nullIfEmpty(e.PlotSize), nullIfEmpty(e.Budget),
		nullIfEmpty(e.Description),
	)
	return row.Scan(&e.ID, &e.SubmittedAt)
}

func (r *enquiryRepo) List(ctx context.Context) ([]*models.Enquiry, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, full_name, phone, property_type, commercial_type, rental_type,
               num_of_rooms, num_of_bedrooms, num_of_toilets,
               location_details, plot_size, budget, description, submitted_date
        FROM enquiry ORDER BY submitted_date DESC, id DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*models.Enquiry{}
	for rows.Next() {
		var (
			e                                    models.Enquiry
			commercialType, rentalType, location *string
			plotSize, budget, description        *string
		)
		if err := rows.Scan(
			&e.ID, &e.FullName, &e.Phone, &e.PropertyType, &commercialType, &rentalType,
			&e.NumOfRooms, &e.NumOfBedRooms, &e.NumOfToilets,
			&location, &plotSize, &budget, &description, &e.SubmittedAt,
		); err != nil {
			return nil, err
		}
		e.CommercialType = derefString(commercialType)
		e.RentalType = derefString(rentalType)
		e.LocationDetails = derefString(location)
		e.PlotSize = derefString(plotSize)
		e.Budget = derefString(budget)
		e.Description = derefString(description)
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *enquiryRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM enquiry`).Scan(&n)
	return n, err
}

func (r *enquiryRepo) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM enquiry WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
