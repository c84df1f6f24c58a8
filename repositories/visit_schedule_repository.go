package repositories

import (
	"context"
	"time"

	"github.com/dcode-github/realestate_console/models"
)

type VisitScheduleRepository interface {
	Create(ctx context.Context, v *models.VisitSchedule) error
	List(ctx context.Context) ([]*models.VisitSchedule, error)
	Count(ctx context.Context) (int, error)
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
}

type visitScheduleRepo struct {
	db DB
}

func NewVisitScheduleRepository(db DB) VisitScheduleRepository {
	return &visitScheduleRepo{db: db}
}

func (r *visitScheduleRepo) Create(ctx context.Context, v *models.VisitSchedule) error {
	row := r.db.QueryRow(ctx, `
        INSERT INTO visit_schedules (
            full_name, email, phone_number, visit_date, visit_time,
            property_name, location_details, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7, NOW())
        RETURNING id, created_at
    `,
		v.FullName, nullIfEmpty(v.Email), v.PhoneNumber, v.VisitDate, nullIfEmpty(v.VisitTime),
		nullIfEmpty(v.PropertyName), nullIfEmpty(v.LocationDetails),
	)
	return row.Scan(&v.ID, &v.CreatedAt)
}

func (r *visitScheduleRepo) List(ctx context.Context) ([]*models.VisitSchedule, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, full_name, email, phone_number, visit_date, visit_time,
               property_name, location_details, created_at
        FROM visit_schedules ORDER BY created_at DESC, id DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*models.VisitSchedule{}
	for rows.Next() {
		var (
			v                                        models.VisitSchedule
			email, visitTime, propertyName, location *string
			visitDate                                *time.Time
		)
		if err := rows.Scan(
			&v.ID, &v.FullName, &email, &v.PhoneNumber, &visitDate, &visitTime,
			&propertyName, &location, &v.CreatedAt,
		); err != nil {
			return nil, err
		}
		v.Email = derefString(email)
		v.VisitDate = visitDate
		v.VisitTime = derefString(visitTime)
		v.PropertyName = derefString(propertyName)
		v.LocationDetails = derefString(location)
		out = append(out, &v)
	}
	return out, rows.Err()
}

func (r *visitScheduleRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM visit_schedules`).Scan(&n)
	return n, err
}

func (r *visitScheduleRepo) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM visit_schedules WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
