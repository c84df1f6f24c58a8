package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dcode-github/realestate_console/models"
	"github.com/dcode-github/realestate_console/repositories"
)

type leadTables struct {
	mu        sync.Mutex
	nextID    int64
	enquiries []models.Enquiry
	visits    []models.VisitSchedule
	selling   []models.SellingInfo
	users     []models.User
}

func newLeadTables() *leadTables {
	return &leadTables{}
}

func (t *leadTables) id() int64 {
	t.nextID++
	return t.nextID
}

func (db *DB) Enquiries() repositories.EnquiryRepository            { return &enquiryRepo{db} }
func (db *DB) VisitSchedules() repositories.VisitScheduleRepository { return &visitRepo{db} }
func (db *DB) SellingInfo() repositories.SellingInfoRepository      { return &sellingRepo{db} }
func (db *DB) Users() repositories.UserRepository                   { return &userRepo{db} }

// deleteWhere removes the rows whose id is listed and reports how many went.
func deleteWhere[T any](rows []T, ids []int64, id func(T) int64) ([]T, int64) {
	before := len(rows)
	rows = slices.DeleteFunc(rows, func(r T) bool { return slices.Contains(ids, id(r)) })
	return rows, int64(before - len(rows))
}

// newestFirst returns pointers to copies of rows, last inserted first.
func newestFirst[T any](rows []T) []*T {
	out := make([]*T, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		out = append(out, &r)
	}
	return out
}

type enquiryRepo struct{ db *DB }

func (r *enquiryRepo) Create(_ context.Context, e *models.Enquiry) error {
	t := r.db.leads
	t.mu.Lock()
	defer t.mu.Unlock()
	e.ID = t.id()
	e.SubmittedAt = r.db.now()
	t.enquiries = append(t.enquiries, *e)
	return nil
}

func (r *enquiryRepo) List(_ context.Context) ([]*models.Enquiry, error) {
	t := r.db.leads
	t.mu.Lock()
	defer t.mu.Unlock()
	return newestFirst(t.enquiries), nil
}

func (r *enquiryRepo) Count(_ context.Context) (int, error) {
	t := r.db.leads
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.enquiries), nil
}

func (r *enquiryRepo) DeleteByIDs(_ context.Context, ids []int64) (int64, error) {
	t := r.db.leads
	t.mu.Lock()
	defer t.mu.Unlock()
	var n int64
	t.enquiries, n = deleteWhere(t.enquiries, ids, func(e models.Enquiry) int64 { return e.ID })
	return n, nil
}

type visitRepo struct{ db *DB }

func (r *visitRepo) Create(_ context.Context, v *models.VisitSchedule) error {
	t := r.db.leads
	t.mu.Lock()
	defer t.mu.Unlock()
	v.ID = t.id()
	v.CreatedAt = r.db.now()
	t.visits = append(t.visits, *v)
	return nil
}

func (r *visitRepo) List(_ context.Context) ([]*models.VisitSchedule, error) {
	t := r.db.leads
	t.mu.Lock()
	defer t.mu.Unlock()
	return newestFirst(t.visits), nil
}

func (r *visitRepo) Count(_ context.Context) (int, error) {
	t := r.db.leads
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.visits), nil
}

func (r *visitRepo) DeleteByIDs(_ context.Context, ids []int64) (int64, error) {
	t := r.db.leads
	t.mu.Lock()
	defer t.mu.Unlock()
	var n int64
	t.visits, n = deleteWhere(t.visits, ids, func(v models.VisitSchedule) int64 { return v.ID })
	return n, nil
}

type sellingRepo struct{ db *DB }

func (r *sellingRepo) Create(_ context.Context, s *models.SellingInfo) error {
	t := r.db.leads
	t.mu.Lock()
	defer t.mu.Unlock()
	s.ID = t.id()
	s.UpdatedAt = r.db.now()
	if s.ImageURLs == nil {
		s.ImageURLs = []string{}
	}
	row := *s
	row.ImageURLs = slices.Clone(s.ImageURLs)
	t.selling = append(t.selling, row)
	return nil
}

func (r *sellingRepo) List(_ context.Context) ([]*models.SellingInfo, error) {
	t := r.db.leads
	t.mu.Lock()
	defer t.mu.Unlock()
	return newestFirst(t.selling), nil
}

func (r *sellingRepo) Count(_ context.Context) (int, error) {
	t := r.db.leads
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.selling), nil
}

func (r *sellingRepo) ImageURLsByIDs(_ context.Context, ids []int64) ([]string, error) {
	t := r.db.leads
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []string
	for _, s := range t.selling {
		if slices.Contains(ids, s.ID) {
			out = append(out, s.ImageURLs...)
		}
	}
	return out, nil
}

func (r *sellingRepo) DeleteByIDs(_ context.Context, ids []int64) (int64, error) {
	t := r.db.leads
	t.mu.Lock()
	defer t.mu.Unlock()
	var n int64
	t.selling, n = deleteWhere(t.selling, ids, func(s models.SellingInfo) int64 { return s.ID })
	return n, nil
}

type userRepo struct{ db *DB }

func (r *userRepo) Create(_ context.Context, u *models.User) error {
	t := r.db.leads
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, existing := range t.users {
		if existing.Username == u.Username {
			return fmt.Errorf("%w: users_username_key", repositories.ErrDuplicate)
		}
	}
	u.ID = t.id()
	u.CreatedAt = r.db.now()
	t.users = append(t.users, *u)
	return nil
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	t := r.db.leads
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, u := range t.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}
