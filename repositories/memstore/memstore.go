// Package memstore is an in-memory implementation of the repositories with
// the same transaction semantics: a failed WithinTx leaves no trace.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/dcode-github/realestate_console/catalog"
	"github.com/dcode-github/realestate_console/models"
	"github.com/dcode-github/realestate_console/repositories"
)

type state struct {
	properties map[int64]models.Property
	cities     map[int64]models.City
	nextID     int64
}

func (s *state) clone() *state {
	c := &state{
		properties: make(map[int64]models.Property, len(s.properties)),
		cities:     make(map[int64]models.City, len(s.cities)),
		nextID:     s.nextID,
	}
	for id, p := range s.properties {
		c.properties[id] = cloneProperty(p)
	}
	for id, city := range s.cities {
		c.cities[id] = city
	}
	return c
}

// DB holds every table in memory. Transactions are serialized.
type DB struct {
	mu    sync.Mutex
	data  *state
	now   func() time.Time
	fails map[string]error
	leads *leadTables
}

func New() *DB {
	return &DB{
		data:  &state{properties: map[int64]models.Property{}, cities: map[int64]models.City{}},
		now:   time.Now,
		fails: map[string]error{},
		leads: newLeadTables(),
	}
}

// FailOn makes the named repository operation return err until cleared with
// a nil err. Operation names are "<table>.<Method>", e.g.
// "properties.CountMentioning".
func (db *DB) FailOn(op string, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err == nil {
		delete(db.fails, op)
		return
	}
	db.fails[op] = err
}

func (db *DB) Store() repositories.Store {
	return &store{db: db}
}

// WithinTx runs fn against a private copy of the data and publishes it only
// when fn succeeds.
func (db *DB) WithinTx(ctx context.Context, fn func(repositories.Store) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	snapshot := db.data.clone()
	if err := fn(&store{db: db, tx: true}); err != nil {
		db.data = snapshot
		return err
	}
	return nil
}

type store struct {
	db *DB
	tx bool
}

func (s *store) Properties() repositories.PropertyRepository { return &propertyRepo{s} }
func (s *store) Cities() repositories.CityRepository         { return &cityRepo{s} }

// run executes fn with the lock held, unless this store belongs to a
// transaction that already holds it.
func (s *store) run(op string, fn func(d *state) error) error {
	if !s.tx {
		s.db.mu.Lock()
		defer s.db.mu.Unlock()
	}
	if err := s.db.fails[op]; err != nil {
		return err
	}
	return fn(s.db.data)
}

func (d *state) id() int64 {
	d.nextID++
	return d.nextID
}

func cloneProperty(p models.Property) models.Property {
	p.ImageURLs = slices.Clone(p.ImageURLs)
	if p.ImageURLs == nil {
		p.ImageURLs = []string{}
	}
	return p
}

/* ------------------------------------------------------------------
   properties
------------------------------------------------------------------ */

type propertyRepo struct{ s *store }

func (r *propertyRepo) Create(_ context.Context, p *models.Property) error {
	return r.s.run("properties.Create", func(d *state) error {
		if p.LocationDetails == "" {
			return fmt.Errorf("properties: location_details violates check constraint")
		}
		p.ID = d.id()
		p.UpdatedAt = r.s.db.now()
		d.properties[p.ID] = cloneProperty(*p)
		return nil
	})
}

func (r *propertyRepo) GetByID(_ context.Context, id int64) (*models.Property, error) {
	var out *models.Property
	err := r.s.run("properties.GetByID", func(d *state) error {
		if p, ok := d.properties[id]; ok {
			c := cloneProperty(p)
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *propertyRepo) GetByIDForUpdate(ctx context.Context, id int64) (*models.Property, error) {
	return r.GetByID(ctx, id)
}

func (r *propertyRepo) ListAll(_ context.Context) ([]*models.Property, error) {
	return r.filter("properties.ListAll", func(models.Property) bool { return true }, true)
}

func (r *propertyRepo) ListByIDs(_ context.Context, ids []int64) ([]*models.Property, error) {
	return r.filter("properties.ListByIDs", func(p models.Property) bool { return slices.Contains(ids, p.ID) }, false)
}

func (r *propertyRepo) ListMentioning(_ context.Context, name string) ([]*models.Property, error) {
	return r.filter("properties.ListMentioning", func(p models.Property) bool {
		return catalog.PropertyMentions(p.LocationDetails, p.Description, name)
	}, true)
}

func (r *propertyRepo) filter(op string, keep func(models.Property) bool, newestFirst bool) ([]*models.Property, error) {
	out := []*models.Property{}
	err := r.s.run(op, func(d *state) error {
		for _, p := range d.properties {
			if keep(p) {
				c := cloneProperty(p)
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
				return out[i].UpdatedAt.After(out[j].UpdatedAt)
			}
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *propertyRepo) Update(_ context.Context, p *models.Property) error {
	return r.s.run("properties.Update", func(d *state) error {
		if _, ok := d.properties[p.ID]; !ok {
			return repositories.ErrNoRowsUpdated
		}
		p.UpdatedAt = r.s.db.now()
		d.properties[p.ID] = cloneProperty(*p)
		return nil
	})
}

func (r *propertyRepo) DeleteByIDs(_ context.Context, ids []int64) (int64, error) {
	var n int64
	err := r.s.run("properties.DeleteByIDs", func(d *state) error {
		for _, id := range ids {
			if _, ok := d.properties[id]; ok {
				delete(d.properties, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *propertyRepo) CountMentioning(_ context.Context, name string) (int, error) {
	n := 0
	err := r.s.run("properties.CountMentioning", func(d *state) error {
		for _, p := range d.properties {
			if catalog.PropertyMentions(p.LocationDetails, p.Description, name) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *propertyRepo) Count(_ context.Context) (int, error) {
	n := 0
	err := r.s.run("properties.Count", func(d *state) error {
		n = len(d.properties)
		return nil
	})
	return n, err
}

/* ------------------------------------------------------------------
   cities
------------------------------------------------------------------ */

type cityRepo struct{ s *store }

func (r *cityRepo) Create(_ context.Context, c *models.City) error {
	return r.s.run("cities.Create", func(d *state) error {
		for _, existing := range d.cities {
			if catalog.SameCity(existing.CityName, c.CityName) {
				return fmt.Errorf("%w: cities_name_key", repositories.ErrDuplicate)
			}
		}
		c.ID = d.id()
		c.AvailableProperties = 0
		c.UpdatedAt = r.s.db.now()
		d.cities[c.ID] = *c
		return nil
	})
}

func (r *cityRepo) GetByID(_ context.Context, id int64) (*models.City, error) {
	var out *models.City
	err := r.s.run("cities.GetByID", func(d *state) error {
		if c, ok := d.cities[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *cityRepo) GetByIDForUpdate(ctx context.Context, id int64) (*models.City, error) {
	return r.GetByID(ctx, id)
}

func (r *cityRepo) ListAll(_ context.Context) ([]*models.City, error) {
	return r.filter("cities.ListAll", func(models.City) bool { return true }, true)
}

func (r *cityRepo) ListByIDs(_ context.Context, ids []int64) ([]*models.City, error) {
	return r.filter("cities.ListByIDs", func(c models.City) bool { return slices.Contains(ids, c.ID) }, false)
}

func (r *cityRepo) filter(op string, keep func(models.City) bool, newestFirst bool) ([]*models.City, error) {
	out := []*models.City{}
	err := r.s.run(op, func(d *state) error {
		for _, c := range d.cities {
			if keep(c) {
				c := c
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
				return out[i].UpdatedAt.After(out[j].UpdatedAt)
			}
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *cityRepo) UpdateDetails(_ context.Context, c *models.City) error {
	return r.s.run("cities.UpdateDetails", func(d *state) error {
		cur, ok := d.cities[c.ID]
		if !ok {
			return repositories.ErrNoRowsUpdated
		}
		for id, other := range d.cities {
			if id != c.ID && catalog.SameCity(other.CityName, c.CityName) {
				return fmt.Errorf("%w: cities_name_key", repositories.ErrDuplicate)
			}
		}
		cur.CityName = c.CityName
		cur.ImageURL = c.ImageURL
		cur.UpdatedAt = r.s.db.now()
		d.cities[c.ID] = cur
		c.UpdatedAt = cur.UpdatedAt
		return nil
	})
}

func (r *cityRepo) DeleteByIDs(_ context.Context, ids []int64) (int64, error) {
	var n int64
	err := r.s.run("cities.DeleteByIDs", func(d *state) error {
		for _, id := range ids {
			if _, ok := d.cities[id]; ok {
				delete(d.cities, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *cityRepo) LockByName(_ context.Context, name string) ([]int64, error) {
	var ids []int64
	err := r.s.run("cities.LockByName", func(d *state) error {
		for id, c := range d.cities {
			if catalog.SameCity(c.CityName, name) {
				ids = append(ids, id)
			}
		}
		return nil
	})
	slices.Sort(ids)
	return ids, err
}

func (r *cityRepo) SetAvailableProperties(_ context.Context, ids []int64, count int) error {
	return r.s.run("cities.SetAvailableProperties", func(d *state) error {
		for _, id := range ids {
			if c, ok := d.cities[id]; ok {
				c.AvailableProperties = count
				d.cities[id] = c
			}
		}
		return nil
	})
}

func (r *cityRepo) Count(_ context.Context) (int, error) {
	n := 0
	err := r.s.run("cities.Count", func(d *state) error {
		n = len(d.cities)
		return nil
	})
	return n, err
}
