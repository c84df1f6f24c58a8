// Package services runs the mutations that must keep City.availableProperties
// consistent with the property table.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/dcode-github/realestate_console/catalog"
	"github.com/dcode-github/realestate_console/imageset"
	"github.com/dcode-github/realestate_console/models"
	"github.com/dcode-github/realestate_console/repositories"
	"github.com/dcode-github/realestate_console/storage"
	"github.com/dcode-github/realestate_console/utils"
)

// PropertyInput carries the editable fields of a property as submitted.
type PropertyInput struct {
	PropertyType    string `json:"propertyType" validate:"required,oneof=Land Commercial House Villa Rental 'Farm Land' Industrial"`
	FullName        string `json:"fullName" validate:"required"`
	PhoneNumber     string `json:"phoneNumber" validate:"required,len=10,numeric"`
	PropertyName    string `json:"propertyName"`
	CommercialType  string `json:"commercialType" validate:"omitempty,oneof=Plot Building"`
	RentalType      string `json:"rentalType" validate:"omitempty,oneof=House Flat"`
	NumOfRooms      *int   `json:"numOfRooms" validate:"omitempty,min=0"`
	NumOfBedRooms   *int   `json:"numOfBedRooms" validate:"omitempty,min=0"`
	NumOfToilets    *int   `json:"numOfToilets" validate:"omitempty,min=0"`
	NumOfVillaRooms *int   `json:"numOfVillaRooms" validate:"omitempty,min=0"`
	LocationDetails string `json:"locationDetails" validate:"required"`
	Description     string `json:"description" validate:"required_if=PropertyType Land"`
	PlotSize        string `json:"plotSize" validate:"required"`
	Budget          string `json:"budget" validate:"required"`
}

func (in *PropertyInput) normalize() {
	for _, f := range []*string{
		&in.PropertyType, &in.FullName, &in.PhoneNumber, &in.PropertyName,
		&in.CommercialType, &in.RentalType, &in.LocationDetails, &in.Description,
	} {
		*f = strings.TrimSpace(*f)
	}
	in.PlotSize = models.ParseMeasure(in.PlotSize).String()
	in.Budget = models.ParseMeasure(in.Budget).String()
}

func (in PropertyInput) toModel() *models.Property {
	return &models.Property{
		PropertyType:    models.PropertyType(in.PropertyType),
		FullName:        in.FullName,
		PhoneNumber:     in.PhoneNumber,
		PropertyName:    in.PropertyName,
		CommercialType:  in.CommercialType,
		RentalType:      in.RentalType,
		NumOfRooms:      in.NumOfRooms,
		NumOfBedRooms:   in.NumOfBedRooms,
		NumOfToilets:    in.NumOfToilets,
		NumOfVillaRooms: in.NumOfVillaRooms,
		LocationDetails: in.LocationDetails,
		Description:     in.Description,
		PlotSize:        in.PlotSize,
		Budget:          in.Budget,
	}
}

type PropertyServiceOptions struct {
	Compress imageset.CompressOptions
	// RecalcPreviousCities also recalculates the cities named by a
	// property's text before an update.
	RecalcPreviousCities bool
}

type PropertyService struct {
	tx       repositories.Transactor
	uploads  *storage.Uploads
	recalc   *catalog.Recalculator
	validate *validator.Validate
	opts     PropertyServiceOptions
	logger   logrus.FieldLogger
}

func NewPropertyService(
	tx repositories.Transactor,
	uploads *storage.Uploads,
	recalc *catalog.Recalculator,
	validate *validator.Validate,
	opts PropertyServiceOptions,
	logger logrus.FieldLogger,
) *PropertyService {
	return &PropertyService{
		tx:       tx,
		uploads:  uploads,
		recalc:   recalc,
		validate: validate,
		opts:     opts,
		logger:   logger,
	}
}

func (s *PropertyService) check(in *PropertyInput) error {
	in.normalize()
	if err := s.validate.Struct(in); err != nil {
		return utils.ValidationFailure(err)
	}
	return nil
}

// Create validates and inserts a property, then recalculates every city its
// text names, all in one transaction. Stored image files are removed again if
// the transaction does not commit.
func (s *PropertyService) Create(ctx context.Context, in PropertyInput, images []imageset.Upload) (*models.Property, error) {
	m := newMutation(s.logger, "create")

	if err := s.check(&in); err != nil {
		return nil, err
	}
	if err := imageset.CheckQuota(nil, nil, len(images)); err != nil {
		return nil, utils.QuotaError(err)
	}
	m.advance(StageValidated)

	urls, err := s.uploads.SaveAll(storage.CategoryProperties, imageset.Stage(images, s.opts.Compress, s.logger))
	if err != nil {
		return nil, uploadFailure(err)
	}

	p := in.toModel()
	p.ImageURLs = imageset.Merge(nil, nil, urls)

	err = s.tx.WithinTx(ctx, func(store repositories.Store) error {
		if err := store.Properties().Create(ctx, p); err != nil {
			return fmt.Errorf("insert property: %w", err)
		}
		m.advance(StagePersisted)
		return s.recalculate(ctx, store, m, catalog.CandidateCities(p.LocationDetails, p.Description))
	})
	if err != nil {
		s.uploads.RemoveAll(urls)
		return nil, m.rollback(err, "Failed to create property")
	}
	m.advance(StageCommitted)
	return p, nil
}

// Update rewrites a property. The image set becomes the stored images minus
// removed plus the new uploads; files for dropped images are deleted only
// after commit.
func (s *PropertyService) Update(ctx context.Context, id int64, in PropertyInput, removed []string, images []imageset.Upload) (*models.Property, error) {
	m := newMutation(s.logger.WithField("propertyID", id), "update")

	if err := s.check(&in); err != nil {
		return nil, err
	}
	if len(images) > imageset.MaxImages {
		return nil, utils.QuotaError(imageset.CheckQuota(nil, nil, len(images)))
	}
	staged := imageset.Stage(images, s.opts.Compress, s.logger)

	var saved, dropped []string
	p := in.toModel()
	p.ID = id

	err := s.tx.WithinTx(ctx, func(store repositories.Store) error {
		existing, err := store.Properties().GetByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("load property: %w", err)
		}
		if existing == nil {
			return utils.NotFoundError("Property not found")
		}
		if err := imageset.CheckQuota(existing.ImageURLs, removed, len(staged)); err != nil {
			return utils.QuotaError(err)
		}
		m.advance(StageValidated)

		if saved, err = s.uploads.SaveAll(storage.CategoryProperties, staged); err != nil {
			return uploadFailure(err)
		}
		p.ImageURLs = imageset.Merge(existing.ImageURLs, removed, saved)
		dropped = droppedImages(existing.ImageURLs, p.ImageURLs)

		if err := store.Properties().Update(ctx, p); err != nil {
			if errors.Is(err, repositories.ErrNoRowsUpdated) {
				return utils.NotFoundError("Property not found")
			}
			return fmt.Errorf("update property: %w", err)
		}
		m.advance(StagePersisted)

		names := catalog.CandidateCities(p.LocationDetails, p.Description)
		if s.opts.RecalcPreviousCities {
			names = catalog.MergeCandidates(names, catalog.CandidateCities(existing.LocationDetails, existing.Description))
		}
		return s.recalculate(ctx, store, m, names)
	})
	if err != nil {
		s.uploads.RemoveAll(saved)
		return nil, m.rollback(err, "Failed to update property")
	}
	m.advance(StageCommitted)

	s.uploads.RemoveAll(dropped)
	return p, nil
}

// DeleteResult summarizes a batch delete.
type DeleteResult struct {
	Deleted      int64          `json:"deleted"`
	FilesRemoved int            `json:"filesRemoved"`
	Cities       map[string]int `json:"cities"`
}

// Delete removes a batch of properties. Image files are deleted one by one
// before the rows and are not restored if the transaction rolls back.
func (s *PropertyService) Delete(ctx context.Context, ids []int64) (DeleteResult, error) {
	var res DeleteResult
	if len(ids) == 0 {
		return res, utils.ValidationError("No IDs provided", nil)
	}
	m := newMutation(s.logger.WithField("ids", ids), "delete")
	m.advance(StageValidated)

	err := s.tx.WithinTx(ctx, func(store repositories.Store) error {
		props, err := store.Properties().ListByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("load properties: %w", err)
		}

		var names []string
		for _, p := range props {
			res.FilesRemoved += s.uploads.RemoveAll(p.ImageURLs)
			names = catalog.MergeCandidates(names, catalog.CandidateCities(p.LocationDetails, p.Description))
		}

		if res.Deleted, err = store.Properties().DeleteByIDs(ctx, ids); err != nil {
			return fmt.Errorf("delete properties: %w", err)
		}
		m.advance(StagePersisted)

		return s.recalculateInto(ctx, store, m, names, &res.Cities)
	})
	if err != nil {
		return DeleteResult{}, m.rollback(err, "Failed to delete properties")
	}
	m.advance(StageCommitted)
	return res, nil
}

func (s *PropertyService) recalculate(ctx context.Context, store repositories.Store, m *mutation, names []string) error {
	return s.recalculateInto(ctx, store, m, names, nil)
}

func (s *PropertyService) recalculateInto(ctx context.Context, store repositories.Store, m *mutation, names []string, counts *map[string]int) error {
	m.advance(StageCitiesEnumerated)
	res, err := s.recalc.Recalculate(ctx, repositories.NewTextMatcher(store), names)
	if err != nil {
		return err
	}
	if counts != nil {
		*counts = res.Counts
	}
	m.advance(StageCountsRecalculated)
	return nil
}

func (s *PropertyService) Get(ctx context.Context, id int64) (*models.Property, error) {
	p, err := s.tx.Store().Properties().GetByID(ctx, id)
	if err != nil {
		return nil, utils.PersistenceError("Failed to fetch property", err)
	}
	if p == nil {
		return nil, utils.NotFoundError("Property not found")
	}
	return p, nil
}

func (s *PropertyService) List(ctx context.Context) ([]*models.Property, error) {
	props, err := s.tx.Store().Properties().ListAll(ctx)
	if err != nil {
		return nil, utils.PersistenceError("Failed to fetch properties", err)
	}
	return props, nil
}

// ListByCity returns the properties whose text mentions cityName, the same
// rule that drives the city's count.
func (s *PropertyService) ListByCity(ctx context.Context, cityName string) ([]*models.Property, error) {
	cityName = strings.TrimSpace(cityName)
	if cityName == "" {
		return nil, utils.ValidationError("City name is required", nil)
	}
	props, err := s.tx.Store().Properties().ListMentioning(ctx, cityName)
	if err != nil {
		return nil, utils.PersistenceError("Failed to fetch properties", err)
	}
	return props, nil
}

func (s *PropertyService) Count(ctx context.Context) (int, error) {
	n, err := s.tx.Store().Properties().Count(ctx)
	if err != nil {
		return 0, utils.PersistenceError("Failed to count properties", err)
	}
	return n, nil
}

// droppedImages lists the normalized URLs in before that are absent from after.
func droppedImages(before, after []string) []string {
	keep := make(map[string]struct{}, len(after))
	for _, u := range after {
		keep[imageset.NormalizePath(u)] = struct{}{}
	}
	var out []string
	for _, u := range before {
		n := imageset.NormalizePath(u)
		if n == "" {
			continue
		}
		if _, ok := keep[n]; !ok {
			out = append(out, n)
			keep[n] = struct{}{}
		}
	}
	return out
}
