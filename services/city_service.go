package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dcode-github/realestate_console/catalog"
	"github.com/dcode-github/realestate_console/imageset"
	"github.com/dcode-github/realestate_console/models"
	"github.com/dcode-github/realestate_console/repositories"
	"github.com/dcode-github/realestate_console/storage"
	"github.com/dcode-github/realestate_console/utils"
)

// CityService manages city rows. A city's count is set by the Recalculator
// in the same transaction that creates or renames it.
type CityService struct {
	tx       repositories.Transactor
	uploads  *storage.Uploads
	recalc   *catalog.Recalculator
	compress imageset.CompressOptions
	logger   logrus.FieldLogger
}

func NewCityService(
	tx repositories.Transactor,
	uploads *storage.Uploads,
	recalc *catalog.Recalculator,
	compress imageset.CompressOptions,
	logger logrus.FieldLogger,
) *CityService {
	return &CityService{
		tx:       tx,
		uploads:  uploads,
		recalc:   recalc,
		compress: compress,
		logger:   logger,
	}
}

func (s *CityService) saveImage(img imageset.Upload) (string, error) {
	staged := imageset.Stage([]imageset.Upload{img}, s.compress, s.logger)
	url, err := s.uploads.Save(storage.CategoryCities, staged[0])
	if err != nil {
		return "", uploadFailure(err)
	}
	return url, nil
}

// Create adds a city with its image and computes its initial count.
func (s *CityService) Create(ctx context.Context, name string, image *imageset.Upload) (*models.City, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, utils.ValidationError("City name is required", nil)
	}
	if image == nil || len(image.Data) == 0 {
		return nil, utils.ValidationError("No file uploaded", nil)
	}

	url, err := s.saveImage(*image)
	if err != nil {
		return nil, err
	}

	city := &models.City{CityName: name, ImageURL: url}
	err = s.tx.WithinTx(ctx, func(store repositories.Store) error {
		if err := store.Cities().Create(ctx, city); err != nil {
			return cityWriteError(err)
		}
		res, err := s.recalc.Recalculate(ctx, repositories.NewTextMatcher(store), []string{name})
		if err != nil {
			return err
		}
		city.AvailableProperties = res.Counts[name]
		return nil
	})
	if err != nil {
		s.uploads.RemoveAll([]string{url})
		return nil, asAppError(err, "Failed to create city")
	}
	return city, nil
}

// Update renames a city and/or replaces its image, then recounts it under
// its current name. The replaced image file is deleted after commit.
func (s *CityService) Update(ctx context.Context, id int64, name string, image *imageset.Upload) (*models.City, error) {
	name = strings.TrimSpace(name)

	var newURL, oldURL string
	if image != nil && len(image.Data) > 0 {
		url, err := s.saveImage(*image)
		if err != nil {
			return nil, err
		}
		newURL = url
	}

	var city *models.City
	err := s.tx.WithinTx(ctx, func(store repositories.Store) error {
		var err error
		city, err = store.Cities().GetByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("load city: %w", err)
		}
		if city == nil {
			return utils.NotFoundError("City not found")
		}
		if name != "" {
			city.CityName = name
		}
		if newURL != "" {
			oldURL = city.ImageURL
			city.ImageURL = newURL
		}
		if err := store.Cities().UpdateDetails(ctx, city); err != nil {
			if errors.Is(err, repositories.ErrNoRowsUpdated) {
				return utils.NotFoundError("City not found")
			}
			return cityWriteError(err)
		}

		res, err := s.recalc.Recalculate(ctx, repositories.NewTextMatcher(store), []string{city.CityName})
		if err != nil {
			return err
		}
		city.AvailableProperties = res.Counts[city.CityName]
		return nil
	})
	if err != nil {
		if newURL != "" {
			s.uploads.RemoveAll([]string{newURL})
		}
		return nil, asAppError(err, "Failed to update city")
	}

	if oldURL != "" && imageset.NormalizePath(oldURL) != newURL {
		s.uploads.RemoveAll([]string{oldURL})
	}
	return city, nil
}

// Delete removes cities and, best effort, their image files.
func (s *CityService) Delete(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, utils.ValidationError("No IDs provided", nil)
	}

	var deleted int64
	err := s.tx.WithinTx(ctx, func(store repositories.Store) error {
		cities, err := store.Cities().ListByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("load cities: %w", err)
		}
		for _, c := range cities {
			if c.ImageURL == "" {
				s.logger.WithField("cityID", c.ID).Warn("No image URL found for city")
				continue
			}
			s.uploads.RemoveAll([]string{c.ImageURL})
		}
		deleted, err = store.Cities().DeleteByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("delete cities: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, asAppError(err, "Failed to delete cities")
	}
	return deleted, nil
}

// RecountAll recalculates every managed city in one transaction.
func (s *CityService) RecountAll(ctx context.Context) (catalog.Result, error) {
	var res catalog.Result
	err := s.tx.WithinTx(ctx, func(store repositories.Store) error {
		cities, err := store.Cities().ListAll(ctx)
		if err != nil {
			return fmt.Errorf("list cities: %w", err)
		}
		names := make([]string, 0, len(cities))
		for _, c := range cities {
			names = append(names, c.CityName)
		}
		res, err = s.recalc.Recalculate(ctx, repositories.NewTextMatcher(store), catalog.MergeCandidates(names))
		return err
	})
	if err != nil {
		return catalog.Result{}, asAppError(err, "Failed to recount cities")
	}
	return res, nil
}

func (s *CityService) List(ctx context.Context) ([]*models.City, error) {
	cities, err := s.tx.Store().Cities().ListAll(ctx)
	if err != nil {
		return nil, utils.PersistenceError("Failed to fetch cities", err)
	}
	return cities, nil
}

func (s *CityService) Count(ctx context.Context) (int, error) {
	n, err := s.tx.Store().Cities().Count(ctx)
	if err != nil {
		return 0, utils.PersistenceError("Failed to count cities", err)
	}
	return n, nil
}

func cityWriteError(err error) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		return utils.ConflictError("City already exists", err)
	}
	return fmt.Errorf("write city: %w", err)
}

func asAppError(err error, message string) error {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return utils.PersistenceError(message, err)
}
