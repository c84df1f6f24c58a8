package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/dcode-github/realestate_console/imageset"
	"github.com/dcode-github/realestate_console/models"
	"github.com/dcode-github/realestate_console/repositories"
	"github.com/dcode-github/realestate_console/storage"
	"github.com/dcode-github/realestate_console/utils"
)

// LeadInput is the shared form of enquiries and selling requests.
type LeadInput struct {
	FullName        string `json:"fullName" validate:"required"`
	PhoneNumber     string `json:"phoneNumber" validate:"required"`
	PropertyType    string `json:"propertyType" validate:"required"`
	PropertyName    string `json:"propertyName"`
	CommercialType  string `json:"commercialType"`
	RentalType      string `json:"rentalType"`
	NumOfRooms      *int   `json:"numOfRooms" validate:"omitempty,min=0"`
	NumOfBedRooms   *int   `json:"numOfBedRooms" validate:"omitempty,min=0"`
	NumOfToilets    *int   `json:"numOfToilets" validate:"omitempty,min=0"`
	LocationDetails string `json:"locationDetails"`
	PlotSize        string `json:"plotSize"`
	Budget          string `json:"budget"`
	Description     string `json:"description"`
}

func (in *LeadInput) normalize() {
	for _, f := range []*string{
		&in.FullName, &in.PhoneNumber, &in.PropertyType, &in.PropertyName, &in.CommercialType,
		&in.RentalType, &in.LocationDetails, &in.PlotSize, &in.Budget, &in.Description,
	} {
		*f = strings.TrimSpace(*f)
	}
}

type VisitInput struct {
	FullName        string `json:"fullName" validate:"required"`
	Email           string `json:"email" validate:"omitempty,email"`
	PhoneNumber     string `json:"phoneNumber" validate:"required"`
	VisitDate       string `json:"visitDate" validate:"omitempty,datetime=2006-01-02"`
	VisitTime       string `json:"visitTime"`
	PropertyName    string `json:"propertyName"`
	LocationDetails string `json:"locationDetails"`
}

// LeadService records enquiries, visit requests and selling requests. None of
// them take part in the city counts.
type LeadService struct {
	enquiries repositories.EnquiryRepository
	visits    repositories.VisitScheduleRepository
	selling   repositories.SellingInfoRepository
	uploads   *storage.Uploads
	compress  imageset.CompressOptions
	validate  *validator.Validate
	logger    logrus.FieldLogger
}

func NewLeadService(
	enquiries repositories.EnquiryRepository,
	visits repositories.VisitScheduleRepository,
	selling repositories.SellingInfoRepository,
	uploads *storage.Uploads,
	compress imageset.CompressOptions,
	validate *validator.Validate,
	logger logrus.FieldLogger,
) *LeadService {
	return &LeadService{
		enquiries: enquiries,
		visits:    visits,
		selling:   selling,
		uploads:   uploads,
		compress:  compress,
		validate:  validate,
		logger:    logger,
	}
}

func (s *LeadService) CreateEnquiry(ctx context.Context, in LeadInput) (*models.Enquiry, error) {
	in.normalize()
	if err := s.validate.Struct(in); err != nil {
		return nil, utils.ValidationFailure(err)
	}
	e := &models.Enquiry{
		FullName:        in.FullName,
		Phone:           in.PhoneNumber,
		PropertyType:    in.PropertyType,
		CommercialType:  in.CommercialType,
		RentalType:      in.RentalType,
		NumOfRooms:      in.NumOfRooms,
		NumOfBedRooms:   in.NumOfBedRooms,
		NumOfToilets:    in.NumOfToilets,
		LocationDetails: in.LocationDetails,
		PlotSize:        in.PlotSize,
		Budget:          in.Budget,
		Description:     in.Description,
	}
	if err := s.enquiries.Create(ctx, e); err != nil {
		return nil, utils.PersistenceError("Failed to submit enquiry", err)
	}
	return e, nil
}

func (s *LeadService) ListEnquiries(ctx context.Context) ([]*models.Enquiry, error) {
	list, err := s.enquiries.List(ctx)
	if err != nil {
		return nil, utils.PersistenceError("Failed to fetch enquiries", err)
	}
	return list, nil
}

func (s *LeadService) CountEnquiries(ctx context.Context) (int, error) {
	return countOrFail(s.enquiries.Count(ctx))
}

func (s *LeadService) DeleteEnquiries(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, utils.ValidationError("No IDs provided", nil)
	}
	n, err := s.enquiries.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, utils.PersistenceError("Failed to delete items", err)
	}
	return n, nil
}

func (s *LeadService) ScheduleVisit(ctx context.Context, in VisitInput) (*models.VisitSchedule, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.VisitDate = strings.TrimSpace(in.VisitDate)
	in.VisitTime = strings.TrimSpace(in.VisitTime)
	if err := s.validate.Struct(in); err != nil {
		return nil, utils.ValidationFailure(err)
	}

	v := &models.VisitSchedule{
		FullName:        in.FullName,
		Email:           strings.TrimSpace(in.Email),
		PhoneNumber:     in.PhoneNumber,
		VisitTime:       in.VisitTime,
		PropertyName:    strings.TrimSpace(in.PropertyName),
		LocationDetails: strings.TrimSpace(in.LocationDetails),
	}
	if in.VisitDate != "" {
		d, err := time.Parse(time.DateOnly, in.VisitDate)
		if err != nil {
			return nil, utils.ValidationError(fmt.Sprintf("Invalid visit date %q", in.VisitDate), nil)
		}
		v.VisitDate = &d
	}
	if err := s.visits.Create(ctx, v); err != nil {
		return nil, utils.PersistenceError("Failed to schedule visit", err)
	}
	return v, nil
}

func (s *LeadService) ListVisits(ctx context.Context) ([]*models.VisitSchedule, error) {
	list, err := s.visits.List(ctx)
	if err != nil {
		return nil, utils.PersistenceError("Failed to fetch schedules", err)
	}
	return list, nil
}

func (s *LeadService) CountVisits(ctx context.Context) (int, error) {
	return countOrFail(s.visits.Count(ctx))
}

func (s *LeadService) DeleteVisits(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, utils.ValidationError("No IDs provided", nil)
	}
	n, err := s.visits.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, utils.PersistenceError("Failed to delete items", err)
	}
	return n, nil
}

// CreateSellingInfo stores a selling request with up to MaxImages photos.
func (s *LeadService) CreateSellingInfo(ctx context.Context, in LeadInput, images []imageset.Upload) (*models.SellingInfo, error) {
	in.normalize()
	if err := s.validate.Struct(in); err != nil {
		return nil, utils.ValidationFailure(err)
	}
	if err := imageset.CheckQuota(nil, nil, len(images)); err != nil {
		return nil, utils.QuotaError(err)
	}

	urls, err := s.uploads.SaveAll(storage.CategorySelling, imageset.Stage(images, s.compress, s.logger))
	if err != nil {
		return nil, uploadFailure(err)
	}

	info := &models.SellingInfo{
		FullName:        in.FullName,
		Phone:           in.PhoneNumber,
		PropertyType:    in.PropertyType,
		PropertyName:    in.PropertyName,
		CommercialType:  in.CommercialType,
		RentalType:      in.RentalType,
		NumOfRooms:      in.NumOfRooms,
		NumOfBedRooms:   in.NumOfBedRooms,
		NumOfToilets:    in.NumOfToilets,
		LocationDetails: in.LocationDetails,
		PlotSize:        in.PlotSize,
		Budget:          in.Budget,
		Description:     in.Description,
		ImageURLs:       imageset.Merge(nil, nil, urls),
	}
	if err := s.selling.Create(ctx, info); err != nil {
		s.uploads.RemoveAll(urls)
		return nil, utils.PersistenceError("An error occurred while saving the form. Please try again.", err)
	}
	return info, nil
}

func (s *LeadService) ListSellingInfo(ctx context.Context) ([]*models.SellingInfo, error) {
	list, err := s.selling.List(ctx)
	if err != nil {
		return nil, utils.PersistenceError("Failed to fetch selling info", err)
	}
	return list, nil
}

func (s *LeadService) CountSellingInfo(ctx context.Context) (int, error) {
	return countOrFail(s.selling.Count(ctx))
}

// DeleteSellingInfo removes the rows, deleting their image files best effort.
func (s *LeadService) DeleteSellingInfo(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, utils.ValidationError("No IDs provided", nil)
	}
	urls, err := s.selling.ImageURLsByIDs(ctx, ids)
	if err != nil {
		return 0, utils.PersistenceError("Failed to delete items", err)
	}
	s.uploads.RemoveAll(urls)

	n, err := s.selling.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, utils.PersistenceError("Failed to delete items", err)
	}
	return n, nil
}

func countOrFail(n int, err error) (int, error) {
	if err != nil {
		return 0, utils.PersistenceError("Failed to count records", err)
	}
	return n, nil
}
