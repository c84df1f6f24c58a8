package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/dcode-github/realestate_console/imageset"
	"github.com/dcode-github/realestate_console/services"
	"github.com/dcode-github/realestate_console/utils"
)

const (
	maxRequestBytes = 64 << 20
	multipartMemory = 32 << 20

	filesField    = "files"
	cityFileField = "file"
	removedField  = "removedImages"
)

func isJSON(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == "application/json"
}

// parseForm reads a multipart or urlencoded body, bounded in size.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var err error
	if mt == "multipart/form-data" {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return &utils.AppError{
			StatusCode: http.StatusBadRequest,
			Code:       utils.ErrCodeInvalidPayload,
			Message:    "Invalid form data",
			Err:        err,
		}
	}
	return nil
}

func invalidPayload(err error) error {
	return &utils.AppError{
		StatusCode: http.StatusBadRequest,
		Code:       utils.ErrCodeInvalidPayload,
		Message:    "Invalid request payload",
		Err:        err,
	}
}

// readUploads loads every non-empty file posted under field.
func readUploads(r *http.Request, field string) ([]imageset.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	var uploads []imageset.Upload
	for _, fh := range r.MultipartForm.File[field] {
		if fh.Size == 0 {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
		}
		uploads = append(uploads, imageset.Upload{Name: fh.Filename, Data: data})
	}
	return uploads, nil
}

func optionalInt(r *http.Request, field string) (*int, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" || raw == "null" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, utils.ValidationError(fmt.Sprintf("Field '%s' must be a whole number", field), nil)
	}
	return &n, nil
}

func optionalInts(r *http.Request, targets map[string]**int) error {
	for field, dst := range targets {
		n, err := optionalInt(r, field)
		if err != nil {
			return err
		}
		*dst = n
	}
	return nil
}

func propertyInputFromForm(r *http.Request) (services.PropertyInput, error) {
	in := services.PropertyInput{
		PropertyType:    r.FormValue("propertyType"),
		FullName:        r.FormValue("fullName"),
		PhoneNumber:     r.FormValue("phoneNumber"),
		PropertyName:    r.FormValue("propertyName"),
		CommercialType:  r.FormValue("commercialType"),
		RentalType:      r.FormValue("rentalType"),
		LocationDetails: r.FormValue("locationDetails"),
		Description:     r.FormValue("description"),
		PlotSize:        r.FormValue("plotSize"),
		Budget:          r.FormValue("budget"),
	}
	err := optionalInts(r, map[string]**int{
		"numOfRooms":      &in.NumOfRooms,
		"numOfBedRooms":   &in.NumOfBedRooms,
		"numOfToilets":    &in.NumOfToilets,
		"numOfVillaRooms": &in.NumOfVillaRooms,
	})
	return in, err
}

func leadInputFromForm(r *http.Request) (services.LeadInput, error) {
	in := services.LeadInput{
		FullName:        r.FormValue("fullName"),
		PhoneNumber:     r.FormValue("phoneNumber"),
		PropertyType:    r.FormValue("propertyType"),
		PropertyName:    r.FormValue("propertyName"),
		CommercialType:  r.FormValue("commercialType"),
		RentalType:      r.FormValue("rentalType"),
		LocationDetails: r.FormValue("locationDetails"),
		PlotSize:        r.FormValue("plotSize"),
		Budget:          r.FormValue("budget"),
		Description:     r.FormValue("description"),
	}
	err := optionalInts(r, map[string]**int{
		"numOfRooms":    &in.NumOfRooms,
		"numOfBedRooms": &in.NumOfBedRooms,
		"numOfToilets":  &in.NumOfToilets,
	})
	return in, err
}

// removedImages reads the JSON-encoded array of URLs the editor dropped. A
// bare string is taken as a single URL.
func removedImages(r *http.Request) ([]string, error) {
	raw := strings.TrimSpace(r.FormValue(removedField))
	if raw == "" {
		return nil, nil
	}
	if !strings.HasPrefix(raw, "[") {
		return []string{raw}, nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err != nil {
		return nil, utils.ValidationError("removedImages must be a JSON array of URLs", nil)
	}
	return urls, nil
}

// propertyRequest is the JSON form of a property submission without files.
type propertyRequest struct {
	services.PropertyInput
	RemovedImages []string `json:"removedImages"`
}

// readPropertyRequest accepts either a multipart form with files or a JSON
// body.
func readPropertyRequest(w http.ResponseWriter, r *http.Request) (services.PropertyInput, []string, []imageset.Upload, error) {
	if isJSON(r) {
		var req propertyRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
			return req.PropertyInput, nil, nil, invalidPayload(err)
		}
		return req.PropertyInput, req.RemovedImages, nil, nil
	}

	if err := parseForm(w, r); err != nil {
		return services.PropertyInput{}, nil, nil, err
	}
	in, err := propertyInputFromForm(r)
	if err != nil {
		return in, nil, nil, err
	}
	removed, err := removedImages(r)
	if err != nil {
		return in, nil, nil, err
	}
	files, err := readUploads(r, filesField)
	if err != nil {
		return in, nil, nil, invalidPayload(err)
	}
	return in, removed, files, nil
}
