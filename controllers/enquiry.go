package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/dcode-github/realestate_console/services"
	"github.com/dcode-github/realestate_console/utils"
)

// readLeadRequest accepts a JSON body or a (multipart) form.
func readLeadRequest(w http.ResponseWriter, r *http.Request) (services.LeadInput, error) {
	var in services.LeadInput
	if isJSON(r) {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&in); err != nil {
			return in, invalidPayload(err)
		}
		return in, nil
	}
	if err := parseForm(w, r); err != nil {
		return in, err
	}
	return leadInputFromForm(r)
}

func CreateEnquiry(svc *services.LeadService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := utils.Logger.WithField("handler", "CreateEnquiry")

		in, err := readLeadRequest(w, r)
		if err != nil {
			utils.HandleAppError(w, err)
			return
		}
		enquiry, err := svc.CreateEnquiry(r.Context(), in)
		if err != nil {
			utils.HandleAppError(w, err)
			return
		}

		logger.WithField("enquiryID", enquiry.ID).Info("Enquiry submitted")
		utils.RespondWithJSON(w, http.StatusCreated, enquiry)
	}
}

func GetEnquiries(svc *services.LeadService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListEnquiries(r.Context())
		if err != nil {
			utils.HandleAppError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, list)
	}
}

func CountEnquiries(svc *services.LeadService) http.HandlerFunc {
	return countHandler(svc.CountEnquiries)
}

func DeleteEnquiries(svc *services.LeadService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := utils.Logger.WithField("handler", "DeleteEnquiries")

		ids, ok := decodeIDs(w, r, logger)
		if !ok {
			return
		}
		if _, err := svc.DeleteEnquiries(r.Context(), ids); err != nil {
			utils.HandleAppError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.MessageResponse{Message: "Items deleted successfully"})
	}
}
