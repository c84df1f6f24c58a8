package controllers

import (
	"net/http"

	"github.com/dcode-github/realestate_console/services"
	"github.com/dcode-github/realestate_console/utils"
)

func CreateSellingInfo(svc *services.LeadService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := utils.Logger.WithField("handler", "CreateSellingInfo")

		if err := parseForm(w, r); err != nil {
			utils.HandleAppError(w, err)
			return
		}
		in, err := leadInputFromForm(r)
		if err != nil {
			utils.HandleAppError(w, err)
			return
		}
		files, err := readUploads(r, filesField)
		if err != nil {
			utils.HandleAppError(w, invalidPayload(err))
			return
		}

		info, err := svc.CreateSellingInfo(r.Context(), in, files)
		if err != nil {
			utils.HandleAppError(w, err)
			return
		}

		logger.WithField("sellingInfoID", info.ID).Info("Selling form submitted")
		utils.RespondWithJSON(w, http.StatusCreated, info)
	}
}

func GetSellingInfo(svc *services.LeadService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListSellingInfo(r.Context())
		if err != nil {
			utils.HandleAppError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, list)
	}
}

func CountSellingInfo(svc *services.LeadService) http.HandlerFunc {
	return countHandler(svc.CountSellingInfo)
}

func DeleteSellingInfo(svc *services.LeadService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := utils.Logger.WithField("handler", "DeleteSellingInfo")

		ids, ok := decodeIDs(w, r, logger)
		if !ok {
			return
		}
		n, err := svc.DeleteSellingInfo(r.Context(), ids)
		if err != nil {
			utils.HandleAppError(w, err)
			return
		}
		logger.WithField("deleted", n).Info("Selling info deleted")
		utils.RespondWithJSON(w, http.StatusOK, utils.MessageResponse{Message: "Items and images deleted successfully"})
	}
}
