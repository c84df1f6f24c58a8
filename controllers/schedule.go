package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/dcode-github/realestate_console/services"
	"github.com/dcode-github/realestate_console/utils"
)

func ScheduleVisit(svc *services.LeadService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := utils.Logger.WithField("handler", "ScheduleVisit")

		var in services.VisitInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			logger.WithError(err).Warn("Invalid visit request")
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid request payload", nil, err)
			return
		}

		visit, err := svc.ScheduleVisit(r.Context(), in)
		if err != nil {
			utils.HandleAppError(w, err)
			return
		}

		logger.WithField("visitID", visit.ID).Info("Visit scheduled")
		utils.RespondWithJSON(w, http.StatusCreated, visit)
	}
}

func GetSchedules(svc *services.LeadService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListVisits(r.Context())
		if err != nil {
			utils.HandleAppError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, list)
	}
}

func CountSchedules(svc *services.LeadService) http.HandlerFunc {
	return countHandler(svc.CountVisits)
}

func DeleteSchedules(svc *services.LeadService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := utils.Logger.WithField("handler", "DeleteSchedules")

		ids, ok := decodeIDs(w, r, logger)
		if !ok {
			return
		}
		if _, err := svc.DeleteVisits(r.Context(), ids); err != nil {
			utils.HandleAppError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.MessageResponse{Message: "Items deleted successfully"})
	}
}
