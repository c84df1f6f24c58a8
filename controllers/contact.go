package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/dcode-github/realestate_console/services"
	"github.com/dcode-github/realestate_console/utils"
)

func SendContactMessage(svc *services.ContactService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := utils.Logger.WithField("handler", "SendContactMessage")

		var msg services.ContactMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			logger.WithError(err).Warn("Invalid contact message")
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid request payload", nil, err)
			return
		}
		if err := svc.Send(r.Context(), msg); err != nil {
			utils.HandleAppError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.MessageResponse{Message: "Email sent successfully"})
	}
}
