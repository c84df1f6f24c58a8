package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/dcode-github/realestate_console/models"
	"github.com/dcode-github/realestate_console/services"
	"github.com/dcode-github/realestate_console/utils"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
	Token   string       `json:"token"`
}

func LoginUser(svc *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := utils.Logger.WithField("handler", "LoginUser")

		var creds credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			logger.WithError(err).Warn("Error decoding login credentials")
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err)
			return
		}

		res, err := svc.Login(r.Context(), creds.Username, creds.Password)
		if err != nil {
			utils.HandleAppError(w, err)
			return
		}

		logger.WithField("username", res.User.Username).Info("Login successful")
		utils.RespondWithJSON(w, http.StatusOK, LoginResponse{Message: "Login successful", User: res.User, Token: res.Token})
	}
}
