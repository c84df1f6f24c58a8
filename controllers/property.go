package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dcode-github/realestate_console/cache"
	"github.com/dcode-github/realestate_console/services"
	"github.com/dcode-github/realestate_console/utils"
)

func CreateProperty(svc *services.PropertyService, rc ReadCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := utils.Logger.WithField("handler", "CreateProperty")

		in, _, files, err := readPropertyRequest(w, r)
		if err != nil {
			logger.WithError(err).Warn("Invalid property submission")
			utils.HandleAppError(w, err)
			return
		}

		property, err := svc.Create(r.Context(), in, files)
		if err != nil {
			utils.HandleAppError(w, err)
			return
		}
		invalidate(r, rc)

		logger.WithField("propertyID", property.ID).Info("Property added and city counts updated")
		utils.RespondWithJSON(w, http.StatusCreated, property)
	}
}

func UpdateProperty(svc *services.PropertyService, rc ReadCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := utils.Logger.WithField("handler", "UpdateProperty")

		id, ok := pathID(w, r)
		if !ok {
			return
		}
		in, removed, files, err := readPropertyRequest(w, r)
		if err != nil {
			logger.WithError(err).Warn("Invalid property submission")
			utils.HandleAppError(w, err)
			return
		}

		property, err := svc.Update(r.Context(), id, in, removed, files)
		if err != nil {
			utils.HandleAppError(w, err)
			return
		}
		invalidate(r, rc)

		logger.WithField("propertyID", id).Info("Property updated and city counts recalculated")
		utils.RespondWithJSON(w, http.StatusOK, property)
	}
}

func DeleteProperties(svc *services.PropertyService, rc ReadCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := utils.Logger.WithField("handler", "DeleteProperties")

		ids, ok := decodeIDs(w, r, logger)
		if !ok {
			return
		}

		res, err := svc.Delete(r.Context(), ids)
		if err != nil {
			utils.HandleAppError(w, err)
			return
		}
		invalidate(r, rc)

		logger.WithField("deleted", res.Deleted).Info("Properties deleted")
		utils.RespondWithJSON(w, http.StatusOK, struct {
			Message string `json:"message"`
			services.DeleteResult
		}{Message: "Properties deleted", DeleteResult: res})
	}
}

func GetAllProperties(svc *services.PropertyService, rc ReadCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := utils.Logger.WithField("handler", "GetAllProperties")
		serveCached(w, r, rc, cache.PrefixProperty, logger, func() (any, error) {
			return svc.List(r.Context())
		})
	}
}

// GetPropertiesByCity lists properties whose location or description
// mentions the city, ignoring case.
func GetPropertiesByCity(svc *services.PropertyService, rc ReadCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := utils.Logger.WithField("handler", "GetPropertiesByCity")
		cityName := mux.Vars(r)["cityName"]
		serveCached(w, r, rc, cache.PrefixProperty, logger, func() (any, error) {
			return svc.ListByCity(r.Context(), cityName)
		})
	}
}

func GetProperty(svc *services.PropertyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		property, err := svc.Get(r.Context(), id)
		if err != nil {
			utils.HandleAppError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, property)
	}
}

func CountProperties(svc *services.PropertyService) http.HandlerFunc {
	return countHandler(svc.Count)
}
