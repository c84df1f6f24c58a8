package controllers

import (
	"net/http"

	"github.com/dcode-github/realestate_console/cache"
	"github.com/dcode-github/realestate_console/imageset"
	"github.com/dcode-github/realestate_console/services"
	"github.com/dcode-github/realestate_console/utils"
)

// cityImage returns the single image posted under "file", if any.
func cityImage(r *http.Request) (*imageset.Upload, error) {
	files, err := readUploads(r, cityFileField)
	if err != nil {
		return nil, invalidPayload(err)
	}
	if len(files) == 0 {
		return nil, nil
	}
	return &files[0], nil
}

func CreateCity(svc *services.CityService, rc ReadCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := utils.Logger.WithField("handler", "CreateCity")

		if err := parseForm(w, r); err != nil {
			utils.HandleAppError(w, err)
			return
		}
		image, err := cityImage(r)
		if err != nil {
			utils.HandleAppError(w, err)
			return
		}

		city, err := svc.Create(r.Context(), r.FormValue("cityName"), image)
		if err != nil {
			utils.HandleAppError(w, err)
			return
		}
		invalidate(r, rc)

		logger.WithField("city", city.CityName).Info("City added")
		utils.RespondWithJSON(w, http.StatusCreated, city)
	}
}

func UpdateCity(svc *services.CityService, rc ReadCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := utils.Logger.WithField("handler", "UpdateCity")

		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if err := parseForm(w, r); err != nil {
			utils.HandleAppError(w, err)
			return
		}
		image, err := cityImage(r)
		if err != nil {
			utils.HandleAppError(w, err)
			return
		}

		city, err := svc.Update(r.Context(), id, r.FormValue("cityName"), image)
		if err != nil {
			utils.HandleAppError(w, err)
			return
		}
		invalidate(r, rc)

		logger.WithField("cityID", id).Info("City updated and property count recalculated")
		utils.RespondWithJSON(w, http.StatusOK, city)
	}
}

func DeleteCities(svc *services.CityService, rc ReadCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := utils.Logger.WithField("handler", "DeleteCities")

		ids, ok := decodeIDs(w, r, logger)
		if !ok {
			return
		}
		n, err := svc.Delete(r.Context(), ids)
		if err != nil {
			utils.HandleAppError(w, err)
			return
		}
		invalidate(r, rc)

		logger.WithField("deleted", n).Info("Cities deleted")
		utils.RespondWithJSON(w, http.StatusOK, utils.MessageResponse{Message: "Cities deleted"})
	}
}

func GetCities(svc *services.CityService, rc ReadCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := utils.Logger.WithField("handler", "GetCities")
		serveCached(w, r, rc, cache.PrefixCity, logger, func() (any, error) {
			return svc.List(r.Context())
		})
	}
}

func CountCities(svc *services.CityService) http.HandlerFunc {
	return countHandler(svc.Count)
}
