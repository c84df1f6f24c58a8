package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/dcode-github/realestate_console/cache"
	"github.com/dcode-github/realestate_console/utils"
)

type ContextKey string

// ClaimsKey holds the *utils.Claims of an authenticated request.
const ClaimsKey = ContextKey("claims")

// ReadCache is the read-through cache used by the list endpoints.
type ReadCache struct {
	Store cache.Cache
	TTL   time.Duration
}

type idsRequest struct {
	IDs []int64 `json:"ids"`
}

func decodeIDs(w http.ResponseWriter, r *http.Request, logger logrus.FieldLogger) ([]int64, bool) {
	var req idsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WithError(err).Warn("Invalid ids payload")
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid request payload", nil, err)
		return nil, false
	}
	if len(req.IDs) == 0 {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "No IDs provided", nil)
		return nil, false
	}
	return req.IDs, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid ID", nil, err)
		return 0, false
	}
	return id, true
}

// serveCached answers from the cache when it can, otherwise loads, encodes
// and stores the result under the generation read before loading.
func serveCached(w http.ResponseWriter, r *http.Request, rc ReadCache, prefix string, logger logrus.FieldLogger, load func() (any, error)) {
	gen, cacheable := rc.Store.Generation(r.Context())
	key := cache.Key(prefix, gen, r.URL.Path, r.URL.Query())

	if !cacheable {
		logger.Debug("Cache unavailable, loading directly")
	} else if data, ok := rc.Store.Get(r.Context(), key); ok {
		logger.WithField("key", key).Debug("Cache hit")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
		return
	}
	logger.WithField("key", key).Debug("Cache miss")

	result, err := load()
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to encode response", nil, err)
		return
	}
	data = append(data, '\n')
	if cacheable {
		rc.Store.Set(r.Context(), key, data, rc.TTL)
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// invalidate drops cached reads once a mutation has committed. Property and
// city reads are both stale after either kind of write.
func invalidate(r *http.Request, rc ReadCache) {
	rc.Store.Invalidate(r.Context(), cache.PrefixProperty, cache.PrefixCity)
}

func countHandler(count func(context.Context) (int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := count(r.Context())
		if err != nil {
			utils.HandleAppError(w, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.CountResponse{Count: n})
	}
}
