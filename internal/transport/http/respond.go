package http

import (
	"encoding/json"
	"errors"
	"go.uber.org/zap"
	"issue-service/internal/models"
	"net/http"
	"strconv"
)

// errInvalidRequest marks structural validation failures caught before the service is called.
var errInvalidRequest = errors.New("invalid request")

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		code = http.StatusInternalServerError
		response, _ = json.Marshal(models.Failure(strconv.Itoa(code), models.MessageError))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondOK(w http.ResponseWriter, data any) {
	respondWithJSON(w, http.StatusOK, models.Success(data))
}

func respondWithFailure(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, models.Failure(strconv.Itoa(status), message))
}

// respondWithError translates an error escaping a handler into an envelope and status.
func respondWithError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, errInvalidRequest),
		errors.Is(err, models.ErrProjectNotFound),
		errors.Is(err, models.ErrAssigneeNotFound):
		logger.Debug("rejected request",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		respondWithFailure(w, http.StatusBadRequest, models.MessageError)
	case errors.Is(err, models.ErrNotFound):
		respondWithFailure(w, http.StatusNotFound, models.MessageNotFound)
	default:
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestIDFrom(r)),
			zap.Error(err))
		respondWithFailure(w, http.StatusInternalServerError, models.MessageError)
	}
}
