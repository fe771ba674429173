package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/flightcast/flightcast/internal/api/middleware"
	"github.com/flightcast/flightcast/internal/api/models"
	"github.com/flightcast/flightcast/internal/api/response"
	"github.com/flightcast/flightcast/internal/flight"
	"github.com/flightcast/flightcast/internal/prediction"
)

// maxPredictBody caps the JSON request body.
const maxPredictBody = 16 << 10

// Predictor runs a prediction for one profile.
type Predictor interface {
	Predict(ctx context.Context, profile flight.Profile, raw flight.Raw) (*prediction.Result, error)
}

// PredictHandler serves the JSON prediction API.
type PredictHandler struct {
	predictor Predictor
	log       zerolog.Logger
}

// NewPredictHandler creates a new PredictHandler.
func NewPredictHandler(predictor Predictor, log zerolog.Logger) *PredictHandler {
	return &PredictHandler{predictor: predictor, log: log}
}

// Predict handles POST /api/predict.
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPredictBody)

	var raw flight.Raw
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		response.BadRequest(w, r, models.MessageMalformedJSON)
		return
	}

	result, err := h.predictor.Predict(r.Context(), flight.APIProfile, raw)
	if err != nil {
		if verr, ok := flight.AsValidationError(err); ok {
			response.BadRequest(w, r, verr.Message)
			return
		}

		logInternal(h.log, r, err)
		response.InternalError(w, r)
		return
	}

	response.JSON(w, r, http.StatusOK, models.PredictResponse{Status: result.Status()})
}

func logInternal(log zerolog.Logger, r *http.Request, err error) {
	event := log.Error().Err(err).Str("request_id", middleware.GetRequestID(r.Context()))
	if !errors.Is(err, prediction.ErrInternal) {
		event = event.Bool("unclassified", true)
	}
	event.Msg("prediction request failed")
}
