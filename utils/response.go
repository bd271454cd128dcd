package utils

import (
	"encoding/json"
	"net/http"

	"github.com/warcats-game/warcats-backend/game"
	"github.com/warcats-game/warcats-backend/models"
	"github.com/warcats-game/warcats-backend/responses"
)

func HandleSuccess(w http.ResponseWriter, response models.ApiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// HandleError checks the error type and sends an appropriate response
func HandleError(w http.ResponseWriter, err error) {
	var statusCode int
	var errorMsg string

	if apiErr, ok := err.(responses.APIError); ok {
		statusCode = apiErr.StatusCode()
		errorMsg = apiErr.Error()
	} else {
		statusCode = http.StatusInternalServerError
		errorMsg = "Internal Server Error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(models.ApiResponse{Success: false, Data: nil, Error: errorMsg})
}

// EngineError maps an engine error kind onto the APIError hierarchy so
// handlers report game rejections with the right status.
func EngineError(err error) responses.APIError {
	switch game.KindOf(err) {
	case game.KindNotFound:
		return responses.NotFoundError{Msg: err.Error()}
	case game.KindPrecondition:
		return responses.BadRequestError{Msg: err.Error()}
	case game.KindConflict:
		return responses.ConflictError{Msg: err.Error()}
	default:
		return responses.InternalServerError{Msg: "An error occurred while processing your request."}
	}
}
