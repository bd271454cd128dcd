package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/warcats-game/warcats-backend/common"
	"github.com/warcats-game/warcats-backend/models"
	"github.com/warcats-game/warcats-backend/repository"
	"github.com/warcats-game/warcats-backend/responses"
	"github.com/warcats-game/warcats-backend/utils"
)

var matchArchive *repository.MatchArchive

// ConfigureArchive wires the finished-match archive used by the history
// endpoint.
func ConfigureArchive(a *repository.MatchArchive) {
	matchArchive = a
}

// FetchActiveGame returns the caller's running game for the given warcat
// token, rebinding the wallet if the token changed hands.
func FetchActiveGame(w http.ResponseWriter, r *http.Request) {
	authInfo, ok := r.Context().Value(common.AuthInfoKey).(*models.CustomClaims)
	if !ok {
		utils.HandleError(w, responses.InternalServerError{Msg: "Error processing request."})
		return
	}

	tokenID, err := strconv.ParseInt(r.URL.Query().Get("warcatTokenId"), 10, 64)
	if err != nil {
		utils.HandleError(w, responses.BadRequestError{Msg: "warcatTokenId is required."})
		return
	}

	g, err := gameEngine.FindActiveGame(r.Context(), authInfo.Wallet, tokenID)
	if err != nil {
		log.Printf("Error fetching active game for %s: %v", authInfo.Wallet, err)
		utils.HandleError(w, utils.EngineError(err))
		return
	}
	if g == nil {
		utils.HandleError(w, responses.NotFoundError{Msg: "No active game for this warcat."})
		return
	}

	utils.HandleSuccess(w, models.SuccessResponse(g))
}

// FetchMatchHistory lists the caller's archived matches.
func FetchMatchHistory(w http.ResponseWriter, r *http.Request) {
	authInfo, ok := r.Context().Value(common.AuthInfoKey).(*models.CustomClaims)
	if !ok {
		utils.HandleError(w, responses.InternalServerError{Msg: "Error processing request."})
		return
	}

	records, err := matchArchive.ListMatches(authInfo.Wallet)
	if err != nil {
		log.Printf("Error fetching matches: %v", err)
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to fetch match history."})
		return
	}

	if len(records) == 0 {
		utils.HandleSuccess(w, models.SuccessResponse([]models.MatchRecord{}))
		return
	}

	utils.HandleSuccess(w, models.SuccessResponse(records))
}
