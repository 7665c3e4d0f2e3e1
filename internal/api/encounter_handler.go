package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/chimera-battle/internal/battle"
	"github.com/ericogr/chimera-battle/internal/config"
	"github.com/ericogr/chimera-battle/internal/constants"
	"github.com/ericogr/chimera-battle/internal/logging"
	"github.com/ericogr/chimera-battle/internal/service"
)

// EncounterHandler groups the encounter HTTP handlers.
type EncounterHandler struct {
	svc *service.EncounterService
}

func NewEncounterHandler(svc *service.EncounterService) *EncounterHandler {
	return &EncounterHandler{svc: svc}
}

type PlayRequest struct {
	// Cards are ids, short ids or names of cards in hand.
	Cards []string `json:"cards"`
}

type EffectsRequest struct {
	Text string `json:"text" binding:"required"`
}

// writeError maps service errors to status codes. fallback is the message
// used for unexpected failures.
func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrEncounterNotFound):
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrEncounterNotFound})
	case errors.Is(err, service.ErrEncounterFinished):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrEncounterFinished})
	case errors.Is(err, service.ErrCardNotInHand):
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrCardNotInHand, constants.JSONKeyDetails: err.Error()})
	case errors.Is(err, service.ErrNoCardsPlayed):
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrNoCardsPlayed})
	case errors.Is(err, config.ErrUnknownKey):
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrUnknownContentKey, constants.JSONKeyDetails: err.Error()})
	case errors.Is(err, battle.ErrBattlerNotFound), errors.Is(err, battle.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest, constants.JSONKeyDetails: err.Error()})
	default:
		logging.Error(fallback, err, logging.Fields{constants.LogFieldPath: c.FullPath()})
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: fallback})
	}
}

func encounterID(c *gin.Context) (string, bool) {
	id := normalizeEncounterID(c.Param("encounterID"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidEncounterID})
		return "", false
	}
	return id, true
}

// respond writes v with snake_case GORM keys.
func respond(c *gin.Context, status int, v interface{}) {
	out, err := MarshalIntoSnakeTimestamps(v)
	if err != nil {
		logging.Error("failed to encode response", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	c.JSON(status, out)
}

// CreateEncounter sets up a new battle and deals the first hand.
func (h *EncounterHandler) CreateEncounter(c *gin.Context) {
	var req service.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest, constants.JSONKeyDetails: err.Error()})
		return
	}
	v, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, constants.ErrFailedCreateEncounter)
		return
	}
	respond(c, http.StatusCreated, v)
}

// ListEncounters returns the most recently updated encounters, 20 by
// default. ?limit=N caps at 100.
func (h *EncounterHandler) ListEncounters(c *gin.Context) {
	limit := 20
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	list, err := h.svc.List(limit)
	if err != nil {
		writeError(c, err, constants.ErrInvalidRequest)
		return
	}
	respond(c, http.StatusOK, list)
}

func (h *EncounterHandler) GetEncounter(c *gin.Context) {
	id, ok := encounterID(c)
	if !ok {
		return
	}
	v, err := h.svc.Get(id)
	if err != nil {
		writeError(c, err, constants.ErrEncounterNotFound)
		return
	}
	respond(c, http.StatusOK, v)
}

// PlayCards resolves the chosen hand cards through the judge.
func (h *EncounterHandler) PlayCards(c *gin.Context) {
	id, ok := encounterID(c)
	if !ok {
		return
	}
	var req PlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	res, err := h.svc.PlayCards(c.Request.Context(), id, req.Cards)
	if err != nil {
		writeError(c, err, constants.ErrFailedPlayCards)
		return
	}
	respond(c, http.StatusOK, res)
}

func (h *EncounterHandler) EndTurn(c *gin.Context) {
	id, ok := encounterID(c)
	if !ok {
		return
	}
	res, err := h.svc.EndTurn(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, constants.ErrFailedEndTurn)
		return
	}
	respond(c, http.StatusOK, res)
}

// ApplyEffects feeds raw effect text into the encounter, bypassing the
// judge. Useful for scripted content and debugging.
func (h *EncounterHandler) ApplyEffects(c *gin.Context) {
	id, ok := encounterID(c)
	if !ok {
		return
	}
	var req EffectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	res, err := h.svc.ApplyEffects(id, req.Text)
	if err != nil {
		writeError(c, err, constants.ErrFailedApplyEffects)
		return
	}
	respond(c, http.StatusOK, res)
}

func (h *EncounterHandler) GetLogs(c *gin.Context) {
	id, ok := encounterID(c)
	if !ok {
		return
	}
	logs, err := h.svc.Logs(id)
	if err != nil {
		writeError(c, err, constants.ErrFailedFetchLogs)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
