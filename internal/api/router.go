package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ericogr/chimera-battle/internal/constants"
)

// NewRouter wires every route under /api.
func NewRouter(h *EncounterHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		apiRoutes.GET(constants.RouteHealth, Health)
		apiRoutes.GET(constants.RouteVersion, Version)

		apiRoutes.GET(constants.RouteEncounters, h.ListEncounters)
		apiRoutes.POST(constants.RouteEncounters, h.CreateEncounter)
		apiRoutes.GET(constants.RouteEncounterByID, h.GetEncounter)
		apiRoutes.POST(constants.RouteEncounterPlay, h.PlayCards)
		apiRoutes.POST(constants.RouteEncounterEnd, h.EndTurn)
		apiRoutes.POST(constants.RouteEncounterEffect, h.ApplyEffects)
		apiRoutes.GET(constants.RouteEncounterLogs, h.GetLogs)
	}
	return router
}
