package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/chimera-battle/internal/api"
	"github.com/ericogr/chimera-battle/internal/service"
	"github.com/ericogr/chimera-battle/internal/version"
)

func main() {
	settings := loadSettingsOrExit()
	catalog := loadCatalogOrExit(settings.ContentFile)
	repo := createRepositoryOrExit(settings.DatabasePath)
	j, interpreter := selectJudge(settings, repo)

	seed := settings.Seed
	if seed == 0 {
		seed = catalog.Seed()
	}
	svc := service.NewEncounterService(repo, catalog, j, interpreter, seed)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	svc.StartEvictionLoop(ctx, evictionInterval, idleTTL)

	if version.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.NewEncounterHandler(svc))
	serve(ctx, settings.Addr, router)
}
