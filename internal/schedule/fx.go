package schedule

import (
	"go.uber.org/fx"

	"github.com/leadloom/leadloom/internal/schedule/repository"
	"github.com/leadloom/leadloom/internal/schedule/service"
)

var Module = fx.Module("schedule.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
