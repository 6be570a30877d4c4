package product

import (
	"go.uber.org/fx"

	"github.com/leadloom/leadloom/internal/product/repository"
	"github.com/leadloom/leadloom/internal/product/service"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
