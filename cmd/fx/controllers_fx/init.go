package controllers_fx

import (
	"go.uber.org/fx"

	"careerkit/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewAuthController),
	fx.Provide(controllers.NewSubscriptionController),
	fx.Provide(controllers.NewBillingController),
	fx.Provide(controllers.NewCareerController),
	fx.Provide(controllers.NewListingController),
)
