package middleware

import (
	"pitwall/config"
	"pitwall/pkg/logger"

	authController "pitwall/internal/controllers/auth"
)

type Middleware struct {
	Config         config.Config
	authController authController.AuthControllerInterface
	log            logger.Logger
}

func New(config config.Config, authController authController.AuthControllerInterface) Middleware {
	log := logger.New("middleware")

	return Middleware{
		Config:         config,
		authController: authController,
		log:            log,
	}
}
