package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/bishwash/shiftplanner/internal/config"
	"github.com/bishwash/shiftplanner/pkg/clients/icsclient"
	"github.com/bishwash/shiftplanner/pkg/postgres"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Database *postgres.DB
	Calendar *icsclient.Client
	Logger   *zap.Logger
	Ctx      context.Context
}
