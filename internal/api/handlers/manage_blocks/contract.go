package manage_blocks

import (
	"context"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	"github.com/m04kA/SMC-SpaBookingService/internal/service/schedule/models"
)

type ScheduleService interface {
	Block(ctx context.Context, req *models.BlockRequest) (*models.BlockResponse, error)
	ListBlocks(ctx context.Context, req *models.ListBlocksRequest) (*models.BlockListResponse, error)
	Unblock(ctx context.Context, actor domain.Actor, providerID, blockID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
