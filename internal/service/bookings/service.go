package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-SpaBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-SpaBookingService/internal/lifecycle"
	"github.com/m04kA/SMC-SpaBookingService/internal/service/bookings/models"
)

// Service сервис чтения бронирований
type Service struct {
	bookingRepo BookingRepository
	historyRepo HistoryRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	historyRepo HistoryRepository,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		historyRepo: historyRepo,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID
// Видят клиент брони, её мастер и администратор; в ответ добавляются переходы, доступные актору
func (s *Service) GetByID(ctx context.Context, id int64, actor domain.Actor) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for %s:%d", id, actor.Role, actor.ID)

	booking, err := s.getAccessible(ctx, id, actor, "GetByID")
	if err != nil {
		return nil, err
	}

	resp := models.FromDomainBooking(booking)
	for _, status := range lifecycle.AllowedTargets(booking.Status, actor.Role) {
		resp.AllowedTransitions = append(resp.AllowedTransitions, string(status))
	}

	s.logger.Info("GetByID: successfully fetched booking id=%d", id)
	return resp, nil
}

// GetClientBookings получает бронирования клиента
// Опционально фильтрует по статусу
func (s *Service) GetClientBookings(ctx context.Context, req *models.GetClientBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetClientBookings: fetching bookings for client=%d, status=%v", req.ClientID, req.Status)

	if req.Actor.Role != domain.RoleAdmin && !(req.Actor.Role == domain.RoleClient && req.Actor.ID == req.ClientID) {
		s.logger.Warn("GetClientBookings: access denied for %s:%d to client=%d", req.Actor.Role, req.Actor.ID, req.ClientID)
		return nil, ErrAccessDenied
	}

	var status *domain.BookingStatus
	if req.Status != nil {
		st, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetClientBookings: invalid status=%s for client=%d", *req.Status, req.ClientID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		status = &st
	}

	bookings, err := s.bookingRepo.GetByClientID(ctx, req.ClientID, status)
	if err != nil {
		s.logger.Error("GetClientBookings: repository error for client=%d: %v", req.ClientID, err)
		return nil, fmt.Errorf("%w: GetClientBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetClientBookings: successfully fetched %d bookings for client=%d", len(bookings), req.ClientID)
	return models.FromDomainBookingList(bookings), nil
}

// GetProviderBookings получает бронирования мастера с фильтрацией по периоду и статусу
// Доступно самому мастеру и администратору
func (s *Service) GetProviderBookings(ctx context.Context, req *models.GetProviderBookingsRequest) (*models.BookingListResponse, error) {
	logMsg := fmt.Sprintf("GetProviderBookings: fetching bookings for provider=%d by %s:%d", req.ProviderID, req.Actor.Role, req.Actor.ID)
	if req.From != nil && req.To != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.From.Format(domain.DateFormat), req.To.Format(domain.DateFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.IncludeInactive {
		logMsg += ", includeInactive=true"
	}
	s.logger.Info(logMsg)

	if req.Actor.Role != domain.RoleAdmin && !(req.Actor.Role == domain.RoleProvider && req.Actor.ID == req.ProviderID) {
		s.logger.Warn("GetProviderBookings: access denied for %s:%d to provider=%d", req.Actor.Role, req.Actor.ID, req.ProviderID)
		return nil, ErrAccessDenied
	}

	if req.From != nil && req.To != nil && !req.To.After(*req.From) {
		s.logger.Warn("GetProviderBookings: invalid period for provider=%d", req.ProviderID)
		return nil, ErrInvalidTimeRange
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetProviderBookings: invalid filter for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByProviderWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetProviderBookings: repository error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: GetProviderBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetProviderBookings: successfully fetched %d bookings for provider=%d", len(bookings), req.ProviderID)
	return models.FromDomainBookingList(bookings), nil
}

// GetHistory возвращает журнал изменений брони в порядке записи
func (s *Service) GetHistory(ctx context.Context, bookingID int64, actor domain.Actor) (*models.HistoryListResponse, error) {
	s.logger.Info("GetHistory: fetching history of booking id=%d for %s:%d", bookingID, actor.Role, actor.ID)

	if _, err := s.getAccessible(ctx, bookingID, actor, "GetHistory"); err != nil {
		return nil, err
	}

	entries, err := s.historyRepo.ListByBooking(ctx, bookingID)
	if err != nil {
		s.logger.Error("GetHistory: repository error for booking id=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: GetHistory - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainHistory(entries), nil
}

func (s *Service) getAccessible(ctx context.Context, id int64, actor domain.Actor, op string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	if !booking.IsParticipant(actor) {
		s.logger.Warn("%s: access denied for %s:%d to booking id=%d", op, actor.Role, actor.ID, id)
		return nil, ErrAccessDenied
	}

	return booking, nil
}
