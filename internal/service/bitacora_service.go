package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
)

type bitacoraStore interface {
	CreateBitacora(ctx context.Context, entry *models.Bitacora) error
	ListBitacora(ctx context.Context, filter models.BitacoraFilter) ([]models.Bitacora, int, error)
}

// BitacoraService records and lists audit trail entries. Recording never
// fails the caller's request: failures are logged and swallowed.
type BitacoraService struct {
	store  bitacoraStore
	logger *zap.Logger
}

// NewBitacoraService creates a service instance.
func NewBitacoraService(store bitacoraStore, logger *zap.Logger) *BitacoraService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BitacoraService{store: store, logger: logger}
}

// RegistroBitacora describes one auditable action.
type RegistroBitacora struct {
	UserID      *string
	Accion      string
	Recurso     string
	RecursoID   *string
	Descripcion string
	Detalle     interface{}
	IPAddress   string
	UserAgent   string
}

// Registrar persists an audit entry.
func (s *BitacoraService) Registrar(ctx context.Context, reg RegistroBitacora) {
	var detalle []byte
	if reg.Detalle != nil {
		encoded, err := json.Marshal(reg.Detalle)
		if err != nil {
			s.logger.Warn("no se pudo serializar el detalle de bitácora", zap.Error(err))
		} else {
			detalle = encoded
		}
	}
	entry := &models.Bitacora{
		UserID:      reg.UserID,
		Accion:      reg.Accion,
		Recurso:     reg.Recurso,
		RecursoID:   reg.RecursoID,
		Descripcion: reg.Descripcion,
		Detalle:     detalle,
		IPAddress:   reg.IPAddress,
		UserAgent:   reg.UserAgent,
	}
	if err := s.store.CreateBitacora(ctx, entry); err != nil {
		s.logger.Warn("no se pudo registrar en bitácora",
			zap.String("accion", reg.Accion),
			zap.String("recurso", reg.Recurso),
			zap.Error(err))
	}
}

// List returns audit entries with the total row count for pagination.
func (s *BitacoraService) List(ctx context.Context, filter models.BitacoraFilter) ([]models.Bitacora, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 50
	}
	entries, total, err := s.store.ListBitacora(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo listar la bitácora")
	}
	return entries, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}
