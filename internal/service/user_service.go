package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByCodDocente(ctx context.Context, codDocente int64) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	CreateBitacora(ctx context.Context, entry *models.Bitacora) error
}

type docenteLookup interface {
	FindByCod(ctx context.Context, codDocente int64) (*models.Docente, error)
}

// ClientMeta carries request origin data into audit records.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// CreateUserRequest represents the payload for creating accounts. Docente
// accounts must reference an existing teacher row.
type CreateUserRequest struct {
	Email      string          `json:"email" validate:"required,email"`
	FullName   string          `json:"full_name" validate:"required"`
	Role       models.UserRole `json:"role" validate:"required,oneof=ADMINISTRADOR COORDINADOR AUTORIDAD DOCENTE"`
	Active     bool            `json:"active"`
	Password   string          `json:"password" validate:"required,min=6"`
	CodDocente *int64          `json:"cod_docente,omitempty"`
}

// UpdateUserRequest is the payload for updating accounts.
type UpdateUserRequest struct {
	FullName string          `json:"full_name" validate:"required"`
	Role     models.UserRole `json:"role" validate:"required,oneof=ADMINISTRADOR COORDINADOR AUTORIDAD DOCENTE"`
	Active   *bool           `json:"active"`
}

// UserService handles account management workflows.
type UserService struct {
	repo      userRepository
	docentes  docenteLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, docentes docenteLookup, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, docentes: docentes, validator: validate, logger: logger}
}

// List returns paginated accounts and pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudieron listar los usuarios")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return users, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns an account by ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "usuario no encontrado")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo cargar el usuario")
	}
	return user, nil
}

// Create adds a new account. The initial password is provisional: the user is
// forced to replace it on first login.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest, actorID string, meta ClientMeta) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de usuario inválidos")
	}

	if _, err := s.repo.FindByEmail(ctx, strings.ToLower(req.Email)); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "el correo ya está registrado")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo verificar el correo")
	}

	if req.Role == models.RoleDocente {
		if req.CodDocente == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "las cuentas de docente requieren cod_docente")
		}
		if _, err := s.docentes.FindByCod(ctx, *req.CodDocente); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "el docente referenciado no existe")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo verificar al docente")
		}
		if _, err := s.repo.FindByCodDocente(ctx, *req.CodDocente); err == nil {
			return nil, appErrors.Clone(appErrors.ErrConflict, "el docente ya tiene una cuenta")
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo verificar la cuenta del docente")
		}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo generar la contraseña")
	}

	user := &models.User{
		ID:            uuid.NewString(),
		Email:         strings.ToLower(req.Email),
		FullName:      req.FullName,
		Role:          req.Role,
		Active:        req.Active,
		MustResetPass: true,
		PasswordHash:  string(passwordHash),
	}
	if req.Role == models.RoleDocente {
		user.CodDocente = req.CodDocente
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo crear el usuario")
	}

	detalle, _ := json.Marshal(map[string]interface{}{"id": user.ID, "email": user.Email, "role": user.Role})
	s.registrarBitacora(ctx, actorID, models.AccionCrear, user.ID, "creación de usuario", detalle, meta)

	return user, nil
}

// Update modifies account attributes.
func (s *UserService) Update(ctx context.Context, id string, req UpdateUserRequest, actorID string, meta ClientMeta) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "datos de usuario inválidos")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	user.FullName = req.FullName
	user.Role = req.Role
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo actualizar el usuario")
	}

	detalle, _ := json.Marshal(map[string]interface{}{"role": user.Role, "active": user.Active})
	s.registrarBitacora(ctx, actorID, models.AccionActualizar, user.ID, "actualización de usuario", detalle, meta)

	return user, nil
}

// Delete performs a soft delete, leaving the account inactive.
func (s *UserService) Delete(ctx context.Context, id string, actorID string, meta ClientMeta) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "no se pudo desactivar el usuario")
	}

	s.registrarBitacora(ctx, actorID, models.AccionDesactivar, user.ID, "desactivación de usuario", nil, meta)
	return nil
}

func (s *UserService) registrarBitacora(ctx context.Context, actorID, accion, recursoID, descripcion string, detalle []byte, meta ClientMeta) {
	entry := &models.Bitacora{
		Accion:      accion,
		Recurso:     "usuarios",
		RecursoID:   &recursoID,
		Descripcion: descripcion,
		Detalle:     detalle,
		IPAddress:   meta.IP,
		UserAgent:   meta.UserAgent,
	}
	if actorID != "" {
		entry.UserID = &actorID
	}
	if err := s.repo.CreateBitacora(ctx, entry); err != nil {
		s.logger.Warn("no se pudo registrar en bitácora", zap.String("accion", accion), zap.Error(err))
	}
}
