package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jcalderon-dev/sigha-api/internal/models"
	appErrors "github.com/jcalderon-dev/sigha-api/pkg/errors"
)

type userRepoStub struct {
	porEmail   map[string]*models.User
	porID      map[string]*models.User
	porDocente map[int64]*models.User
	created    []*models.User
	updated    []*models.User
	deleted    []string
	bitacora   []*models.Bitacora
}

func (s *userRepoStub) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	out := make([]models.User, 0, len(s.porID))
	for _, u := range s.porID {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (s *userRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.porID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := s.porEmail[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) FindByCodDocente(ctx context.Context, codDocente int64) (*models.User, error) {
	if u, ok := s.porDocente[codDocente]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	s.created = append(s.created, user)
	return nil
}

func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	s.updated = append(s.updated, user)
	return nil
}

func (s *userRepoStub) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *userRepoStub) CreateBitacora(ctx context.Context, entry *models.Bitacora) error {
	s.bitacora = append(s.bitacora, entry)
	return nil
}

type docenteLookupStub struct {
	docentes map[int64]*models.Docente
}

func (s *docenteLookupStub) FindByCod(ctx context.Context, codDocente int64) (*models.Docente, error) {
	if d, ok := s.docentes[codDocente]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func newUserFixture() (*UserService, *userRepoStub) {
	repo := &userRepoStub{
		porEmail: map[string]*models.User{
			"ocupado@uni.edu.bo": {ID: "u-1", Email: "ocupado@uni.edu.bo"},
		},
		porID: map[string]*models.User{
			"u-1": {ID: "u-1", Email: "ocupado@uni.edu.bo", FullName: "Cuenta Existente", Role: models.RoleCoordinador, Active: true},
		},
		porDocente: map[int64]*models.User{
			7: {ID: "u-2", Email: "docente7@uni.edu.bo"},
		},
	}
	docentes := &docenteLookupStub{docentes: map[int64]*models.Docente{
		5: {CodDocente: 5, NombreCompleto: "María Condori", Activo: true},
		7: {CodDocente: 7, NombreCompleto: "Carlos Mamani", Activo: true},
	}}
	return NewUserService(repo, docentes, nil, nil), repo
}

func TestUserCreateDocente(t *testing.T) {
	svc, repo := newUserFixture()
	cod := int64(5)

	user, err := svc.Create(context.Background(), CreateUserRequest{
		Email:      "mcondori@uni.edu.bo",
		FullName:   "María Condori",
		Role:       models.RoleDocente,
		Active:     true,
		Password:   "cambiar123",
		CodDocente: &cod,
	}, "admin-1", ClientMeta{IP: "10.0.0.1", UserAgent: "test"})

	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.NotEmpty(t, user.ID)
	assert.True(t, user.MustResetPass)
	require.NotNil(t, user.CodDocente)
	assert.Equal(t, cod, *user.CodDocente)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("cambiar123")))

	require.Len(t, repo.bitacora, 1)
	assert.Equal(t, models.AccionCrear, repo.bitacora[0].Accion)
	assert.Equal(t, "usuarios", repo.bitacora[0].Recurso)
}

func TestUserCreateDocenteSinCodigo(t *testing.T) {
	svc, _ := newUserFixture()

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Email:    "sincod@uni.edu.bo",
		FullName: "Sin Código",
		Role:     models.RoleDocente,
		Password: "cambiar123",
	}, "admin-1", ClientMeta{})

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestUserCreateDocenteInexistente(t *testing.T) {
	svc, _ := newUserFixture()
	cod := int64(999)

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Email:      "fantasma@uni.edu.bo",
		FullName:   "No Existe",
		Role:       models.RoleDocente,
		Password:   "cambiar123",
		CodDocente: &cod,
	}, "admin-1", ClientMeta{})

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestUserCreateDocenteConCuentaPrevia(t *testing.T) {
	svc, _ := newUserFixture()
	cod := int64(7)

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Email:      "cmamani@uni.edu.bo",
		FullName:   "Carlos Mamani",
		Role:       models.RoleDocente,
		Password:   "cambiar123",
		CodDocente: &cod,
	}, "admin-1", ClientMeta{})

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestUserCreateEmailDuplicado(t *testing.T) {
	svc, _ := newUserFixture()

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Email:    "OCUPADO@uni.edu.bo",
		FullName: "Otro",
		Role:     models.RoleCoordinador,
		Password: "cambiar123",
	}, "admin-1", ClientMeta{})

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestUserUpdate(t *testing.T) {
	svc, repo := newUserFixture()
	inactivo := false

	user, err := svc.Update(context.Background(), "u-1", UpdateUserRequest{
		FullName: "Cuenta Renombrada",
		Role:     models.RoleAutoridad,
		Active:   &inactivo,
	}, "admin-1", ClientMeta{})

	require.NoError(t, err)
	assert.Equal(t, "Cuenta Renombrada", user.FullName)
	assert.Equal(t, models.RoleAutoridad, user.Role)
	assert.False(t, user.Active)
	require.Len(t, repo.updated, 1)
	require.Len(t, repo.bitacora, 1)
	assert.Equal(t, models.AccionActualizar, repo.bitacora[0].Accion)
}

func TestUserUpdateInexistente(t *testing.T) {
	svc, _ := newUserFixture()

	_, err := svc.Update(context.Background(), "nadie", UpdateUserRequest{
		FullName: "Nadie",
		Role:     models.RoleCoordinador,
	}, "admin-1", ClientMeta{})

	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestUserDelete(t *testing.T) {
	svc, repo := newUserFixture()

	err := svc.Delete(context.Background(), "u-1", "admin-1", ClientMeta{})

	require.NoError(t, err)
	assert.Equal(t, []string{"u-1"}, repo.deleted)
	require.Len(t, repo.bitacora, 1)
	assert.Equal(t, models.AccionDesactivar, repo.bitacora[0].Accion)
}
