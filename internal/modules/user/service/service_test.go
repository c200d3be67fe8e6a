package service_test

import (
	"testing"
	"time"

	"anoa.com/bragboard/internal/entity"
	"anoa.com/bragboard/internal/modules/user/dto"
	"anoa.com/bragboard/internal/modules/user/repository"
	"anoa.com/bragboard/internal/modules/user/service"
	"anoa.com/bragboard/internal/testutil"
	"anoa.com/bragboard/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSearch struct{ token string }

func (s stubSearch) GenerateSearchToken(*entity.User) (string, error) { return s.token, nil }

func TestRegisterAndLogin(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)
	auth := service.NewAuthService(repo, "secret", time.Hour, stubSearch{token: "search-key"}, nil, zap.NewNop())

	reg, err := auth.Register(t.Context(), dto.RegisterInput{
		Name:       "  Ana  ",
		Email:      "Ana@Example.com",
		Password:   "password1",
		Department: "Engineering",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana", reg.User.Name)
	assert.Equal(t, "ana@example.com", reg.User.Email)
	assert.Equal(t, entity.RoleEmployee, reg.User.Role)
	require.NotNil(t, reg.User.Department)
	assert.Equal(t, "Engineering", *reg.User.Department)
	assert.Equal(t, "search-key", reg.SearchToken)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(reg.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID.String(), claims.Subject)

	login, err := auth.Login(t.Context(), dto.LoginInput{Email: "ana@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	_, err = auth.Login(t.Context(), dto.LoginInput{Email: "ana@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = auth.Login(t.Context(), dto.LoginInput{Email: "nobody@example.com", Password: "password1"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := testutil.NewDB(t)
	auth := service.NewAuthService(repository.NewUserRepository(db), "secret", time.Hour, nil, nil, zap.NewNop())

	input := dto.RegisterInput{Name: "Budi", Email: "budi@example.com", Password: "password1"}
	_, err := auth.Register(t.Context(), input)
	require.NoError(t, err)

	_, err = auth.Register(t.Context(), input)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestUserServiceMeAndList(t *testing.T) {
	db := testutil.NewDB(t)
	svc := service.NewUserService(repository.NewUserRepository(db))

	citra := testutil.CreateUser(t, db, "Citra", "Sales")
	testutil.CreateUser(t, db, "Andi", "")

	me, err := svc.Me(t.Context(), testutil.Actor(citra))
	require.NoError(t, err)
	assert.Equal(t, citra.Email, me.Email)

	_, err = svc.Me(t.Context(), entity.Actor{})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	all, err := svc.List(t.Context(), "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Andi", all[0].Name)
	assert.Empty(t, all[0].Email)

	filtered, err := svc.List(t.Context(), "cit")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, citra.ID, filtered[0].ID)
}

func TestUserServiceDepartments(t *testing.T) {
	db := testutil.NewDB(t)
	svc := service.NewUserService(repository.NewUserRepository(db))

	departments, err := svc.Departments(t.Context())
	require.NoError(t, err)
	assert.Empty(t, departments)
	assert.NotNil(t, departments)

	testutil.CreateUser(t, db, "Citra", "Sales")
	testutil.CreateUser(t, db, "Ana", "Engineering")
	testutil.CreateUser(t, db, "Budi", "Engineering")
	testutil.CreateUser(t, db, "Andi", "")
	testutil.CreateAdmin(t, db, "Root")

	departments, err = svc.Departments(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"Engineering", "Sales"}, departments)
}
