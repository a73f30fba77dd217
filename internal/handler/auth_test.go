package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/task-management/internal/auth"
	"github.com/iliyamo/task-management/internal/repository"
	"github.com/iliyamo/task-management/internal/validation"
)

func newLoginServer(t *testing.T) (*echo.Echo, sqlmock.Sqlmock, string) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("secret-password")
	require.NoError(t, err)

	users := repository.NewUserRepo(db)
	svc := auth.NewService(users, hasher, auth.NewTokenIssuer("test-secret", 60))

	e := echo.New()
	e.Validator = validation.New()
	e.POST("/v1/auth/login", NewAuthHandler(svc).Login)
	return e, mock, hash
}

func postLogin(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func storedUserRow(hash string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "name", "email", "phone_number", "address", "role", "password_hash", "created_at", "updated_at"}).
		AddRow("user-1", "Test User", "a@b.com", "+1",
			[]byte(`{"address_line1":"1 Main","city":"NY","state_or_province":"NY","postal_code":"10001","country":"USA"}`),
			"user", hash, now, now)
}

func TestLogin_Success(t *testing.T) {
	e, mock, hash := newLoginServer(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=? LIMIT 1")).
		WithArgs("a@b.com").
		WillReturnRows(storedUserRow(hash))

	rec := postLogin(e, `{"email":"a@b.com","password":"secret-password"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"access_token"`)
	assert.Contains(t, body, `"email":"a@b.com"`)
	// The stored hash must never appear in a response.
	assert.NotContains(t, body, hash)
	assert.NotContains(t, body, "password_hash")
}

func TestLogin_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	e, mock, hash := newLoginServer(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=? LIMIT 1")).
		WithArgs("a@b.com").
		WillReturnRows(storedUserRow(hash))
	recWrongPass := postLogin(e, `{"email":"a@b.com","password":"wrong"}`)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=? LIMIT 1")).
		WithArgs("nouser@b.com").
		WillReturnError(sql.ErrNoRows)
	recNoUser := postLogin(e, `{"email":"nouser@b.com","password":"x"}`)

	assert.Equal(t, http.StatusUnauthorized, recWrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, recNoUser.Code)
	// Byte-identical responses: a client cannot tell which check failed.
	assert.Equal(t, recWrongPass.Body.String(), recNoUser.Body.String())
}

func TestLogin_RejectsInvalidBody(t *testing.T) {
	e, _, _ := newLoginServer(t)

	for _, body := range []string{
		`{"email":"not-an-email","password":"x"}`,
		`{"email":"a@b.com"}`,
		`{}`,
	} {
		rec := postLogin(e, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
}
