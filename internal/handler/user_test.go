package handler

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/task-management/internal/auth"
	"github.com/iliyamo/task-management/internal/repository"
	"github.com/iliyamo/task-management/internal/validation"
)

func newRegistrationServer(t *testing.T) (*echo.Echo, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewUserHandler(repository.NewUserRepo(db), repository.NewTaskRepo(db),
		auth.NewPasswordHasher(bcrypt.MinCost))

	e := echo.New()
	e.Validator = validation.New()
	e.POST("/v1/users", h.Create)
	e.PATCH("/v1/users/:id", h.Update)
	e.DELETE("/v1/users/:id", h.Delete)
	return e, mock
}

const registerBody = `{
	"name": "New User",
	"email": "new@example.com",
	"phone_number": "+1234567890",
	"address": {
		"address_line1": "456 Oak St",
		"city": "Los Angeles",
		"state_or_province": "CA",
		"postal_code": "90210",
		"country": "USA"
	},
	"password": "password123"
}`

func postRegister(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/users", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestUserCreate_Success(t *testing.T) {
	e, mock := newRegistrationServer(t)

	var storedHash string
	mock.ExpectExec("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "New User", "new@example.com", "+1234567890",
			sqlmock.AnyArg(), "user", hashCapture(&storedHash), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := postRegister(e, registerBody)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"new@example.com"`)
	assert.Contains(t, rec.Body.String(), `"role":"user"`)
	// Only a bcrypt hash reaches the database, and nothing password-shaped
	// leaves through the response.
	assert.True(t, strings.HasPrefix(storedHash, "$2a$"), "stored value %q is not a bcrypt hash", storedHash)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	e, mock := newRegistrationServer(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry"))

	rec := postRegister(e, registerBody)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "email already exists")
}

func TestUserCreate_ValidatesBody(t *testing.T) {
	e, _ := newRegistrationServer(t)

	for _, body := range []string{
		`{"name":"X","email":"bad-email","phone_number":"+1","address":{"address_line1":"a","city":"b","state_or_province":"c","postal_code":"d","country":"e"},"password":"password123"}`,
		`{"name":"X","email":"new@example.com","phone_number":"+1","address":{"address_line1":"a","city":"b","state_or_province":"c","postal_code":"d","country":"e"},"password":"short"}`,
		`{"email":"new@example.com","password":"password123"}`,
	} {
		rec := postRegister(e, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
}

func TestUserUpdate_Success(t *testing.T) {
	e, mock := newRegistrationServer(t)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs("user-1").
		WillReturnRows(storedUserRow("old-hash"))
	mock.ExpectExec("UPDATE users SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodPatch, "/v1/users/user-1", strings.NewReader(`{"name":"Renamed"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Renamed"`)
	// Untouched fields round-trip from the loaded record.
	assert.Contains(t, rec.Body.String(), `"email":"a@b.com"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdate_NotFound(t *testing.T) {
	e, mock := newRegistrationServer(t)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodPatch, "/v1/users/missing", strings.NewReader(`{"name":"X"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "user not found")
}

func TestUserDelete(t *testing.T) {
	e, mock := newRegistrationServer(t)

	mock.ExpectExec("DELETE FROM users WHERE id").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodDelete, "/v1/users/user-1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	mock.ExpectExec("DELETE FROM users WHERE id").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	req = httptest.NewRequest(http.MethodDelete, "/v1/users/missing", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// hashCapture records the matched argument so the test can assert on the
// stored hash value.
func hashCapture(into *string) sqlmock.Argument {
	return argFunc(func(v driver.Value) bool {
		s, ok := v.(string)
		if ok {
			*into = s
		}
		return ok
	})
}

type argFunc func(v driver.Value) bool

func (f argFunc) Match(v driver.Value) bool { return f(v) }
