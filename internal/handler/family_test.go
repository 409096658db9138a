package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"famlink/internal/model"
	"famlink/internal/service"
)

type stubFamilyStore struct {
	service.FamilyStore

	gotName string
	added   [][2]uint64
}

func (s *stubFamilyStore) GetByName(_ context.Context, name string) (model.Family, error) {
	s.gotName = name
	return model.Family{ID: 7, Name: name}, nil
}

func (s *stubFamilyStore) AddMember(_ context.Context, userID, familyID uint64) error {
	s.added = append(s.added, [2]uint64{userID, familyID})
	return nil
}

func joinCtx(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/api/family/join", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(3))
	return c, rec
}

func TestFamilyJoinBinding(t *testing.T) {
	e := echo.New()

	t.Run("name field is accepted", func(t *testing.T) {
		store := &stubFamilyStore{}
		h := NewFamilyHandler(service.NewFamilyService(store), nil)

		c, rec := joinCtx(e, `{"name":"Smith"}`)
		require.NoError(t, h.Join(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var body famPart
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, uint64(7), body.ID)
		require.Equal(t, "Smith", body.Name)
		require.Equal(t, "Smith", store.gotName)
		require.Equal(t, [][2]uint64{{3, 7}}, store.added)
	})

	t.Run("blank name is a validation error", func(t *testing.T) {
		h := NewFamilyHandler(service.NewFamilyService(&stubFamilyStore{}), nil)

		c, rec := joinCtx(e, `{"name":"   "}`)
		require.NoError(t, h.Join(c))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
