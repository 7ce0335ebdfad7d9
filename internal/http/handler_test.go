package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/amana-asso/delivery-service/internal/cache"
	"github.com/amana-asso/delivery-service/internal/config"
	"github.com/amana-asso/delivery-service/internal/http/middleware"
	"github.com/amana-asso/delivery-service/internal/model"
	"github.com/amana-asso/delivery-service/internal/service"
)

// stubDeliveryStore holds a single delivery and records mutations.
type stubDeliveryStore struct {
	delivery *model.Delivery

	updatedID  int64
	prepared   bool
	inProgress bool
	delivered  bool
	comment    string
}

func (s *stubDeliveryStore) AssignedFamilyIDs(ctx context.Context, occasion string, date time.Time) (map[int64]struct{}, error) {
	return map[int64]struct{}{}, nil
}

func (s *stubDeliveryStore) InsertBatch(ctx context.Context, deliveries []model.Delivery) error {
	return nil
}

func (s *stubDeliveryStore) Find(ctx context.Context, familyID int64, occasion string, date time.Time) (*model.Delivery, error) {
	if s.delivery == nil || s.delivery.FamilyID != familyID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.delivery, nil
}

func (s *stubDeliveryStore) UpdateStatusFlags(ctx context.Context, id int64, prepared, inProgress, delivered bool) error {
	s.updatedID, s.prepared, s.inProgress, s.delivered = id, prepared, inProgress, delivered
	return nil
}

func (s *stubDeliveryStore) SetFailureComment(ctx context.Context, id int64, comment string) error {
	s.updatedID, s.comment = id, comment
	return nil
}

func (s *stubDeliveryStore) ListByOccasion(ctx context.Context, occasion string, date time.Time) ([]model.Delivery, error) {
	return nil, nil
}

func (s *stubDeliveryStore) ListUndeliveredByDriver(ctx context.Context, driverID int64, occasion string, date time.Time) ([]model.Delivery, error) {
	return nil, nil
}

type stubFamilyReader struct {
	stop *model.FamilyStop
}

func (s *stubFamilyReader) ListValidatedStops(ctx context.Context) ([]model.FamilyStop, error) {
	return nil, nil
}

func (s *stubFamilyReader) GetStop(ctx context.Context, id int64) (*model.FamilyStop, error) {
	if s.stop == nil || s.stop.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.stop, nil
}

func newStatusRouter(t *testing.T, store *stubDeliveryStore, families *stubFamilyReader) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	redis, err := cache.NewRedisCache(config.RedisConfig{Enabled: false})
	require.NoError(t, err)

	status := service.NewStatusService(store, families, redis, zerolog.Nop())
	handler := NewHandler(nil, status, nil, nil, nil, zerolog.Nop())

	passThrough := func(c *gin.Context) { c.Next() }
	return NewRouter(handler, middleware.SharedToken("secret-token"), passThrough, "test", zerolog.Nop())
}

func doRequest(router *gin.Engine, method, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(method, target, nil))

	body := map[string]interface{}{}
	_ = json.Unmarshal(recorder.Body.Bytes(), &body)
	return recorder, body
}

func TestStatusAPIRejectsMissingToken(t *testing.T) {
	router := newStatusRouter(t, &stubDeliveryStore{}, &stubFamilyReader{})

	recorder, body := doRequest(router, http.MethodGet, "/api?a=get_status&fid=1&occ=Ramadan&d=2026-03-20")

	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	require.Equal(t, false, body["success"])
	// The code is echoed in the body; QR clients cannot always read the
	// real status line.
	require.Equal(t, float64(http.StatusUnauthorized), body["http_status"])
}

func TestStatusAPIUpdateStatusViaShortParams(t *testing.T) {
	store := &stubDeliveryStore{delivery: &model.Delivery{ID: 7, FamilyID: 1}}
	router := newStatusRouter(t, store, &stubFamilyReader{})

	recorder, body := doRequest(router, http.MethodGet,
		"/api?a=update_status&t=secret-token&fid=1&occ=Ramadan+2026&d=2026-03-20&s=delivered")

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, true, body["success"])
	require.Equal(t, int64(7), store.updatedID)
	require.True(t, store.prepared)
	require.True(t, store.inProgress)
	require.True(t, store.delivered)
}

func TestStatusAPIGetStatus(t *testing.T) {
	store := &stubDeliveryStore{delivery: &model.Delivery{ID: 7, FamilyID: 1, PartsCount: 3, Prepared: true}}
	families := &stubFamilyReader{stop: &model.FamilyStop{ID: 1, Name: "Famille Benali"}}
	router := newStatusRouter(t, store, families)

	recorder, body := doRequest(router, http.MethodGet,
		"/api?action=get_status&token=secret-token&family_id=1&occasion=Ramadan&date=2026-03-20")

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, true, body["success"])

	data := body["data"].(map[string]interface{})
	require.Equal(t, "Famille Benali", data["family_name"])
	require.Equal(t, "prepared", data["status"])
}

func TestStatusAPIUnknownDelivery(t *testing.T) {
	router := newStatusRouter(t, &stubDeliveryStore{}, &stubFamilyReader{})

	recorder, body := doRequest(router, http.MethodGet,
		"/api?a=get_status&t=secret-token&fid=42&occ=Ramadan&d=2026-03-20")

	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.Equal(t, false, body["success"])
	require.Equal(t, float64(http.StatusNotFound), body["http_status"])
}

func TestStatusAPIUnknownAction(t *testing.T) {
	router := newStatusRouter(t, &stubDeliveryStore{}, &stubFamilyReader{})

	recorder, body := doRequest(router, http.MethodGet, "/api?a=self_destruct&t=secret-token")

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.Equal(t, false, body["success"])
}

func TestStatusAPIRejectsInvalidStatusLabel(t *testing.T) {
	store := &stubDeliveryStore{delivery: &model.Delivery{ID: 7, FamilyID: 1}}
	router := newStatusRouter(t, store, &stubFamilyReader{})

	recorder, _ := doRequest(router, http.MethodGet,
		"/api?a=update_status&t=secret-token&fid=1&occ=Ramadan&d=2026-03-20&s=lost")

	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.Zero(t, store.updatedID)
}
