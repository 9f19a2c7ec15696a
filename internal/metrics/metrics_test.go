package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clientrepo/internal/domain"
	"clientrepo/internal/repository/observable"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateCountsEvents(t *testing.T) {
	m := New()
	ctx := context.Background()

	m.Update(ctx, observable.Event{Type: observable.EventClientAdded, Payload: &domain.Client{}})
	m.Update(ctx, observable.Event{Type: observable.EventClientAdded, Payload: &domain.Client{}})
	m.Update(ctx, observable.Event{Type: observable.EventClientsLoaded, Payload: make([]domain.Client, 3)})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.repoEvents.WithLabelValues("client_added")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.repoEvents.WithLabelValues("clients_loaded")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.clientsLoaded))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveHTTP(http.MethodGet, "/api/clients", http.StatusOK, 25*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `clientrepo_http_requests_total{method="GET",route="/api/clients",status="200"} 1`), body)
	assert.Contains(t, body, "clientrepo_http_request_duration_seconds_bucket")
}
