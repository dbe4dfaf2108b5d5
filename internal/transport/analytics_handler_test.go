package transport

import (
	"net/http"
	"testing"

	"moveis-catalog/internal/analytics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordEventsAndReadStats(t *testing.T) {
	env := newTestEnv(t)

	events := []EventRequest{
		{Type: "page_view", Path: "/"},
		{Type: "page_view", Path: "/"},
		{Type: "product_view", ProductID: "sofa-1", ProductName: "Sofá"},
		{Type: "whatsapp_click", ProductID: "sofa-1"},
	}
	for _, e := range events {
		require.Equal(t, http.StatusAccepted, env.do(http.MethodPost, "/api/analytics/events", e, false).Code)
	}

	w := env.do(http.MethodGet, "/api/admin/analytics/stats?top_products=1", nil, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var summary analytics.Summary
	decodeBody(t, w, &summary)
	assert.Equal(t, 2, summary.TotalPageViews)
	assert.Equal(t, 1, summary.TotalProductViews)
	assert.Equal(t, 1, summary.TotalWhatsAppClicks)
	assert.Equal(t, 4, summary.PendingEvents)
	require.Len(t, summary.MostViewedProducts, 1)
	assert.Equal(t, "sofa-1", summary.MostViewedProducts[0].ProductID)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/admin/analytics/stats?top_pages=zero", nil, true).Code)
}

func TestRecordEventValidation(t *testing.T) {
	env := newTestEnv(t)

	unknown := env.do(http.MethodPost, "/api/analytics/events", map[string]string{"type": "add_to_cart"}, false)
	assert.Equal(t, http.StatusBadRequest, unknown.Code)
	assert.True(t, validationFields(t, unknown)["type"])

	noProduct := env.do(http.MethodPost, "/api/analytics/events", map[string]string{"type": "product_view"}, false)
	assert.Equal(t, http.StatusBadRequest, noProduct.Code)
}

func TestClearAnalytics(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodPost, "/api/analytics/events", EventRequest{Type: "category_view", Category: "Mesas"}, false)

	assert.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/api/admin/analytics/events", nil, true).Code)
	assert.Equal(t, 0, env.tracker.Summarize(analytics.Query{}).TotalCategoryViews)
}
