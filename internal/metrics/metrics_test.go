package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCollectorCountsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordUpload("PENDENTE")
	c.RecordUpload("PENDENTE")
	c.RecordDecision("APROVADO")
	c.RecordLogin("ok")
	c.RecordHTTP(http.MethodGet, "/documentos", 200, 15*time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	found := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if m.GetCounter() != nil {
				found[mf.GetName()] += m.GetCounter().GetValue()
			}
		}
	}
	if found["repositorio_uploads_total"] != 2 {
		t.Fatalf("uploads = %v", found["repositorio_uploads_total"])
	}
	if found["repositorio_aprovacoes_total"] != 1 || found["repositorio_http_requests_total"] != 1 {
		t.Fatalf("unexpected counters %v", found)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg).RecordLogin("invalid")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Result().Body)
	if rec.Code != http.StatusOK || !strings.Contains(string(body), "repositorio_logins_total") {
		t.Fatalf("unexpected scrape %d %s", rec.Code, body)
	}
}
