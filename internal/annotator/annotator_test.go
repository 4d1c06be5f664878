// internal/annotator/annotator_test.go
package annotator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-assistant/internal/common/config"
	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/models"
)

func createTestAnnotator(t *testing.T, baseURL string) *Annotator {
	return New(config.AnnotatorConfig{
		BaseURL: baseURL,
		Model:   "tinyllama",
		Timeout: 5000,
		Enabled: true,
	}, logger.NewTestLogger(t))
}

func fakeModel(t *testing.T, reply string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tinyllama", req.Model)
		assert.False(t, req.Stream)
		fmt.Fprintf(w, `{"response":%q,"done":true}`, reply)
	}))
}

func TestAnnotateAppendsAnalysis(t *testing.T) {
	srv := fakeModel(t, "Branch 2 recorded the higher figure of the two branches.")
	defer srv.Close()

	a := createTestAnnotator(t, srv.URL)
	out := a.Annotate(context.Background(), "Branch 1: 100.00 LKR, Branch 2: 200.00 LKR",
		"Compare Branch 1 and Branch 2", models.RoleAdmin)

	assert.Contains(t, out, "Branch 1: 100.00 LKR")
	assert.Contains(t, out, "> **📝 AI Analysis**: Branch 2 recorded the higher figure")
}

func TestAnnotateSkipsStaff(t *testing.T) {
	srv := fakeModel(t, "should never be called")
	defer srv.Close()

	a := createTestAnnotator(t, srv.URL)
	out := a.Annotate(context.Background(), "1,520,000.50 LKR", "today sales", models.RoleStaff)
	assert.Equal(t, "1,520,000.50 LKR", out)
}

func TestAnnotateSkipsNoDataAnswers(t *testing.T) {
	srv := fakeModel(t, "should never be called")
	defer srv.Close()

	a := createTestAnnotator(t, srv.URL)
	out := a.Annotate(context.Background(), "no data available for that period", "sales", models.RoleAdmin)
	assert.Equal(t, "no data available for that period", out)
}

func TestAnnotateFirewallSuppressesLeaks(t *testing.T) {
	tests := []string{
		"According to policy, the causal guard blocks this.",
		"RBAC enforces branch scoping here.",
		"You MUST compare the figures yourself.",
		"ok", // too short
	}

	for _, leak := range tests {
		t.Run(leak, func(t *testing.T) {
			srv := fakeModel(t, leak)
			defer srv.Close()

			a := createTestAnnotator(t, srv.URL)
			out := a.Annotate(context.Background(), "Branch 1: 100.00 LKR, Branch 2: 200.00 LKR",
				"compare", models.RoleAdmin)
			assert.Equal(t, "Branch 1: 100.00 LKR, Branch 2: 200.00 LKR", out)
		})
	}
}

func TestAnnotateFailsOpenOnModelError(t *testing.T) {
	a := createTestAnnotator(t, "http://127.0.0.1:1")
	out := a.Annotate(context.Background(), "Branch 1: 100.00 LKR, Branch 2: 200.00 LKR",
		"compare", models.RoleAdmin)
	assert.Equal(t, "Branch 1: 100.00 LKR, Branch 2: 200.00 LKR", out)
}

func TestAnnotateDisabled(t *testing.T) {
	a := New(config.AnnotatorConfig{Enabled: false}, logger.NewNoOpLogger())
	out := a.Annotate(context.Background(), "100.00 LKR", "sales", models.RoleAdmin)
	assert.Equal(t, "100.00 LKR", out)
}
