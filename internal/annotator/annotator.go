// internal/annotator/annotator.go
package annotator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"sales-assistant/internal/common/config"
	stderrors "sales-assistant/internal/common/errors"
	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/common/metrics"
	"sales-assistant/internal/models"
)

const systemPrompt = `SYSTEM ROLE:
You are an Enterprise Accounting Assistant operating under strict non-causal, non-interpretive constraints.
You must output ONLY what is explicitly supported by the provided data.
Use ONLY the numbers explicitly present in the result provided.
NEVER assume, infer, calculate, or fabricate growth rates, averages, or percentages unless already present.
Preserve the original currency exactly as shown (e.g., LKR).
If the result contains only ONE data point, output: 'No comparative analysis can be derived from a single data point.'
When data is valid and comparative: provide 1-3 short sentences stating ONLY what is numerically observable.
Never explain WHY numbers changed. No advice, no recommendations, no future outlooks.
Neutral accounting tone. If you cannot comply, output nothing.`

// Annotator appends a short factual observation from a local language
// model to an already-final answer. It is strictly additive: every
// failure path returns the factual text untouched.
type Annotator struct {
	cfg        config.AnnotatorConfig
	httpClient *http.Client
	logger     logger.Logger
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func New(cfg config.AnnotatorConfig, log logger.Logger) *Annotator {
	return &Annotator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: config.GetDuration(cfg.Timeout)},
		logger:     log,
	}
}

// Annotate returns the answer with an analysis note appended, or the
// answer unchanged when annotation is disabled, denied for the role,
// pointless, or blocked by the output firewall.
func (a *Annotator) Annotate(ctx context.Context, answer, question string, role models.Role) string {
	if !a.cfg.Enabled || role.Restricted() {
		return answer
	}

	// Error and no-data answers carry nothing worth interpreting.
	lower := strings.ToLower(answer)
	if strings.Contains(lower, "error") || strings.Contains(lower, "not available") ||
		strings.Contains(lower, "no data") {
		return answer
	}

	analysis, err := a.generate(ctx, answer, question)
	if err != nil {
		metrics.ExternalCallFailures.WithLabelValues("annotator").Inc()
		metrics.AnnotationsTotal.WithLabelValues("failed").Inc()
		a.logger.Warn("annotation failed", map[string]interface{}{
			"error": stderrors.NewLLMTimeoutError(err).Error(),
		})
		return answer
	}

	if blocked(analysis) {
		metrics.AnnotationsTotal.WithLabelValues("blocked").Inc()
		a.logger.Warn("annotation blocked by output firewall", map[string]interface{}{
			"analysis": analysis,
		})
		return answer
	}

	metrics.AnnotationsTotal.WithLabelValues("appended").Inc()
	return fmt.Sprintf("%s\n\n> **📝 AI Analysis**: %s", answer, analysis)
}

func (a *Annotator) generate(ctx context.Context, answer, question string) (string, error) {
	prompt := fmt.Sprintf("%s\n\nDATA:\n%s\n\nUSER QUESTION:\n%s\n\nANALYSIS:", systemPrompt, answer, question)

	body, err := json.Marshal(generateRequest{
		Model:  a.cfg.Model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.cfg.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("annotator returned status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Response), nil
}
