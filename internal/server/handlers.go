// internal/server/handlers.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"sales-assistant/internal/models"
)

const maxChatBodyBytes = 1 << 20

// chatRequestSchema rejects malformed chat payloads before they reach
// the pipeline.
const chatRequestSchema = `{
	"type": "object",
	"required": ["message", "role"],
	"properties": {
		"message": {"type": "string", "minLength": 1, "maxLength": 1000},
		"role": {"type": "string", "enum": ["ADMIN", "MANAGER", "STAFF"]},
		"branch_id": {"type": "integer", "minimum": 0},
		"session_id": {"type": "string", "maxLength": 128}
	},
	"additionalProperties": false
}`

var chatSchema = gojsonschema.NewStringLoader(chatRequestSchema)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxChatBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "request body unreadable")
		return
	}

	result, err := gojsonschema.Validate(chatSchema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		writeError(w, http.StatusBadRequest, strings.Join(details, "; "))
		return
	}

	var req models.ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	}

	resp := s.chat.Handle(r.Context(), &req)
	writeJSON(w, http.StatusOK, resp)
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
	Insights    []string `json:"insights,omitempty"`
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	role := models.Role(strings.ToUpper(r.URL.Query().Get("role")))

	years, err := s.sales.DistinctYears(ctx)
	if err != nil {
		s.logger.Error("loading suggestion years failed", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "could not load suggestions")
		return
	}
	branches, err := s.sales.DistinctBranches(ctx)
	if err != nil {
		s.logger.Error("loading suggestion branches failed", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "could not load suggestions")
		return
	}

	now := s.clock()
	suggestions := []string{
		"Today sales",
		fmt.Sprintf("Sales in %s %d for Branch 1", now.Month().String(), now.Year()),
		"Past 3 months sales",
	}
	for _, b := range branches {
		suggestions = append(suggestions, fmt.Sprintf("Average sales this month for Branch %d", b))
		if len(suggestions) >= 6 {
			break
		}
	}

	// Cross-branch and historical comparisons are useless prompts for
	// roles that cannot run them.
	if role != models.RoleStaff {
		if len(years) >= 2 {
			suggestions = append(suggestions,
				fmt.Sprintf("Compare %d and %d", years[1], years[0]))
		}
		suggestions = append(suggestions,
			fmt.Sprintf("Which branch has the highest sales in %d?", now.Year()))
	}

	resp := suggestionsResponse{Suggestions: suggestions}
	if busiest, err := s.sales.BusiestBranch(ctx); err == nil && busiest != 0 {
		resp.Insights = append(resp.Insights,
			fmt.Sprintf("Branch %d has the most recorded sales activity.", busiest))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.pg.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  "postgres unreachable",
		})
		return
	}
	if err := s.redis.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  "redis unreachable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Answer: message, Type: models.ErrorFallbackType})
}
