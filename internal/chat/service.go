// internal/chat/service.go
package chat

import (
	"context"
	"strings"
	"time"

	"sales-assistant/internal/annotator"
	"sales-assistant/internal/common/config"
	stderrors "sales-assistant/internal/common/errors"
	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/common/metrics"
	"sales-assistant/internal/convo"
	"sales-assistant/internal/erp"
	"sales-assistant/internal/models"
	"sales-assistant/internal/nlp"
	"sales-assistant/internal/querylog"
	"sales-assistant/internal/store"
)

const errorAnswer = "Sorry, something went wrong while fetching your sales figures. Please try again."

// Service runs a chat turn through the full pipeline: guards, context
// merge, normalization, extraction, validation and handler dispatch.
type Service struct {
	cfg        *config.Config
	normalizer *nlp.Normalizer
	extractor  *nlp.Extractor
	validator  *nlp.Validator
	sales      *store.SalesStore
	accounting *store.AccountingStore
	sessions   *convo.Store
	live       *erp.Client
	annotator  *annotator.Annotator
	audit      *querylog.Logger
	clock      models.Clock
	logger     logger.Logger
}

// Deps bundles the collaborators a Service needs.
type Deps struct {
	Config     *config.Config
	Sales      *store.SalesStore
	Accounting *store.AccountingStore
	Sessions   *convo.Store
	Live       *erp.Client
	Annotator  *annotator.Annotator
	Audit      *querylog.Logger
	Clock      models.Clock
	Logger     logger.Logger
}

func NewService(d Deps) *Service {
	clock := d.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		cfg:        d.Config,
		normalizer: nlp.NewNormalizer(clock, d.Logger),
		extractor:  nlp.NewExtractor(clock, d.Logger),
		validator:  nlp.NewValidator(clock),
		sales:      d.Sales,
		accounting: d.Accounting,
		sessions:   d.Sessions,
		live:       d.Live,
		annotator:  d.Annotator,
		audit:      d.Audit,
		clock:      clock,
		logger:     d.Logger,
	}
}

// turn carries the evolving state of one chat request through the
// pipeline.
type turn struct {
	req       *models.ChatRequest
	sessionID string
	raw       string
	lowerRaw  string

	resolved string // merged and normalized query text
	lower    string
	intent   models.Intent
	params   *models.ParameterSet

	outcome     string
	contextText string // overrides resolved as the saved session context
	skipContext bool   // answers that should not become follow-up context
}

// Handle answers one chat turn. It never fails: internal errors come
// back as an apologetic answer, with the real cause logged and counted.
func (s *Service) Handle(ctx context.Context, req *models.ChatRequest) *models.ChatResponse {
	started := time.Now()

	t := &turn{
		req:       req,
		sessionID: req.SessionID,
		raw:       strings.TrimSpace(req.Message),
		outcome:   "answered",
	}
	if t.sessionID == "" {
		t.sessionID = convo.NewSessionID()
	}
	t.lowerRaw = strings.ToLower(t.raw)

	answer := s.process(ctx, t)

	intentLabel := string(t.intent)
	if intentLabel == "" {
		intentLabel = "UNKNOWN"
	}
	metrics.RecordQuery(intentLabel, t.outcome, time.Since(started).Seconds())
	s.audit.Record(querylog.Entry{
		Query:     t.raw,
		Resolved:  t.resolved,
		Intent:    intentLabel,
		Outcome:   t.outcome,
		Role:      req.Role,
		SessionID: t.sessionID,
		Answer:    answer,
	})

	return &models.ChatResponse{
		Answer:        answer,
		ResolvedQuery: t.resolved,
		SessionID:     t.sessionID,
	}
}

func (s *Service) process(ctx context.Context, t *turn) string {
	// Guards run on the raw text before any storage is touched.
	if containsAny(t.lowerRaw, causalKeywords) {
		return s.rejected(ctx, t, stderrors.NewCausalRefusedError(causalRefusal))
	}
	if t.req.Role.Restricted() && containsAny(t.lowerRaw, staffForbiddenKeywords) {
		t.outcome = "denied"
		metrics.DenialsTotal.WithLabelValues(string(t.req.Role)).Inc()
		return "This information is not available for your access level."
	}

	query := s.mergeContext(ctx, t)

	t.resolved = s.normalizer.Normalize(query)
	t.lower = strings.ToLower(t.resolved)
	t.intent = nlp.ClassifyIntent(t.resolved)
	t.params = s.extractor.Extract(t.resolved)

	if shape := paramIntent(t.params); shape != t.intent {
		s.logger.Warn("intent classification disagrees with extracted parameters", map[string]interface{}{
			"classified": string(t.intent),
			"extracted":  string(shape),
			"query":      t.resolved,
		})
	}

	if err := s.validator.Validate(t.params, t.resolved, t.req.Role, t.req.BranchID); err != nil {
		return s.rejected(ctx, t, err)
	}
	s.validator.ApplyDefaults(t.params, t.req.Role, t.req.BranchID)
	if denial := s.enforceBranchScope(t); denial != "" {
		t.outcome = "denied"
		metrics.DenialsTotal.WithLabelValues(string(t.req.Role)).Inc()
		return denial
	}

	// Financially relevant queries without a branch fall back to the
	// main branch rather than a clarification round trip.
	if !t.params.HasBranch() && !t.params.IsRanking() &&
		(t.params.HasPeriod() || containsAny(t.lower, financialKeywords)) {
		t.params.Branch = models.Branch(1)
	}

	for _, h := range s.handlers() {
		out, handled, err := h(ctx, t)
		if err != nil {
			t.outcome = "error"
			s.logger.Error("handler failed", map[string]interface{}{
				"query": t.resolved,
				"error": err.Error(),
			})
			return errorAnswer
		}
		if handled {
			if t.outcome == "clarification" {
				metrics.ClarificationsTotal.Inc()
				s.saveAttempted(ctx, t)
				return out
			}
			return s.answered(ctx, t, out)
		}
	}

	return s.clarify(ctx, t)
}

// mergeContext folds the message into the conversational context: a
// bare number answers an outstanding branch clarification, and short
// follow-ups are merged into the previous query.
func (s *Service) mergeContext(ctx context.Context, t *turn) string {
	state, err := s.sessions.Load(ctx, t.sessionID)
	if err != nil {
		s.logger.Warn("session load failed, continuing without context", map[string]interface{}{
			"session_id": t.sessionID,
			"error":      err.Error(),
		})
		state = &convo.State{}
	}

	if n, ok := convo.MatchPendingBranch(t.raw); ok && state.Pending != "" {
		merged := state.Pending + " Branch " + n
		if err := s.sessions.ClearPending(ctx, t.sessionID); err != nil {
			s.logger.Warn("clearing pending query failed", map[string]interface{}{"error": err.Error()})
		}
		return merged
	}
	if state.Pending != "" && strings.Contains(t.lowerRaw, "branch") {
		merged := state.Pending + " " + t.raw
		if err := s.sessions.ClearPending(ctx, t.sessionID); err != nil {
			s.logger.Warn("clearing pending query failed", map[string]interface{}{"error": err.Error()})
		}
		return merged
	}

	base := state.LastAttempted
	if base == "" {
		base = state.LastSuccessful
	}
	if base != "" && !convo.ForcesNewQuery(t.raw) {
		return convo.SmartMerge(base, t.raw)
	}
	return t.raw
}

// enforceBranchScope silently pins branch scoped managers to their own
// branch and denies them cross branch analysis. STAFF violations were
// already rejected during validation.
func (s *Service) enforceBranchScope(t *turn) string {
	if t.req.Role != models.RoleManager || t.req.BranchID == 0 {
		return ""
	}
	if t.params.IsComparison() {
		return "This information is not available for your access level."
	}
	if t.params.IsRanking() && strings.Contains(t.lower, "branch") {
		return "This analysis is not available for your access level."
	}
	t.params.Branch = models.Branch(t.req.BranchID)
	return ""
}

// rejected turns a validation error into the user facing answer and
// records the right outcome for it.
func (s *Service) rejected(ctx context.Context, t *turn, err error) string {
	se, ok := err.(*stderrors.StandardError)
	if !ok {
		t.outcome = "error"
		return errorAnswer
	}
	switch se.Code {
	case stderrors.ErrCodeClarificationNeeded:
		t.outcome = "clarification"
		metrics.ClarificationsTotal.Inc()
		s.saveAttempted(ctx, t)
	case stderrors.ErrCodePermissionDenied:
		t.outcome = "denied"
		metrics.DenialsTotal.WithLabelValues(string(t.req.Role)).Inc()
	case stderrors.ErrCodeCausalRefused:
		t.outcome = "refused"
	default:
		t.outcome = "invalid"
	}
	return se.Message
}

// answered finalizes a factual answer: the resolved query becomes the
// session context and the annotator gets a chance to add a note.
func (s *Service) answered(ctx context.Context, t *turn, answer string) string {
	if t.skipContext {
		return answer
	}
	contextText := t.contextText
	if contextText == "" {
		contextText = t.resolved
	}
	if err := s.sessions.SetLastSuccessful(ctx, t.sessionID, contextText); err != nil {
		s.logger.Warn("saving session context failed", map[string]interface{}{
			"session_id": t.sessionID,
			"error":      err.Error(),
		})
	}
	return s.annotator.Annotate(ctx, answer, t.raw, t.req.Role)
}

// clarify is the dispatch fallback: nothing matched, so ask the user to
// fill in what is missing and remember the attempt for the follow-up.
func (s *Service) clarify(ctx context.Context, t *turn) string {
	t.outcome = "clarification"
	metrics.ClarificationsTotal.Inc()
	s.saveAttempted(ctx, t)

	prompt := s.validator.ClarificationPrompt(t.params)
	if prompt == "" {
		prompt = "I'm not exactly sure what you mean. Could you specify a year, month, and branch? Example: 'Sales for Branch 1 in June 2025'"
	}
	if strings.Contains(prompt, "Which branch?") {
		if err := s.sessions.SetPending(ctx, t.sessionID, t.resolved); err != nil {
			s.logger.Warn("saving pending query failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return prompt
}

func (s *Service) saveAttempted(ctx context.Context, t *turn) {
	text := t.resolved
	if text == "" {
		text = t.raw
	}
	if err := s.sessions.SetLastAttempted(ctx, t.sessionID, text); err != nil {
		s.logger.Warn("saving attempted query failed", map[string]interface{}{
			"session_id": t.sessionID,
			"error":      err.Error(),
		})
	}
}

// paramIntent derives the query shape from extracted parameters, used
// only to cross check the keyword classifier.
func paramIntent(p *models.ParameterSet) models.Intent {
	switch {
	case p.IsComparison():
		return models.IntentComparison
	case p.IsRanking():
		return models.IntentRanking
	case p.Metric == models.MetricGrowth:
		return models.IntentTrend
	case p.Period != nil && (p.Period.Kind == models.PeriodDate || p.Period.Kind == models.PeriodMonth):
		return models.IntentSinglePoint
	default:
		return models.IntentAggregate
	}
}
