package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/betting-tracker/internal/analytics"
	"github.com/yourusername/betting-tracker/internal/logger"
	"github.com/yourusername/betting-tracker/internal/metrics"
	"github.com/yourusername/betting-tracker/internal/models"
	"github.com/yourusername/betting-tracker/internal/narrative"
	"github.com/yourusername/betting-tracker/internal/repository"
)

// ErrNoBetsInScope indicates the requested scope and filters matched nothing
var ErrNoBetsInScope = errors.New("no bets found for the selected scope/filters")

// demoUser labels summaries built for the unauthenticated demo
const demoUser = "demo"

// AnalysisService builds summaries over a user's ledger and forwards
// questions about them to the narrative generator
type AnalysisService struct {
	bets         repository.BetRepository
	generator    narrative.Generator
	logger       *logger.AnalyticsLogger
	narrativeLog *logger.NarrativeLogger
}

// NewAnalysisService creates a new analysis service. A nil generator
// disables Analyze.
func NewAnalysisService(
	bets repository.BetRepository,
	generator narrative.Generator,
	analyticsLog *logger.AnalyticsLogger,
	narrativeLog *logger.NarrativeLogger,
) *AnalysisService {
	return &AnalysisService{
		bets:         bets,
		generator:    generator,
		logger:       analyticsLog,
		narrativeLog: narrativeLog,
	}
}

// NarrativeConfigured reports whether Analyze can reach a generator
func (s *AnalysisService) NarrativeConfigured() bool {
	return s.generator != nil
}

// ContextView is the analytics context shown before asking a question
type ContextView struct {
	Scope               analytics.Scope           `json:"scope"`
	Filters             analytics.FilterSpec      `json:"filters"`
	Metrics             analytics.MetricsSnapshot `json:"metrics"`
	Breakdowns          analytics.Breakdowns      `json:"breakdowns"`
	Dataset             analytics.Dataset         `json:"dataset"`
	Drawdown            *analytics.Drawdown       `json:"drawdown"`
	Issues              []string                  `json:"issues"`
	AvailableFilters    analytics.FilterFacets    `json:"availableFilters"`
	GlobalStats         analytics.UserStats       `json:"globalStats"`
	NarrativeConfigured bool                      `json:"narrativeConfigured"`
	SampleSize          int                       `json:"sampleSize"`
	HasClosingOdds      bool                      `json:"hasClosingOdds"`
}

// Context summarizes the owner's ledger. The scope is filtered when any
// filter parameter is present.
func (s *AnalysisService) Context(ctx context.Context, owner uuid.UUID, params analytics.FilterParams) (*ContextView, error) {
	filters, err := analytics.ParseFilterSpec(params)
	if err != nil {
		return nil, err
	}
	bets, err := s.bets.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load bets: %w", err)
	}

	scope := analytics.ScopeAll
	if !filters.IsEmpty() {
		scope = analytics.ScopeFiltered
	}
	summary, err := s.summarize(owner.String(), bets, scope, filters)
	if err != nil {
		return nil, err
	}

	return &ContextView{
		Scope:               summary.Scope,
		Filters:             summary.FiltersApplied,
		Metrics:             summary.Metrics,
		Breakdowns:          summary.Breakdowns,
		Dataset:             summary.Dataset,
		Drawdown:            summary.Drawdown,
		Issues:              summary.Issues,
		AvailableFilters:    summary.AvailableFilters,
		GlobalStats:         analytics.ComputeUserStats(bets),
		NarrativeConfigured: s.NarrativeConfigured(),
		SampleSize:          summary.SampleSize,
		HasClosingOdds:      summary.Metrics.ClosingTracked > 0,
	}, nil
}

// Facets lists the filter values present in the owner's ledger
func (s *AnalysisService) Facets(ctx context.Context, owner uuid.UUID) (analytics.FilterFacets, error) {
	bets, err := s.bets.ListByOwner(ctx, owner)
	if err != nil {
		return analytics.FilterFacets{}, fmt.Errorf("failed to load bets: %w", err)
	}
	return analytics.BuildFilterFacets(analytics.NormalizeAll(bets)), nil
}

// AnalyzeInput is a question about the ledger
type AnalyzeInput struct {
	Message string                 `json:"message"`
	Scope   string                 `json:"scope"`
	Filters analytics.FilterParams `json:"filters"`
	History []narrative.Message    `json:"history"`
}

// Prepare validates a question and builds the summary it will be answered
// from. Any scope other than "filtered" is treated as all.
func (s *AnalysisService) Prepare(ctx context.Context, owner uuid.UUID, in AnalyzeInput) (*analytics.Summary, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, &ValidationError{Problems: []string{"A question is required."}}
	}
	if s.generator == nil {
		return nil, narrative.ErrNotConfigured
	}

	scope := analytics.ScopeAll
	if analytics.Scope(in.Scope) == analytics.ScopeFiltered {
		scope = analytics.ScopeFiltered
	}
	filters, err := analytics.ParseFilterSpec(in.Filters)
	if err != nil {
		return nil, err
	}

	bets, err := s.bets.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load bets: %w", err)
	}
	summary, err := s.summarize(owner.String(), bets, scope, filters)
	if err != nil {
		return nil, err
	}
	if summary.Metrics.TotalBets == 0 {
		return nil, ErrNoBetsInScope
	}
	return summary, nil
}

// Analyze answers a question about the owner's ledger. transport names the
// channel the answer is streamed over and is only used for logging.
func (s *AnalysisService) Analyze(ctx context.Context, owner uuid.UUID, in AnalyzeInput, transport string) (*narrative.Payload, error) {
	summary, err := s.Prepare(ctx, owner, in)
	if err != nil {
		return nil, err
	}
	s.narrativeLog.LogAnalysisRequest(owner.String(), string(summary.Scope), summary.Metrics.TotalBets, len(in.History), transport)

	reply, err := s.generator.Analyze(ctx, narrative.Request{
		Question: in.Message,
		Summary:  summary,
		History:  in.History,
	})
	if err != nil {
		return nil, err
	}
	payload := narrative.BuildPayload(summary, reply)
	return &payload, nil
}

// DemoInput is an unauthenticated summary request over caller-supplied bets
type DemoInput struct {
	Bets    []models.RawBet        `json:"bets"`
	Scope   string                 `json:"scope"`
	Filters analytics.FilterParams `json:"filters"`
}

// Demo summarizes bets supplied by the caller. Nothing is persisted.
func (s *AnalysisService) Demo(in DemoInput) (*analytics.Summary, error) {
	scope, err := analytics.ParseScope(in.Scope)
	if err != nil {
		return nil, err
	}
	filters, err := analytics.ParseFilterSpec(in.Filters)
	if err != nil {
		return nil, err
	}
	return s.summarize(demoUser, in.Bets, scope, filters)
}

func (s *AnalysisService) summarize(userID string, bets []models.RawBet, scope analytics.Scope, filters analytics.FilterSpec) (*analytics.Summary, error) {
	start := time.Now()
	summary, err := analytics.Summarize(bets, scope, filters)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	metrics.RecordSummary(string(summary.Scope), elapsed.Seconds())
	s.logger.LogSummaryBuilt(userID, string(summary.Scope), summary.Metrics.TotalBets, summary.SampleSize, len(summary.Issues), float64(elapsed.Microseconds())/1000)
	s.logger.LogDataIssues(userID, summary.Issues)
	return summary, nil
}
