package services

import (
	"context"
	"time"

	"osvillage/internal/models"
	"osvillage/internal/observability"
	contextutils "osvillage/internal/utils"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Report lookup placeholder values
const (
	ReportStubMessage = "Report feature is under development"
	ReportStubStatus  = "coming_soon"
)

// ReportServiceInterface defines report operations
type ReportServiceInterface interface {
	GenerateReport(ctx context.Context, playerID string) (*models.Report, error)
	GetReport(ctx context.Context, reportID string) models.ReportStub
}

// ReportService builds learning reports from player progress. Reports are not stored.
type ReportService struct {
	games  GameServiceInterface
	logger *observability.Logger
	now    func() time.Time
}

// NewReportService creates a new report service
func NewReportService(games GameServiceInterface, logger *observability.Logger) *ReportService {
	if games == nil {
		panic("game service cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ReportService{games: games, logger: logger, now: time.Now}
}

// GenerateReport bundles the player's progress with the fixed suggestions
func (s *ReportService) GenerateReport(ctx context.Context, playerID string) (result0 *models.Report, err error) {
	ctx, span := observability.TraceReportFunction(ctx, "generate_report",
		observability.AttributePlayerID(playerID),
	)
	defer observability.FinishSpan(span, &err)

	progress, err := s.games.GetProgress(ctx, playerID)
	if err != nil {
		return nil, contextutils.WrapErrorf(err, "failed to build report for %s", playerID)
	}

	suggestions := make([]string, len(models.ReportSuggestions))
	copy(suggestions, models.ReportSuggestions)

	report := &models.Report{
		ReportID:      uuid.NewString(),
		PlayerID:      playerID,
		TotalTime:     0,
		TotalGames:    progress.TotalGames,
		OverallScore:  progress.OverallProgress,
		GameBreakdown: progress.Games,
		AISuggestions: suggestions,
		CreatedAt:     s.now().UTC(),
	}

	span.SetAttributes(attribute.String("report.id", report.ReportID))
	s.logger.Info(ctx, "Report generated", map[string]interface{}{
		"player_id":     playerID,
		"report_id":     report.ReportID,
		"overall_score": report.OverallScore,
	})
	return report, nil
}

// GetReport is a placeholder until reports are persisted
func (s *ReportService) GetReport(ctx context.Context, reportID string) models.ReportStub {
	_, span := observability.TraceReportFunction(ctx, "get_report",
		attribute.String("report.id", reportID),
	)
	defer span.End()

	return models.ReportStub{
		ReportID: reportID,
		Message:  ReportStubMessage,
		Status:   ReportStubStatus,
	}
}
