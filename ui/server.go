// Package ui hosts the HTTP surfaces: the gin JSON API and the chi operator
// dashboard.
package ui

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"plaquerisk/app"
	"plaquerisk/domain/core"
	"plaquerisk/domain/validation"
	"plaquerisk/internal"
	apperrors "plaquerisk/internal/errors"
	"plaquerisk/models"
	"plaquerisk/ports"
)

// Server is the clinical JSON API.
type Server struct {
	router      *gin.Engine
	predictions *app.PredictionService
	training    *app.TrainingService
	reports     ports.ReportRepository
	modelName   string
	cohortPath  string
	logger      *internal.Logger
}

func NewServer(
	predictions *app.PredictionService,
	training *app.TrainingService,
	reports ports.ReportRepository,
	modelName, cohortPath string,
	logger *internal.Logger,
) *Server {
	s := &Server{
		router:      gin.New(),
		predictions: predictions,
		training:    training,
		reports:     reports,
		modelName:   modelName,
		cohortPath:  cohortPath,
		logger:      logger.WithComponent("api"),
	}
	s.router.Use(gin.Recovery(), corsMiddleware())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	v1.POST("/predict/adverse-outcome", s.handlePredict)
	v1.POST("/validate", s.handleValidate)
	v1.GET("/leaderboard", s.handleLeaderboard)
	v1.GET("/reports/latest", s.handleLatestReport)
}

// Start blocks serving the API on addr.
func (s *Server) Start(addr string) error {
	s.logger.Info("API listening on %s", addr)
	return s.router.Run(addr)
}

// Router exposes the underlying engine, mainly for httptest.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok", ModelName: s.modelName})
}

func (s *Server) handlePredict(c *gin.Context) {
	var req models.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: err.Error(),
			Code:  apperrors.CodeInvalidInput,
		})
		return
	}

	prediction, err := s.predictions.Predict(c.Request.Context(), req.ToProfile())
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PredictionResponse{
		ModelName:        s.modelName,
		Probability:      prediction.Probability,
		RiskTier:         string(prediction.Tier),
		Explanation:      models.NewExplanationDTO(prediction.Explanation),
		ExecutiveSummary: prediction.Summary,
	})
}

func (s *Server) handleValidate(c *gin.Context) {
	var req models.ValidationRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: err.Error(),
			Code:  apperrors.CodeInvalidInput,
		})
		return
	}

	trainingReq := app.TrainingRequest{
		CohortPath: s.cohortPath,
		ModelName:  s.modelName,
		Iterations: req.Iterations,
		Mode:       validation.OptimismMode(req.Mode),
	}
	if req.Seed != nil {
		trainingReq.Seed = *req.Seed
	}

	result, err := s.training.Run(c.Request.Context(), trainingReq)
	if err != nil {
		s.respondError(c, err)
		return
	}

	report := result.Report
	c.JSON(http.StatusOK, models.ValidationReportResponse{
		RunID:      report.RunID.String(),
		ModelName:  s.modelName,
		Requested:  report.Requested,
		Completed:  report.Completed,
		Degenerate: report.Degenerate,
		Seed:       report.Seed,
		Mode:       string(report.Mode),
		ROCAUC:     estimateDTO(report.ROCAUC),
		PRAUC:      estimateDTO(report.PRAUC),
		CreatedAt:  report.CreatedAt.Time(),
	})
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	entries, err := s.reports.Leaderboard(c.Request.Context(), 0)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

func (s *Server) handleLatestReport(c *gin.Context) {
	record, err := s.reports.LatestReport(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// respondError maps domain sentinels and AppError codes onto HTTP statuses.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrMissingFeature), errors.Is(err, core.ErrSchemaMismatch):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error(), Code: apperrors.CodeInvalidInput})
		return
	case errors.Is(err, core.ErrInsufficientData):
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Error: err.Error(), Code: apperrors.CodeInsufficientData})
		return
	}

	switch apperrors.GetCode(err) {
	case apperrors.CodeNotFound:
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: err.Error(), Code: apperrors.CodeNotFound})
	case apperrors.CodeInvalidInput, apperrors.CodeValidationError:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error(), Code: apperrors.GetCode(err)})
	case apperrors.CodeInsufficientData:
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Error: err.Error(), Code: apperrors.CodeInsufficientData})
	default:
		s.logger.Error("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal error", Code: apperrors.CodeInternalError})
	}
}

func estimateDTO(e validation.Estimate) models.EstimateDTO {
	return models.EstimateDTO{Apparent: e.Apparent, Optimism: e.Optimism, Corrected: e.Corrected}
}

// corsMiddleware allows the local dev frontend to call the API directly.
func corsMiddleware() gin.HandlerFunc {
	allowed := map[string]bool{
		"http://localhost:3000": true,
		"http://127.0.0.1:3000": true,
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
