package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"olistdash/internal/analytics"
	apierrors "olistdash/internal/errors"
	"olistdash/internal/exporter"
	"olistdash/internal/middleware"
	"olistdash/internal/services"
	api "olistdash/pkg/contracts/api/v1"
	"olistdash/pkg/contracts/domain"
)

type questionKey struct{}

// DashboardHandler handles dashboard HTTP requests with RFC 7807 compliance
type DashboardHandler struct {
	service      DashboardServiceInterface
	exporter     *exporter.Exporter
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, exp *exporter.Exporter, validator *middleware.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		exporter:     exp,
		validator:    validator,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/questions", h.ListQuestions)
	r.Get("/bounds", h.GetBounds)

	r.Route("/questions/{question}", func(r chi.Router) {
		r.Use(h.QuestionCtx)
		r.Get("/", h.GetQuestion)
	})
	r.Route("/query/{question}", func(r chi.Router) {
		r.Use(h.QuestionCtx)
		r.Get("/", h.Query)
	})
	r.Route("/export/{question}", func(r chi.Router) {
		r.Use(h.QuestionCtx)
		r.Get("/", h.Export)
	})

	return r
}

// QuestionCtx resolves the {question} parameter and stores it in the context
func (h *DashboardHandler) QuestionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		question := domain.Question(chi.URLParam(r, "question"))
		if !question.Valid() {
			h.errorHandler.HandleError(w, r, &analytics.UnknownQuestionError{Question: question})
			return
		}
		ctx := context.WithValue(r.Context(), questionKey{}, question)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func questionFrom(ctx context.Context) domain.Question {
	q, _ := ctx.Value(questionKey{}).(domain.Question)
	return q
}

// ListQuestions handles GET /api/dashboard/questions
func (h *DashboardHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, api.QuestionsResponse{
		Variant:   h.service.Variant(),
		Questions: h.service.Questions(),
	})
}

// GetQuestion handles GET /api/dashboard/questions/{question}
func (h *DashboardHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Question(questionFrom(r.Context()))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, info)
}

// GetBounds handles GET /api/dashboard/bounds
func (h *DashboardHandler) GetBounds(w http.ResponseWriter, r *http.Request) {
	bounds, err := h.service.Bounds(r.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoOrders) {
			err = apierrors.NotFoundError("purchase dates")
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.NewBoundsResponse(bounds))
}

// Query handles GET /api/dashboard/query/{question}
func (h *DashboardHandler) Query(w http.ResponseWriter, r *http.Request) {
	result, _, err := h.run(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// Export handles GET /api/dashboard/export/{question}?format=csv|xlsx
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	result, req, err := h.run(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	format, err := exporter.ParseFormat(req.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrUnsupportedFormat)
		return
	}

	// Buffered so a failed export can still become a problem response
	var buf bytes.Buffer
	if err := h.exporter.Export(&buf, format, result.Result); err != nil {
		h.errorHandler.HandleError(w, r, fmt.Errorf("export %s: %w", result.Result.Question, err))
		return
	}

	filename := exporter.Filename(result.Result.Question, format, time.Now())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export write failed", slog.String("error", err.Error()))
	}
}

// run decodes, validates and executes the query of one request
func (h *DashboardHandler) run(r *http.Request) (*domain.QueryResult, api.QueryRequest, error) {
	req, err := api.QueryRequestFromValues(r.URL.Query())
	if err != nil {
		var fieldErr *api.FieldError
		if errors.As(err, &fieldErr) {
			return nil, req, apierrors.ErrValidation(fieldErr.Field, fieldErr.Error())
		}
		return nil, req, apierrors.InvalidRequestWithError(err)
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return nil, req, err
	}

	params, err := services.ParamsFromRequest(req)
	if err != nil {
		return nil, req, err
	}

	result, err := h.service.Run(r.Context(), questionFrom(r.Context()), params)
	return result, req, err
}
