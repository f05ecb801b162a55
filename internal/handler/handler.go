package handler

import (
	"context"
	"errors"
	"net/http"

	"marketpulse/internal/domain"
	"marketpulse/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// AssetAggregator assembles the composite view for one asset.
type AssetAggregator interface {
	Aggregate(ctx context.Context, symbol string, class domain.AssetClass, lookbackDays int) (*domain.AggregatedAssetView, error)
}

// QuoteService serves and refreshes cached quotes.
type QuoteService interface {
	GetQuote(ctx context.Context, symbol string, class domain.AssetClass) (*domain.Quote, error)
	ListQuotes(ctx context.Context) ([]domain.Quote, error)
	BulkRefresh(ctx context.Context, updates []service.QuoteUpdate) (int, error)
	RefreshAll(ctx context.Context) int
}

type Handler struct {
	tracer     trace.Tracer
	aggregator AssetAggregator
	quotes     QuoteService
}

func New(tracer trace.Tracer, aggregator AssetAggregator, quotes QuoteService) *Handler {
	return &Handler{
		tracer:     tracer,
		aggregator: aggregator,
		quotes:     quotes,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/assets/:symbol", h.GetAsset)
	r.GET("/api/quotes", h.ListQuotes)
	r.GET("/api/quotes/:symbol", h.GetQuote)
	r.POST("/api/quotes/refresh", h.RefreshQuotes)
}

// writeError maps domain errors to HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
