package handler

import (
	"net/http"
	"strconv"
	"strings"

	"marketpulse/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetAsset godoc
// @Summary      Get the aggregated view for an asset
// @Description  Returns quote, chart, news, sentiment, and technical indicators for a symbol
// @Tags         assets
// @Produce      json
// @Param        symbol  path   string  true   "Asset symbol (e.g., BTC, AAPL)"
// @Param        class   query  string  false  "Asset class (crypto or equity)"  default(crypto)
// @Param        days    query  int     false  "Chart lookback in days (default 365)"  default(365)
// @Success      200  {object}  domain.AggregatedAssetView
// @Failure      400  {object}  map[string]string
// @Router       /api/assets/{symbol} [get]
func (h *Handler) GetAsset(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-asset")
	defer span.End()

	symbol := strings.ToUpper(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	class, ok := domain.ParseAssetClass(c.DefaultQuery("class", string(domain.AssetCrypto)))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "unsupported asset class: " + c.Query("class"),
			"supported_classes": []domain.AssetClass{domain.AssetCrypto, domain.AssetEquity},
		})
		return
	}
	span.SetAttributes(attribute.String("class", string(class)))

	days := 0
	if d := c.Query("days"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = n
	}

	view, err := h.aggregator.Aggregate(ctx, symbol, class, days)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
