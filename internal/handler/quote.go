package handler

import (
	"net/http"
	"strings"

	"marketpulse/internal/domain"
	"marketpulse/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetQuote godoc
// @Summary      Get the latest cached quote for a symbol
// @Description  Returns the most recent price with 24h and 30d change
// @Tags         quotes
// @Produce      json
// @Param        symbol  path   string  true   "Asset symbol (e.g., BTC, AAPL)"
// @Param        class   query  string  false  "Asset class (crypto or equity)"  default(crypto)
// @Success      200  {object}  domain.Quote
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/quotes/{symbol} [get]
func (h *Handler) GetQuote(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-quote")
	defer span.End()

	symbol := strings.ToUpper(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	class, ok := domain.ParseAssetClass(c.DefaultQuery("class", string(domain.AssetCrypto)))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported asset class: " + c.Query("class")})
		return
	}

	quote, err := h.quotes.GetQuote(ctx, symbol, class)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// ListQuotes godoc
// @Summary      List all stored quotes
// @Description  Returns the latest stored quote for every tracked symbol
// @Tags         quotes
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/quotes [get]
func (h *Handler) ListQuotes(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-quotes")
	defer span.End()

	quotes, err := h.quotes.ListQuotes(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"quotes": quotes})
}

// RefreshQuotes godoc
// @Summary      Refresh stored quotes
// @Description  Applies the posted quote updates, or refreshes every tracked symbol when the body is empty
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        updates  body  []service.QuoteUpdate  false  "Quote updates to apply"
// @Success      200  {object}  map[string]int
// @Failure      400  {object}  map[string]string
// @Router       /api/quotes/refresh [post]
func (h *Handler) RefreshQuotes(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.refresh-quotes")
	defer span.End()

	var updates []service.QuoteUpdate
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&updates); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed updates payload: " + err.Error()})
			return
		}
	}

	if len(updates) == 0 {
		updated := h.quotes.RefreshAll(ctx)
		c.JSON(http.StatusOK, gin.H{"updated": updated})
		return
	}

	updated, err := h.quotes.BulkRefresh(ctx, updates)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
