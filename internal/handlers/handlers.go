package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"cartera/internal/portfolio"
)

type Handler struct {
	valuator *portfolio.Valuator
	alerts   *portfolio.AlertGenerator
	log      *logrus.Logger
}

func NewHandler(v *portfolio.Valuator, a *portfolio.AlertGenerator, log *logrus.Logger) *Handler {
	return &Handler{valuator: v, alerts: a, log: log}
}

func (h *Handler) GetPortfolio(c *gin.Context) {
	userID := c.Param("userId")
	currency := c.Query("currency")
	summary, err := h.valuator.GetSummary(context.Background(), userID, currency)
	if err != nil {
		h.log.Errorf("get summary failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) GetDashboard(c *gin.Context) {
	userID := c.Param("userId")
	currency := c.Query("currency")

	var override portfolio.ThresholdOverride
	if v := c.Query("deviation"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil || d.Sign() < 0 {
			h.log.Warnf("invalid deviation %q", v)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deviation"})
			return
		}
		override.DeviationPct = &d
	}
	if v := c.Query("stale_days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.log.Warnf("invalid stale_days %q", v)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stale_days"})
			return
		}
		override.StaleDays = &n
	}

	dash, err := h.alerts.GetDashboard(context.Background(), userID, currency, &override)
	if err != nil {
		h.log.Errorf("get dashboard failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, dash)
}
