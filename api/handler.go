// Package api serves the engine state over HTTP for the dashboard.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"realestate-insights/charts"
	"realestate-insights/models"
	"realestate-insights/services"
	"realestate-insights/utils"
)

// Engine is the part of services.Pipeline the handlers drive.
type Engine interface {
	Snapshot() services.EngineState
	SetCity(city string) error
	SetGroupField(field string) error
	ServerStatistics(ctx context.Context) (grouped, filtered models.ChartSeriesData, err error)
}

// Handler exposes the engine's state and triggers.
type Handler struct {
	engine Engine
	logger *utils.Logger
}

func NewHandler(engine Engine, logger *utils.Logger) *Handler {
	return &Handler{engine: engine, logger: logger}
}

type cityRequest struct {
	City string `json:"city" binding:"required"`
}

type groupFieldRequest struct {
	Field string `json:"field" binding:"required"`
}

type summaryResponse struct {
	AveragePriceText         string                `json:"averagePriceText"`
	AveragePricePerMeterText string                `json:"averagePricePerMeterText"`
	Report                   *models.InsightReport `json:"report"`
}

// State returns the full snapshot without the raw dataset.
func (h *Handler) State(c *gin.Context) {
	s := h.engine.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"state":       s,
		"datasetSize": s.DatasetSize(),
	})
}

// SetCity selects a city. The fetch runs in the background, so the
// response is 202 with the state as it stands.
func (h *Handler) SetCity(c *gin.Context) {
	var req cityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.engine.SetCity(req.City); err != nil {
		h.respondTriggerError(c, err)
		return
	}

	h.logger.Info("city selected: %s", req.City)
	c.JSON(http.StatusAccepted, h.engine.Snapshot())
}

// SetGroupField selects the grouping path and returns the recomputed state.
func (h *Handler) SetGroupField(c *gin.Context) {
	var req groupFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.engine.SetGroupField(req.Field); err != nil {
		h.respondTriggerError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.engine.Snapshot())
}

func (h *Handler) GroupedChart(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Snapshot().LastComputedChart)
}

func (h *Handler) StatisticsChart(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Snapshot().LastComputedStatistics)
}

// FilteredChart narrows the statistics chart to one statistic. Without
// ?parameter= it returns the chart for the pipeline's filter parameter.
func (h *Handler) FilteredChart(c *gin.Context) {
	s := h.engine.Snapshot()

	parameter := c.Query("parameter")
	if parameter == "" {
		c.JSON(http.StatusOK, s.LastComputedFilteredChart)
		return
	}
	if !models.IsStatName(parameter) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   models.ErrUnknownStatistic.Error(),
			"allowed": models.StatNames,
		})
		return
	}

	c.JSON(http.StatusOK, charts.FilterByParameter(s.LastComputedStatistics, parameter))
}

// ServerCharts asks the data source to aggregate instead of the engine.
func (h *Handler) ServerCharts(c *gin.Context) {
	grouped, filtered, err := h.engine.ServerStatistics(c.Request.Context())
	switch {
	case errors.Is(err, services.ErrServerAggregationUnsupported):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.logger.Error("server-side statistics failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch statistics from source"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"grouped": grouped, "filtered": filtered})
}

func (h *Handler) Summary(c *gin.Context) {
	s := h.engine.Snapshot()
	c.JSON(http.StatusOK, summaryResponse{
		AveragePriceText:         s.AveragePriceText,
		AveragePricePerMeterText: s.AveragePricePerMeterText,
		Report:                   s.Insights,
	})
}

func (h *Handler) Timeline(c *gin.Context) {
	s := h.engine.Snapshot()
	c.JSON(http.StatusOK, gin.H{"city": s.SelectedCity, "timeline": s.Timeline})
}

func (h *Handler) respondTriggerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrUnknownCity), errors.Is(err, models.ErrUnsupportedGroupField):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrPipelineClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.logger.Error("trigger failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
