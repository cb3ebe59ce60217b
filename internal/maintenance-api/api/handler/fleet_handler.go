package handler

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"VCS_FMS_Microservice/internal/history"
	"VCS_FMS_Microservice/internal/inventory"
	"VCS_FMS_Microservice/internal/maintenance-api/api/dto/response"
	"VCS_FMS_Microservice/internal/sweep"
)

type FleetHandler interface {
	GetFleetReport() gin.HandlerFunc
	ExportFleetReport() gin.HandlerFunc
	GetInstanceReports() gin.HandlerFunc
	GetLatestReport() gin.HandlerFunc
	GetInstanceAvailability() gin.HandlerFunc
}

type fleetHandler struct {
	logger         *zap.Logger
	sweeper        sweep.Sweeper
	repo           history.Repository
	fleet          inventory.Fleet
	concurrency    int
	perHostTimeout time.Duration
}

func (f *fleetHandler) GetFleetReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		report := f.sweeper.Sweep(c.Request.Context(), f.fleet.HostList(), f.concurrency, f.perHostTimeout)
		c.JSON(http.StatusOK, report)
	}
}

func (f *fleetHandler) ExportFleetReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		report := f.sweeper.Sweep(c.Request.Context(), f.fleet.HostList(), f.concurrency, f.perHostTimeout)
		file, err := f.generateExcelFile(report)
		if err != nil {
			err = fmt.Errorf("FleetHandler.ExportFleetReport: %w", err)
			f.loggingError(c, err, "failed to export fleet report", zap.ErrorLevel)
			c.JSON(http.StatusInternalServerError, response.Response{
				Message: "Internal server error",
			})
			return
		}
		defer file.Close()
		fileName := fmt.Sprintf("fleet-report-%s.xlsx", time.Now().Format("2006-01-02T15:04:05"))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
		if err = file.Write(c.Writer); err != nil {
			err = fmt.Errorf("FleetHandler.ExportFleetReport: %w", err)
			f.loggingError(c, err, "failed to export fleet report", zap.ErrorLevel)
			return
		}
		c.Status(http.StatusOK)
	}
}

func (f *fleetHandler) generateExcelFile(report sweep.FleetReport) (*excelize.File, error) {
	file := excelize.NewFile()
	sheetName := "Fleet"
	index, err := file.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	headers := []interface{}{"instance", "status", "generated_at"}
	if err = file.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return nil, err
	}
	instances := make([]string, 0, len(report.PerInstance))
	for instance := range report.PerInstance {
		instances = append(instances, instance)
	}
	sort.Strings(instances)
	for i, instance := range instances {
		rowData := []interface{}{
			instance,
			string(report.PerInstance[instance]),
			report.GeneratedAt.Format("2006-01-02 15:04:05"),
		}
		if err = file.SetSheetRow(sheetName, fmt.Sprintf("A%d", i+2), &rowData); err != nil {
			return nil, err
		}
	}
	file.SetActiveSheet(index)
	return file, nil
}

func (f *fleetHandler) GetInstanceReports() gin.HandlerFunc {
	return func(c *gin.Context) {
		instance := c.Param("name")
		offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Response{
				Message: "Offset must be an integer",
			})
			return
		}
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Response{
				Message: "Limit must be an integer",
			})
			return
		}
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 {
			limit = 10
		}
		records, err := f.repo.ListReports(c, instance, limit, offset)
		if err != nil {
			err = fmt.Errorf("FleetHandler.GetInstanceReports: %w", err)
			f.loggingError(c, err, "failed to list diagnosis reports", zap.ErrorLevel)
			c.JSON(http.StatusInternalServerError, response.Response{
				Message: "Internal Server Error",
			})
			return
		}
		reports := make([]response.ReportInfoResponse, 0, len(records))
		for _, record := range records {
			reports = append(reports, response.ReportInfoResponse{
				Instance:     record.Instance,
				IP:           record.IP,
				Timestamp:    record.Timestamp,
				ChecksPassed: record.ChecksPassed,
				ChecksWarned: record.ChecksWarned,
				ChecksFailed: record.ChecksFailed,
			})
		}
		c.JSON(http.StatusOK, reports)
	}
}

func (f *fleetHandler) GetLatestReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		instance := c.Param("name")
		report, err := f.repo.LatestReport(c, instance)
		if err != nil {
			if errors.Is(err, history.ErrReportNotFound) {
				c.JSON(http.StatusNotFound, response.Response{
					Message: "No diagnosis recorded for instance",
				})
				return
			}
			err = fmt.Errorf("FleetHandler.GetLatestReport: %w", err)
			f.loggingError(c, err, "failed to load latest report", zap.ErrorLevel)
			c.JSON(http.StatusInternalServerError, response.Response{
				Message: "Internal Server Error",
			})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func (f *fleetHandler) GetInstanceAvailability() gin.HandlerFunc {
	return func(c *gin.Context) {
		instance := c.Param("name")
		startTime, err := time.Parse("2006-01-02", c.Query("start_date"))
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Response{
				Message: "Invalid start date",
			})
			return
		}
		endTime, err := time.Parse("2006-01-02", c.Query("end_date"))
		if err != nil || endTime.Before(startTime) {
			c.JSON(http.StatusBadRequest, response.Response{
				Message: "Invalid end date",
			})
			return
		}
		availability, err := f.repo.InstanceAvailability(c, instance, startTime, endTime.AddDate(0, 0, 1))
		if err != nil {
			if errors.Is(err, history.ErrReportNotFound) {
				c.JSON(http.StatusNotFound, response.Response{
					Message: "No diagnosis recorded for instance in window",
				})
				return
			}
			err = fmt.Errorf("FleetHandler.GetInstanceAvailability: %w", err)
			f.loggingError(c, err, "failed to compute availability", zap.ErrorLevel)
			c.JSON(http.StatusInternalServerError, response.Response{
				Message: "Internal Server Error",
			})
			return
		}
		c.JSON(http.StatusOK, response.AvailabilityResponse{
			AvailabilityPercentage: availability,
		})
	}
}

func NewFleetHandler(logger *zap.Logger, sweeper sweep.Sweeper, repo history.Repository,
	fleet inventory.Fleet, concurrency int, perHostTimeout time.Duration) FleetHandler {
	return &fleetHandler{
		logger:         logger,
		sweeper:        sweeper,
		repo:           repo,
		fleet:          fleet,
		concurrency:    concurrency,
		perHostTimeout: perHostTimeout,
	}
}
