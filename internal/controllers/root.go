package controllers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mentorhub/bookings/internal/model"
)

// ServiceInfo describes this service for the health check endpoints.
type ServiceInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
}

// RootHandler handles the root endpoint, which acts as a health check.
func (s Server) RootHandler(ctx echo.Context) error {
	return model.Success(ctx, ServiceInfo{Service: s.Service, Version: s.Version}, http.StatusOK)
}

// V1RootHandler handles the root of the version 1 API.
func (s Server) V1RootHandler(ctx echo.Context) error {
	info := ServiceInfo{Service: fmt.Sprintf("%s v1", s.Service), Version: s.Version}
	return model.Success(ctx, info, http.StatusOK)
}
