package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"boleia/internal/domain"
	"boleia/internal/service"
)

// DriverHandler handles HTTP requests for drivers.
type DriverHandler struct {
	driverService *service.DriverService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService) *DriverHandler {
	return &DriverHandler{driverService: driverService}
}

// RegisterDriverRequest is the HTTP request body for driver registration.
type RegisterDriverRequest struct {
	FleetManagerID string `json:"fleet_manager_id,omitempty"`
}

// DriverResponse is the HTTP representation of a driver profile.
type DriverResponse struct {
	ID              string  `json:"id"`
	Status          string  `json:"status"`
	ActiveVehicleID string  `json:"active_vehicle_id,omitempty"`
	Rating          float64 `json:"rating"`
	FleetManagerID  string  `json:"fleet_manager_id,omitempty"`
}

func toDriverResponse(driver *domain.DriverProfile) DriverResponse {
	return DriverResponse{
		ID:              driver.ID,
		Status:          string(driver.Status),
		ActiveVehicleID: driver.ActiveVehicleID,
		Rating:          driver.Rating,
		FleetManagerID:  driver.FleetManagerID,
	}
}

// RegisterDriver handles POST /v1/drivers/register
func (h *DriverHandler) RegisterDriver(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	driver, err := h.driverService.RegisterDriver(c.Request.Context(), req.FleetManagerID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toDriverResponse(driver))
}

// GetDriver handles GET /v1/drivers/:id
func (h *DriverHandler) GetDriver(c *gin.Context) {
	driver, err := h.driverService.GetDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toDriverResponse(driver))
}

// RegisterVehicleRequest is the HTTP request body for vehicle registration.
type RegisterVehicleRequest struct {
	Status              string   `json:"status,omitempty"` // defaults to PENDING_APPROVAL
	AllowedServiceTypes []string `json:"allowed_service_types,omitempty"`
}

// VehicleResponse is the HTTP representation of a vehicle.
type VehicleResponse struct {
	ID                  string   `json:"id"`
	DriverID            string   `json:"driver_id"`
	Status              string   `json:"status"`
	AllowedServiceTypes []string `json:"allowed_service_types,omitempty"`
}

// RegisterVehicle handles POST /v1/drivers/:id/vehicles
func (h *DriverHandler) RegisterVehicle(c *gin.Context) {
	var req RegisterVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	status := domain.VehicleStatus(req.Status)
	if status == "" {
		status = domain.VehicleStatusPendingApproval
	}

	allowed := make([]domain.ServiceType, 0, len(req.AllowedServiceTypes))
	for _, s := range req.AllowedServiceTypes {
		serviceType := domain.ServiceType(s)
		if !domain.ValidServiceType(serviceType) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid service type: " + s})
			return
		}
		allowed = append(allowed, serviceType)
	}

	vehicle, err := h.driverService.RegisterVehicle(c.Request.Context(), c.Param("id"), status, allowed)
	if err != nil {
		respondError(c, err)
		return
	}

	types := make([]string, 0, len(vehicle.AllowedServiceTypes))
	for _, t := range vehicle.AllowedServiceTypes {
		types = append(types, string(t))
	}
	respondJSON(c, http.StatusCreated, VehicleResponse{
		ID:                  vehicle.ID,
		DriverID:            vehicle.DriverID,
		Status:              string(vehicle.Status),
		AllowedServiceTypes: types,
	})
}

// GoOnline handles POST /v1/drivers/:id/online
func (h *DriverHandler) GoOnline(c *gin.Context) {
	if err := h.driverService.GoOnline(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"status": string(domain.DriverStatusOnline)})
}

// GoOffline handles POST /v1/drivers/:id/offline
func (h *DriverHandler) GoOffline(c *gin.Context) {
	if err := h.driverService.GoOffline(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"status": string(domain.DriverStatusOffline)})
}

// UpdateLocationRequest is the HTTP request body for a position report.
type UpdateLocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UpdateLocation handles POST /v1/drivers/:id/location
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.driverService.ReportPosition(c.Request.Context(), c.Param("id"), req.Lat, req.Lng); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"message": "location updated"})
}
