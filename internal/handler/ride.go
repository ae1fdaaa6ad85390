package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"boleia/internal/domain"
	"boleia/internal/service"
)

// RideHandler handles HTTP requests for ride requests and their lifecycle.
type RideHandler struct {
	rideService *service.RideService
	lifecycle   *service.LifecycleService
	settlement  *service.SettlementService
	chatService *service.ChatService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(
	rideService *service.RideService,
	lifecycle *service.LifecycleService,
	settlement *service.SettlementService,
	chatService *service.ChatService,
) *RideHandler {
	return &RideHandler{
		rideService: rideService,
		lifecycle:   lifecycle,
		settlement:  settlement,
		chatService: chatService,
	}
}

// LocationPayload is a point in HTTP request/response bodies.
type LocationPayload struct {
	Address string  `json:"address,omitempty"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// CreateRideRequest is the HTTP request body for submitting a ride request.
type CreateRideRequest struct {
	PassengerID string           `json:"passenger_id"`
	ServiceType string           `json:"service_type"`
	Origin      LocationPayload  `json:"origin"`
	Destination *LocationPayload `json:"destination,omitempty"`
}

// RideResponse is the HTTP representation of a ride request.
type RideResponse struct {
	ID           string           `json:"id"`
	PassengerID  string           `json:"passenger_id"`
	ServiceType  string           `json:"service_type"`
	Origin       LocationPayload  `json:"origin"`
	Destination  *LocationPayload `json:"destination,omitempty"`
	Status       string           `json:"status"`
	DriverID     string           `json:"driver_id,omitempty"`
	VehicleID    string           `json:"vehicle_id,omitempty"`
	FinalFare    float64          `json:"final_fare,omitempty"`
	CreatedAt    string           `json:"created_at"`
	CancelledAt  string           `json:"cancelled_at,omitempty"`
	CancelReason string           `json:"cancel_reason,omitempty"`
}

// CreateRideResponse is the HTTP response for submitting a ride request.
type CreateRideResponse struct {
	Ride           RideResponse `json:"ride"`
	DriverAssigned bool         `json:"driver_assigned"`
	DriverID       string       `json:"driver_id,omitempty"`
	VehicleID      string       `json:"vehicle_id,omitempty"`
}

func toRideResponse(ride *domain.RideRequest) RideResponse {
	resp := RideResponse{
		ID:          ride.ID,
		PassengerID: ride.PassengerID,
		ServiceType: string(ride.ServiceType),
		Origin: LocationPayload{
			Address: ride.Origin.Address,
			Lat:     ride.Origin.Lat,
			Lng:     ride.Origin.Lng,
		},
		Status:       string(ride.Status),
		DriverID:     ride.DriverID,
		VehicleID:    ride.VehicleID,
		FinalFare:    ride.FinalFare,
		CreatedAt:    ride.CreatedAt.Format(time.RFC3339),
		CancelReason: ride.CancelReason,
	}
	if ride.Destination != nil {
		resp.Destination = &LocationPayload{
			Address: ride.Destination.Address,
			Lat:     ride.Destination.Lat,
			Lng:     ride.Destination.Lng,
		}
	}
	if !ride.CancelledAt.IsZero() {
		resp.CancelledAt = ride.CancelledAt.Format(time.RFC3339)
	}
	return resp
}

// CreateRide handles POST /v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	submit := service.SubmitRideRequest{
		PassengerID: req.PassengerID,
		ServiceType: domain.ServiceType(req.ServiceType),
		Origin: domain.Location{
			Address: req.Origin.Address,
			Lat:     req.Origin.Lat,
			Lng:     req.Origin.Lng,
		},
	}
	if req.Destination != nil {
		submit.Destination = &domain.Location{
			Address: req.Destination.Address,
			Lat:     req.Destination.Lat,
			Lng:     req.Destination.Lng,
		}
	}

	result, err := h.rideService.SubmitRideRequest(c.Request.Context(), submit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, CreateRideResponse{
		Ride:           toRideResponse(result.Ride),
		DriverAssigned: result.DriverAssigned,
		DriverID:       result.DriverID,
		VehicleID:      result.VehicleID,
	})
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.rideService.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// ListRides handles GET /v1/rides
func (h *RideHandler) ListRides(c *gin.Context) {
	rides, err := h.rideService.GetAllRides(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]RideResponse, 0, len(rides))
	for _, ride := range rides {
		responses = append(responses, toRideResponse(ride))
	}
	respondJSON(c, http.StatusOK, gin.H{"rides": responses, "count": len(responses)})
}

// AdvanceRideRequest is the HTTP request body for advancing a ride.
type AdvanceRideRequest struct {
	ActorID string  `json:"actor_id"`
	Signal  string  `json:"signal"` // ARRIVED, START, FINISH, CANCEL
	Fare    float64 `json:"fare,omitempty"`
	Reason  string  `json:"reason,omitempty"`
}

// AdvanceRide handles POST /v1/rides/:id/advance
func (h *RideHandler) AdvanceRide(c *gin.Context) {
	var req AdvanceRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.lifecycle.AdvanceRide(c.Request.Context(), service.AdvanceRequest{
		RideID:  c.Param("id"),
		ActorID: req.ActorID,
		Signal:  domain.Signal(req.Signal),
		Fare:    req.Fare,
		Reason:  req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// CancelRideRequest is the HTTP request body for cancelling a ride.
type CancelRideRequest struct {
	ActorID string `json:"actor_id"`
	Reason  string `json:"reason,omitempty"`
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *RideHandler) CancelRide(c *gin.Context) {
	var req CancelRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.lifecycle.AdvanceRide(c.Request.Context(), service.AdvanceRequest{
		RideID:  c.Param("id"),
		ActorID: req.ActorID,
		Signal:  domain.SignalCancel,
		Reason:  req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// SettleRideRequest is the HTTP request body for settling a ride.
type SettleRideRequest struct {
	DriverID string  `json:"driver_id"`
	Fare     float64 `json:"fare"`
}

// ReceiptResponse is the HTTP response for a settled ride.
type ReceiptResponse struct {
	RideID      string   `json:"ride_id"`
	PassengerID string   `json:"passenger_id"`
	DriverID    string   `json:"driver_id"`
	Fare        float64  `json:"fare"`
	DriverShare float64  `json:"driver_share"`
	PlatformFee float64  `json:"platform_fee"`
	EntryIDs    []string `json:"entry_ids"`
	SettledAt   string   `json:"settled_at"`
}

// SettleRide handles POST /v1/rides/:id/settle
func (h *RideHandler) SettleRide(c *gin.Context) {
	var req SettleRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	receipt, err := h.settlement.SettleTrip(c.Request.Context(), c.Param("id"), req.Fare, req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, ReceiptResponse{
		RideID:      receipt.RideID,
		PassengerID: receipt.PassengerID,
		DriverID:    receipt.DriverID,
		Fare:        receipt.Fare,
		DriverShare: receipt.DriverShare,
		PlatformFee: receipt.PlatformFee,
		EntryIDs:    receipt.EntryIDs,
		SettledAt:   receipt.SettledAt.Format(time.RFC3339),
	})
}

// SendMessageRequest is the HTTP request body for a chat message.
type SendMessageRequest struct {
	SenderID string `json:"sender_id"`
	Body     string `json:"body"`
}

// MessageResponse is the HTTP representation of a chat message.
type MessageResponse struct {
	ID       string `json:"id"`
	RideID   string `json:"ride_id"`
	SenderID string `json:"sender_id"`
	Body     string `json:"body"`
	SentAt   string `json:"sent_at"`
}

func toMessageResponse(msg *domain.ChatMessage) MessageResponse {
	return MessageResponse{
		ID:       msg.ID,
		RideID:   msg.RideID,
		SenderID: msg.SenderID,
		Body:     msg.Body,
		SentAt:   msg.SentAt.Format(time.RFC3339),
	}
}

// SendMessage handles POST /v1/rides/:id/messages
func (h *RideHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	msg, err := h.chatService.Send(c.Request.Context(), c.Param("id"), req.SenderID, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, toMessageResponse(msg))
}

// ListMessages handles GET /v1/rides/:id/messages
func (h *RideHandler) ListMessages(c *gin.Context) {
	messages, err := h.chatService.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		responses = append(responses, toMessageResponse(msg))
	}
	respondJSON(c, http.StatusOK, gin.H{"messages": responses, "count": len(responses)})
}
