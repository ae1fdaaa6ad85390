package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"boleia/internal/domain"
	"boleia/internal/service"
)

// UserHandler handles HTTP requests for users and their wallets.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRequest is the HTTP request body for user registration.
type RegisterRequest struct {
	Name           string  `json:"name"`
	Phone          string  `json:"phone"`
	OpeningBalance float64 `json:"opening_balance,omitempty"`
}

// UserResponse is the HTTP response for user data.
type UserResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Phone         string  `json:"phone"`
	WalletBalance float64 `json:"wallet_balance"`
}

// Register handles POST /v1/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Name == "" || req.Phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and phone are required"})
		return
	}

	user, err := h.userService.RegisterUser(c.Request.Context(), req.Name, req.Phone, req.OpeningBalance)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, UserResponse{
		ID:            user.ID,
		Name:          user.Name,
		Phone:         user.Phone,
		WalletBalance: user.WalletBalance,
	})
}

// GetUser handles GET /v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, UserResponse{
		ID:            user.ID,
		Name:          user.Name,
		Phone:         user.Phone,
		WalletBalance: user.WalletBalance,
	})
}

// GetWallet handles GET /v1/users/:id/wallet
func (h *UserHandler) GetWallet(c *gin.Context) {
	balance, err := h.userService.WalletBalance(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"user_id": c.Param("id"), "balance": balance})
}

// TransactionResponse is the HTTP representation of a ledger entry.
type TransactionResponse struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	Amount    float64 `json:"amount"`
	Type      string  `json:"type"`
	RideID    string  `json:"ride_id"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
}

func toTransactionResponse(entry *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:        entry.ID,
		UserID:    entry.UserID,
		Amount:    entry.Amount,
		Type:      string(entry.Type),
		RideID:    entry.RideID,
		Status:    string(entry.Status),
		CreatedAt: entry.CreatedAt.Format(time.RFC3339),
	}
}

// ListTransactions handles GET /v1/users/:id/transactions
func (h *UserHandler) ListTransactions(c *gin.Context) {
	entries, err := h.userService.Transactions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]TransactionResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, toTransactionResponse(entry))
	}
	respondJSON(c, http.StatusOK, gin.H{"transactions": responses, "count": len(responses)})
}
