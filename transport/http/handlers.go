package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Yarielito06/Pearfect-Trading-App/adapters/builder"
	"github.com/Yarielito06/Pearfect-Trading-App/core"
	"github.com/Yarielito06/Pearfect-Trading-App/service"
)

const (
	msgNotAuthorized = "Not authorized with Pear Protocol. Click 'Authorize Pear Builder' first."
	msgNoAccessToken = "No access token"
	msgMarketData    = "Failed to fetch market data"
	msgUnknownVenue  = "Unknown error from Pear"
)

// Handlers contains HTTP handlers for the relay endpoints
type Handlers struct {
	relay    *service.RelayService
	approver *builder.Approver
}

// NewHandlers creates new relay handlers
func NewHandlers(relay *service.RelayService, approver *builder.Approver) *Handlers {
	return &Handlers{
		relay:    relay,
		approver: approver,
	}
}

type verifyRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
	Signature     string `json:"signature" binding:"required"`
	Timestamp     *int64 `json:"timestamp"`
}

type executeRequest struct {
	core.TradeIntent
	AccessToken string `json:"access_token"`
}

type closeRequest struct {
	PositionID  string `json:"position_id" binding:"required"`
	AccessToken string `json:"access_token"`
	Address     string `json:"address"`
}

// Health reports liveness and whether a default token is held.
func (h *Handlers) Health(c *gin.Context) {
	hasToken, expiresAt := h.relay.TokenStatus(c.Request.Context())

	resp := gin.H{
		"status":    "ok",
		"has_token": hasToken,
	}
	if !expiresAt.IsZero() {
		resp["token_expires_at"] = expiresAt.UTC()
	}

	c.JSON(http.StatusOK, resp)
}

// Message returns the venue's EIP-712 challenge for the wallet in the path.
func (h *Handlers) Message(c *gin.Context) {
	challenge, err := h.relay.SigningChallenge(c.Request.Context(), c.Param("address"))
	if err != nil {
		abortWithDetail(c, http.StatusInternalServerError, err, err.Error())
		return
	}

	c.Data(http.StatusOK, "application/json", challenge)
}

// Verify exchanges the wallet signature for venue tokens.
func (h *Handlers) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithDetail(c, http.StatusUnprocessableEntity, err, "invalid request: "+err.Error())
		return
	}

	result, err := h.relay.Login(c.Request.Context(), req.WalletAddress, req.Signature, req.Timestamp)
	if err != nil {
		abortWithDetail(c, http.StatusUnauthorized, err, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  result.Raw["accessToken"],
		"refresh_token": result.Raw["refreshToken"],
		"success":       true,
	})
}

// BuilderApproval returns the ApproveBuilderFee typed data to sign.
func (h *Handlers) BuilderApproval(c *gin.Context) {
	var nonce uint64
	if raw := c.Query("nonce"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			abortWithDetail(c, http.StatusUnprocessableEntity, err, "invalid nonce")
			return
		}
		nonce = n
	}

	approval, err := h.approver.Approval(nonce)
	if err != nil {
		abortWithDetail(c, http.StatusInternalServerError, err, err.Error())
		return
	}

	c.JSON(http.StatusOK, approval)
}

// Execute places a pair trade with the resolved bearer token.
func (h *Handlers) Execute(c *gin.Context) {
	var req executeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithDetail(c, http.StatusUnprocessableEntity, err, "invalid request: "+err.Error())
		return
	}

	result, err := h.relay.PlacePairTrade(c.Request.Context(), req.TradeIntent, req.AccessToken)
	if err != nil {
		var upstream *core.UpstreamError
		switch {
		case errors.Is(err, core.ErrUnauthorized):
			abortWithDetail(c, http.StatusUnauthorized, err, msgNotAuthorized)
		case errors.As(err, &upstream):
			msg := upstream.Message
			if msg == "" {
				msg = msgUnknownVenue
			}
			abortWithDetail(c, clientStatus(upstream.StatusCode), err, "Pear API Error: "+msg)
		default:
			abortWithDetail(c, http.StatusBadRequest, err, err.Error())
		}
		return
	}

	tradeID := result.OrderID
	if tradeID == "" {
		tradeID = "unknown"
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tradeId": tradeID,
		"data":    result.Raw,
	})
}

// Positions lists open positions, using the access_token query parameter
// when given.
func (h *Handlers) Positions(c *gin.Context) {
	positions, err := h.relay.ListPositions(c.Request.Context(), c.Query("address"), c.Query("access_token"))
	if err != nil {
		if errors.Is(err, core.ErrUnauthorized) {
			abortWithDetail(c, http.StatusUnauthorized, err, msgNoAccessToken)
			return
		}
		abortWithDetail(c, http.StatusInternalServerError, err, err.Error())
		return
	}

	c.Data(http.StatusOK, "application/json", positions)
}

// Close closes one position.
func (h *Handlers) Close(c *gin.Context) {
	var req closeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithDetail(c, http.StatusUnprocessableEntity, err, "invalid request: "+err.Error())
		return
	}

	result, err := h.relay.ClosePosition(c.Request.Context(), req.PositionID, req.Address, req.AccessToken)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrUnauthorized):
			abortWithDetail(c, http.StatusUnauthorized, err, msgNoAccessToken)
		case errors.Is(err, core.ErrCloseNotConfigured):
			abortWithDetail(c, http.StatusNotImplemented, err, "Close failed: "+err.Error())
		default:
			abortWithDetail(c, http.StatusBadRequest, err, "Close failed: "+err.Error())
		}
		return
	}

	c.Data(http.StatusOK, "application/json", result)
}

// Prices returns live prices for the supported tickers.
func (h *Handlers) Prices(c *gin.Context) {
	prices, err := h.relay.MarketPrices(c.Request.Context())
	if err != nil {
		abortWithDetail(c, http.StatusInternalServerError, err, msgMarketData)
		return
	}

	c.JSON(http.StatusOK, prices)
}

func abortWithDetail(c *gin.Context, status int, err error, detail string) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// clientStatus keeps venue error codes that are valid HTTP error statuses.
func clientStatus(code int) int {
	if code < 400 || code > 599 {
		return http.StatusBadGateway
	}
	return code
}
