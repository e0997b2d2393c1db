package handler

import (
	"net/http"

	"github.com/ferrara94/CashCard-Microservice/internal/gateway"

	"github.com/gin-gonic/gin"
)

// GatewayHandler forwards the /userservice routes to the remote user
// service. Pure pass-through: no retry, no timeout beyond the request
// context, remote errors surface as 502 with the call's error string.
type GatewayHandler struct {
	Client gateway.UserServiceClient
}

func NewGatewayHandler(client gateway.UserServiceClient) *GatewayHandler {
	return &GatewayHandler{Client: client}
}

func (h *GatewayHandler) GetUser(c *gin.Context) {
	resp, err := h.Client.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GatewayHandler) CreateUser(c *gin.Context) {
	resp, err := h.Client.CreateUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}
