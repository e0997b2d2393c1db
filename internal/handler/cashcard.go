package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ferrara94/CashCard-Microservice/internal/middleware"
	"github.com/ferrara94/CashCard-Microservice/internal/models"
	"github.com/ferrara94/CashCard-Microservice/internal/repository"

	"github.com/gin-gonic/gin"
)

// CashCardHandler serves the five card operations. Every store access is
// scoped to the authenticated caller; a card owned by someone else is
// reported exactly like a card that does not exist.
type CashCardHandler struct {
	Repo            repository.CashCardRepository
	DefaultPageSize int
}

func NewCashCardHandler(repo repository.CashCardRepository, defaultPageSize int) *CashCardHandler {
	if defaultPageSize <= 0 {
		defaultPageSize = 20
	}
	return &CashCardHandler{
		Repo:            repo,
		DefaultPageSize: defaultPageSize,
	}
}

type createCardReq struct {
	ID     int64   `json:"id"`
	Amount float64 `json:"amount"`
}

type updateCardReq struct {
	Amount float64 `json:"amount"`
}

func cardID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// FindByID returns the caller's card with the given id, or 404.
func (h *CashCardHandler) FindByID(c *gin.Context) {
	principal := middleware.CurrentPrincipal(c)
	if principal == nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	id, ok := cardID(c)
	if !ok {
		return
	}

	card, err := h.Repo.FindByIDAndOwner(id, principal.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.Status(http.StatusNotFound)
		} else {
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.JSON(http.StatusOK, card)
}

// List returns one page of the caller's cards. Supported query parameters:
// page (zero-based), size, sort=field,dir. Unspecified sort is ascending
// by amount.
func (h *CashCardHandler) List(c *gin.Context) {
	principal := middleware.CurrentPrincipal(c)
	if principal == nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(h.DefaultPageSize)))
	if size <= 0 || size > 100 {
		size = h.DefaultPageSize
	}

	sortField, sortDesc := parseSort(c.Query("sort"))

	cards, err := h.Repo.FindByOwner(principal.Username, repository.Page{
		Number:    page,
		Size:      size,
		SortField: sortField,
		SortDesc:  sortDesc,
	})
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, cards)
}

// parseSort splits a "field,dir" sort parameter. An empty or unknown value
// yields the default (amount ascending); the repository whitelists the
// field itself.
func parseSort(raw string) (field string, desc bool) {
	if raw == "" {
		return "amount", false
	}
	parts := strings.SplitN(raw, ",", 2)
	field = strings.TrimSpace(parts[0])
	if len(parts) == 2 && strings.EqualFold(strings.TrimSpace(parts[1]), "desc") {
		desc = true
	}
	return field, desc
}

// Create stores a new card for the caller. Any owner value in the body is
// ignored; the authenticated identity is stamped on the row. Replies 201
// with a Location header and no body.
func (h *CashCardHandler) Create(c *gin.Context) {
	principal := middleware.CurrentPrincipal(c)
	if principal == nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	var req createCardReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	card := models.CashCard{
		ID:     req.ID,
		Amount: req.Amount,
		Owner:  principal.Username,
	}
	if err := h.Repo.Create(&card); err != nil {
		// includes id collisions with an existing row; the store's
		// uniqueness error is not translated
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Location", fmt.Sprintf("/cashcards/%d", card.ID))
	c.Status(http.StatusCreated)
}

// Update replaces the amount of the caller's card. Id and owner are carried
// over from the stored row, never from the request.
func (h *CashCardHandler) Update(c *gin.Context) {
	principal := middleware.CurrentPrincipal(c)
	if principal == nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	id, ok := cardID(c)
	if !ok {
		return
	}

	var req updateCardReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	card, err := h.Repo.FindByIDAndOwner(id, principal.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.Status(http.StatusNotFound)
		} else {
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	card.Amount = req.Amount
	if err := h.Repo.Save(card); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete removes the caller's card with the given id. A missing card and a
// card owned by someone else both answer 404.
func (h *CashCardHandler) Delete(c *gin.Context) {
	principal := middleware.CurrentPrincipal(c)
	if principal == nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	id, ok := cardID(c)
	if !ok {
		return
	}

	exists, err := h.Repo.ExistsByIDAndOwner(id, principal.Username)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if !exists {
		c.Status(http.StatusNotFound)
		return
	}

	if err := h.Repo.DeleteByIDAndOwner(id, principal.Username); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.Status(http.StatusNotFound)
		} else {
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.Status(http.StatusNoContent)
}
