package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperr "cardregistry/internal/errors"
	"cardregistry/internal/service"
)

// UploadFieldName is the multipart field carrying the batch file.
const UploadFieldName = "file"

// CardHandler handles card registration endpoints.
type CardHandler struct {
	cardService service.CardService
}

// NewCardHandler creates a new card handler.
func NewCardHandler(cardService service.CardService) *CardHandler {
	return &CardHandler{cardService: cardService}
}

// CreateCardRequest represents a manual card registration.
type CreateCardRequest struct {
	CardNumber string `json:"card_number" validate:"required"`
}

// GetByCardNumber godoc
// @Summary Look a card up by its number
// @Tags cards
// @Produce json
// @Security BearerAuth
// @Param number path string true "Card number"
// @Success 200 {object} Response{data=service.CardLookup}
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /cards/by-number/{number} [get]
func (h *CardHandler) GetByCardNumber(c echo.Context) error {
	lookup, err := h.cardService.GetByCardNumber(c.Request().Context(), c.Param("number"))
	if err != nil {
		return failure(c, err)
	}
	return success(c, http.StatusOK, lookup, "card found")
}

// Create godoc
// @Summary Register a card manually
// @Tags cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCardRequest true "Card number"
// @Success 201 {object} Response{data=model.Card}
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Router /cards [post]
func (h *CardHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return failure(c, err)
	}

	var req CreateCardRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Response{Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, Response{Message: err.Error()})
	}

	card, err := h.cardService.Create(c.Request().Context(), req.CardNumber, userID)
	if err != nil {
		return failure(c, err)
	}
	return success(c, http.StatusCreated, card, "card registered successfully")
}

// CreateFromFile godoc
// @Summary Register cards from a batch file
// @Tags cards
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Fixed-width batch file"
// @Success 200 {object} Response{data=service.BatchResult}
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Router /cards/file [post]
func (h *CardHandler) CreateFromFile(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return failure(c, err)
	}

	fh, err := c.FormFile(UploadFieldName)
	if err != nil || fh.Size == 0 {
		return failure(c, apperr.ErrInvalidFile)
	}

	file, err := fh.Open()
	if err != nil {
		return failure(c, err)
	}
	defer file.Close()

	result, err := h.cardService.CreateFromFile(c.Request().Context(), file, userID)
	if err != nil {
		return failure(c, err)
	}
	return success(c, http.StatusOK, result, result.Message())
}

// List godoc
// @Summary List the caller's cards
// @Tags cards
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]model.Card}
// @Failure 401 {object} Response
// @Router /cards [get]
func (h *CardHandler) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return failure(c, err)
	}

	cards, err := h.cardService.ListByOwner(c.Request().Context(), userID)
	if err != nil {
		return failure(c, err)
	}
	return success(c, http.StatusOK, cards, "cards listed")
}
