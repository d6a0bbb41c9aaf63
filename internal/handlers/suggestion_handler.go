package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/RenatoMoratti/finance-app/internal/errors"
	"github.com/RenatoMoratti/finance-app/internal/services"
)

// SuggestionHandler handles category-suggestion requests.
type SuggestionHandler struct {
	suggester services.Suggester
}

// NewSuggestionHandler creates a new SuggestionHandler.
func NewSuggestionHandler(suggester services.Suggester) *SuggestionHandler {
	return &SuggestionHandler{suggester: suggester}
}

// SuggestRequest represents the request payload for running the suggester
type SuggestRequest struct {
	SimilarityThreshold *float64 `json:"similarity_threshold" binding:"omitempty,gt=0,lte=1"`
	Persist             bool     `json:"persist"`
}

// Suggest proposes user categories for unverified transactions, optionally
// persisting them where no classification exists yet.
func (h *SuggestionHandler) Suggest(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	threshold := services.DefaultSimilarityThreshold
	if req.SimilarityThreshold != nil {
		threshold = *req.SimilarityThreshold
	}

	result, err := h.suggester.Suggest(threshold, req.Persist)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
