package loans

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"biblio-backend/internal/platform/apperr"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// POST /loans (貸出)
	r.POST("/loans", h.BorrowBook)
	// POST /returns (返却・スコア確定)
	r.POST("/returns", h.ReturnBook)
	// GET /loans/:loan_ulid (個別参照)
	r.GET("/loans/:loan_ulid", h.GetLoanByULID)
}

// POST /loans
func (h *Handler) BorrowBook(c *gin.Context) {
	var req BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.CodeInvalidArgument, "user_id and book_id are required"))
		return
	}

	res, err := h.svc.BorrowBook(c.Request.Context(), req.UserID, req.BookID)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}

	c.Header("Location", "/loans/"+res.LoanULID)
	c.JSON(http.StatusCreated, res)
}

// POST /returns
func (h *Handler) ReturnBook(c *gin.Context) {
	var req ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.CodeInvalidArgument, "user_id, book_id and score are required"))
		return
	}

	res, err := h.svc.ReturnBook(c.Request.Context(), req.UserID, req.BookID, req.Score)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetLoanByULID(c *gin.Context) {
	res, err := h.svc.GetLoanByULID(c.Request.Context(), c.Param("loan_ulid"))
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}
