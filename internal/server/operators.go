package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/airdraw/internal/operator"
	"github.com/kode4food/airdraw/pkg/api"
)

// OperatorNotFound is reported when no parameters could be described
const OperatorNotFound = "Operator not found"

var (
	ErrInvalidStrategy = errors.New("invalid describe strategy")
	ErrRefreshCatalog  = errors.New("failed to refresh operators")
)

func (s *Server) getAllOperators(c *gin.Context) {
	cat, errs := s.catalog.Get()
	c.JSON(http.StatusOK, api.AllOperatorsResponse{
		Operators: cat,
		Errors:    errs,
	})
}

func (s *Server) getOperatorStatus(c *gin.Context) {
	cat, errs := s.catalog.Get()
	c.JSON(http.StatusOK, api.NewOperatorsStatusResponse(cat, errs))
}

func (s *Server) getOperatorParams(c *gin.Context) {
	module := c.Param("module")
	class := c.Param("operator")

	strategy, err := operator.ParseStrategy(c.Query("strategy"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest,
			fmt.Sprintf("%s: %v", ErrInvalidStrategy, err),
		)
		return
	}

	ctx := c.Request.Context()
	if s.config.ReflectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ReflectTimeout)
		defer cancel()
	}

	sig := s.describers.Describe(ctx, strategy, module, class)
	if sig.IsEmpty() {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: OperatorNotFound})
		return
	}
	c.JSON(http.StatusOK, sig)
}

func (s *Server) refreshOperators(c *gin.Context) {
	snap, err := s.catalog.Refresh(c.Request.Context())
	if err != nil {
		errorJSON(c, http.StatusServiceUnavailable,
			fmt.Sprintf("%s: %v", ErrRefreshCatalog, err),
		)
		return
	}
	c.JSON(http.StatusOK, api.NewOperatorsStatusResponse(
		snap.Catalog, snap.Errors,
	))
}
