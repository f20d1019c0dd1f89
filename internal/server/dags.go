package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/airdraw/internal/dag"
	"github.com/kode4food/airdraw/internal/store"
	"github.com/kode4food/airdraw/pkg/api"
	"github.com/kode4food/airdraw/pkg/log"
)

// DAGSaved acknowledges a stored DAG
const DAGSaved = "DAG saved successfully"

var (
	ErrReadBody = errors.New("failed to read request body")
	ErrSaveDAG  = errors.New("failed to save DAG")
	ErrLoadDAG  = errors.New("failed to load DAG")
)

func (s *Server) saveDAG(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		errorJSON(c, http.StatusBadRequest,
			fmt.Sprintf("%s: %v", ErrReadBody, err),
		)
		return
	}

	w, err := dag.NormalizeJSON(body)
	if err != nil {
		s.metrics.RecordDAGSave(err)
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	err = s.store.Save(c.Request.Context(), w)
	s.metrics.RecordDAGSave(err)
	if err != nil {
		slog.Error("Failed to save DAG",
			log.DAGID(w.ID),
			log.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, api.ErrInvalidDAGID) {
			status = http.StatusBadRequest
		}
		errorJSON(c, status, fmt.Sprintf("%s: %v", ErrSaveDAG, err))
		return
	}

	slog.Info("DAG saved",
		log.DAGID(w.ID),
		slog.Int("tasks", len(w.Tasks)))
	c.JSON(http.StatusOK, api.MessageResponse{Message: DAGSaved})
}

func (s *Server) getDAG(c *gin.Context) {
	id := api.DAGID(c.Param("dagID"))

	doc, err := s.store.Load(c.Request.Context(), id)
	switch {
	case err == nil:
		c.Data(http.StatusOK, "application/json; charset=utf-8", doc)
	case errors.Is(err, api.ErrInvalidDAGID):
		errorJSON(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		errorJSON(c, http.StatusNotFound, err.Error())
	default:
		errorJSON(c, http.StatusInternalServerError,
			fmt.Sprintf("%s: %v", ErrLoadDAG, err),
		)
	}
}
