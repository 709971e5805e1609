package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ysh4me/bibliotheque-interactif/internal/drag"
	"github.com/ysh4me/bibliotheque-interactif/internal/entities"
)

// DragController exposes the single drag session of the board.
type DragController struct {
	coordinator *drag.Coordinator
	view        *drag.Recorder
	logger      *zap.Logger
}

func NewDragController(coordinator *drag.Coordinator, view *drag.Recorder, logger *zap.Logger) *DragController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DragController{coordinator: coordinator, view: view, logger: logger}
}

type DragStartRequest struct {
	BookID string            `json:"bookId" binding:"required"`
	Source entities.ColumnID `json:"source" binding:"required"`
	Index  int               `json:"index"`
}

type DragOverRequest struct {
	Column   entities.ColumnID `json:"column" binding:"required"`
	Elements []drag.Element    `json:"elements"`
	PointerY float64           `json:"pointerY"`
}

type DragDropRequest struct {
	Target entities.ColumnID `json:"target" binding:"required"`
}

// DragStateResponse is the polled state of the drag session.
type DragStateResponse struct {
	State   drag.State         `json:"state"`
	Gesture *drag.Gesture      `json:"gesture,omitempty"`
	View    drag.RecorderState `json:"view"`
}

// State handles GET /api/drag
func (dc *DragController) State(c *gin.Context) {
	c.JSON(http.StatusOK, dc.state())
}

// Start handles POST /api/drag/start
func (dc *DragController) Start(c *gin.Context) {
	var req DragStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "bookId and source are required")
		return
	}

	placeholder, err := dc.coordinator.Start(req.BookID, req.Source, req.Index)
	if err != nil {
		respondError(c, dc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"placeholder": placeholder})
}

// Over handles POST /api/drag/over
func (dc *DragController) Over(c *gin.Context) {
	var req DragOverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "column is required")
		return
	}

	placeholder, err := dc.coordinator.Over(req.Column, req.Elements, req.PointerY)
	if err != nil {
		respondError(c, dc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"placeholder": placeholder})
}

// Drop handles POST /api/drag/drop
// A rejected move is still a completed gesture: the response carries the
// store failure next to the reconciled state.
func (dc *DragController) Drop(c *gin.Context) {
	var req DragDropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "target is required")
		return
	}

	outcome, err := dc.coordinator.Drop(req.Target)
	if err != nil {
		respondError(c, dc.logger, err)
		return
	}
	if outcome.Err != nil {
		respondError(c, dc.logger, outcome.Err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"committed": outcome.Committed,
		"book":      outcome.Book,
		"drag":      dc.state(),
	})
}

// Cancel handles POST /api/drag/cancel
func (dc *DragController) Cancel(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cancelled": dc.coordinator.Cancel()})
}

func (dc *DragController) state() DragStateResponse {
	response := DragStateResponse{State: dc.coordinator.State()}
	if gesture, ok := dc.coordinator.Current(); ok {
		response.Gesture = &gesture
	}
	if dc.view != nil {
		response.View = dc.view.State()
	}
	return response
}
