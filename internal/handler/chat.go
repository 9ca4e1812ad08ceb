package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) ListSessions(c *gin.Context) {
	active, err := h.chat.Active()
	if err != nil {
		h.writeError(c, "list chats", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sessions":  h.chat.Sessions(),
		"active_id": active.ID,
	})
}

func (h *Handler) CreateSession(c *gin.Context) {
	session, err := h.chat.CreateSession()
	if err != nil {
		h.writeError(c, "create chat", err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *Handler) SelectSession(c *gin.Context) {
	session, err := h.chat.SelectSession(c.Param("id"))
	if err != nil {
		h.writeError(c, "select chat", err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// DeleteSession responds with the session that is active afterwards
func (h *Handler) DeleteSession(c *gin.Context) {
	active, err := h.chat.DeleteSession(c.Param("id"))
	if err != nil {
		h.writeError(c, "delete chat", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": active})
}

// SendMessage streams the reply as server-sent events: one "chunk" event
// per fragment, then "done" with the stored message or "error".
func (h *Handler) SendMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.chat.SendMessage(c.Request.Context(), c.Param("id"), req.Text, func(chunk string) {
		c.SSEvent("chunk", chunk)
		c.Writer.Flush()
	})
	if err != nil {
		if !c.Writer.Written() {
			h.writeError(c, "send message", err)
			return
		}
		h.logger.Warn("Chat stream interrupted", zap.String("session_id", c.Param("id")), zap.Error(err))
		c.SSEvent("error", errorBody(err))
		c.Writer.Flush()
		return
	}

	c.SSEvent("done", reply)
	c.Writer.Flush()
}
