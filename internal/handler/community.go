package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListPosts(c *gin.Context) {
	posts := h.community.Posts()
	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
		"count": len(posts),
	})
}

func (h *Handler) CreatePost(c *gin.Context) {
	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.community.CreatePost(req.Text, req.Image)
	if err != nil {
		h.writeError(c, "create post", err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *Handler) LikePost(c *gin.Context) {
	post, err := h.community.Like(c.Param("id"))
	if err != nil {
		h.writeError(c, "like post", err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *Handler) CommentPost(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.community.Comment(c.Param("id"), req.Text)
	if err != nil {
		h.writeError(c, "comment post", err)
		return
	}
	c.JSON(http.StatusCreated, post)
}
