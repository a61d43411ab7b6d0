package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marrfa-chat/internal/kb"
	"marrfa-chat/internal/model"
	"marrfa-chat/internal/nlp"
	"marrfa-chat/internal/service"
)

// Version is the reported service version, overridable at build time.
var Version = "dev"

// ChatHandler handles chat-related HTTP requests
type ChatHandler struct {
	chatService *service.ChatService
	classifier  *nlp.Classifier
	index       *kb.Index
	aiEnabled   bool
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService, classifier *nlp.Classifier, index *kb.Index, aiEnabled bool) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		classifier:  classifier,
		index:       index,
		aiEnabled:   aiEnabled,
	}
}

// Chat handles POST /api/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	resp := h.chatService.Handle(c.Request.Context(), &req)
	c.JSON(http.StatusOK, resp)
}

// Health handles GET /health
func (h *ChatHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"kb_ready":   h.index.Enabled(),
		"kb_chunks":  h.index.Len(),
		"ai_enabled": h.aiEnabled,
	})
}

// Version handles GET /version
func (h *ChatHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": Version})
}

// DebugIntent handles GET /api/debug-intent
func (h *ChatHandler) DebugIntent(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No query provided"})
		return
	}

	result := h.classifier.Classify(c.Request.Context(), query)
	c.JSON(http.StatusOK, gin.H{
		"query":  query,
		"intent": result.Intent,
		"method": result.Method,
	})
}

// DebugKB handles GET /api/debug-kb
func (h *ChatHandler) DebugKB(c *gin.Context) {
	titles := map[string]int{}
	for _, chunk := range h.index.Chunks() {
		titles[chunk.Title]++
	}

	c.JSON(http.StatusOK, gin.H{
		"total_chunks": h.index.Len(),
		"enabled":      h.index.Enabled(),
		"titles":       titles,
	})
}
