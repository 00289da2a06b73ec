// Package mockprovider is a local stand-in for the OpenRouter API used for
// manual testing and integration tests. Failure modes are selected by the
// question text or by query parameters:
//
//	/fail <code>   respond with that HTTP status and an error body
//	/empty         200 with an empty choices list
//	/nocontent     200 with a choice whose message has no content
//	/malformed     200 with a body that is not JSON
//	?delay=<ms>    sleep before answering
package mockprovider

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model" binding:"required"`
	Messages []chatMessage `json:"messages" binding:"required"`
}

// Catalogue is served from GET /api/v1/models.
var Catalogue = []gin.H{
	{"id": "tngtech/deepseek-r1t2-chimera:free", "name": "DeepSeek R1T2 Chimera (free)", "context_length": 163840, "pricing": gin.H{"prompt": "0", "completion": "0"}},
	{"id": "mistralai/mistral-7b-instruct", "name": "Mistral 7B Instruct", "context_length": 32768, "pricing": gin.H{"prompt": "0.000000028", "completion": "0.000000054"}},
	{"id": "qwen/qwen-7b-chat", "name": "Qwen 7B Chat", "context_length": 8192, "pricing": gin.H{"prompt": "0", "completion": "0"}},
}

// NewRouter returns the mock API. Requests must carry a bearer token; its
// value is not checked.
func NewRouter(logger *log.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := r.Group("/api/v1", requireBearer())
	api.POST("/chat/completions", handleChatCompletion(logger))
	api.GET("/models", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": Catalogue})
	})
	return r
}

func requestLogger(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(log.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		}).Info("Request completed")
	}
}

func requireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "No auth credentials found", "code": http.StatusUnauthorized},
			})
			return
		}
		c.Next()
	}
}

func handleChatCompletion(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ms, err := strconv.Atoi(c.Query("delay")); err == nil && ms > 0 {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		}

		var req chatRequest
		if err := c.ShouldBindJSON(&req); err != nil || len(req.Messages) == 0 {
			msg := "messages must not be empty"
			if err != nil {
				msg = err.Error()
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": msg, "code": http.StatusBadRequest}})
			return
		}
		prompt := strings.TrimSpace(req.Messages[len(req.Messages)-1].Content)

		fields := log.Fields{"model": req.Model, "prompt_len": len(prompt)}
		switch directive, arg, _ := strings.Cut(prompt, " "); directive {
		case "/fail":
			code, err := strconv.Atoi(strings.TrimSpace(arg))
			if err != nil || code < 400 || code > 599 {
				code = http.StatusInternalServerError
			}
			logger.WithFields(fields).Warnf("Simulating failure %d", code)
			c.JSON(code, gin.H{"error": gin.H{"message": fmt.Sprintf("Simulated error %d", code), "code": code}})
			return
		case "/empty":
			c.JSON(http.StatusOK, gin.H{"id": completionID(), "model": req.Model, "choices": []gin.H{}})
			return
		case "/nocontent":
			c.JSON(http.StatusOK, gin.H{"id": completionID(), "model": req.Model, "choices": []gin.H{{"index": 0, "message": gin.H{"role": "assistant"}}}})
			return
		case "/malformed":
			c.Data(http.StatusOK, "application/json", []byte(`{"choices":[{"message":`))
			return
		}

		logger.WithFields(fields).Debug("Returning normal response")
		answer := "You asked: " + prompt
		c.JSON(http.StatusOK, gin.H{
			"id":      completionID(),
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   req.Model,
			"choices": []gin.H{{
				"index":         0,
				"message":       gin.H{"role": "assistant", "content": answer},
				"finish_reason": "stop",
			}},
			"usage": gin.H{
				"prompt_tokens":     len(strings.Fields(prompt)),
				"completion_tokens": len(strings.Fields(answer)),
				"total_tokens":      len(strings.Fields(prompt)) + len(strings.Fields(answer)),
			},
		})
	}
}

func completionID() string {
	return fmt.Sprintf("gen-mock-%d", time.Now().UnixNano())
}
