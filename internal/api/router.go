package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/NewsDigest/internal/storage"
)

type Server struct {
	store   *storage.Store
	trigger func()
}

// NewServer 创建 API 服务；store 可以为 nil（未配置 Postgres 时归档接口返回 503）
func NewServer(store *storage.Store, trigger func()) *Server {
	return &Server{store: store, trigger: trigger}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/articles", s.listArticles)
		v1.POST("/harvest", s.runHarvest)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listArticles(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"code":    "no_archive",
			"message": "article archive not configured",
		})
		return
	}

	source := c.Query("source")
	date := c.Query("date")

	limitStr := c.DefaultQuery("limit", "20")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 20
	}

	items, err := s.store.ListArticles(source, limit, date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    items,
	})
}

// runHarvest 异步触发一轮采集，立即返回
func (s *Server) runHarvest(c *gin.Context) {
	if s.trigger == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"code":    "no_trigger",
			"message": "harvest trigger not configured",
		})
		return
	}
	go s.trigger()
	c.JSON(http.StatusAccepted, gin.H{
		"code":    "ok",
		"message": "harvest started",
	})
}
