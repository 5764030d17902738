package main

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"putransform/internal/monitor"
	"putransform/internal/store"
	"putransform/internal/transform"
	"putransform/pkg/utils"
)

func main() {
	// a missing .env is fine; the environment may already be set
	_ = godotenv.Load()

	logger := utils.Logger()
	defer logger.Sync()

	srv := &server{
		logger:   logger,
		apiKey:   os.Getenv("API_KEY"),
		metrics:  monitor.New(),
		gatherer: prometheus.DefaultGatherer,
	}
	if path := os.Getenv("STORE_PATH"); path != "" {
		runs, err := store.Open(path)
		if err != nil { logger.Fatal("Failed to open run store", zap.Error(err)) }
		defer runs.Close()
		srv.runs = runs
		logger.Info("Recording runs", zap.String("store", path))
	}

	port := os.Getenv("PORT")
	if port == "" { port = "8080" }
	logger.Info("Listening", zap.String("port", port))
	if err := newRouter(srv).Run(":" + port); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}

type server struct {
	logger   *zap.Logger
	apiKey   string
	metrics  *monitor.Metrics
	gatherer prometheus.Gatherer
	runs     *store.Store
}

func newRouter(s *server) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/menu", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"menu": transform.DefaultMenu()}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/")
	api.Use(apiKeyMiddleware(s.apiKey))
	api.POST("/transform", s.countRequests, s.handleTransform)
	if s.runs != nil {
		api.GET("/runs", s.handleRecent)
		api.GET("/runs/:id", s.handleRun)
	}
	return r
}

func apiKeyMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" { c.Next(); return }
		if c.GetHeader("X-API-Key") != key {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func (s *server) countRequests(c *gin.Context) {
	c.Next()
	s.metrics.Requests.WithLabelValues(strconv.Itoa(c.Writer.Status())).Inc()
}

type transformReq struct {
	Features [][]float64    `json:"features" binding:"required,min=2,dive,required,min=1"`
	Labels   []int          `json:"labels" binding:"required,min=2,dive,oneof=0 1"`
	Seed     int64          `json:"seed"`
	Sizes    map[string]int `json:"sizes" binding:"omitempty,dive,gte=1,lte=5000"`
}

type candidateResp struct {
	Name    string  `json:"name"`
	Trainer string  `json:"trainer"`
	AUC     float64 `json:"auc_pu"`
}

type transformResp struct {
	RunID      uint64          `json:"run_id,omitempty"`
	Transform  string          `json:"transform"`
	AUC        float64         `json:"auc_pu"`
	Scores     []*float64      `json:"scores"`
	Candidates []candidateResp `json:"candidates"`
}

func (s *server) handleTransform(c *gin.Context) {
	var req transformReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Features) != len(req.Labels) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "features and labels differ in length"})
		return
	}

	menu := transform.DefaultMenu()
	for i := range menu {
		if n, ok := req.Sizes[menu[i].Name]; ok { menu[i].Size = n }
	}
	s.metrics.InFlight.Inc()
	rep, err := transform.NewSelector(
		transform.WithSeed(req.Seed),
		transform.WithMenu(menu),
		transform.WithLogger(s.logger),
		transform.WithProgress(s.metrics.Observe),
	).Run(c.Request.Context(), req.Features, req.Labels)
	s.metrics.InFlight.Dec()
	s.metrics.Finished(rep, err)
	if err != nil {
		s.logger.Warn("Transform request failed", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	resp := transformResp{Transform: rep.Best, AUC: rep.AUC, Scores: store.Nullable(rep.Scores)}
	for _, cand := range rep.Candidates {
		resp.Candidates = append(resp.Candidates, candidateResp{Name: cand.Name, Trainer: string(cand.Trainer), AUC: cand.AUC})
	}
	if s.runs != nil {
		id, err := s.runs.Save(store.NewRun("api", req.Seed, req.Features, rep))
		if err != nil {
			s.logger.Warn("Failed to record run", zap.Error(err))
		} else {
			resp.RunID = id
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *server) handleRecent(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	runs, err := s.runs.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *server) handleRun(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}
	run, err := s.runs.Get(id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}
