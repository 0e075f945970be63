package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/huynhanx03/go-fairqueue/pkg/common/http/response"
	"github.com/huynhanx03/go-fairqueue/pkg/datastructs/queue"
	"github.com/huynhanx03/go-fairqueue/pkg/workerpool"
)

// StatsSource is what the stats endpoints read from.
type StatsSource interface {
	Queue() queue.Observer
	Stats() workerpool.Stats
}

// counters is the body of GET /queue/counters.
type counters struct {
	Size    int64  `json:"size"`
	Waiting int64  `json:"waiting"`
	Visited uint64 `json:"visited"`
}

// NewRouter builds the stats router.
//
//	GET /healthz         liveness
//	GET /queue/counters  size, waiting, visited
//	GET /queue/stats     full pool and queue snapshot
func NewRouter(mode string, src StatsSource) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", Health(src))
	r.GET("/queue/counters", Counters(src))
	r.GET("/queue/stats", Stats(src))
	return r
}

// Health reports whether the queue still accepts work.
func Health(src StatsSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !src.Queue().IsActive() {
			response.ErrorResponse(c, response.CodeUnavailable, queue.ErrClosed)
			return
		}
		response.SuccessResponse(c, response.CodeSuccess, gin.H{"status": "ok"})
	}
}

// Counters serves the three queue counters.
func Counters(src StatsSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := src.Queue()
		response.SuccessResponse(c, response.CodeSuccess, counters{
			Size:    q.Size(),
			Waiting: q.Waiting(),
			Visited: q.Visited(),
		})
	}
}

// Stats serves the full snapshot.
func Stats(src StatsSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		response.SuccessResponse(c, response.CodeSuccess, src.Stats())
	}
}
