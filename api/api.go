package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ledgerline/wmsbridge"
)

// Api is the operator surface of the pipeline: inspect queue entries and
// inbound files, re-queue failures and trigger runs. Record creation itself
// comes from the ERP, not from here.
type Api struct {
	bridge *wmsbridge.Bridge
	router *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router

	router.POST("/queue-entries", a.EnqueueRecord)
	router.GET("/queue-entries/:id", a.GetQueueEntry)
	router.GET("/queue-entries", a.ListQueueEntries)
	router.POST("/queue-entries/:id/requeue", a.RequeueEntry)
	router.POST("/queue-entries/requeue-stale", a.RequeueStale)
	router.POST("/sync-flag", a.SetSyncFlag)

	router.POST("/exports/:topic/run", a.RunExport)

	router.GET("/inbound-files", a.ListInboundFiles)
	router.GET("/inbound-files/:id", a.GetInboundFile)
	router.GET("/inbound-files/:id/prep-lines", a.ListPrepLines)
	router.POST("/inbound-files/fetch", a.FetchRemoteFiles)
	router.POST("/inbound-files/:id/parse", a.ParseInboundFile)
	router.POST("/inbound-files/:id/materialize", a.MaterializeInboundFile)

	return a.router
}

func NewAPI(b *wmsbridge.Bridge) *Api {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{bridge: b, router: r}
}
