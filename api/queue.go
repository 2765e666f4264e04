/*
Copyright 2025 Ledgerline Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	model2 "github.com/ledgerline/wmsbridge/api/model"
	"github.com/ledgerline/wmsbridge/model"
)

func (a Api) EnqueueRecord(c *gin.Context) {
	var req model2.EnqueueRecord
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	status := req.Status
	if status == "" {
		status = model.StatusReady
	}

	entry, err := a.bridge.EnqueueRecord(c.Request.Context(), model.Topic(req.Topic), req.RecordType, req.RecordID, status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (a Api) GetQueueEntry(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	entry, err := a.bridge.GetQueueEntry(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (a Api) ListQueueEntries(c *gin.Context) {
	topic, err := model.ParseTopic(c.Query("topic"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status := c.DefaultQuery("status", model.StatusReady)

	entries, err := a.bridge.ListQueueEntries(c.Request.Context(), topic, status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (a Api) RequeueEntry(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	if err := a.bridge.RequeueEntry(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "entry requeued"})
}

func (a Api) RequeueStale(c *gin.Context) {
	var req model2.RequeueStale
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	count, err := a.bridge.RequeueStale(c.Request.Context(), model.Topic(req.Topic), time.Duration(req.OlderThanMinutes)*time.Minute)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requeued": count})
}

func (a Api) SetSyncFlag(c *gin.Context) {
	var req model2.SetSyncFlag
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	entry, err := a.bridge.SetRecordSyncFlag(c.Request.Context(), model.Topic(req.Topic), req.RecordType, req.RecordID, req.Ready)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if entry == nil {
		c.JSON(http.StatusOK, gin.H{"message": "no open entry"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (a Api) RunExport(c *gin.Context) {
	topicParam, passed := c.Params.Get("topic")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topic is required. pass topic in the route /:topic"})
		return
	}
	topic, err := model.ParseTopic(topicParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := a.bridge.RunExport(c.Request.Context(), topic)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}
