package dashboard

import (
	"encoding/json"
	"log"

	"github.com/tmorel/cleansync/internal/model"
	"github.com/tmorel/cleansync/internal/report"
	syncsvc "github.com/tmorel/cleansync/internal/sync"
)

// Handler bridges synchronization-service hooks to dashboard broadcasts.
type Handler struct {
	server *Server
	logger *log.Logger
}

// NewHandler creates an event handler connected to a dashboard server.
func NewHandler(server *Server, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{server: server, logger: logger}
}

// Hooks returns sync service hooks that broadcast every mutation, load, and
// propagation outcome to connected clients.
func (h *Handler) Hooks() syncsvc.Hooks {
	return syncsvc.Hooks{
		OnMutation: func(c syncsvc.Collection, op syncsvc.Op, key string) {
			msgType := MessageTypeTaskUpdate
			if c == syncsvc.CollectionAreas {
				msgType = MessageTypeAreaUpdate
			}
			h.send(msgType, MutationData{
				Collection: string(c),
				Op:         string(op),
				Key:        key,
			})
		},
		OnPropagate: func(c syncsvc.Collection, op syncsvc.Op, key string, err error) {
			data := PropagationData{
				Collection: string(c),
				Op:         string(op),
				Key:        key,
				OK:         err == nil,
			}
			if err != nil {
				data.Error = err.Error()
			}
			h.send(MessageTypePropagation, data)
		},
		OnLoad: func(c syncsvc.Collection, source syncsvc.Source, count int) {
			h.send(MessageTypeLoad, LoadData{
				Collection: string(c),
				Source:     string(source),
				Count:      count,
			})
		},
	}
}

// BroadcastStats publishes summary counts for the given task collection.
func (h *Handler) BroadcastStats(tasks []model.Task) {
	stats := report.Summarize(tasks)

	byStatus := make(map[string]int, len(stats.ByStatus))
	for status, n := range stats.ByStatus {
		byStatus[string(status)] = n
	}

	h.send(MessageTypeStats, StatsData{
		Total:    stats.Total,
		ByStatus: byStatus,
		ByArea:   stats.ByArea,
	})
}

func (h *Handler) send(msgType MessageType, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		h.logger.Printf("Failed to marshal %s data: %v", msgType, err)
		return
	}
	h.server.Broadcast(Message{Type: msgType, Data: payload})
}
