package handler

import (
	"alumnilink/internal/app/ai"
	"alumnilink/internal/app/chat"
	"alumnilink/internal/app/directory"
	"alumnilink/internal/app/storage"
	"alumnilink/internal/app/store"
	"alumnilink/internal/configs"
	"alumnilink/internal/pkg/metrics"
)

// AppDeps carries the services the handlers depend on.
type AppDeps struct {
	Config    *configs.AppConfig
	Store     *store.Store
	Directory *directory.Service
	Messaging *chat.Service
	Hub       *chat.Hub
	AI        *ai.Service
	Metrics   *metrics.Collector

	// Avatars is nil when object storage is not configured.
	Avatars *storage.Avatars
}
