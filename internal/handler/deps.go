package handler

import (
	"acaragraph/internal/app/chat"
	"acaragraph/internal/app/storage"
	"acaragraph/internal/app/store"
	"acaragraph/internal/configs"
)

// AppDeps bundles the shared dependencies injected into every handler.
// StorageService is nil when object storage is not configured; media routes
// are not mounted in that case.
type AppDeps struct {
	Config         *configs.AppConfig
	Store          *store.Store
	Hub            *chat.Hub
	Pipeline       *chat.Pipeline
	StorageService storage.Service
}
