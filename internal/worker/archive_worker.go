package worker

import (
	"github.com/spec-kit/ticket-synth/internal/service"
)

// StartArchiveWorker registers archive handlers when a backend is configured.
func StartArchiveWorker(archiveService *service.ArchiveService) {
	if archiveService == nil || !archiveService.Enabled() {
		return
	}
	archiveService.RegisterHandlers()
}
