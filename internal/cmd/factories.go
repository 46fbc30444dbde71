package cmd

import (
	adaptergit "obra/internal/adapters/git"
	adapterstorage "obra/internal/adapters/storage"
	adaptersystem "obra/internal/adapters/system"
	"obra/internal/config"
	"obra/internal/ports"
	"obra/internal/services"
)

// Container holds all dependencies for the application
type Container struct {
	EpicService     *services.EpicService
	SessionService  *services.SessionService
	TrackerService  *services.TrackerService
	WorkflowService *services.WorkflowService

	// Internal - for cleanup only
	store ports.Store
}

// NewContainer creates a new Container with all dependencies wired
func NewContainer(dbPath string) (*Container, error) {
	if dbPath == "" {
		dbPath = config.GetDBPath()
	}

	store, err := adapterstorage.NewSQLiteRepository(dbPath)
	if err != nil {
		return nil, err
	}

	gitRepo := adaptergit.NewCLIClient()
	clock := adaptersystem.NewClock()
	ids := adaptersystem.NewIDGenerator()

	resolver := services.NewBranchResolver(gitRepo, store, clock)

	return &Container{
		EpicService:     services.NewEpicService(store, gitRepo, resolver, clock),
		SessionService:  services.NewSessionService(store, clock, ids),
		TrackerService:  services.NewTrackerService(store, clock, ids),
		WorkflowService: services.NewWorkflowService(store, gitRepo, resolver, clock, ids),
		store:           store,
	}, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}
