package graph

import (
	"context"
	"fmt"

	"chatgraph/backend/pkg/logger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Repository handles all Neo4j database operations
type Repository struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewRepository creates a new graph repository
func NewRepository(driver neo4j.DriverWithContext) *Repository {
	return &Repository{
		driver: driver,
		logger: logger.Get(),
	}
}

// Close closes the Neo4j driver connection
func (r *Repository) Close() error {
	return r.driver.Close(context.Background())
}

// EnsureIndexes creates the lookup indexes the search operations rely on.
// Safe to call on every startup.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	indexes := []string{
		`CREATE INDEX entity_name_type IF NOT EXISTS FOR (e:Entity) ON (e.name, e.entity_type)`,
		`CREATE INDEX entity_name IF NOT EXISTS FOR (e:Entity) ON (e.name)`,
		`CREATE INDEX message_id IF NOT EXISTS FOR (m:Message) ON (m.id)`,
		`CREATE INDEX thread_topic IF NOT EXISTS FOR (t:Thread) ON (t.topic)`,
	}

	for _, stmt := range indexes {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	r.logger.Info("Graph indexes ensured", zap.Int("count", len(indexes)))
	return nil
}

// ClearAll detach-deletes the entire graph. This is the only destructive
// operation exposed; it backs the conversation-reset path.
func (r *Repository) ClearAll(ctx context.Context) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.Run(ctx, `MATCH (n) DETACH DELETE n`, nil)
	if err != nil {
		return fmt.Errorf("failed to clear graph: %w", err)
	}

	r.logger.Info("Graph cleared")
	return nil
}
