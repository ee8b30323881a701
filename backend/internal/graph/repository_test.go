package graph

import (
	"context"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// These tests require a running Neo4j instance at bolt://localhost:7687
// (user neo4j, password "password"); run with -short to skip them.

func TestRepository_UpsertEntityIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}
	defer driver.Close(ctx)

	repo := NewRepository(driver)
	name := "test-entity-" + time.Now().Format("20060102150405")

	// Clean up
	defer func() {
		session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
		defer session.Close(ctx)
		_, _ = session.Run(ctx, "MATCH (e:Entity {name: $name}) DETACH DELETE e", map[string]interface{}{"name": name})
	}()

	for i := 0; i < 3; i++ {
		ref, err := repo.UpsertEntity(ctx, name, EntityLocation)
		if err != nil {
			t.Fatalf("UpsertEntity failed on attempt %d: %v", i+1, err)
		}
		if ref.Name != name || ref.Type != EntityLocation {
			t.Errorf("Expected ref (%s, %s), got (%s, %s)", name, EntityLocation, ref.Name, ref.Type)
		}
	}

	// Same (name, type) three times must map to a single node
	if got := countEntities(ctx, t, driver, name); got != 1 {
		t.Errorf("Expected 1 node for repeated (name, type) upserts, got %d", got)
	}

	// A different type under the same name is a distinct node
	if _, err := repo.UpsertEntity(ctx, name, EntityActivity); err != nil {
		t.Fatalf("UpsertEntity with second type failed: %v", err)
	}
	if got := countEntities(ctx, t, driver, name); got != 2 {
		t.Errorf("Expected 2 nodes after second (name, type) pair, got %d", got)
	}
}

func TestRepository_SearchTwoHopReturnsBothEdges(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver, err := createTestDriver()
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}
	defer driver.Close(ctx)

	repo := NewRepository(driver)
	suffix := time.Now().Format("20060102150405")
	jake := "test-jake-" + suffix
	camping := "test-camping-" + suffix
	yosemite := "test-yosemite-" + suffix

	// Clean up
	defer func() {
		session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
		defer session.Close(ctx)
		_, _ = session.Run(ctx, "MATCH (e:Entity) WHERE e.name IN [$a, $b, $c] DETACH DELETE e",
			map[string]interface{}{"a": jake, "b": camping, "c": yosemite})
	}()

	ts := time.Now()
	edges := []Relationship{
		{
			From:      EntityRef{Name: jake, Type: EntityPerson},
			To:        EntityRef{Name: camping, Type: EntityActivity},
			Type:      "ENJOYS_ACTIVITY",
			Timestamp: ts,
		},
		{
			From:      EntityRef{Name: camping, Type: EntityActivity},
			To:        EntityRef{Name: yosemite, Type: EntityLocation},
			Type:      "WENT_TO",
			Timestamp: ts,
		},
	}
	for _, rel := range edges {
		if err := repo.CreateRelationship(ctx, rel); err != nil {
			t.Fatalf("CreateRelationship failed: %v", err)
		}
	}

	// The term matches only the far endpoint; both hops of the path must
	// still come back.
	triples, err := repo.SearchTwoHop(ctx, yosemite, time.Time{})
	if err != nil {
		t.Fatalf("SearchTwoHop failed: %v", err)
	}

	var sawFirstHop, sawSecondHop bool
	for _, triple := range triples {
		if triple.Entity1 == jake && triple.RelType == "ENJOYS_ACTIVITY" && triple.Entity2 == camping {
			sawFirstHop = true
		}
		if triple.Entity1 == camping && triple.RelType == "WENT_TO" && triple.Entity2 == yosemite {
			sawSecondHop = true
		}
	}
	if !sawFirstHop {
		t.Errorf("Expected first hop (%s)-[ENJOYS_ACTIVITY]->(%s) in results", jake, camping)
	}
	if !sawSecondHop {
		t.Errorf("Expected second hop (%s)-[WENT_TO]->(%s) in results", camping, yosemite)
	}
}

func countEntities(ctx context.Context, t *testing.T, driver neo4j.DriverWithContext, name string) int {
	t.Helper()
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, "MATCH (e:Entity {name: $name}) RETURN count(e) as count",
		map[string]interface{}{"name": name})
	if err != nil {
		t.Fatalf("Count query failed: %v", err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		t.Fatalf("Count query returned no record: %v", err)
	}
	val, _ := record.Get("count")
	count, _ := val.(int64)
	return int(count)
}

func createTestDriver() (neo4j.DriverWithContext, error) {
	uri := "bolt://localhost:7687"
	user := "neo4j"
	password := "password"

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, err
	}

	// Verify connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, err
	}

	return driver, nil
}
