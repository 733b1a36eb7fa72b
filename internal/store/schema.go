package store

import "fmt"

// baseSchema creates the four physical tables named in spec plus a small
// metadata table recording the detected embedding dimension. The embedding
// vec0 virtual tables are created lazily, once the first embedding's
// dimension is known (see ensureVectorTables), because vec0 bakes the vector
// width into its CREATE VIRTUAL TABLE statement.
const baseSchema = `
CREATE TABLE IF NOT EXISTS store_meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS entities (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    description TEXT,
    attributes TEXT,
    created_at INTEGER NOT NULL,
    last_modified INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entities_type ON entities(type);
CREATE INDEX IF NOT EXISTS idx_entities_last_modified ON entities(last_modified);

CREATE TABLE IF NOT EXISTS relationships (
    id TEXT PRIMARY KEY,
    source_id TEXT NOT NULL,
    target_id TEXT NOT NULL,
    type TEXT NOT NULL,
    weight REAL NOT NULL DEFAULT 1.0,
    metadata TEXT,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_relationships_source ON relationships(source_id);
CREATE INDEX IF NOT EXISTS idx_relationships_target ON relationships(target_id);
CREATE INDEX IF NOT EXISTS idx_relationships_type ON relationships(type);

CREATE TABLE IF NOT EXISTS communities (
    id TEXT PRIMARY KEY,
    level INTEGER NOT NULL,
    summary TEXT NOT NULL DEFAULT '',
    modularity REAL NOT NULL DEFAULT 0,
    parent_id TEXT,
    child_ids TEXT
);
CREATE INDEX IF NOT EXISTS idx_communities_level ON communities(level);

CREATE TABLE IF NOT EXISTS entity_communities (
    entity_id TEXT NOT NULL,
    community_id TEXT NOT NULL,
    PRIMARY KEY (entity_id, community_id)
);
CREATE INDEX IF NOT EXISTS idx_entity_communities_community ON entity_communities(community_id);
`

// vectorTableSchema returns the DDL for the two vec0 virtual tables that
// store embeddings, once D is known.
func vectorTableSchema(dim int) string {
	return fmt.Sprintf(`
CREATE VIRTUAL TABLE IF NOT EXISTS entity_vectors USING vec0(
    entity_id TEXT PRIMARY KEY,
    embedding float[%d]
);
CREATE VIRTUAL TABLE IF NOT EXISTS community_vectors USING vec0(
    community_id TEXT PRIMARY KEY,
    embedding float[%d]
);
`, dim, dim)
}
