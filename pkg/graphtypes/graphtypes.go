// Package graphtypes holds the shared data model for the knowledge graph:
// entities, relationships, communities, and the closed type taxonomy. Every
// other package (the store, the extractor, the link predictor, the detector,
// the summarizer, and both query engines) depends on this one vocabulary
// instead of redeclaring it.
package graphtypes

// EntityType is the closed set of entity kinds the store and extractors
// recognize. Unlike RelationType, this set is not open-ended: an unrecognized
// type tag is normalized away by the extractor before it reaches the store.
type EntityType string

const (
	TypePerson       EntityType = "PERSON"
	TypeOrganization EntityType = "ORGANIZATION"
	TypeLocation     EntityType = "LOCATION"
	TypeEvent        EntityType = "EVENT"
	TypeDate         EntityType = "DATE"
	TypePhoto        EntityType = "PHOTO"
	TypeDocument     EntityType = "DOCUMENT"
	TypeNote         EntityType = "NOTE"
	TypePhone        EntityType = "PHONE"
	TypeTopic        EntityType = "TOPIC"
	TypeProject      EntityType = "PROJECT"
	TypeSelf         EntityType = "SELF"
)

// AllEntityTypes lists every recognized entity type, in the order prompts
// should present them.
var AllEntityTypes = []EntityType{
	TypePerson, TypeOrganization, TypeLocation, TypeEvent, TypeDate,
	TypePhoto, TypeDocument, TypeNote, TypePhone, TypeTopic, TypeProject, TypeSelf,
}

// IsValidEntityType reports whether s (already uppercased) names a recognized
// entity type.
func IsValidEntityType(s string) bool {
	for _, t := range AllEntityTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

// Relation type tags. This taxonomy is open: the LLM extractor may produce
// types outside this list and they are stored as-is (uppercased,
// underscore-normalized); these constants are the ones other components
// (link predictor, direct extractor, NL->Cypher heuristics) rely on by name.
const (
	RelWorksAt              = "WORKS_AT"
	RelKnows                = "KNOWS"
	RelColleagueOf          = "COLLEAGUE_OF"
	RelAttendedBy           = "ATTENDED_BY"
	RelLocatedIn            = "LOCATED_IN"
	RelPartOf               = "PART_OF"
	RelCreatedBy            = "CREATED_BY"
	RelSharedWith           = "SHARED_WITH"
	RelMentionedIn          = "MENTIONED_IN"
	RelRelatedTo            = "RELATED_TO"
	RelMentionedWith        = "MENTIONED_WITH"
	RelTemporallyProximate  = "TEMPORALLY_PROXIMATE"
	RelTaggedWith           = "TAGGED_WITH"
	RelTakenAt              = "TAKEN_AT"
	RelTakenOn              = "TAKEN_ON"
	RelPicturedIn           = "PICTURED_IN"
	RelHasEvent             = "HAS_EVENT"
	RelOwnsDocument         = "OWNS_DOCUMENT"
	RelHasPhoto             = "HAS_PHOTO"
	RelMadeCall             = "MADE_CALL"
	RelWroteNote            = "WROTE_NOTE"
)

// SelfEntityID is the fixed id of the singleton "Self" entity representing
// the device user. Created on first indexing run.
const SelfEntityID = "you_central_node"

// DataFamily names the source-record family an item belongs to; used to pick
// the direct extractor variant and the Self-linking relation type.
type DataFamily string

const (
	FamilyContact  DataFamily = "contact"
	FamilyEvent    DataFamily = "calendar_event"
	FamilyPhoto    DataFamily = "photo"
	FamilyCall     DataFamily = "phone_call"
	FamilyDocument DataFamily = "document"
	FamilyNote     DataFamily = "note"
)

// SelfRelationFor returns the relation type emitted from the Self entity to
// the primary entity of an item in family f.
func SelfRelationFor(f DataFamily) string {
	switch f {
	case FamilyContact:
		return RelKnows
	case FamilyEvent:
		return RelHasEvent
	case FamilyPhoto:
		return RelHasPhoto
	case FamilyCall:
		return RelMadeCall
	case FamilyDocument:
		return RelOwnsDocument
	case FamilyNote:
		return RelWroteNote
	default:
		return RelRelatedTo
	}
}

// Entity is a node in the knowledge graph.
type Entity struct {
	ID           string
	Name         string
	Type         EntityType
	Description  string
	Attributes   map[string]string
	Embedding    []float32
	CreatedAt    int64
	LastModified int64
}

// Relationship is a directed edge between two entities, treated as
// undirected by community detection but preserving source->target ordering
// everywhere else.
type Relationship struct {
	ID         string
	SourceID   string
	TargetID   string
	Type       string
	Weight     float64
	Metadata   map[string]string
	CreatedAt  int64
}

// Community is a set of entities grouped by the detector, with an optional
// summary and embedding filled in afterward.
type Community struct {
	ID         string
	Level      int
	Summary    string
	Embedding  []float32
	MemberIDs  []string
	Modularity float64
	ParentID   string
	ChildIDs   []string
}

// EntityCommunity is an (entity, community) membership row; an entity may
// belong to several communities across levels.
type EntityCommunity struct {
	EntityID    string
	CommunityID string
}

// DeriveEntityID computes the stable, deterministic id for an entity from its
// type and display name: lower(type) + "_" + slug(lower(name)), where slug
// replaces every run of non [a-z0-9] characters with a single underscore and
// trims leading/trailing underscores.
func DeriveEntityID(entityType EntityType, name string) string {
	return string(toSnake(string(entityType))) + "_" + slug(name)
}

// DeriveRelationshipID computes the stable id for a relationship:
// <source>_<type>_<target>.
func DeriveRelationshipID(sourceID, relType, targetID string) string {
	return sourceID + "_" + relType + "_" + targetID
}

// DeriveCommunityID computes the id for a community at a given level with a
// given seed (typically the lowest member entity id or an aggregation index).
func DeriveCommunityID(level int, seed string) string {
	return "community_" + itoa(level) + "_" + seed
}
