package ellie

// Model levels accepted by the API.
const (
	LevelConceptual = "conceptual"
	LevelLogical    = "logical"
	LevelPhysical   = "physical"
)

// Model is the wire form of an Ellie data model, matching the import
// and export endpoints.
type Model struct {
	Name          string         `json:"name,omitempty"`
	Level         string         `json:"level,omitempty"`
	FolderID      int            `json:"folderId,omitempty"`
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
}

type Entity struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Attributes []Attribute `json:"attributes"`
}

type Attribute struct {
	Name     string            `json:"name"`
	Metadata AttributeMetadata `json:"metadata"`
}

// AttributeMetadata keys follow the Ellie import format. DataType
// carries the native source type, not the semantic bucket.
type AttributeMetadata struct {
	PK       bool   `json:"PK"`
	FK       bool   `json:"FK"`
	DataType string `json:"DATA TYPE"`
}

// Relationship connects two entities. Ellie draws from the referenced
// one end to the referencing many end, so SourceEntity is the end a
// foreign key points at.
type Relationship struct {
	SourceEntity Endpoint `json:"sourceEntity"`
	TargetEntity Endpoint `json:"targetEntity"`
	Description  []string `json:"description"`
}

type Endpoint struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	StartType      string   `json:"startType,omitempty"`
	EndType        string   `json:"endType,omitempty"`
	AttributeNames []string `json:"attributeNames"`
}
