package types

// EntityPairRequest asks for the dependency path between two mentions.
type EntityPairRequest struct {
	Subject     string `json:"subject"`
	Object      string `json:"object"`
	Relation    string `json:"relation,omitempty"`
	SubjectType string `json:"subject_type,omitempty"`
	ObjectType  string `json:"object_type,omitempty"`
}
