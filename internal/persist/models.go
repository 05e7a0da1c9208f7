// Package persist stores analysis facts across runs in a sqlite database
// via GORM, grounded on the teacher's generated-model convention: plain
// structs tagged with gorm and json, one table per fact kind, sharing
// the teacher's "primaryKey, unique" idiom for identity columns.
package persist

import "time"

// FileRecord is one analyzed source file.
type FileRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Path      string    `gorm:"unique;not null" json:"path"`
	Hash      string    `gorm:"index" json:"hash"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SymbolRecord mirrors one types.Symbol fact.
type SymbolRecord struct {
	ID                      uint   `gorm:"primaryKey" json:"id"`
	FileID                  uint   `gorm:"index;not null" json:"fileId"`
	LocalID                 int    `json:"localId"`
	Name                    string `gorm:"index" json:"name"`
	Kind                    uint8  `json:"kind"`
	RangeStart              int    `json:"rangeStart"`
	RangeEnd                int    `json:"rangeEnd"`
	DeclaredInScope         uint8  `json:"declaredInScope"`
	TypeText                string `json:"typeText"`
	HasBody                 bool   `json:"hasBody"`
	ParamCount              int    `json:"paramCount"`
	IsForwardDeclaration    bool   `json:"isForwardDeclaration"`
	ParentSymbol            int    `json:"parentSymbol"`
	StatementsBeforeInBlock int    `json:"statementsBeforeInBlock"`

	File FileRecord `gorm:"foreignKey:FileID" json:"-"`
}

// IncludeRecord mirrors one types.Include fact.
type IncludeRecord struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	FileID         uint   `gorm:"index;not null" json:"fileId"`
	TargetPathText string `json:"targetPathText"`
	ResolvedPath   string `json:"resolvedPath"`
	Angled         bool   `json:"angled"`
	RangeStart     int    `json:"rangeStart"`
	RangeEnd       int    `json:"rangeEnd"`

	File FileRecord `gorm:"foreignKey:FileID" json:"-"`
}

// ReferenceRecord mirrors one types.Reference fact.
type ReferenceRecord struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	FileID         uint   `gorm:"index;not null" json:"fileId"`
	RangeStart     int    `json:"rangeStart"`
	RangeEnd       int    `json:"rangeEnd"`
	ReferencedName string `gorm:"index" json:"referencedName"`
	Context        uint8  `json:"context"`

	File FileRecord `gorm:"foreignKey:FileID" json:"-"`
}

// VisibilityEdgeRecord mirrors one types.VisibilityEdge fact: FromFile
// can see symbols defined in ToFile via a (possibly transitive) #include.
type VisibilityEdgeRecord struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	FromFileID uint `gorm:"index;not null" json:"fromFileId"`
	ToFileID   uint `gorm:"index;not null" json:"toFileId"`

	FromFile FileRecord `gorm:"foreignKey:FromFileID" json:"-"`
	ToFile   FileRecord `gorm:"foreignKey:ToFileID" json:"-"`
}

// IssueRecord persists one lint finding, so `analyze --since` style
// invocations can diff against the prior run without re-parsing files
// that have not changed.
type IssueRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FileID       uint      `gorm:"index;not null" json:"fileId"`
	RuleID       string    `gorm:"index" json:"ruleId"`
	Severity     uint8     `json:"severity"`
	RangeStart   int       `json:"rangeStart"`
	RangeEnd     int       `json:"rangeEnd"`
	Message      string    `json:"message"`
	AutoFixable  bool      `json:"autoFixable"`
	RecordedAt   time.Time `json:"recordedAt"`

	File FileRecord `gorm:"foreignKey:FileID" json:"-"`
}
