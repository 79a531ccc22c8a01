package core

// ColumnSetting is a flag or valued setting of a column.
// Settings print in declaration order of the constants.
type ColumnSetting int

const (
	ColumnPrimaryKey ColumnSetting = iota
	ColumnNotNull
	ColumnUnique
	ColumnIncrement
	ColumnDefault
)

// ColumnSettings lists all column settings in print order.
var ColumnSettings = []ColumnSetting{ColumnPrimaryKey, ColumnNotNull, ColumnUnique, ColumnIncrement, ColumnDefault}

func (s ColumnSetting) String() string {
	switch s {
	case ColumnPrimaryKey:
		return "primary key"
	case ColumnNotNull:
		return "not null"
	case ColumnUnique:
		return "unique"
	case ColumnIncrement:
		return "increment"
	case ColumnDefault:
		return "default"
	}
	return "unknown"
}

// ValueKind records how a default value was written so it can be printed back.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueNumber
	ValueBoolean
	ValueExpression
)

// IndexSetting is a setting of an index.
type IndexSetting int

const (
	IndexType IndexSetting = iota
	IndexName
	IndexUnique
	IndexPK
)

// IndexSettings lists all index settings in print order.
var IndexSettings = []IndexSetting{IndexType, IndexName, IndexUnique, IndexPK}

func (s IndexSetting) String() string {
	switch s {
	case IndexType:
		return "type"
	case IndexName:
		return "name"
	case IndexUnique:
		return "unique"
	case IndexPK:
		return "pk"
	}
	return "unknown"
}

// TableSetting is a setting of a table or partial.
type TableSetting int

const (
	TableHeaderColor TableSetting = iota
)

// TableSettings lists all table settings in print order.
var TableSettings = []TableSetting{TableHeaderColor}

func (s TableSetting) String() string {
	if s == TableHeaderColor {
		return "headercolor"
	}
	return "unknown"
}

// RelationshipSetting is a setting of a relationship.
type RelationshipSetting int

const (
	RelationshipDelete RelationshipSetting = iota
	RelationshipUpdate
	RelationshipColor
)

// RelationshipSettings lists all relationship settings in print order.
var RelationshipSettings = []RelationshipSetting{RelationshipDelete, RelationshipUpdate, RelationshipColor}

func (s RelationshipSetting) String() string {
	switch s {
	case RelationshipDelete:
		return "delete"
	case RelationshipUpdate:
		return "update"
	case RelationshipColor:
		return "color"
	}
	return "unknown"
}

// RelationKind is the cardinality symbol of a relationship.
type RelationKind int

const (
	OneToMany  RelationKind = iota // <
	ManyToOne                      // >
	OneToOne                       // -
	ManyToMany                     // <>
)

// ParseRelationKind maps a relation symbol to its kind.
func ParseRelationKind(symbol string) (RelationKind, bool) {
	switch symbol {
	case "<":
		return OneToMany, true
	case ">":
		return ManyToOne, true
	case "-":
		return OneToOne, true
	case "<>":
		return ManyToMany, true
	}
	return 0, false
}

// Symbol returns the notation symbol of the relation kind.
func (k RelationKind) Symbol() string {
	switch k {
	case OneToMany:
		return "<"
	case ManyToOne:
		return ">"
	case OneToOne:
		return "-"
	case ManyToMany:
		return "<>"
	}
	return "?"
}

func (k RelationKind) String() string {
	switch k {
	case OneToMany:
		return "one-to-many"
	case ManyToOne:
		return "many-to-one"
	case OneToOne:
		return "one-to-one"
	case ManyToMany:
		return "many-to-many"
	}
	return "unknown"
}
