package models

// ColumnType is the typed representation of a column in the clean layer
type ColumnType int

const (
	ColumnText ColumnType = iota
	ColumnInteger
	ColumnReal
)

// Lineage columns attached to every staged row
const (
	ColRunDate    = "_run_date"
	ColSourceFile = "_source_file"
	ColIngestedAt = "_ingested_at"
	ColBatchID    = "_batch_id"
)

// LineageColumns lists the lineage columns in staging order
var LineageColumns = []string{ColRunDate, ColSourceFile, ColIngestedAt, ColBatchID}

// IsLineageColumn reports whether name is reserved for lineage
func IsLineageColumn(name string) bool {
	for _, c := range LineageColumns {
		if c == name {
			return true
		}
	}
	return false
}

// Column describes one business column of an entity
type Column struct {
	Name string
	Type ColumnType
}

// Entity describes one of the five source files and its tables
type Entity struct {
	Name    string
	Key     string
	Columns []Column
}

// StagingTable returns the append-only staging table name
func (e Entity) StagingTable() string {
	return "stg_" + e.Name
}

// CleanTable returns the deduplicated table name
func (e Entity) CleanTable() string {
	return "clean_" + e.Name
}

// FileName returns the expected file name in a run date directory
func (e Entity) FileName() string {
	return e.Name + ".csv"
}

// ColumnNames returns the business column names in declared order
func (e Entity) ColumnNames() []string {
	names := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		names[i] = c.Name
	}
	return names
}

// NumericColumns returns the columns that are cast in the clean layer
func (e Entity) NumericColumns() []Column {
	var out []Column
	for _, c := range e.Columns {
		if c.Type != ColumnText {
			out = append(out, c)
		}
	}
	return out
}

var (
	Applications = Entity{
		Name: "applications",
		Key:  "application_id",
		Columns: []Column{
			{Name: "application_id", Type: ColumnText},
			{Name: "scorecard_version", Type: ColumnText},
			{Name: "decision", Type: ColumnText},
			{Name: "bureau_score", Type: ColumnInteger},
			{Name: "product", Type: ColumnText},
			{Name: "channel", Type: ColumnText},
			{Name: "segment", Type: ColumnText},
		},
	}

	Accounts = Entity{
		Name: "accounts",
		Key:  "account_id",
		Columns: []Column{
			{Name: "account_id", Type: ColumnText},
			{Name: "application_id", Type: ColumnText},
			{Name: "activation_date", Type: ColumnText},
		},
	}

	Transactions = Entity{
		Name: "transactions",
		Key:  "transaction_id",
		Columns: []Column{
			{Name: "transaction_id", Type: ColumnText},
			{Name: "account_id", Type: ColumnText},
			{Name: "transaction_date", Type: ColumnText},
			{Name: "amount", Type: ColumnReal},
		},
	}

	Payments = Entity{
		Name: "payments",
		Key:  "payment_id",
		Columns: []Column{
			{Name: "payment_id", Type: ColumnText},
			{Name: "account_id", Type: ColumnText},
			{Name: "payment_date", Type: ColumnText},
			{Name: "amount", Type: ColumnReal},
		},
	}

	Delinquency = Entity{
		Name: "delinquency",
		Key:  "account_id",
		Columns: []Column{
			{Name: "account_id", Type: ColumnText},
			{Name: "days_past_due", Type: ColumnInteger},
			{Name: "default_flag", Type: ColumnInteger},
		},
	}
)

// Entities lists every entity in load order
var Entities = []Entity{Applications, Accounts, Transactions, Payments, Delinquency}

// EntityByName looks up an entity by its file stem
func EntityByName(name string) (Entity, bool) {
	for _, e := range Entities {
		if e.Name == name {
			return e, true
		}
	}
	return Entity{}, false
}
