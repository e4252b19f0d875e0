package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Tables created by ent's migrator. global_sequence is managed by the
// sequencer instead.
var (
	llmEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "timestamp_ms", Type: field.TypeInt64},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "batch_id", Type: field.TypeString, Default: ""},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	llmEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    llmEventsColumns,
		PrimaryKey: []*schema.Column{llmEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_sequence", Unique: true, Columns: []*schema.Column{llmEventsColumns[1]}},
			{Name: "llmrequestevent_batch_id", Columns: []*schema.Column{llmEventsColumns[6]}},
		},
	}

	batchLogsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "timestamp_ms", Type: field.TypeInt64},
		{Name: "mode", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "questions_generated", Type: field.TypeInt},
		{Name: "total_time", Type: field.TypeFloat64},
		{Name: "record", Type: field.TypeString, Size: 2147483647},
	}
	batchLogsTable = &schema.Table{
		Name:       "batch_logs",
		Columns:    batchLogsColumns,
		PrimaryKey: []*schema.Column{batchLogsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "batchlog_sequence", Unique: true, Columns: []*schema.Column{batchLogsColumns[1]}},
			{Name: "batchlog_timestamp_ms", Columns: []*schema.Column{batchLogsColumns[2]}},
		},
	}

	tables = []*schema.Table{llmEventsTable, batchLogsTable}
)
