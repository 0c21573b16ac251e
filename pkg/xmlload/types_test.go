package xmlload_test

import (
	"errors"
	"testing"

	"github.com/vvka-141/xmlload/pkg/xmlload"
)

func TestRunConfig_Validate(t *testing.T) {
	valid := func() xmlload.RunConfig {
		return xmlload.RunConfig{
			SourcePath:       "./datasets",
			DatabaseName:     "stackoverflow",
			ConnectionString: "postgresql://localhost:5432/postgres",
			BatchSize:        10000,
		}
	}

	tests := []struct {
		name      string
		mutate    func(c *xmlload.RunConfig)
		wantError bool
	}{
		{name: "valid resume config", mutate: func(c *xmlload.RunConfig) {}},
		{name: "valid single table", mutate: func(c *xmlload.RunConfig) { c.Tables = []string{"votes"} }},
		{name: "valid rebuild with force", mutate: func(c *xmlload.RunConfig) { c.Rebuild = true; c.Force = true }},
		{name: "missing source path", mutate: func(c *xmlload.RunConfig) { c.SourcePath = "" }, wantError: true},
		{name: "missing database name", mutate: func(c *xmlload.RunConfig) { c.DatabaseName = "" }, wantError: true},
		{name: "missing connection string", mutate: func(c *xmlload.RunConfig) { c.ConnectionString = "" }, wantError: true},
		{name: "zero batch size", mutate: func(c *xmlload.RunConfig) { c.BatchSize = 0 }, wantError: true},
		{name: "negative batch size", mutate: func(c *xmlload.RunConfig) { c.BatchSize = -5 }, wantError: true},
		{name: "force without rebuild", mutate: func(c *xmlload.RunConfig) { c.Force = true }, wantError: true},
		{name: "rebuild with table selection", mutate: func(c *xmlload.RunConfig) { c.Rebuild = true; c.Tables = []string{"votes"} }, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantError {
				if err == nil {
					t.Fatal("Expected validation error, got nil")
				}
				if !errors.Is(err, xmlload.ErrInvalidConfig) {
					t.Errorf("Expected ErrInvalidConfig, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestRunConfig_ValidateReportsAllProblems(t *testing.T) {
	cfg := xmlload.RunConfig{}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected error for empty config")
	}

	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		t.Fatalf("Expected joined error, got %T", err)
	}
	if n := len(joined.Unwrap()); n != 4 {
		t.Errorf("Expected 4 problems, got %d: %v", n, err)
	}
}

func TestRunConfig_Mode(t *testing.T) {
	cfg := xmlload.RunConfig{Rebuild: true}
	if cfg.Mode() != xmlload.ModeRebuild {
		t.Errorf("Expected rebuild mode, got %s", cfg.Mode())
	}
	cfg.Rebuild = false
	if cfg.Mode() != xmlload.ModeResume {
		t.Errorf("Expected resume mode, got %s", cfg.Mode())
	}
}

func TestTableDefinition_Validate(t *testing.T) {
	votes := xmlload.TableDefinition{
		Name: "votes",
		Columns: []xmlload.ColumnSpec{
			{Name: "Id", Type: xmlload.ColumnInteger, PrimaryKey: true},
			{Name: "PostId", Type: xmlload.ColumnInteger},
			{Name: "VoteTypeId", Type: xmlload.ColumnInteger},
			{Name: "CreationDate", Type: xmlload.ColumnText},
		},
		Source: "Votes.xml",
	}
	if err := votes.Validate(); err != nil {
		t.Fatalf("Expected valid definition, got: %v", err)
	}

	tests := []struct {
		name string
		def  xmlload.TableDefinition
	}{
		{"missing name", xmlload.TableDefinition{Columns: votes.Columns}},
		{"no columns", xmlload.TableDefinition{Name: "empty"}},
		{"no primary key", xmlload.TableDefinition{Name: "t", Columns: []xmlload.ColumnSpec{{Name: "Id"}}}},
		{"two primary keys", xmlload.TableDefinition{Name: "t", Columns: []xmlload.ColumnSpec{
			{Name: "Id", PrimaryKey: true}, {Name: "Other", PrimaryKey: true},
		}}},
		{"duplicate column", xmlload.TableDefinition{Name: "t", Columns: []xmlload.ColumnSpec{
			{Name: "Id", PrimaryKey: true}, {Name: "Id"},
		}}},
		{"unnamed column", xmlload.TableDefinition{Name: "t", Columns: []xmlload.ColumnSpec{
			{Name: "Id", PrimaryKey: true}, {Name: ""},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.def.Validate()
			if !errors.Is(err, xmlload.ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got: %v", err)
			}
		})
	}
}

func TestTableDefinition_ColumnNamesAndPrimaryKey(t *testing.T) {
	def := xmlload.TableDefinition{
		Name: "tags",
		Columns: []xmlload.ColumnSpec{
			{Name: "Id", Type: xmlload.ColumnInteger, PrimaryKey: true},
			{Name: "TagName", Type: xmlload.ColumnText},
		},
	}

	names := def.ColumnNames()
	if len(names) != 2 || names[0] != "Id" || names[1] != "TagName" {
		t.Errorf("Unexpected column names: %v", names)
	}

	pk, ok := def.PrimaryKey()
	if !ok || pk.Name != "Id" {
		t.Errorf("Expected primary key Id, got %+v (ok=%v)", pk, ok)
	}
}

func TestParseColumnType(t *testing.T) {
	tests := []struct {
		input   string
		want    xmlload.ColumnType
		wantErr bool
	}{
		{"integer", xmlload.ColumnInteger, false},
		{"INTEGER", xmlload.ColumnInteger, false},
		{"int", xmlload.ColumnInteger, false},
		{"BigInt", xmlload.ColumnInteger, false},
		{"text", xmlload.ColumnText, false},
		{"", xmlload.ColumnText, false},
		{"blob", xmlload.ColumnText, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := xmlload.ParseColumnType(tt.input)
			if tt.wantErr {
				if !errors.Is(err, xmlload.ErrInvalidConfig) {
					t.Errorf("Expected ErrInvalidConfig, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseColumnType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestColumnType_SQLType(t *testing.T) {
	if got := xmlload.ColumnInteger.SQLType(); got != "BIGINT" {
		t.Errorf("Expected BIGINT, got %s", got)
	}
	if got := xmlload.ColumnText.SQLType(); got != "TEXT" {
		t.Errorf("Expected TEXT, got %s", got)
	}
}

func TestParseAuthMethod(t *testing.T) {
	tests := []struct {
		input string
		want  xmlload.AuthMethod
	}{
		{"", xmlload.AuthMethodStandard},
		{"standard", xmlload.AuthMethodStandard},
		{"aws", xmlload.AuthMethodAWSIAM},
		{"Google", xmlload.AuthMethodGoogleIAM},
		{"azure", xmlload.AuthMethodAzureEntraID},
	}
	for _, tt := range tests {
		got, err := xmlload.ParseAuthMethod(tt.input)
		if err != nil {
			t.Fatalf("ParseAuthMethod(%q) error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseAuthMethod(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}

	if _, err := xmlload.ParseAuthMethod("kerberos"); !errors.Is(err, xmlload.ErrUnsupportedAuthMethod) {
		t.Errorf("Expected ErrUnsupportedAuthMethod, got: %v", err)
	}
}

func TestLoadProgress_Skipped(t *testing.T) {
	p := xmlload.LoadProgress{RecordsProcessed: 10, RecordsInserted: 7}
	if p.Skipped() != 3 {
		t.Errorf("Expected 3 skipped, got %d", p.Skipped())
	}
}

func TestRunSummary_TotalInserted(t *testing.T) {
	s := &xmlload.RunSummary{Tables: []xmlload.LoadProgress{
		{Table: "tags", RecordsInserted: 5},
		{Table: "votes", RecordsInserted: 12},
	}}
	if s.TotalInserted() != 17 {
		t.Errorf("Expected 17, got %d", s.TotalInserted())
	}
}

func TestIsTemplateDatabase(t *testing.T) {
	for _, name := range []string{"template0", "TEMPLATE1"} {
		if !xmlload.IsTemplateDatabase(name) {
			t.Errorf("Expected %s to be a template database", name)
		}
	}
	if xmlload.IsTemplateDatabase("stackoverflow") {
		t.Error("stackoverflow is not a template database")
	}
}
