package model

import "testing"

func TestNewTable(t *testing.T) {
	t.Parallel()

	header := Header{"Name", "User Id"}
	records := []Record{{"Ada", "1"}, {"Grace", "2"}}
	table := NewTable("a", header, records, NewInferOptions())

	if table.Name() != "a" {
		t.Errorf("Name() = %q, want %q", table.Name(), "a")
	}
	if len(table.Records()) != 2 {
		t.Fatalf("Records() has %d rows, want 2", len(table.Records()))
	}

	columns := table.Columns()
	if len(columns) != 2 {
		t.Fatalf("Columns() has %d columns, want 2", len(columns))
	}

	name := columns[0]
	if name.Name != "name" || name.Original != "Name" {
		t.Errorf("column 0 = %q (original %q), want name/Name", name.Name, name.Original)
	}
	if name.Type != ColumnTypeText {
		t.Errorf("column 0 type = %v, want %v", name.Type, ColumnTypeText)
	}
	if name.Indexed {
		t.Error("column 0 should not be indexed")
	}

	userID := columns[1]
	if userID.Name != "user_id" {
		t.Errorf("column 1 = %q, want user_id", userID.Name)
	}
	if userID.Type != ColumnTypeInteger {
		t.Errorf("column 1 type = %v, want %v", userID.Type, ColumnTypeInteger)
	}
	if !userID.Indexed {
		t.Error("column 1 should be indexed")
	}
	if userID.Nullable {
		t.Error("column 1 should not be nullable, whole file was sampled")
	}
}

func TestShouldIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		expected bool
	}{
		{name: "id", expected: true},
		{name: "user_id", expected: true},
		{name: "parent_user_id", expected: true},
		{name: "identifier", expected: false},
		{name: "idaho", expected: false},
		{name: "uuid", expected: false},
		{name: "name", expected: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ShouldIndex(tt.name); got != tt.expected {
				t.Errorf("ShouldIndex(%q) = %v, want %v", tt.name, got, tt.expected)
			}
		})
	}
}

func TestTableNameFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "plain csv", path: "/data/users.csv", expected: "users"},
		{name: "tsv", path: "orders.tsv", expected: "orders"},
		{name: "gzip compressed", path: "/tmp/events.csv.gz", expected: "events"},
		{name: "zstd compressed", path: "events.csv.zst", expected: "events"},
		{name: "messy name", path: "My Sales (2024).csv", expected: "my_sales_2024"},
		{name: "digit leading", path: "2020.csv", expected: "t_2020"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TableNameFromPath(tt.path); got != tt.expected {
				t.Errorf("TableNameFromPath(%q) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}
