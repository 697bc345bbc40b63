package csvio

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/ginjaninja78/opnsense-config-faker/internal/types"
)

func TestWriteReadRoundTrip(t *testing.T) {
	records := []types.VlanRecord{
		{VlanID: 100, NetworkBase: "192.168.100.x", Description: "TestVLAN", WANAssignment: 1},
		{VlanID: 250, NetworkBase: "10.20.30.x", Description: "Sales250", WANAssignment: 2},
		{VlanID: 3999, NetworkBase: "172.16.4.x", Description: "IT3999", WANAssignment: 3},
		{VlanID: 11, NetworkBase: "10.0.0.x", Description: "Guest11", WANAssignment: 1},
		{VlanID: 4094, NetworkBase: "192.168.255.x", Description: "Lab4094", WANAssignment: 2},
	}

	path := filepath.Join(t.TempDir(), "records.csv")

	if err := Write(path, records); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if len(got) != len(records) {
		t.Fatalf("Read() returned %d records, want %d", len(got), len(records))
	}

	for i := range records {
		if got[i] != records[i] {
			t.Errorf("record %d: got %+v, want %+v", i, got[i], records[i])
		}
	}
}

func TestWriteMinimal(t *testing.T) {
	records := []types.VlanRecord{
		{VlanID: 1042, NetworkBase: "10.99.5.x", Description: "Finance1042", WANAssignment: 3},
	}

	path := filepath.Join(t.TempDir(), "single.csv")
	if err := Write(path, records); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}

	if lines[0] != "VLAN,IP Range,Beschreibung,WAN" {
		t.Errorf("header = %q", lines[0])
	}

	fields := strings.Split(lines[1], ",")
	if len(fields) != 4 {
		t.Fatalf("expected 4 columns, got %d", len(fields))
	}

	networkPattern := regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.x$`)
	if !networkPattern.MatchString(fields[1]) {
		t.Errorf("network base %q does not match A.B.C.x", fields[1])
	}
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"bad vlan id", "VLAN,IP Range,Beschreibung,WAN\nabc,10.0.0.x,Test,1\n"},
		{"bad wan", "VLAN,IP Range,Beschreibung,WAN\n100,10.0.0.x,Test,one\n"},
		{"too few columns", "VLAN,IP Range,Beschreibung,WAN\n100,10.0.0.x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".csv")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}

			if _, err := Read(path); err == nil {
				t.Errorf("Read() succeeded on %s", tt.name)
			}
		})
	}
}

func TestReadSkipsEmptyRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gaps.csv")
	content := "VLAN,IP Range,Beschreibung,WAN\n100,10.0.0.x,Test100,1\n,,,\n200,10.0.1.x,Test200,2\n"

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	records, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].VlanID != 200 {
		t.Errorf("second record VLAN id = %d, want 200", records[1].VlanID)
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("Read() succeeded on missing file")
	}
}
