package scenarios

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob("*.yaml")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no scenario files found")
	}
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			t.Fatalf("load %s: %v", f, err)
		}
		t.Run(sc.Name, func(t *testing.T) {
			RunScenario(t, sc)
		})
	}
}

func TestUnitDefToModel(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	u, err := UnitDef{
		ID:           "m1",
		Status:       "available",
		Capabilities: []string{"BLS", "ALS"},
		HoursOnDuty:  3,
	}.ToModel(now)
	if err != nil {
		t.Fatalf("ToModel: %v", err)
	}
	if got := now.Sub(u.ShiftStart); got != 3*time.Hour {
		t.Errorf("shift length = %v, want 3h", got)
	}
	if len(u.Capabilities) != 2 {
		t.Errorf("capabilities = %v", u.Capabilities)
	}

	if _, err := (UnitDef{ID: "m2", Status: "napping"}).ToModel(now); err == nil {
		t.Error("expected error for unknown status")
	}
	if _, err := (UnitDef{ID: "m3", Status: "available", Capabilities: []string{"XRAY"}}).ToModel(now); err == nil {
		t.Error("expected error for unknown capability")
	}
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load("no-file.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
	tmp, err := os.CreateTemp(t.TempDir(), "bad*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmp.WriteString(":"); err != nil {
		t.Fatal(err)
	}
	if err := tmp.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(tmp.Name()); err == nil {
		t.Fatal("expected unmarshal error")
	}
}
