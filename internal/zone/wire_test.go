package zone

import (
	"testing"
)

func TestParseListing_WrappedZones(t *testing.T) {
	body := `{"zones":[{"zone_id":1,"name":"Lounge","state":{"cur_temp_c":19.5,"target_temp_c":21.0,"mode":1,"cur_heating":40}}]}`

	zones, err := ParseListing([]byte(body))
	if err != nil {
		t.Fatalf("ParseListing() error = %v", err)
	}
	if len(zones) != 1 {
		t.Fatalf("len(zones) = %d, want 1", len(zones))
	}

	z := zones[0]
	if z.ID != "1" {
		t.Errorf("ID = %q, want %q", z.ID, "1")
	}
	if z.Name != "Lounge" {
		t.Errorf("Name = %q, want %q", z.Name, "Lounge")
	}
	if z.State.Mode != ModeHeat {
		t.Errorf("Mode = %v, want ModeHeat", z.State.Mode)
	}
	if z.State.Action() != ActionHeating {
		t.Errorf("Action() = %v, want ActionHeating", z.State.Action())
	}
	if z.State.CurrentTempC == nil || *z.State.CurrentTempC != 19.5 {
		t.Errorf("CurrentTempC = %v, want 19.5", z.State.CurrentTempC)
	}
	if z.State.TargetTempC == nil || *z.State.TargetTempC != 21.0 {
		t.Errorf("TargetTempC = %v, want 21.0", z.State.TargetTempC)
	}
}

func TestParseListing_WrappedThermostats(t *testing.T) {
	body := `{"thermostats":[{"thermostat_id":"7","zone_name":"Office","state":{"mode":3}}]}`

	zones, err := ParseListing([]byte(body))
	if err != nil {
		t.Fatalf("ParseListing() error = %v", err)
	}
	if len(zones) != 1 {
		t.Fatalf("len(zones) = %d, want 1", len(zones))
	}
	if zones[0].ID != "7" {
		t.Errorf("ID = %q, want %q", zones[0].ID, "7")
	}
	if zones[0].Name != "Office" {
		t.Errorf("Name = %q, want %q (zone_name alias)", zones[0].Name, "Office")
	}
	if zones[0].State.Mode != ModeAuto {
		t.Errorf("Mode = %v, want ModeAuto", zones[0].State.Mode)
	}
}

func TestParseListing_BareList(t *testing.T) {
	body := `[{"zone_id":1,"name":"A"},{"zone_id":2,"name":"B"}]`

	zones, err := ParseListing([]byte(body))
	if err != nil {
		t.Fatalf("ParseListing() error = %v", err)
	}
	if len(zones) != 2 {
		t.Errorf("len(zones) = %d, want 2", len(zones))
	}
}

func TestParseListing_IDAliasPreference(t *testing.T) {
	// Both legacy keys present: thermostat_id wins, but either alone works.
	body := `[{"thermostat_id":5,"zone_id":5,"name":"Hall"}]`

	zones, err := ParseListing([]byte(body))
	if err != nil {
		t.Fatalf("ParseListing() error = %v", err)
	}
	if zones[0].ID != "5" {
		t.Errorf("ID = %q, want %q", zones[0].ID, "5")
	}
}

func TestParseListing_DropsRecordsWithoutID(t *testing.T) {
	body := `[{"name":"Orphan"},{"zone_id":2,"name":"Kept"}]`

	zones, err := ParseListing([]byte(body))
	if err != nil {
		t.Fatalf("ParseListing() error = %v", err)
	}
	if len(zones) != 1 {
		t.Fatalf("len(zones) = %d, want 1", len(zones))
	}
	if zones[0].Name != "Kept" {
		t.Errorf("Name = %q, want %q", zones[0].Name, "Kept")
	}
}

func TestParseListing_Malformed(t *testing.T) {
	if _, err := ParseListing([]byte(`not json`)); err == nil {
		t.Error("ParseListing() expected error for malformed body, got nil")
	}
}

func TestParseListing_UnknownModeTreatedAsOff(t *testing.T) {
	body := `[{"zone_id":1,"state":{"mode":42}}]`

	zones, err := ParseListing([]byte(body))
	if err != nil {
		t.Fatalf("ParseListing() error = %v", err)
	}
	if zones[0].State.Mode != ModeOff {
		t.Errorf("Mode = %v, want ModeOff for unknown wire value", zones[0].State.Mode)
	}
}

func TestStatePayload_HeatingClamped(t *testing.T) {
	body := `[{"zone_id":1,"state":{"cur_heating":150}},{"zone_id":2,"state":{"cur_heating":-3}}]`

	zones, err := ParseListing([]byte(body))
	if err != nil {
		t.Fatalf("ParseListing() error = %v", err)
	}
	if zones[0].State.HeatingPercent != 100 {
		t.Errorf("HeatingPercent = %d, want clamp to 100", zones[0].State.HeatingPercent)
	}
	if zones[1].State.HeatingPercent != 0 {
		t.Errorf("HeatingPercent = %d, want clamp to 0", zones[1].State.HeatingPercent)
	}
}
