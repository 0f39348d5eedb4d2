package discovery

import "testing"

func TestMethodRegistration_DefaultsToEmptyMarker(t *testing.T) {
	reg := MethodRegistration{Class: "OrderService", Method: "FindPending"}
	if reg.Marker.Label != "" || reg.Marker.Description != "" {
		t.Errorf("expected empty marker fields, got %+v", reg.Marker)
	}
}

func TestMethodRegistration_WithMarker(t *testing.T) {
	reg := MethodRegistration{
		Class:  "OrderService",
		Method: "FindPending",
		Marker: DiagnoseQuery{Label: "hot-path", Description: "Called on every dashboard load"},
	}
	if reg.Marker.Label != "hot-path" {
		t.Errorf("label = %q", reg.Marker.Label)
	}
}
