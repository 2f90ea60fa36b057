package models

import "testing"

func TestBusRecordValidate(t *testing.T) {
	valid := BusRecord{BusNumber: "AB12CD3456", From: "delhi", To: "agra"}

	tests := []struct {
		name    string
		mutate  func(*BusRecord)
		wantErr bool
	}{
		{name: "valid", mutate: func(b *BusRecord) {}, wantErr: false},
		{name: "missing busNumber", mutate: func(b *BusRecord) { b.BusNumber = "" }, wantErr: true},
		{name: "missing from", mutate: func(b *BusRecord) { b.From = "" }, wantErr: true},
		{name: "missing to", mutate: func(b *BusRecord) { b.To = "" }, wantErr: true},
		{name: "optional fields absent", mutate: func(b *BusRecord) {
			b.CurrentLocation = nil
			b.Via = nil
			b.DepartureTime = ""
			b.ArrivalTime = ""
		}, wantErr: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := valid
			tc.mutate(&rec)
			err := rec.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
