package objectives_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"questline/internal/objectives"
)

func TestEncodeDecodeRecords(t *testing.T) {
	if got := objectives.EncodeRecords(nil); got != "" {
		t.Fatalf("empty encode = %q", got)
	}
	records := []objectives.Record{{ObjectiveID: 3, StateID: 1}, {ObjectiveID: 12, StateID: -1}}
	blob := objectives.EncodeRecords(records)
	if blob != "3:1|12:-1" {
		t.Fatalf("blob = %q", blob)
	}
	got, errs := objectives.DecodeRecords(blob)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors %v", errs)
	}
	if diff := cmp.Diff(records, got); diff != "" {
		t.Fatalf("decode (-want +got):\n%s", diff)
	}
}

func TestDecodeReportsBadChunks(t *testing.T) {
	got, errs := objectives.DecodeRecords("1:2||x:1|4|5:y|6:7")
	want := []objectives.Record{{ObjectiveID: 1, StateID: 2}, {ObjectiveID: 6, StateID: 7}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decode (-want +got):\n%s", diff)
	}
	if len(errs) != 4 {
		t.Fatalf("expected 4 errors, got %d: %v", len(errs), errs)
	}
}
