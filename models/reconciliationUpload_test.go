package models

import "testing"

func TestUploadStatusReprocessable(t *testing.T) {
	cases := []struct {
		status UploadStatus
		want   bool
	}{
		{UploadStatusUploaded, true},
		{UploadStatusProcessing, true},
		// a failed upload must stay claimable or the job retry schedule
		// can never actually rerun it
		{UploadStatusFailed, true},
		{UploadStatusCompleted, false},
		{UploadStatus("bogus"), false},
	}
	for _, tc := range cases {
		if got := tc.status.Reprocessable(); got != tc.want {
			t.Fatalf("Reprocessable(%q) = %v, want %v", tc.status, got, tc.want)
		}
	}

	// the SQL-side list must agree with the predicate
	for _, status := range ReprocessableUploadStatuses {
		if !status.Reprocessable() {
			t.Fatalf("ReprocessableUploadStatuses contains %q which the predicate rejects", status)
		}
	}
	for _, status := range []UploadStatus{UploadStatusUploaded, UploadStatusProcessing, UploadStatusFailed} {
		found := false
		for _, s := range ReprocessableUploadStatuses {
			if s == status {
				found = true
			}
		}
		if !found {
			t.Fatalf("ReprocessableUploadStatuses missing %q", status)
		}
	}
}
