package stats

import (
	"errors"
	"testing"
	"time"
)

const twoMatchPayload = `{
  "matchUpStats": [
    {"date": "2020-09-13", "visTeamName": "A", "homeTeamName": "B",
     "visStats": {"teamCode": 1, "score": 10}, "homeStats": {"teamCode": 2, "score": 24}},
    {"date": "2019-12-29", "visTeamName": "C", "homeTeamName": "A",
     "visStats": {"teamCode": "3", "score": 17}, "homeStats": {"teamCode": "1", "score": 20}}
  ]
}`

func TestExtract_AllYears(t *testing.T) {
	ext, err := Extract([]byte(twoMatchPayload), ExtractOptions{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if ext.Matches != 2 {
		t.Errorf("Matches = %d, want 2", ext.Matches)
	}
	if len(ext.Records) != 4 {
		t.Fatalf("len(Records) = %d, want 4", len(ext.Records))
	}

	want := []StatRecord{
		{Name: "A", Code: "1", Score: "10", Date: time.Date(2020, 9, 13, 0, 0, 0, 0, time.UTC)},
		{Name: "B", Code: "2", Score: "24", Date: time.Date(2020, 9, 13, 0, 0, 0, 0, time.UTC)},
		{Name: "C", Code: "3", Score: "17", Date: time.Date(2019, 12, 29, 0, 0, 0, 0, time.UTC)},
		{Name: "A", Code: "1", Score: "20", Date: time.Date(2019, 12, 29, 0, 0, 0, 0, time.UTC)},
	}
	for i, w := range want {
		got := ext.Records[i]
		if got.Name != w.Name || got.Code != w.Code || got.Score != w.Score || !got.Date.Equal(w.Date) {
			t.Errorf("Records[%d] = %+v, want %+v", i, got, w)
		}
	}
}

func TestExtract_YearFilter(t *testing.T) {
	ext, err := Extract([]byte(twoMatchPayload), ExtractOptions{Year: 2020})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(ext.Records) != 2 {
		t.Fatalf("len(Records) = %d, want 2", len(ext.Records))
	}
	if ext.Filtered != 1 {
		t.Errorf("Filtered = %d, want 1", ext.Filtered)
	}
	for _, r := range ext.Records {
		if r.Date.Year() != 2020 {
			t.Errorf("record %v outside target year", r)
		}
	}
}

func TestExtract_MalformedPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: `<html>oops</html>`},
		{name: "missing match array", payload: `{"other": []}`},
		{name: "null match array", payload: `{"matchUpStats": null}`},
		{name: "match array is object", payload: `{"matchUpStats": {"date": "2020-01-01"}}`},
		{name: "root array", payload: `[]`},
		{name: "empty", payload: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := Extract([]byte(tt.payload), ExtractOptions{})
			if !errors.Is(err, ErrMalformedPayload) {
				t.Errorf("Extract() error = %v, want ErrMalformedPayload", err)
			}
			if ext != nil {
				t.Errorf("Extract() returned extraction %+v for malformed payload", ext)
			}
		})
	}
}

func TestExtract_SkipsBadMatches(t *testing.T) {
	payload := `{"matchUpStats": [
		{"date": "not a date", "visTeamName": "A", "homeTeamName": "B",
		 "visStats": {"teamCode": 1, "score": 10}, "homeStats": {"teamCode": 2, "score": 24}},
		{"date": "2020-10-01", "homeTeamName": "B",
		 "visStats": {"teamCode": 1, "score": 10}, "homeStats": {"teamCode": 2, "score": 24}},
		{"date": "2020-10-02", "visTeamName": "A", "homeTeamName": "B",
		 "visStats": {"teamCode": 1, "score": null}, "homeStats": {"teamCode": 2, "score": 24}},
		{"date": "2020-10-03", "visTeamName": "A", "homeTeamName": "B",
		 "visStats": {"teamCode": 1, "score": 10}},
		"garbage",
		{"date": "10/4/2020", "visTeamName": "A", "homeTeamName": "B",
		 "visStats": {"teamCode": 1, "score": 3}, "homeStats": {"teamCode": 2, "score": 7}}
	]}`

	ext, err := Extract([]byte(payload), ExtractOptions{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if ext.Matches != 6 {
		t.Errorf("Matches = %d, want 6", ext.Matches)
	}
	if ext.Skipped != 5 {
		t.Errorf("Skipped = %d, want 5", ext.Skipped)
	}
	if len(ext.Records) != 2 {
		t.Fatalf("len(Records) = %d, want 2", len(ext.Records))
	}
	if ext.Records[0].Score != "3" || ext.Records[1].Score != "7" {
		t.Errorf("unexpected scores %q %q", ext.Records[0].Score, ext.Records[1].Score)
	}
}

func TestExtract_EmptyMatchArray(t *testing.T) {
	ext, err := Extract([]byte(`{"matchUpStats": []}`), ExtractOptions{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(ext.Records) != 0 {
		t.Errorf("len(Records) = %d, want 0", len(ext.Records))
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Time
		wantErr bool
	}{
		{name: "iso date", in: "2020-09-13", want: time.Date(2020, 9, 13, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339 with offset", in: "2020-09-13T20:00:00-04:00", want: time.Date(2020, 9, 14, 0, 0, 0, 0, time.UTC)},
		{name: "iso datetime", in: "2020-09-13T13:05:00", want: time.Date(2020, 9, 13, 13, 5, 0, 0, time.UTC)},
		{name: "us short", in: "9/13/2020", want: time.Date(2020, 9, 13, 0, 0, 0, 0, time.UTC)},
		{name: "us padded", in: "09/13/2020", want: time.Date(2020, 9, 13, 0, 0, 0, 0, time.UTC)},
		{name: "surrounding spaces", in: " 2020-09-13 ", want: time.Date(2020, 9, 13, 0, 0, 0, 0, time.UTC)},
		{name: "empty", in: "", wantErr: true},
		{name: "garbage", in: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
