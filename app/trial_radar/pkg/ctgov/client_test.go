package ctgov

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iWorld-y/trial_radar/app/trial_radar/pkg/registry"
)

func TestSearchStudiesQueryAndDecode(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/studies" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		gotQuery = map[string]string{
			"query.cond": q.Get("query.cond"),
			"query.term": q.Get("query.term"),
			"pageSize":   q.Get("pageSize"),
			"format":     q.Get("format"),
			"pageToken":  q.Get("pageToken"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"studies":[
			{"protocolSection":{"identificationModule":{"nctId":"NCT001","briefTitle":"First"},
			 "eligibilityModule":{"eligibilityCriteria":"Inclusion Criteria:\n* a\nExclusion Criteria:\n* b"}}},
			{"protocolSection":{}}
		],"nextPageToken":"tok2"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/api/v2/", 5)
	page, err := c.SearchStudies(context.Background(), &registry.SearchRequest{
		Condition: "Lung Cancer",
		StudyType: "INTERVENTIONAL",
		StartDate: "2025-12-01",
		EndDate:   "2025-12-31",
		PageSize:  100,
		PageToken: "tok1",
	})
	if err != nil {
		t.Fatalf("SearchStudies() error = %v", err)
	}

	want := map[string]string{
		"query.cond": "Lung Cancer",
		"query.term": "AREA[StudyType]INTERVENTIONAL AND AREA[StudyFirstPostDate]RANGE[2025-12-01,2025-12-31]",
		"pageSize":   "100",
		"format":     "json",
		"pageToken":  "tok1",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}

	if page.NextPageToken != "tok2" {
		t.Errorf("NextPageToken = %q", page.NextPageToken)
	}
	if len(page.Studies) != 2 {
		t.Fatalf("len(Studies) = %d", len(page.Studies))
	}
	if page.Studies[0].NCTID != "NCT001" || page.Studies[0].Title != "First" {
		t.Errorf("first study = %+v", page.Studies[0])
	}
	if page.Studies[1].NCTID != "Unknown" || page.Studies[1].Title != "Unknown" || page.Studies[1].EligibilityText != "" {
		t.Errorf("empty study should default, got %+v", page.Studies[1])
	}
}

func TestSearchStudiesOmitsEmptyPageToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.URL.Query()["pageToken"]; ok {
			t.Errorf("pageToken should be absent on the first page")
		}
		_, _ = w.Write([]byte(`{"studies":[]}`))
	}))
	defer srv.Close()

	page, err := NewClient(srv.URL, 5).SearchStudies(context.Background(), &registry.SearchRequest{PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if page.NextPageToken != "" || len(page.Studies) != 0 {
		t.Fatalf("page = %+v", page)
	}
}

func TestSearchStudiesStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 5).SearchStudies(context.Background(), &registry.SearchRequest{})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != http.StatusServiceUnavailable || se.Body != "maintenance" {
		t.Fatalf("StatusError = %+v", se)
	}
}

func TestSearchStudiesMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, 5).SearchStudies(context.Background(), &registry.SearchRequest{}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestGetStudyLocations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/studies/NCT042" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"protocolSection":{
			"identificationModule":{"nctId":"NCT042","briefTitle":"Answer"},
			"contactsLocationsModule":{"locations":[
				{"facility":"Mayo Clinic","city":"Rochester","state":"Minnesota","country":"United States"},
				{"facility":"Second","city":"Lyon","country":"France"}
			]}}}`))
	}))
	defer srv.Close()

	s, err := NewClient(srv.URL, 5).GetStudy(context.Background(), "NCT042")
	if err != nil {
		t.Fatalf("GetStudy() error = %v", err)
	}
	if len(s.Locations) != 2 {
		t.Fatalf("len(Locations) = %d", len(s.Locations))
	}
	want := registry.Location{Facility: "Mayo Clinic", City: "Rochester", State: "Minnesota", Country: "United States"}
	if s.Locations[0] != want {
		t.Errorf("Locations[0] = %+v", s.Locations[0])
	}
}

func TestGetStudyEmptyID(t *testing.T) {
	if _, err := NewClient("http://127.0.0.1:0", 1).GetStudy(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty id")
	}
}
