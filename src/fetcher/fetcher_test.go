package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// newEndpoint serves canned JSON for the single query route and records the
// request bodies it saw.
func newEndpoint(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchLatest(t *testing.T) {
	var gotBody apiRequest
	srv := newEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `{"success":true,"data":[
			{"_id":"a1","timestamp":1755900000000,"temperature":23.5,"humidity":60,"soilValue":410}
		]}`)
	})

	c := New(srv.URL, time.Second)
	r, err := c.FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("FetchLatest: %v", err)
	}
	if gotBody.Action != "get" || gotBody.Limit != 1 {
		t.Errorf("request body = %+v, want action=get limit=1", gotBody)
	}
	if r == nil {
		t.Fatal("expected a reading")
	}
	if r.Temperature != 23.5 || r.Humidity != 60 {
		t.Errorf("reading = %+v", r)
	}
	if r.Soil == nil || *r.Soil != 410 {
		t.Errorf("soil = %v", r.Soil)
	}
	if r.Rain != nil || r.CO2 != nil {
		t.Errorf("absent optionals must be nil: %+v", r)
	}
}

func TestFetchLatestEmptyIsNotAnError(t *testing.T) {
	srv := newEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"data":[]}`)
	})
	c := New(srv.URL, time.Second)
	r, err := c.FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("empty result must not error: %v", err)
	}
	if r != nil {
		t.Fatalf("expected nil reading, got %+v", r)
	}
}

func TestFetchHistoryOrdersOldestFirst(t *testing.T) {
	// Wire order is newest-first; callers must receive oldest-first.
	srv := newEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"data":[
			{"_id":"c","timestamp":3000,"temperature":3,"humidity":3},
			{"_id":"b","timestamp":2000,"temperature":2,"humidity":2},
			{"_id":"a","timestamp":1000,"temperature":1,"humidity":1}
		]}`)
	})
	c := New(srv.URL, time.Second)
	got, err := c.FetchHistory(context.Background(), 3)
	if err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	for i, id := range []string{"a", "b", "c"} {
		if got[i].ID != id {
			t.Errorf("got[%d].ID = %s, want %s", i, got[i].ID, id)
		}
	}
	if !got[0].Timestamp.Before(got[1].Timestamp) || !got[1].Timestamp.Before(got[2].Timestamp) {
		t.Error("timestamps not ascending")
	}
}

func TestFetchHistorySendsLimit(t *testing.T) {
	var gotBody apiRequest
	srv := newEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprint(w, `{"success":true,"data":[]}`)
	})
	c := New(srv.URL, time.Second)
	if _, err := c.FetchHistory(context.Background(), 7); err != nil {
		t.Fatalf("FetchHistory: %v", err)
	}
	if gotBody.Limit != 7 {
		t.Errorf("limit = %d, want 7", gotBody.Limit)
	}
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		want    ErrorKind
		wantMsg string
	}{
		{
			name: "403 is origin blocked",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
			want: KindOriginBlocked,
		},
		{
			name: "500 is malformed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			want:    KindMalformed,
			wantMsg: "unexpected status 500",
		},
		{
			name: "undecodable body is malformed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"success":tru`)
			},
			want: KindMalformed,
		},
		{
			name: "success=false carries server message",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"success":false,"message":"database offline"}`)
			},
			want:    KindMalformed,
			wantMsg: "database offline",
		},
		{
			name: "bad timestamp in record is malformed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"success":true,"data":[{"_id":"a","timestamp":"later","temperature":1,"humidity":1}]}`)
			},
			want: KindMalformed,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newEndpoint(t, tc.handler)
			c := New(srv.URL, time.Second)
			_, err := c.FetchLatest(context.Background())
			if err == nil {
				t.Fatal("expected error")
			}
			if got := KindOf(err); got != tc.want {
				t.Errorf("kind = %s, want %s", got, tc.want)
			}
			if tc.wantMsg != "" {
				if got := MessageOf(err); got != tc.wantMsg {
					t.Errorf("message = %q, want %q", got, tc.wantMsg)
				}
			}
		})
	}
}

func TestNetworkErrorOnClosedServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(url, time.Second)
	_, err := c.FetchLatest(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if got := KindOf(err); got != KindNetwork {
		t.Errorf("kind = %s, want network", got)
	}
}

func TestKindOfUnrelatedError(t *testing.T) {
	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Errorf("kind = %s, want unknown", got)
	}
}

func TestErrorKindString(t *testing.T) {
	cases := map[ErrorKind]string{
		KindNetwork:       "network",
		KindOriginBlocked: "origin_blocked",
		KindMalformed:     "malformed",
		KindUnknown:       "unknown",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
}
