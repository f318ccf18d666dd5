package psgc_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/admissions/internal/app/system/psgc"
	"github.com/dalemusser/admissions/internal/domain/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/regions/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/regions/":
			w.Write([]byte(`[{"code":"130000000","name":"NCR"},{"code":"010000000","name":"Ilocos Region"}]`))
		case "/regions/010000000/provinces/":
			w.Write([]byte(`[{"code":"012800000","name":"Ilocos Norte"},{"code":"","name":"broken"}]`))
		case "/regions/130000000/cities-municipalities/":
			w.Write([]byte(`[{"code":"137404000","name":"Quezon City"},{"code":"133900000","name":"City of Manila"}]`))
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/provinces/012800000/cities-municipalities/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"code":"012805000","name":"Batac"}]`))
	})
	mux.HandleFunc("/cities-municipalities/012805000/barangays/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"code":"012805001","name":"Ablan"}]`))
	})
	mux.HandleFunc("/cities-municipalities/500/barangays/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRegions_SortedByName(t *testing.T) {
	c := psgc.New(newServer(t).URL)
	got, err := c.Regions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "Ilocos Region" || got[1].Code != "130000000" {
		t.Errorf("regions = %+v", got)
	}
}

func TestProvinces_DropsEntriesWithoutCode(t *testing.T) {
	c := psgc.New(newServer(t).URL)
	got, err := c.Provinces(context.Background(), "010000000")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Code != "012800000" {
		t.Errorf("provinces = %+v", got)
	}
}

func TestCities_RegionFallback(t *testing.T) {
	c := psgc.New(newServer(t).URL)
	got, err := c.Cities(context.Background(), "130000000")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "City of Manila" {
		t.Errorf("NCR cities = %+v", got)
	}

	got, err = c.Children(context.Background(), models.LevelCity, "012800000")
	if err != nil || len(got) != 1 || got[0].Name != "Batac" {
		t.Errorf("province cities = %+v, err %v", got, err)
	}
}

func TestBarangays_StatusError(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := psgc.New(newServer(t).URL, psgc.WithMetrics(reg), psgc.WithRateLimit(100))
	ctx := context.Background()

	if _, err := c.Barangays(ctx, "012805000"); err != nil {
		t.Fatal(err)
	}
	_, err := c.Barangays(ctx, "500")
	if !errors.Is(err, psgc.ErrUnexpectedStatus) {
		t.Fatalf("err = %v, want ErrUnexpectedStatus", err)
	}

	n, err := testutil.GatherAndCount(reg, "admissions_psgc_requests_total")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("series = %d, want ok and error", n)
	}
}

func TestChildren_UnknownLevel(t *testing.T) {
	c := psgc.New("http://127.0.0.1:0")
	if _, err := c.Children(context.Background(), "street", "x"); !errors.Is(err, psgc.ErrUnknownLevel) {
		t.Errorf("err = %v, want ErrUnknownLevel", err)
	}
}

func TestIsRegionCode(t *testing.T) {
	tests := map[string]bool{
		"130000000": true,
		"010000000": true,
		"012800000": false,
		"1300":      false,
		"":          false,
	}
	for code, want := range tests {
		if got := psgc.IsRegionCode(code); got != want {
			t.Errorf("IsRegionCode(%q) = %v, want %v", code, got, want)
		}
	}
}
