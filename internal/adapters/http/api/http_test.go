package api_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gorilla/mux"

	"github.com/okian/touchline/internal/adapters/http/api"
	service "github.com/okian/touchline/internal/app"
	"github.com/okian/touchline/internal/domain/model"
	"github.com/okian/touchline/internal/sample"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleDocs(t *testing.T) ([]byte, []byte) {
	t.Helper()
	cfg := sample.DefaultConfig()
	cfg.Seed = 5
	cfg.EventsPerPeriod = 60
	m, err := sample.Generate(cfg)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	events, err := sample.EncodeEvents(m)
	if err != nil {
		t.Fatalf("encode events: %v", err)
	}
	metadata, err := sample.EncodeMetadata(m)
	if err != nil {
		t.Fatalf("encode metadata: %v", err)
	}
	return events, metadata
}

func uploadBody(t *testing.T, id string, parts map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if id != "" {
		if err := mw.WriteField("id", id); err != nil {
			t.Fatal(err)
		}
	}
	for name, content := range parts {
		fw, err := mw.CreateFormFile(name, name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(content); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func do(router *mux.Router, method, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
	} else {
		req = httptest.NewRequest(method, target, http.NoBody)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	So(sonic.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
	return out
}

func TestServer(t *testing.T) {
	events, metadata := sampleDocs(t)

	Convey("Given a server backed by a real service", t, func() {
		svc := service.New()
		defer svc.Close()
		router := api.NewServer(svc, svc, api.WithMaxUploadBytes(8<<20)).Router()

		Convey("Health, stats and metrics respond", func() {
			w := do(router, http.MethodGet, "/healthz", nil, "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["status"], ShouldEqual, "ok")

			w = do(router, http.MethodGet, "/stats", nil, "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w), ShouldContainKey, "matches")

			w = do(router, http.MethodGet, "/metrics", nil, "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When a match is uploaded", func() {
			body, ct := uploadBody(t, "m1", map[string][]byte{"events": events, "metadata": metadata})
			w := do(router, http.MethodPost, "/v1/matches", body, ct)
			So(w.Code, ShouldEqual, http.StatusCreated)
			created := decode(w)
			So(created["id"], ShouldEqual, "m1")
			So(created["run_id"], ShouldNotBeEmpty)
			So(created["summary"].(map[string]any)["home_team"], ShouldEqual, "Team A")

			Convey("It is listed and readable", func() {
				w := do(router, http.MethodGet, "/v1/matches", nil, "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["matches"], ShouldHaveLength, 1)

				w = do(router, http.MethodGet, "/v1/matches/m1", nil, "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode(w)["run_id"], ShouldEqual, created["run_id"])
			})

			Convey("Its event table downloads as CSV", func() {
				w := do(router, http.MethodGet, "/v1/matches/m1/events.csv", nil, "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldStartWith, "text/csv")
				rows, err := csv.NewReader(w.Body).ReadAll()
				So(err, ShouldBeNil)
				So(rows[0], ShouldResemble, model.Columns())
				records := created["summary"].(map[string]any)["records"].(float64)
				So(len(rows)-1, ShouldEqual, int(records))
			})

			Convey("Its canonical events can be filtered", func() {
				w := do(router, http.MethodGet, "/v1/matches/m1/events?category=pass", nil, "")
				So(w.Code, ShouldEqual, http.StatusOK)
				out := decode(w)
				So(out, ShouldContainKey, "passes")
				So(out, ShouldNotContainKey, "shots")

				w = do(router, http.MethodGet, "/v1/matches/m1/events?category=tackle", nil, "")
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(w)["code"], ShouldEqual, "bad_request")
			})

			Convey("Deleting it makes it unknown", func() {
				w := do(router, http.MethodDelete, "/v1/matches/m1", nil, "")
				So(w.Code, ShouldEqual, http.StatusNoContent)

				w = do(router, http.MethodGet, "/v1/matches/m1", nil, "")
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(decode(w)["code"], ShouldEqual, "not_found")
			})
		})

		Convey("An upload without metadata is rejected", func() {
			body, ct := uploadBody(t, "", map[string][]byte{"events": events})
			w := do(router, http.MethodPost, "/v1/matches", body, ct)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(w)["message"], ShouldContainSubstring, "metadata")
		})

		Convey("A malformed event log reports its kind", func() {
			body, ct := uploadBody(t, "", map[string][]byte{"events": []byte(`{"data": [{"index": 1}]}`), "metadata": metadata})
			w := do(router, http.MethodPost, "/v1/matches", body, ct)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(w)["code"], ShouldEqual, "malformed_record")
		})

		Convey("A body over the limit is refused", func() {
			small := api.NewServer(svc, svc, api.WithMaxUploadBytes(1024)).Router()
			body, ct := uploadBody(t, "", map[string][]byte{"events": events, "metadata": metadata})
			w := do(small, http.MethodPost, "/v1/matches", body, ct)
			So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
		})

		Convey("Unknown routes and methods are not served", func() {
			So(do(router, http.MethodGet, "/unknown", nil, "").Code, ShouldEqual, http.StatusNotFound)
			So(do(router, http.MethodPut, "/v1/matches", nil, "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestServer_RegisterNilRouter(t *testing.T) {
	Convey("Registering on a nil router panics", t, func() {
		server := api.NewServer(service.New(), statsFunc(nil))
		So(func() { server.Register(nil) }, ShouldPanic)
	})
}

type statsFunc func(ctx context.Context) map[string]any

func (f statsFunc) GetStats(ctx context.Context) map[string]any {
	if f == nil {
		return map[string]any{}
	}
	return f(ctx)
}

func TestStatsHandler(t *testing.T) {
	Convey("Stats come from the provider", t, func() {
		h := api.NewStatsHandler(statsFunc(func(context.Context) map[string]any {
			return map[string]any{"matches": 3}
		}))
		w := httptest.NewRecorder()
		h.HandleStats(w, httptest.NewRequest(http.MethodGet, "/stats", http.NoBody))
		So(w.Code, ShouldEqual, http.StatusOK)
		So(strings.TrimSpace(w.Body.String()), ShouldEqual, `{"matches":3}`)
	})
}
