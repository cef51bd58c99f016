// Package backendtest runs an in-process fake of the orchard backend for
// tests. It speaks the same routes and wire formats as the real service,
// records every request it receives, and can be told to fail or stall
// individual routes.
package backendtest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/mesh-intelligence/orchard/pkg/types"
)

// Recorded is one request as the backend saw it.
type Recorded struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
	ContentType   string
	JSON          json.RawMessage
	Fields        map[string][]string
	Files         map[string][]UploadedFile
}

// UploadedFile describes a multipart file part.
type UploadedFile struct {
	Filename    string
	ContentType string
	Size        int
}

type fault struct {
	status int
	body   string
}

// Server is the fake backend.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Recorded
	users    map[string]types.User
	secrets  map[string]string
	tokens   map[string]string
	faults   map[string]fault
	blocks   map[string]chan struct{}
	nextTok  int

	orchards *collection[types.Orchard]
	trees    *collection[types.Tree]
	images   *collection[types.ScannedImage]
	health   *collection[types.TreeHealth]

	// Canned analysis results. Change them through Canned.
	Prediction types.PredictionResult
	NDVI       types.NDVIAnalysis
	Anomalies  types.AnomalyDetection
	Trends     types.HealthTrends
	Report     types.HealthReport
	Stats      types.DashboardStats
	ChatAction string
}

// New starts a fake backend that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		users:    make(map[string]types.User),
		secrets:  make(map[string]string),
		tokens:   make(map[string]string),
		faults:   make(map[string]fault),
		blocks:   make(map[string]chan struct{}),
		orchards: newCollection(func(o *types.Orchard, id int) { o.ID = id }),
		trees:    newCollection(func(tr *types.Tree, id int) { tr.ID = id }),
		images:   newCollection(func(i *types.ScannedImage, id int) { i.ID = id }),
		health:   newCollection(func(h *types.TreeHealth, id int) { h.ID = id }),

		Prediction: types.PredictionResult{
			Prediction: types.DiseaseAppleScab,
			Confidence: 0.87,
			ClassNames: []string{types.DiseaseAppleScab, types.DiseaseBlackRot, types.DiseaseCedarAppleRust, types.DiseaseHealthy},
			ImageURL:   "/media/predictions/leaf.jpg",
		},
		NDVI: types.NDVIAnalysis{
			NDVIStatistics:   types.NDVIStatistics{Mean: 0.62, Std: 0.08, Min: 0.21, Max: 0.91},
			HealthAssessment: "healthy",
			Message:          "Vegetation is dense and healthy",
		},
		Anomalies: types.AnomalyDetection{
			AnomalyAnalysis: types.AnomalyAnalysis{
				TotalRecords: 40, HealthyCount: 30, DiseasedCount: 10, DiseaseRate: 25,
				AnomaliesDetected: 1,
				Anomalies: []types.Anomaly{{
					Type: "disease_spike", Severity: types.SeverityHigh,
					Description: "Disease rate above orchard average", Value: 25,
				}},
			},
		},
		Trends: types.HealthTrends{
			TrendAnalysis: types.TrendAnalysis{
				TotalRecords: 12, TrendDirection: "improving", TrendMagnitude: 4.5,
				MonthlyTrends: []types.MonthlyTrend{
					{Month: "2024-04", TotalRecords: 6, Healthy: 4, AppleScab: 2, DiseaseRate: 33.3},
					{Month: "2024-05", TotalRecords: 6, Healthy: 5, BlackRot: 1, DiseaseRate: 16.7},
				},
			},
		},
		Report: types.HealthReport{
			ReportInfo: types.ReportInfo{
				GeneratedAt: "2024-05-01T12:00:00Z",
				Orchard:     types.ReportOrchard{Name: "All Orchards", Location: "Multiple"},
			},
			Summary: types.ReportSummary{
				TotalTrees: 12, TotalHealthRecords: 30, TotalImagesAnalyzed: 55,
				RecentActivity: types.RecentActivity{HealthRecordsLast30Days: 8, ImagesAnalyzedLast30Days: 14},
			},
			HealthAnalysis: types.HealthAnalysis{
				HealthDistribution: map[string]int{"healthy": 20, "disease_detected": 10},
				DiseaseAnalysis:    map[string]types.DiseaseStats{"apple_scab": {Count: 6, AvgConfidence: 0.842}},
				OverallHealthScore: 66.7,
			},
			Recommendations: []types.Recommendation{
				{Priority: "high", Category: "treatment", Recommendation: "Apply fungicide to rows 3-5"},
				{Priority: "low", Category: "monitoring", Recommendation: "Rescan in two weeks"},
			},
		},
		Stats: types.DashboardStats{
			Stats: types.Stats{TotalAnalyses: 55, AccuracyRate: 94.2, ActiveAlerts: 3, ProcessingTime: 1.4},
			RecentAnalyses: []types.RecentAnalysis{
				{ID: 9, Type: "disease", Filename: "leaf9.jpg", Result: "apple_scab", Confidence: 0.87, Timestamp: "2024-05-01T09:00:00Z"},
			},
		},
	}

	r := mux.NewRouter()
	r.Use(s.record, s.inject, s.authenticate)

	r.HandleFunc("/api/auth/login/", s.login).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/logout/", s.logout).Methods(http.MethodPost)

	handleCRUD(s, r, "/api/orchards/", s.orchards, true)
	handleCRUD(s, r, "/api/trees/", s.trees, true)
	handleCRUD(s, r, "/api/tree-health/", s.health, true)
	handleCRUD(s, r, "/api/scanned-images/", s.images, false)
	r.HandleFunc("/api/scanned-images/", s.uploadImage).Methods(http.MethodPost)

	r.HandleFunc("/api/predict/", s.withImage(func() any { return s.Prediction })).Methods(http.MethodPost)
	r.HandleFunc("/api/ndvi-analysis/", s.withImage(func() any { return s.NDVI })).Methods(http.MethodPost)
	r.HandleFunc("/api/bulk-upload/", s.bulkUpload).Methods(http.MethodPost)
	r.HandleFunc("/api/bulk-create-trees/", s.bulkCreateTrees).Methods(http.MethodPost)
	r.HandleFunc("/api/anomaly-detection/", s.anomalies).Methods(http.MethodGet)
	r.HandleFunc("/api/health-trends/", s.trendsHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/generate-report/", s.report).Methods(http.MethodGet)
	r.HandleFunc("/api/chat/", s.chat).Methods(http.MethodPost)
	r.HandleFunc("/api/dashboard/", func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		stats := s.Stats
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, stats)
	}).Methods(http.MethodGet)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Canned lets a test replace the canned analysis results while the server
// is running.
func (s *Server) Canned(fn func(*Server)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

// AddUser registers an account that can log in.
func (s *Server) AddUser(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = types.User{ID: len(s.users) + 1, Username: username}
	s.secrets[username] = password
}

// IssueToken returns a valid token for username without a login round trip.
func (s *Server) IssueToken(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(username)
}

// RevokeTokens invalidates every issued token.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]string)
}

// Fail makes method+path answer status with body until Recover is called.
func (s *Server) Fail(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[method+" "+path] = fault{status: status, body: body}
}

// Recover removes a fault installed by Fail.
func (s *Server) Recover(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.faults, method+" "+path)
}

// Block stalls method+path until the returned release func is called.
func (s *Server) Block(method, path string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.blocks[method+" "+path] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.blocks, method+" "+path)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Requests returns a copy of every recorded request.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// Last returns the most recent request.
func (s *Server) Last() Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Recorded{}
	}
	return s.requests[len(s.requests)-1]
}

// AddOrchard stores o and returns it with its assigned id.
func (s *Server) AddOrchard(o types.Orchard) types.Orchard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orchards.add(o)
}

// AddTree stores t and returns it with its assigned id.
func (s *Server) AddTree(t types.Tree) types.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trees.add(t)
}

// AddHealth stores h and returns it with its assigned id.
func (s *Server) AddHealth(h types.TreeHealth) types.TreeHealth {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.health.add(h)
}

// Trees returns the stored trees in creation order.
func (s *Server) Trees() []types.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trees.list()
}

func (s *Server) issueLocked(username string) string {
	s.nextTok++
	tok := "tok-" + username + "-" + strconv.Itoa(s.nextTok)
	s.tokens[tok] = username
	return tok
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := Recorded{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.Query(),
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
		}

		switch {
		case strings.HasPrefix(rec.ContentType, "multipart/form-data"):
			if err := r.ParseMultipartForm(32 << 20); err != nil {
				writeError(w, http.StatusBadRequest, "malformed multipart body")
				return
			}
			rec.Fields = r.MultipartForm.Value
			rec.Files = make(map[string][]UploadedFile)
			for name, headers := range r.MultipartForm.File {
				for _, h := range headers {
					rec.Files[name] = append(rec.Files[name], UploadedFile{
						Filename:    h.Filename,
						ContentType: h.Header.Get("Content-Type"),
						Size:        int(h.Size),
					})
				}
			}
		case r.Body != nil:
			body, _ := io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
			if len(body) > 0 {
				rec.JSON = body
			}
		}

		s.mu.Lock()
		s.requests = append(s.requests, rec)
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		f, failing := s.faults[key]
		block := s.blocks[key]
		s.mu.Unlock()

		if block != nil {
			select {
			case <-block:
			case <-r.Context().Done():
				return
			}
		}
		if failing {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			io.WriteString(w, f.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/login/" {
			next.ServeHTTP(w, r)
			return
		}
		tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		_, valid := s.tokens[tok]
		s.mu.Unlock()
		if !ok || !valid {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token."})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
