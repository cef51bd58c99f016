package backendtest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mesh-intelligence/orchard/pkg/types"
)

// collection is an id-keyed store that remembers insertion order.
type collection[T any] struct {
	items  map[int]T
	order  []int
	nextID int
	setID  func(*T, int)
}

func newCollection[T any](setID func(*T, int)) *collection[T] {
	return &collection[T]{items: make(map[int]T), setID: setID}
}

func (c *collection[T]) add(v T) T {
	c.nextID++
	c.setID(&v, c.nextID)
	c.items[c.nextID] = v
	c.order = append(c.order, c.nextID)
	return v
}

func (c *collection[T]) list() []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

func (c *collection[T]) remove(id int) bool {
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// handleCRUD registers list, get, delete and, when writable, create and
// replace routes for a JSON resource rooted at base.
func handleCRUD[T any](s *Server, r *mux.Router, base string, c *collection[T], writable bool) {
	item := base + "{id:[0-9]+}/"

	r.HandleFunc(base, func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		items := c.list()
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, items)
	}).Methods(http.MethodGet)

	r.HandleFunc(item, func(w http.ResponseWriter, req *http.Request) {
		id, _ := strconv.Atoi(mux.Vars(req)["id"])
		s.mu.Lock()
		v, ok := c.items[id]
		s.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		writeJSON(w, http.StatusOK, v)
	}).Methods(http.MethodGet)

	r.HandleFunc(item, func(w http.ResponseWriter, req *http.Request) {
		id, _ := strconv.Atoi(mux.Vars(req)["id"])
		s.mu.Lock()
		ok := c.remove(id)
		s.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodDelete)

	if !writable {
		return
	}

	r.HandleFunc(base, func(w http.ResponseWriter, req *http.Request) {
		var v T
		if err := json.NewDecoder(req.Body).Decode(&v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		s.mu.Lock()
		v = c.add(v)
		s.mu.Unlock()
		writeJSON(w, http.StatusCreated, v)
	}).Methods(http.MethodPost)

	r.HandleFunc(item, func(w http.ResponseWriter, req *http.Request) {
		id, _ := strconv.Atoi(mux.Vars(req)["id"])
		var v T
		if err := json.NewDecoder(req.Body).Decode(&v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		c.setID(&v, id)
		s.mu.Lock()
		_, ok := c.items[id]
		if ok {
			c.items[id] = v
		}
		s.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		writeJSON(w, http.StatusOK, v)
	}).Methods(http.MethodPut)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds types.LoginCredentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[creds.Username]
	if !ok || s.secrets[creds.Username] != creds.Password {
		writeError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, types.LoginResponse{Token: s.issueLocked(creds.Username), User: user})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	delete(s.tokens, tok)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// imageParts returns the files uploaded under field, if the request was
// multipart at all.
func imageParts(r *http.Request, field string) int {
	if r.MultipartForm == nil {
		return 0
	}
	return len(r.MultipartForm.File[field])
}

func formValue(r *http.Request, field string) string {
	if r.MultipartForm == nil || len(r.MultipartForm.Value[field]) == 0 {
		return ""
	}
	return r.MultipartForm.Value[field][0]
}

func (s *Server) withImage(result func() any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if imageParts(r, "image") == 0 {
			writeError(w, http.StatusBadRequest, "No image provided")
			return
		}
		s.mu.Lock()
		v := result()
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, v)
	}
}

func (s *Server) uploadImage(w http.ResponseWriter, r *http.Request) {
	if imageParts(r, "image") != 1 {
		writeError(w, http.StatusBadRequest, "No image provided")
		return
	}
	tree, err := strconv.Atoi(formValue(r, "tree"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "tree must be an integer")
		return
	}
	s.mu.Lock()
	img := s.images.add(types.ScannedImage{
		Image:      "/media/scans/" + r.MultipartForm.File["image"][0].Filename,
		Tree:       tree,
		UploadedAt: "2024-05-01T10:00:00Z",
	})
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, img)
}

func (s *Server) bulkUpload(w http.ResponseWriter, r *http.Request) {
	n := imageParts(r, "images")
	if n == 0 {
		writeError(w, http.StatusBadRequest, "No images provided")
		return
	}
	tree, err := strconv.Atoi(formValue(r, "tree"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "tree must be an integer")
		return
	}
	s.mu.Lock()
	for _, h := range r.MultipartForm.File["images"] {
		s.images.add(types.ScannedImage{Image: "/media/scans/" + h.Filename, Tree: tree})
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"uploaded": n, "failed": 0, "tree": tree})
}

func (s *Server) bulkCreateTrees(w http.ResponseWriter, r *http.Request) {
	var req types.BulkCreateTreesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.mu.Lock()
	created := make([]types.Tree, 0, len(req.Trees))
	for _, t := range req.Trees {
		created = append(created, s.trees.add(t))
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"created": len(created), "trees": created})
}

func (s *Server) anomalies(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	v := s.Anomalies
	s.mu.Unlock()
	days := r.URL.Query().Get("days_back")
	if days == "" {
		days = "30"
	}
	v.Period = "Last " + days + " days"
	v.OrchardID = r.URL.Query().Get("orchard_id")
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) trendsHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	v := s.Trends
	s.mu.Unlock()
	months := r.URL.Query().Get("months_back")
	if months == "" {
		months = "6"
	}
	v.TrendAnalysis.Period = "Last " + months + " months"
	v.OrchardID = r.URL.Query().Get("orchard_id")
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	v := s.Report
	s.mu.Unlock()
	v.ReportInfo.ReportType = r.URL.Query().Get("type")
	if v.ReportInfo.ReportType == "" {
		v.ReportInfo.ReportType = types.ReportTypeComprehensive
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	if r.MultipartForm == nil {
		writeError(w, http.StatusBadRequest, "chat expects multipart form data")
		return
	}
	answer := "You asked: " + formValue(r, "message")
	if imageParts(r, "image") > 0 {
		answer += " (with image)"
	}
	s.mu.Lock()
	action := s.ChatAction
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, types.ChatResponse{Answer: answer, AgenticAction: action})
}
