// Package gatewaytest provides an in-process fake of the maintenance server
// for tests. It speaks the same wire format as the real collection: list
// endpoints return bare arrays, the detail endpoint wraps its document in
// {"data": ...} and populates acID and assignedEmployee.
package gatewaytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/manav03panchal/aircare/internal/model"
)

// SigningKey signs the tokens the fake login endpoint issues.
var SigningKey = []byte("gatewaytest")

// Details is the nested block of a stored maintenance document.
type Details struct {
	ACID              string   `json:"acID,omitempty"`
	Location          string   `json:"location,omitempty"`
	AssignedEmployees []string `json:"assignedEmployees"`
	TimeStart         string   `json:"timeStart,omitempty"`
	TimeEnd           string   `json:"timeEnd,omitempty"`
	Status            bool     `json:"status"`
	Summary           string   `json:"summary,omitempty"`
}

// Event is a stored maintenance document.
type Event struct {
	ID               string    `json:"_id"`
	Title            string    `json:"title,omitempty"`
	ACID             string    `json:"acID"`
	Date             time.Time `json:"date"`
	Tasks            []string  `json:"tasks"`
	Details          Details   `json:"details"`
	AssignedEmployee []string  `json:"assignedEmployee"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Request records one call the server received.
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
	Body          []byte
}

type account struct {
	model.Employee
	Password string `json:"password,omitempty"`
}

// Server is a fake maintenance server.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	events       map[string]*Event
	units        map[string]model.ACUnit
	users        map[string]*account
	failures     map[string]int
	detailCalls  map[string]int
	requests     []Request
	now          func() time.Time
	failAll      int
	wrapResponse bool
}

// NewServer starts a fake server and registers its shutdown with t.
func NewServer(t testing.TB) *Server {
	s := &Server{
		events:      make(map[string]*Event),
		units:       make(map[string]model.ACUnit),
		users:       make(map[string]*account),
		failures:    make(map[string]int),
		detailCalls: make(map[string]int),
		now:         time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/maintenance", s.listEvents)
	mux.HandleFunc("POST /api/maintenance", s.createEvent)
	mux.HandleFunc("GET /api/maintenance/by-ac/{acId}", s.listEventsByAC)
	mux.HandleFunc("GET /api/maintenance/{id}", s.getEvent)
	mux.HandleFunc("PUT /api/maintenance/{id}", s.updateEvent)
	mux.HandleFunc("DELETE /api/maintenance/{id}", s.deleteEvent)
	mux.HandleFunc("GET /api/ac", s.listUnits)
	mux.HandleFunc("POST /api/ac", s.createUnit)
	mux.HandleFunc("PUT /api/ac/{id}", s.updateUnit)
	mux.HandleFunc("DELETE /api/ac/{id}", s.deleteUnit)
	mux.HandleFunc("GET /users", s.listUsers)
	mux.HandleFunc("POST /users", s.register)
	mux.HandleFunc("GET /users/{id}", s.getUser)
	mux.HandleFunc("PUT /users/{id}", s.updateUser)
	mux.HandleFunc("DELETE /users/{id}", s.deleteUser)
	mux.HandleFunc("POST /auth/login", s.login)
	mux.HandleFunc("GET /api/employee-statistics", s.statistics)

	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// NewID returns a fresh storage id in the server's format.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// SignToken issues a token carrying the given role, as the login endpoint does.
func SignToken(userID, role string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   userID,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(SigningKey)
	if err != nil {
		panic(err)
	}
	return signed
}

// SetNow overrides the clock used for createdAt stamps.
func (s *Server) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// AddUnit stores an AC unit and returns it with its storage id.
func (s *Server) AddUnit(u model.ACUnit) model.ACUnit {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = NewID()
	}
	s.units[u.ID] = u
	return u
}

// RemoveUnit deletes an AC unit directly.
func (s *Server) RemoveUnit(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.units, id)
}

// AddEvent stores an event and returns its id.
func (s *Server) AddEvent(ev Event) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.ID == "" {
		ev.ID = NewID()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = s.now()
	}
	if ev.Tasks == nil {
		ev.Tasks = []string{}
	}
	if ev.AssignedEmployee == nil {
		ev.AssignedEmployee = ev.Details.AssignedEmployees
	}
	s.events[ev.ID] = &ev
	return ev.ID
}

// Event returns a copy of a stored event.
func (s *Server) Event(id string) (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return Event{}, false
	}
	return *ev, true
}

// EventCount returns the number of stored events.
func (s *Server) EventCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// AddUser stores an account and returns it with its storage id.
func (s *Server) AddUser(emp model.Employee, password string) model.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	if emp.ID == "" {
		emp.ID = NewID()
	}
	s.users[emp.ID] = &account{Employee: emp, Password: password}
	return emp
}

// FailDetail makes the next n detail fetches for id answer 500.
func (s *Server) FailDetail(id string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[id] = n
}

// FailNext makes the next n requests of any kind answer 503.
func (s *Server) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAll = n
}

// WrapResponses makes write endpoints answer with {"data": ...}.
func (s *Server) WrapResponses(wrap bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wrapResponse = wrap
}

// DetailCalls returns how many times the detail endpoint was hit for id.
func (s *Server) DetailCalls(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detailCalls[id]
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsTo counts requests with the given method and path.
func (s *Server) RequestsTo(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = readAll(r)
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          body,
		})
		fail := s.failAll > 0
		if fail {
			s.failAll--
		}
		s.mu.Unlock()

		if fail {
			writeError(w, http.StatusServiceUnavailable, "temporarily unavailable")
			return
		}

		r.Body = newBody(body)
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Maintenance
// =============================================================================

func (s *Server) listEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	events := s.sortedEvents(func(*Event) bool { return true })
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) listEventsByAC(w http.ResponseWriter, r *http.Request) {
	acID := r.PathValue("acId")
	s.mu.Lock()
	events := s.sortedEvents(func(ev *Event) bool { return ev.ACID == acID })
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	s.detailCalls[id]++
	if s.failures[id] > 0 {
		s.failures[id]--
		s.mu.Unlock()
		writeError(w, http.StatusInternalServerError, "detail lookup failed")
		return
	}
	ev, ok := s.events[id]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Maintenance record not found")
		return
	}

	doc := map[string]any{}
	raw, _ := json.Marshal(ev)
	_ = json.Unmarshal(raw, &doc)

	if unit, ok := s.units[ev.ACID]; ok {
		doc["acID"] = unit
		doc["acDetails"] = unit
	}
	employees := []model.Employee{}
	for _, uid := range ev.AssignedEmployee {
		if acct, ok := s.users[uid]; ok {
			employees = append(employees, acct.Employee)
		}
	}
	doc["assignedEmployee"] = employees
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"data": doc})
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	var ev Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if ev.ACID == "" {
		writeError(w, http.StatusBadRequest, "acID is required")
		return
	}

	s.mu.Lock()
	ev.ID = NewID()
	ev.CreatedAt = s.now()
	if ev.Tasks == nil {
		ev.Tasks = []string{}
	}
	ev.AssignedEmployee = ev.Details.AssignedEmployees
	s.events[ev.ID] = &ev
	wrap := s.wrapResponse
	s.mu.Unlock()

	s.writeDoc(w, http.StatusCreated, ev, wrap)
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var ev Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	existing, ok := s.events[id]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Maintenance record not found")
		return
	}
	ev.ID = id
	ev.CreatedAt = existing.CreatedAt
	if ev.Tasks == nil {
		ev.Tasks = []string{}
	}
	ev.AssignedEmployee = ev.Details.AssignedEmployees
	s.events[id] = &ev
	wrap := s.wrapResponse
	s.mu.Unlock()

	s.writeDoc(w, http.StatusOK, ev, wrap)
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	_, ok := s.events[id]
	delete(s.events, id)
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Maintenance record not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Maintenance record deleted"})
}

// sortedEvents returns matching events ordered by date. Callers hold s.mu.
func (s *Server) sortedEvents(keep func(*Event) bool) []Event {
	events := []Event{}
	for _, ev := range s.events {
		if keep(ev) {
			events = append(events, *ev)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Date.Equal(events[j].Date) {
			return events[i].ID < events[j].ID
		}
		return events[i].Date.Before(events[j].Date)
	})
	return events
}

// =============================================================================
// AC units
// =============================================================================

func (s *Server) listUnits(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	units := []model.ACUnit{}
	for _, u := range s.units {
		units = append(units, u)
	}
	s.mu.Unlock()

	sort.Slice(units, func(i, j int) bool { return units[i].Code < units[j].Code })
	writeJSON(w, http.StatusOK, units)
}

func (s *Server) createUnit(w http.ResponseWriter, r *http.Request) {
	var u model.ACUnit
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil || u.Code == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	u = s.AddUnit(u)
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) updateUnit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var u model.ACUnit
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	if _, ok := s.units[id]; !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "AC not found")
		return
	}
	u.ID = id
	s.units[id] = u
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, u)
}

func (s *Server) deleteUnit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	_, ok := s.units[id]
	delete(s.units, id)
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "AC not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "AC deleted"})
}

// =============================================================================
// Users and auth
// =============================================================================

func (s *Server) listUsers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	users := []model.Employee{}
	for _, acct := range s.users {
		users = append(users, acct.Employee)
	}
	s.mu.Unlock()

	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	acct, ok := s.users[id]
	var emp model.Employee
	if ok {
		emp = acct.Employee
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var emp model.Employee
	if err := json.NewDecoder(r.Body).Decode(&emp); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	acct, ok := s.users[id]
	if ok {
		emp.ID = id
		acct.Employee = emp
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	_, ok := s.users[id]
	delete(s.users, id)
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var acct account
	if err := json.NewDecoder(r.Body).Decode(&acct); err != nil || acct.Username == "" || acct.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	s.mu.Lock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, acct.Username) {
			s.mu.Unlock()
			writeError(w, http.StatusConflict, "Username already exists")
			return
		}
	}
	acct.ID = NewID()
	if acct.Role == "" {
		acct.Role = model.RoleStaff
	}
	s.users[acct.ID] = &acct
	emp := acct.Employee
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, emp)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	var found *account
	for _, acct := range s.users {
		if acct.Username == req.Username && acct.Password == req.Password {
			found = acct
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, model.Credentials{
		Token:  SignToken(found.ID, found.Role),
		UserID: found.ID,
	})
}

func (s *Server) statistics(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		writeError(w, http.StatusUnauthorized, "Access denied")
		return
	}

	s.mu.Lock()
	byEmployee := map[string]*model.EmployeeStats{}
	for _, ev := range s.events {
		for _, uid := range ev.AssignedEmployee {
			st, ok := byEmployee[uid]
			if !ok {
				st = &model.EmployeeStats{EmployeeID: uid, TaskCounts: map[string]int{}}
				if acct, ok := s.users[uid]; ok {
					st.Name = acct.FullName()
				}
				byEmployee[uid] = st
			}
			for _, task := range ev.Tasks {
				st.TaskCounts[task]++
			}
		}
	}
	s.mu.Unlock()

	stats := []model.EmployeeStats{}
	for _, st := range byEmployee {
		stats = append(stats, *st)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].EmployeeID < stats[j].EmployeeID })
	writeJSON(w, http.StatusOK, stats)
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) writeDoc(w http.ResponseWriter, status int, v any, wrap bool) {
	if wrap {
		writeJSON(w, status, map[string]any{"data": v})
		return
	}
	writeJSON(w, status, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
