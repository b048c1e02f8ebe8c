package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"ai_app_generator/generator"
	"ai_app_generator/history"
	"ai_app_generator/publisher"
)

//go:embed web/dist web/dist/* web/dist/assets/*
var embeddedStatic embed.FS

// previewCSP keeps generated apps away from the generator's own origin.
const previewCSP = "sandbox allow-scripts allow-forms allow-modals allow-popups allow-downloads"

// Deployer publishes a document somewhere it can be opened.
type Deployer interface {
	PublishDocument(ctx context.Context, params publisher.PublishParams) (publisher.Deployment, error)
}

// Config wires the optional collaborators of a Server.
type Config struct {
	Policy generator.Policy
	// History records every accepted version. Nil disables it.
	History *history.Store
	// Deployer handles /deploy. Nil answers 503.
	Deployer Deployer
	// LLMTimeout bounds each generate or rectify call. Zero means no bound.
	LLMTimeout time.Duration
	// RateLimit caps backend-bound requests per client per minute, with
	// RateBurst allowed at once. Zero disables it.
	RateLimit float64
	RateBurst int
	// TrustProxy reads the client address from X-Forwarded-For or
	// X-Real-IP. Leave it off unless a reverse proxy sets those headers.
	TrustProxy bool
	// SessionTTL drops sessions not touched for that long. Zero keeps them.
	SessionTTL      time.Duration
	AllowAllOrigins bool
	Verbose         bool
	Logger          *log.Logger
}

type Server struct {
	genAgent *generator.Agent
	cfg      Config
	store    *sessionStore
	hub      *hub
	limiter  *clientLimiter
	staticFS http.Handler
	logger   *log.Logger
}

type storedSession struct {
	sess     *generator.Session
	lastSeen time.Time
}

// sessionStore holds live sessions. With a ttl, a session nobody has looked
// up for that long is gone; idle entries are swept when new ones arrive.
type sessionStore struct {
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	sessions  map[string]*storedSession
	lastSweep time.Time
}

func newStore(ttl time.Duration) *sessionStore {
	return &sessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*storedSession),
	}
}

func (s *sessionStore) set(id string, sess *generator.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweepLocked(now)
	s.sessions[id] = &storedSession{sess: sess, lastSeen: now}
}

func (s *sessionStore) get(id string) (*generator.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if s.expired(e, now) {
		delete(s.sessions, id)
		return nil, false
	}
	e.lastSeen = now
	return e.sess, true
}

func (s *sessionStore) expired(e *storedSession, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.lastSeen) >= s.ttl
}

func (s *sessionStore) sweepLocked(now time.Time) {
	if s.ttl <= 0 || now.Sub(s.lastSweep) < s.ttl {
		return
	}
	s.lastSweep = now
	for id, e := range s.sessions {
		if s.expired(e, now) {
			delete(s.sessions, id)
		}
	}
}

func New(genAgent *generator.Agent, cfg Config) (*Server, error) {
	if genAgent == nil {
		return nil, errors.New("generator agent required")
	}
	if cfg.Policy == "" {
		cfg.Policy = generator.PolicyLastWriteWins
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	sub, err := fs.Sub(embeddedStatic, "web/dist")
	if err != nil {
		return nil, err
	}

	return &Server{
		genAgent: genAgent,
		cfg:      cfg,
		store:    newStore(cfg.SessionTTL),
		hub:      newHub(logger),
		limiter:  newClientLimiter(cfg.RateLimit, cfg.RateBurst),
		staticFS: http.FileServer(http.FS(sub)),
		logger:   logger,
	}, nil
}

func (s *Server) infof(format string, args ...interface{}) {
	if !s.cfg.Verbose {
		return
	}
	s.logger.Printf("[INFO] "+format, args...)
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if s.cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAllOrigins {
		corsOpts.AllowedOrigins = []string{"*"}
		corsOpts.AllowCredentials = false
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/examples", s.handleExamples)
		r.Post("/sessions", s.rateLimited(s.handleSessionCreate))
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.withSession(s.handleSessionGet))
			r.Post("/generate", s.rateLimited(s.withSession(s.handleGenerate)))
			r.Post("/rectify", s.rateLimited(s.withSession(s.handleRectify)))
			r.Get("/code", s.withSession(s.handleCode))
			r.Get("/preview", s.withSession(s.handlePreview))
			r.Get("/versions", s.withSession(s.handleVersions))
			r.Get("/versions/{version}", s.withSession(s.handleVersion))
			r.Post("/versions/{version}/restore", s.withSession(s.handleRestore))
			r.Get("/changelog", s.withSession(s.handleChangelog))
			r.Post("/deploy", s.rateLimited(s.withSession(s.handleDeploy)))
			r.Get("/events", s.withSession(s.handleEvents))
		})
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "not found")
		})
	})

	r.Get("/*", s.staticFS.ServeHTTP)
	return r
}

// --- Handlers ---

type sessionCreateReq struct {
	Description string `json:"description"`
}

type generateReq struct {
	Description string `json:"description"`
}

type rectifyReq struct {
	Feedback string `json:"feedback"`
}

type deployReq struct {
	Description string `json:"description"`
}

type sessionResp struct {
	SessionID string              `json:"session_id"`
	Document  *generator.Document `json:"document,omitempty"`
	Version   uint64              `json:"version"`
	History   []generator.Turn    `json:"history"`
	Notice    string              `json:"notice,omitempty"`
}

type exampleResp struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleExamples(w http.ResponseWriter, r *http.Request) {
	out := make([]exampleResp, 0, len(generator.Examples))
	for _, name := range generator.ExampleNames() {
		out = append(out, exampleResp{Name: name, Description: generator.Examples[name]})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	var req sessionCreateReq
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := uuid.NewString()
	sess := generator.NewSession(id, s.genAgent,
		generator.WithNotifier(s.hub),
		generator.WithPolicy(s.cfg.Policy),
	)
	s.store.set(id, sess)
	s.infof("session %s created", id)

	if strings.TrimSpace(req.Description) == "" {
		writeJSON(w, http.StatusCreated, s.snapshot(sess, ""))
		return
	}
	if err := s.generate(r.Context(), sess, req.Description); err != nil {
		writeJSON(w, statusFor(err), errorResp{Error: err.Error(), SessionID: id})
		return
	}
	writeJSON(w, http.StatusCreated, s.snapshot(sess, ""))
}

func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request, sess *generator.Session) {
	writeJSON(w, http.StatusOK, s.snapshot(sess, ""))
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, sess *generator.Session) {
	var req generateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.generate(r.Context(), sess, req.Description); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot(sess, ""))
}

func (s *Server) handleRectify(w http.ResponseWriter, r *http.Request, sess *generator.Session) {
	var req rectifyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, cancel := s.llmContext(r.Context())
	defer cancel()
	doc, err := sess.Rectify(ctx, req.Feedback)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.record(r.Context(), sess.ID, strings.TrimSpace(req.Feedback), doc)
	writeJSON(w, http.StatusOK, s.snapshot(sess, generator.RectifiedNotice))
}

func (s *Server) handleCode(w http.ResponseWriter, r *http.Request, sess *generator.Session) {
	doc, ok := currentDocument(w, sess)
	if !ok {
		return
	}
	if r.URL.Query().Get("format") != "html" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, doc.HTML)
		return
	}
	page, err := publisher.RenderCode(titleOr(doc.Title, "Generated code"), doc.HTML)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeHTML(w, page)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request, sess *generator.Session) {
	doc, ok := currentDocument(w, sess)
	if !ok {
		return
	}
	w.Header().Set("Content-Security-Policy", previewCSP)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	writeHTML(w, doc.HTML)
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request, sess *generator.Session) {
	if s.cfg.History == nil {
		writeJSON(w, http.StatusOK, sess.History())
		return
	}
	entries, err := s.cfg.History.List(r.Context(), sess.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request, sess *generator.Session) {
	entry, ok := s.lookupVersion(w, r, sess)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// handleRestore makes an earlier version the current document again.
func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request, sess *generator.Session) {
	entry, ok := s.lookupVersion(w, r, sess)
	if !ok {
		return
	}
	if _, err := sess.Restore(entry.HTML); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.infof("session %s restored v%d", sess.ID, entry.Version)
	writeJSON(w, http.StatusOK, s.snapshot(sess, ""))
}

func (s *Server) lookupVersion(w http.ResponseWriter, r *http.Request, sess *generator.Session) (*history.Entry, bool) {
	if s.cfg.History == nil {
		writeError(w, http.StatusNotFound, "version history is disabled")
		return nil, false
	}
	version, err := strconv.ParseUint(chi.URLParam(r, "version"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid version")
		return nil, false
	}
	entry, err := s.cfg.History.Get(r.Context(), sess.ID, version)
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return entry, true
}

func (s *Server) handleChangelog(w http.ResponseWriter, r *http.Request, sess *generator.Session) {
	doc, _ := sess.Document()
	page, err := publisher.RenderChangelog(titleOr(doc.Title, "Session "+sess.ID), sess.History())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeHTML(w, page)
}

func (s *Server) handleDeploy(w http.ResponseWriter, r *http.Request, sess *generator.Session) {
	if s.cfg.Deployer == nil {
		writeError(w, http.StatusServiceUnavailable, "GitHub deployment is not configured")
		return
	}
	var req deployReq
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	doc, ok := currentDocument(w, sess)
	if !ok {
		return
	}
	description := req.Description
	if strings.TrimSpace(description) == "" {
		description = lastDescription(sess.History())
	}
	dep, err := s.cfg.Deployer.PublishDocument(r.Context(), publisher.PublishParams{
		HTML:        doc.HTML,
		Description: description,
		Title:       doc.Title,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.infof("session %s v%d deployed to %s", sess.ID, doc.Version, dep.PagesURL)
	writeJSON(w, http.StatusOK, dep)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, sess *generator.Session) {
	s.hub.serve(w, r, sess.ID)
}

// --- Helpers ---

func (s *Server) withSession(h func(http.ResponseWriter, *http.Request, *generator.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.store.get(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		h(w, r, sess)
	}
}

func (s *Server) generate(ctx context.Context, sess *generator.Session, description string) error {
	callCtx, cancel := s.llmContext(ctx)
	defer cancel()
	doc, err := sess.Generate(callCtx, description)
	if err != nil {
		return err
	}
	s.record(ctx, sess.ID, strings.TrimSpace(description), doc)
	return nil
}

func (s *Server) llmContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.LLMTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.LLMTimeout)
}

// record stores an accepted version. The document is already published, so
// a failure here is logged and not returned.
func (s *Server) record(ctx context.Context, sessionID, input string, doc generator.Document) {
	if s.cfg.History == nil {
		return
	}
	if _, err := s.cfg.History.Record(ctx, sessionID, input, doc); err != nil {
		s.logger.Printf("[WARN] recording session %s v%d: %v", sessionID, doc.Version, err)
	}
}

func (s *Server) snapshot(sess *generator.Session, notice string) sessionResp {
	resp := sessionResp{SessionID: sess.ID, History: sess.History(), Notice: notice}
	doc, version := sess.Document()
	resp.Version = version
	if !doc.Empty() {
		resp.Document = &doc
	}
	return resp
}

func currentDocument(w http.ResponseWriter, sess *generator.Session) (generator.Document, bool) {
	doc, _ := sess.Document()
	if doc.Empty() {
		writeError(w, http.StatusNotFound, "no app generated yet")
		return generator.Document{}, false
	}
	return doc, true
}

func lastDescription(turns []generator.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Op == generator.OpGenerate {
			return turns[i].Input
		}
	}
	return ""
}

func titleOr(title, fallback string) string {
	if title == "" {
		return fallback
	}
	return title
}

// statusFor maps run errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, generator.ErrEmptyInput), errors.Is(err, generator.ErrEmptyFeedback):
		return http.StatusBadRequest
	case errors.Is(err, generator.ErrNoDocument), errors.Is(err, generator.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, generator.ErrIncompleteDocument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, generator.ErrBackend):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeOptional decodes a JSON body that may be absent.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

type errorResp struct {
	Error     string `json:"error"`
	SessionID string `json:"session_id,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResp{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeHTML(w http.ResponseWriter, page string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, page)
}
