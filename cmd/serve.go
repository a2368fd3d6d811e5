package cmd

import (
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	log "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/tanq16/contaix/contaix"
)

//go:embed all:web
var webFS embed.FS

var serveFlags struct {
	contextDir string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Launch a web server to build contexts through a UI.",
	Run: func(cmd *cobra.Command, args []string) {
		s, err := newServer(serveFlags.contextDir)
		if err != nil {
			fail("failed to set up server", err)
		}
		addr := ":" + conf.Serve.Port
		log.Info().Str("addr", "http://localhost"+addr).Msg("starting server")
		if err := http.ListenAndServe(addr, s.Handler()); err != nil {
			fail("server stopped", err)
		}
	},
}

type generateRequest struct {
	Source     string   `json:"source"`
	Ignore     []string `json:"ignore"`
	Exclude    []string `json:"exclude"`
	Extensions []string `json:"extensions"`
	DedupLines int      `json:"dedup_lines"`
	MaxChars   int      `json:"max_chars"`
}

type generateResponse struct {
	Content string `json:"content"`
}

type server struct {
	router     *mux.Router
	static     fs.FS
	contextDir string
	// resolver builds the resolver of one request
	resolver func(req generateRequest) *contaix.Resolver
}

func newServer(contextDir string) (*server, error) {
	staticFS, err := fs.Sub(webFS, "web")
	if err != nil {
		return nil, err
	}
	s := &server{
		router:     mux.NewRouter(),
		static:     staticFS,
		contextDir: contextDir,
		resolver:   requestResolver,
	}
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	s.router.Use(c.Handler)
	s.router.HandleFunc("/generate", s.generateHandler).Methods(http.MethodPost)
	s.router.HandleFunc("/load", s.loadHandler).Methods(http.MethodGet)
	s.router.HandleFunc("/clear", s.clearHandler).Methods(http.MethodPost)
	s.router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.router.HandleFunc("/", s.rootHandler).Methods(http.MethodGet)
	return s, nil
}

func (s *server) Handler() http.Handler { return s.router }

func requestResolver(req generateRequest) *contaix.Resolver {
	exts := req.Extensions
	if len(exts) == 0 {
		exts = []string{".go"}
	}
	r := contaix.NewResolver(contaix.SuffixKeys(exts...))
	r.Ignore = req.Ignore
	r.SkipNoise = true
	r.Repos = contaix.NewGitFetcher(conf.Repos.CacheDir)
	return r
}

func (s *server) contextFile() string {
	return filepath.Join(s.contextDir, "context.md")
}

func (s *server) rootHandler(w http.ResponseWriter, r *http.Request) {
	indexHTML, err := fs.ReadFile(s.static, "index.html")
	if err != nil {
		http.Error(w, "Could not read index.html", http.StatusInternalServerError)
		log.Error().Err(err).Msg("failed to read embedded index.html")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// clearHandler deletes the generated context file
func (s *server) clearHandler(w http.ResponseWriter, r *http.Request) {
	if err := os.Remove(s.contextFile()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Error().Err(err).Msg("failed to clear context")
		http.Error(w, "Failed to clear context file", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) loadHandler(w http.ResponseWriter, r *http.Request) {
	content, err := os.ReadFile(s.contextFile())
	if errors.Is(err, fs.ErrNotExist) {
		writeJSON(w, http.StatusOK, generateResponse{})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to read context file")
		http.Error(w, "Failed to read context file", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{Content: string(content)})
}

func (s *server) generateHandler(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Source == "" {
		http.Error(w, "source is required", http.StatusBadRequest)
		return
	}
	resolver := s.resolver(req)
	src, err := resolver.ParseSource(req.Source)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := os.MkdirAll(s.contextDir, 0755); err != nil {
		log.Error().Err(err).Msg("failed to create context directory")
		http.Error(w, "Failed to create context directory", http.StatusInternalServerError)
		return
	}
	res, err := contaix.CodeAggregate(r.Context(), resolver, src, contaix.Config{
		Exclude:            req.Exclude,
		MinDuplicatedLines: req.DedupLines,
		MaxChars:           req.MaxChars,
		Egress:             &contaix.FileEgress{Path: s.contextFile(), ReturnDocument: true},
	})
	if err != nil {
		log.Error().Err(err).Str("source", req.Source).Msg("failed to generate context")
		http.Error(w, "Failed to generate context: "+err.Error(), http.StatusInternalServerError)
		return
	}
	log.Info().Str("source", req.Source).Msg("generated context")
	writeJSON(w, http.StatusOK, generateResponse{Content: res.Document})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().StringVar(&serveFlags.contextDir, "context-dir", "context", "Directory the generated context is kept in")
	serveCmd.Flags().String("cache-dir", "", "Where remote repositories are cloned")
}
