package publisher

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const defaultAPIBaseURL = "https://api.github.com"

// Config holds the GitHub repository credentials.
type Config struct {
	Token        string
	Username     string
	Repo         string
	Branch       string
	PagesBaseURL string
	APIBaseURL   string
}

// PublishParams describes the document to deploy.
type PublishParams struct {
	HTML        string
	Description string
	Title       string
}

// Deployment locates a deployed document.
type Deployment struct {
	RepoURL  string `json:"repo_url"`
	PagesURL string `json:"pages_url"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Commit   string `json:"commit,omitempty"`
}

type putContentsPayload struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch,omitempty"`
}

type putContentsResp struct {
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
	Message string `json:"message"`
}

// Publisher deploys generated apps as new files in a GitHub repository.
type Publisher struct {
	cfg     Config
	client  *http.Client
	verbose bool
	logger  *log.Logger
	now     func() time.Time
}

// New creates a Publisher. Existing files are never overwritten; every
// deployment gets a fresh generated/<slug>-<timestamp>.html path.
func New(cfg Config, client *http.Client, verbose bool, logger *log.Logger) (*Publisher, error) {
	if cfg.Token == "" || cfg.Username == "" || cfg.Repo == "" {
		return nil, errors.New("github config must include token, username and repo")
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if cfg.PagesBaseURL == "" {
		cfg.PagesBaseURL = fmt.Sprintf("https://%s.github.io/%s", cfg.Username, cfg.Repo)
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Publisher{
		cfg:     cfg,
		client:  client,
		verbose: verbose,
		logger:  logger,
		now:     time.Now,
	}, nil
}

func (p *Publisher) infof(format string, args ...interface{}) {
	if !p.verbose {
		return
	}
	p.logger.Printf("[INFO] "+format, args...)
}

// PublishDocument commits the document and returns where it can be viewed.
func (p *Publisher) PublishDocument(ctx context.Context, params PublishParams) (Deployment, error) {
	if strings.TrimSpace(params.HTML) == "" {
		return Deployment{}, errors.New("code is required to deploy")
	}
	name := params.Description
	if strings.TrimSpace(name) == "" {
		name = params.Title
	}
	filename := GenerateFilename(name, p.now())
	path := "generated/" + filename

	commit, err := putContents(ctx, p.client, p.cfg, path, params.HTML, "chore: deploy generated app "+filename)
	if err != nil {
		return Deployment{}, err
	}
	p.infof("Deployed %s to %s/%s@%s commit=%s", path, p.cfg.Username, p.cfg.Repo, p.cfg.Branch, commit)

	return Deployment{
		RepoURL:  fmt.Sprintf("https://github.com/%s/%s", p.cfg.Username, p.cfg.Repo),
		PagesURL: strings.TrimRight(p.cfg.PagesBaseURL, "/") + "/" + path,
		Filename: filename,
		Path:     path,
		Commit:   commit,
	}, nil
}

func putContents(ctx context.Context, client *http.Client, cfg Config, path, content, message string) (string, error) {
	payload := putContentsPayload{
		Message: message,
		Content: base64.StdEncoding.EncodeToString([]byte(content)),
		Branch:  cfg.Branch,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		strings.TrimRight(cfg.APIBaseURL, "/"), url.PathEscape(cfg.Username), url.PathEscape(cfg.Repo), path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Authorization", "token "+cfg.Token)

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("failed to deploy to GitHub: %d %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var data putContentsResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", err
	}
	return data.Commit.SHA, nil
}

var (
	slugInvalidRe = regexp.MustCompile(`[^a-z0-9]+`)
	slugDashRe    = regexp.MustCompile(`-+`)
)

// maxSlugLen keeps filenames readable for long descriptions.
const maxSlugLen = 60

// Slugify lowercases text and collapses everything but [a-z0-9] into dashes.
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = slugInvalidRe.ReplaceAllString(s, "-")
	s = slugDashRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSlugLen {
		s = strings.TrimRight(s[:maxSlugLen], "-")
	}
	if s == "" {
		return "app"
	}
	return s
}

// GenerateFilename returns <slug>-<UTC timestamp>.html.
func GenerateFilename(description string, at time.Time) string {
	return fmt.Sprintf("%s-%s.html", Slugify(description), at.UTC().Format("20060102-150405"))
}
