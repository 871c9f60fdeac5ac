// Package prompts loads per-language prompt bundles and resolves dotted keys
// with a fallback to the default language.
package prompts

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// root is the top-level key every bundle nests its prompts under.
const root = "prompts."

// Store is a read-through cache of prompt bundles keyed by language code.
// Bundles live in <dir>/<lang>.yaml.
type Store struct {
	dir         string
	defaultLang string
	logger      *zap.Logger

	mu      sync.RWMutex
	bundles map[string]*koanf.Koanf
}

// NewStore creates a store reading bundles from dir.
func NewStore(dir, defaultLang string, logger *zap.Logger) *Store {
	return &Store{
		dir:         dir,
		defaultLang: strings.ToLower(defaultLang),
		logger:      logger.Named("prompts"),
		bundles:     make(map[string]*koanf.Koanf),
	}
}

// Get returns the prompt at path for lang, falling back to the default language
// and then to the empty string.
func (s *Store) Get(lang, path string) string {
	for _, candidate := range s.chain(lang) {
		if k := s.bundle(candidate); k != nil && k.Exists(root+path) {
			return k.String(root + path)
		}
	}

	return ""
}

// Int returns the integer at path with the same fallback as Get, or 0.
func (s *Store) Int(lang, path string) int {
	for _, candidate := range s.chain(lang) {
		if k := s.bundle(candidate); k != nil && k.Exists(root+path) {
			return k.Int(root + path)
		}
	}

	return 0
}

// Execute renders a template string with data.
func Execute(name, text string, data any) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}

	return strings.TrimSpace(buf.String()), nil
}

// chain returns the languages consulted for lang, in order.
func (s *Store) chain(lang string) []string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" || lang == s.defaultLang {
		return []string{s.defaultLang}
	}

	return []string{lang, s.defaultLang}
}

// bundle returns the cached bundle for lang, loading it from disk on first use.
// Missing files are cached as nil so the disk is only consulted once.
func (s *Store) bundle(lang string) *koanf.Koanf {
	lang = strings.ToLower(lang)

	s.mu.RLock()
	k, ok := s.bundles[lang]
	s.mu.RUnlock()

	if ok {
		return k
	}

	k = s.load(lang)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.bundles[lang]; ok {
		return existing
	}

	s.bundles[lang] = k

	return k
}

// load reads <dir>/<lang>.yaml.
func (s *Store) load(lang string) *koanf.Koanf {
	if lang == "" || strings.ContainsAny(lang, `/\.`) {
		return nil
	}

	path := filepath.Join(s.dir, lang+".yaml")

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("No prompt bundle for language", zap.String("lang", lang))
		} else {
			s.logger.Warn("Failed to load prompt bundle", zap.String("path", path), zap.Error(err))
		}

		return nil
	}

	s.logger.Debug("Loaded prompt bundle", zap.String("lang", lang), zap.String("path", path))

	return k
}
