package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"

	"ml-prediction-service/internal/core/domain"
	ports "ml-prediction-service/internal/core/ports/output"
	"ml-prediction-service/internal/metrics"
)

// LoadResult is the outcome of loading one model artifact: either Loaded
// (Classifier set, Err nil) or Failed (Err set).
type LoadResult struct {
	ID         domain.ModelID
	Path       string
	Exists     bool
	Classifier ports.Classifier
	Err        error
}

func (r LoadResult) Loaded() bool {
	return r.Err == nil && r.Classifier != nil
}

// ModelSet is the immutable, process-wide model state built once at startup.
// It is safe for concurrent use by request handlers.
type ModelSet struct {
	ids     []domain.ModelID
	results []LoadResult
}

// NewModelSet builds a set that must cover domain.DefaultModels.
func NewModelSet(results ...LoadResult) *ModelSet {
	return NewModelSetFor(domain.DefaultModels, results...)
}

// NewModelSetFor builds a set that is ready only when it holds exactly one
// loaded result for each of ids and nothing else.
func NewModelSetFor(ids []domain.ModelID, results ...LoadResult) *ModelSet {
	return &ModelSet{
		ids:     append([]domain.ModelID(nil), ids...),
		results: append([]LoadResult(nil), results...),
	}
}

func (m *ModelSet) Results() []LoadResult {
	if m == nil {
		return nil
	}
	return append([]LoadResult(nil), m.results...)
}

// Ready reports whether every configured model loaded.
func (m *ModelSet) Ready() bool {
	return m.Err() == nil
}

// Err joins the load errors of every failed model together with any
// configured model that is missing or present more than once, or returns nil.
func (m *ModelSet) Err() error {
	if m == nil || len(m.ids) == 0 {
		return domain.ErrModelsNotLoaded
	}

	configured := make(map[domain.ModelID]bool, len(m.ids))
	for _, id := range m.ids {
		configured[id] = true
	}

	var errs []error
	seen := make(map[domain.ModelID]int, len(m.results))
	for _, r := range m.results {
		seen[r.ID]++
		if !configured[r.ID] {
			errs = append(errs, fmt.Errorf("%s: %w: not a configured model", r.ID, domain.ErrModelsNotLoaded))
			continue
		}
		if !r.Loaded() {
			err := r.Err
			if err == nil {
				err = domain.ErrModelsNotLoaded
			}
			errs = append(errs, fmt.Errorf("%s: %w", r.ID, err))
		}
	}
	for i, id := range m.ids {
		if slices.Contains(m.ids[:i], id) {
			continue
		}
		switch n := seen[id]; {
		case n == 0:
			errs = append(errs, fmt.Errorf("%s: %w: no load result", id, domain.ErrModelsNotLoaded))
		case n > 1:
			errs = append(errs, fmt.Errorf("%s: %w: %d load results", id, domain.ErrModelsNotLoaded, n))
		}
	}
	return errors.Join(errs...)
}

// FeatureCount returns the input dimensionality shared by the loaded models.
// Models that do not declare a dimensionality are ignored; 0 means unknown.
func (m *ModelSet) FeatureCount() (int, error) {
	n := 0
	for _, r := range m.Results() {
		if !r.Loaded() {
			continue
		}
		got := r.Classifier.NumFeatures()
		if got <= 0 {
			continue
		}
		if n != 0 && got != n {
			return 0, fmt.Errorf("%w: %s expects %d, others expect %d", domain.ErrFeatureCountConflict, r.ID, got, n)
		}
		n = got
	}
	return n, nil
}

func (m *ModelSet) Artifacts() []domain.ModelArtifact {
	results := m.Results()
	out := make([]domain.ModelArtifact, 0, len(results))
	for _, r := range results {
		a := domain.ModelArtifact{
			ID:     r.ID,
			Path:   r.Path,
			Exists: r.Exists,
			Loaded: r.Loaded(),
		}
		if a.Loaded {
			a.Kind = r.Classifier.Kind()
			a.NFeatures = r.Classifier.NumFeatures()
		} else if r.Err != nil {
			a.LoadErrMsg = r.Err.Error()
		}
		out = append(out, a)
	}
	return out
}

func (m *ModelSet) Close() error {
	var errs []error
	for _, r := range m.Results() {
		if r.Loaded() {
			if err := r.Classifier.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", r.ID, err))
			}
		}
	}
	return errors.Join(errs...)
}

type ModelLoaderService struct {
	store   ports.ArtifactStore
	loaders map[string]ports.ClassifierLoader
	fetcher ports.ArtifactFetcher
}

// NewModelLoaderService wires the artifact store with one loader per file
// extension. fetcher may be nil when artifacts are provisioned on disk.
func NewModelLoaderService(store ports.ArtifactStore, fetcher ports.ArtifactFetcher, loaders ...ports.ClassifierLoader) *ModelLoaderService {
	byExt := make(map[string]ports.ClassifierLoader)
	for _, l := range loaders {
		for _, ext := range l.Extensions() {
			byExt[strings.ToLower(ext)] = l
		}
	}
	return &ModelLoaderService{store: store, loaders: byExt, fetcher: fetcher}
}

// Fetch downloads every artifact from the remote store. It is a no-op without a fetcher.
func (s *ModelLoaderService) Fetch(ctx context.Context, ids []domain.ModelID) error {
	if s.fetcher == nil {
		return nil
	}
	for _, id := range ids {
		if err := s.fetcher.Fetch(ctx, id, s.store.Path(id)); err != nil {
			return fmt.Errorf("fetch %s: %w", id, err)
		}
	}
	return nil
}

// Load attempts every model and returns the resulting set. It never stops at
// the first failure, so the caller can report every broken artifact at once.
func (s *ModelLoaderService) Load(ids []domain.ModelID) *ModelSet {
	results := make([]LoadResult, 0, len(ids))
	for _, id := range ids {
		r := s.loadOne(id)
		metrics.SetModelLoaded(string(id), r.Loaded())

		fields := log.Fields{
			"model_id": id,
			"path":     r.Path,
			"exists":   r.Exists,
		}
		if r.Loaded() {
			fields["kind"] = r.Classifier.Kind()
			fields["n_features"] = r.Classifier.NumFeatures()
			log.WithFields(fields).Info("model loaded")
		} else {
			log.WithFields(fields).WithError(r.Err).Error("failed to load model")
		}
		results = append(results, r)
	}
	return NewModelSetFor(ids, results...)
}

func (s *ModelLoaderService) loadOne(id domain.ModelID) LoadResult {
	r := LoadResult{ID: id, Path: s.store.Path(id)}

	exists, err := s.store.Exists(id)
	r.Exists = exists
	if err != nil {
		r.Err = err
		return r
	}
	if !exists {
		r.Err = fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, r.Path)
		return r
	}

	ext := strings.ToLower(filepath.Ext(r.Path))
	loader, ok := s.loaders[ext]
	if !ok {
		r.Err = fmt.Errorf("%w: no loader for %q", domain.ErrUnsupportedArtifact, ext)
		return r
	}

	c, err := loader.Load(r.Path)
	if err != nil {
		r.Err = err
		return r
	}
	r.Classifier = c
	return r
}
