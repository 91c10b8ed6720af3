package service

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"archivedoc/internal/ai"
	"archivedoc/internal/cache"
	"archivedoc/internal/config"
	"archivedoc/internal/imaging"
	"archivedoc/internal/model"
	"archivedoc/internal/storage"
)

var ErrIDRequired = errors.New("id is required")

// Stage identifies a step of the analysis sequence. The job tracker maps
// stages to progress markers through the Checkpoint hook.
type Stage string

const (
	StageFetch    Stage = "fetch"
	StageConvert  Stage = "convert"
	StageClassify Stage = "classify"
	StageParse    Stage = "parse"
)

// Checkpoint is called before each stage. Returning a non-nil error stops
// the run; the error passes back to the caller unwrapped so a job layer can
// recognize its own cancellation signal.
type Checkpoint func(stage Stage) error

// AnalyzeOptions tune a single analysis run.
type AnalyzeOptions struct {
	// ForceRefresh bypasses the analysis and image cache reads and re-runs
	// the full fetch/convert/classify sequence. Results are still cached.
	ForceRefresh bool
	// Checkpoint, when set, is invoked before each stage.
	Checkpoint Checkpoint
}

// AnalyzerService orchestrates the analysis of one stored file:
// fetch, convert to an analyzable image, classify, parse, cache.
type AnalyzerService interface {
	Analyze(ctx context.Context, fileID string, opts AnalyzeOptions) (*model.AnalysisResult, error)
}

// convertedImage is what the image cache holds: the analyzable rendition
// plus the object key it can be fetched from later.
type convertedImage struct {
	Image imaging.Image
	Ref   string
}

type analyzerService struct {
	store      storage.FileStore
	converter  imaging.Converter
	classifier ai.Classifier
	analyses   *cache.Cache[*model.AnalysisResult]
	images     *cache.Cache[convertedImage]

	analysisTTL time.Duration
	imageTTL    time.Duration
}

// NewAnalyzerService constructs the analysis orchestrator. Both caches are
// process-local; every instance owns its own.
func NewAnalyzerService(store storage.FileStore, converter imaging.Converter, classifier ai.Classifier, cfg config.CacheConfig) AnalyzerService {
	return &analyzerService{
		store:       store,
		converter:   converter,
		classifier:  classifier,
		analyses:    cache.New[*model.AnalysisResult](),
		images:      cache.New[convertedImage](),
		analysisTTL: time.Duration(cfg.AnalysisTTLSec) * time.Second,
		imageTTL:    time.Duration(cfg.ImageTTLSec) * time.Second,
	}
}

// Analyze runs the full sequence for fileID. Checkpoint errors pass through
// untouched; every other failure wraps into model.AnalysisError with the
// cause preserved. Nothing is retried at this layer.
func (s *analyzerService) Analyze(ctx context.Context, fileID string, opts AnalyzeOptions) (*model.AnalysisResult, error) {
	if fileID == "" {
		return nil, ErrIDRequired
	}

	if !opts.ForceRefresh {
		if res, ok := s.analyses.Get(cache.AnalysisKey(fileID)); ok {
			return res, nil
		}
	}

	if err := opts.checkpoint(StageFetch); err != nil {
		return nil, err
	}

	// Content and metadata are independent I/O calls; fetch them together.
	var (
		content     []byte
		contentMIME string
		meta        storage.FileMetadata
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		content, contentMIME, err = s.store.GetContent(gctx, fileID)
		return err
	})
	g.Go(func() error {
		var err error
		meta, err = s.store.GetMetadata(gctx, fileID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, &model.AnalysisError{FileID: fileID, Err: err}
	}

	if err := opts.checkpoint(StageConvert); err != nil {
		return nil, err
	}
	img, err := s.convert(ctx, fileID, content, contentMIME, opts.ForceRefresh)
	if err != nil {
		return nil, &model.AnalysisError{FileID: fileID, Err: err}
	}

	if err := opts.checkpoint(StageClassify); err != nil {
		return nil, err
	}
	raw, err := s.classifier.Classify(ctx, img.Image)
	if err != nil {
		return nil, &model.AnalysisError{FileID: fileID, Err: err}
	}

	if err := opts.checkpoint(StageParse); err != nil {
		return nil, err
	}
	cls, err := ai.ParseClassification(raw, titleFallback(meta.Name, fileID))
	if err != nil {
		return nil, &model.AnalysisError{FileID: fileID, Err: err}
	}

	res := &model.AnalysisResult{
		FileID:       fileID,
		FileName:     meta.Name,
		ImageRef:     img.Ref,
		DocumentType: cls.DocumentType,
		Title:        cls.Title,
		Content:      cls.Content,
		Entities:     cls.Entities,
		ProcessedAt:  time.Now().UTC(),
	}
	s.analyses.Set(cache.AnalysisKey(fileID), res, s.analysisTTL)
	return res, nil
}

// convert produces the analyzable rendition of the file, memoized per
// (fileID, source MIME). Transcoded renditions are uploaded next to the
// source under derived/ so callers can fetch them later; pass-through
// renditions keep the source fileID as their ref.
func (s *analyzerService) convert(ctx context.Context, fileID string, content []byte, mimeType string, forceRefresh bool) (convertedImage, error) {
	key := cache.ImageKey(fileID, mimeType)
	if !forceRefresh {
		if cached, ok := s.images.Get(key); ok {
			return cached, nil
		}
	}

	img, err := s.converter.Convert(content, mimeType)
	if err != nil {
		return convertedImage{}, err
	}

	ref := fileID
	if img.Transcoded {
		ref = "derived/" + fileID + ".png"
		_, err := s.store.Put(ctx, ref, bytes.NewReader(img.Data), storage.PutOptions{
			Size:        int64(len(img.Data)),
			ContentType: img.MIME,
			Metadata:    map[string]string{"source-file-id": fileID},
		})
		if err != nil {
			return convertedImage{}, &model.ConversionError{MIME: mimeType, Err: err}
		}
	}

	out := convertedImage{Image: img, Ref: ref}
	s.images.Set(key, out, s.imageTTL)
	return out, nil
}

func (o AnalyzeOptions) checkpoint(st Stage) error {
	if o.Checkpoint == nil {
		return nil
	}
	return o.Checkpoint(st)
}

// titleFallback is the title used when the classifier returns none: the file
// name without its extension, or the fileID as a last resort.
func titleFallback(fileName, fileID string) string {
	stem := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	if stem == "" {
		return fileID
	}
	return stem
}
